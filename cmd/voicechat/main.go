package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/loquenlabs/voicechat-sdk-go/pkg/voicechat"
)

var (
	verbose  bool
	agentID  string
	endpoint string
	duration float64
	userName string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "voicechat",
		Short: "Voice Chat SDK CLI",
		Long:  "A command-line interface for streaming voice conversations against agents",
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&agentID, "agent-id", "", "Agent ID for the session")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "WebSocket endpoint URL")
	rootCmd.PersistentFlags().StringVar(&userName, "user-name", "", "User name sent in session context")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(numbersCmd())
	rootCmd.AddCommand(adaptCmd())
	rootCmd.AddCommand(devicesCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		voicechat.GetGlobalLogger().WithError(err).Fatal("CLI execution failed")
	}
}

func buildConfig() *voicechat.ChatConfig {
	config := voicechat.NewChatConfig()
	if endpoint != "" {
		config.WsEndpoint = endpoint
	}
	if userName != "" {
		config.UserName = userName
	}
	if verbose {
		config.DebugLevel = "DEBUG"
		config.DebugWebsocket = true
		logConfig := voicechat.DefaultLogConfig()
		logConfig.Level = voicechat.DebugLevel
		voicechat.SetGlobalLogger(voicechat.NewChatLogger(logConfig))
	}
	return config
}

func chatCmd() *cobra.Command {
	var recordPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start a live voice chat session",
		Long:  "Stream microphone audio to an agent and play its replies until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			if agentID == "" {
				fmt.Println("--agent-id is required")
				os.Exit(1)
			}

			config := buildConfig()
			if issues := config.Validate(); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Printf("Config issue: %s\n", issue)
				}
				os.Exit(1)
			}

			client := voicechat.NewVoiceChatClient(config)
			client.AddTextHandler(voicechat.CreatePrintTextHandler(os.Stdout))
			client.AddErrorHandler(voicechat.CreateErrorLoggingHandler("chat"))
			client.AddStatusHandler(voicechat.CreateStatusLoggingHandler(nil))

			var recorded []byte
			var recordMu sync.Mutex
			if recordPath != "" {
				client.AddAudioHandler(func(pcm []byte) {
					recordMu.Lock()
					recorded = append(recorded, pcm...)
					recordMu.Unlock()
				})
			}

			if err := client.Start(voicechat.AgentTarget{AgentID: agentID}); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to start voice chat")
			}
			fmt.Printf("🎧 Voice chat active against agent %s - Ctrl-C to stop\n", agentID)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			if duration > 0 {
				select {
				case <-stop:
				case <-time.After(time.Duration(duration * float64(time.Second))):
				}
			} else {
				<-stop
			}

			client.Stop()

			if transcript := client.Transcript().Lines(); len(transcript) > 0 {
				fmt.Println("\nTranscript:")
				for _, line := range transcript {
					fmt.Printf("  %s\n", line)
				}
			}
			if dropped := client.DroppedFrames(); dropped > 0 {
				fmt.Printf("Dropped %d capture frames\n", dropped)
			}
			if recordPath != "" && len(recorded) > 0 {
				if err := voicechat.WriteWAVFile(recordPath, recorded, config.TransportRate); err != nil {
					fmt.Printf("Failed to write %s: %v\n", recordPath, err)
				} else {
					fmt.Printf("Agent audio written to %s\n", recordPath)
				}
			}
			fmt.Println("Voice chat stopped")
		},
	}

	cmd.Flags().Float64VarP(&duration, "duration", "d", 0, "Session duration in seconds (0 = until Ctrl-C)")
	cmd.Flags().StringVar(&recordPath, "record", "", "Write inbound agent audio to a WAV file")
	return cmd
}

func numbersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numbers",
		Short: "Manage telephony number assignments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available telephony numbers",
		Run: func(cmd *cobra.Command, args []string) {
			service := numberService()
			numbers, err := service.ListNumbers()
			if err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to list numbers")
			}
			if len(numbers) == 0 {
				fmt.Println("No numbers available")
				return
			}
			for _, n := range numbers {
				name := n.FriendlyName
				if name == "" {
					name = "No name"
				}
				fmt.Printf("%s  %s - %s\n", n.SID, n.Number, name)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "assign <sid>",
		Short: "Assign a number to the agent",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireAgentID()
			service := numberService()
			if err := service.AssignNumber(agentID, args[0]); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to assign number")
			}
			fmt.Printf("✅ Number %s assigned to agent %s\n", args[0], agentID)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unassign <number>",
		Short: "Unassign a number from the agent",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			requireAgentID()
			service := numberService()
			if err := service.UnassignNumber(agentID, args[0]); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to unassign number")
			}
			fmt.Printf("📴 Number %s unassigned from agent %s\n", args[0], agentID)
		},
	})

	return cmd
}

func adaptCmd() *cobra.Command {
	var outPath string
	var rate int

	cmd := &cobra.Command{
		Use:   "adapt <config.json>",
		Short: "Adapt a telephony agent config for browser testing",
		Long:  "Rewrite a telephony-profile agent config (8kHz WAV, twilio providers) into the equivalent 16kHz PCM browser-test profile",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to read config")
			}

			var cfg voicechat.FullAgentConfig
			if err := json.Unmarshal(data, &cfg); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to parse config")
			}

			adapted := voicechat.TelephonyToWebConfig(cfg, &voicechat.AdaptOptions{TargetSampleRate: rate})
			out, err := json.MarshalIndent(adapted, "", "  ")
			if err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to encode config")
			}

			if outPath == "" {
				fmt.Println(string(out))
				return
			}
			if err := os.WriteFile(outPath, out, 0644); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to write config")
			}
			fmt.Printf("Adapted config written to %s\n", outPath)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().IntVar(&rate, "rate", 16000, "Target sample rate")
	return cmd
}

func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Inspect audio devices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			devices, err := voicechat.ListAudioDevices()
			if err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Failed to list devices")
			}
			for _, d := range devices {
				marker := " "
				if d.IsDefaultInput {
					marker = "*"
				}
				fmt.Printf("%s %2d  %-40s in:%d out:%d %.0fHz (%s)\n",
					marker, d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, d.HostAPI)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <id>",
		Short: "Validate an input device for capture",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			deviceID, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Invalid device id: %s\n", args[0])
				os.Exit(1)
			}
			config := buildConfig()
			if err := voicechat.ValidateInputDevice(deviceID, config.CaptureRate); err != nil {
				voicechat.GetGlobalLogger().WithError(err).Fatal("Device validation failed")
			}
			fmt.Printf("Device %d supports capture at %d Hz\n", deviceID, config.CaptureRate)
		},
	})

	return cmd
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			config := buildConfig()
			config.PrintConfig()
			if issues := config.Validate(); len(issues) > 0 {
				fmt.Println("\nIssues:")
				for _, issue := range issues {
					fmt.Printf("  - %s\n", issue)
				}
			}
		},
	}
}

func numberService() *voicechat.NumberService {
	config := buildConfig()
	var apiKey *string
	if key := os.Getenv("VOICECHAT_API_KEY"); key != "" {
		apiKey = &key
	}
	return voicechat.NewNumberService(config.APIBaseURL, apiKey)
}

func requireAgentID() {
	if agentID == "" {
		fmt.Println("--agent-id is required")
		os.Exit(1)
	}
}
