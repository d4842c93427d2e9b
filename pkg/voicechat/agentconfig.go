package voicechat

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// FullAgentConfig models the agent configuration produced by the
// console. Only the fields touched by the web-test adaptation are
// typed; provider-specific blobs stay as raw maps.
type FullAgentConfig struct {
	AgentConfig  AgentConfig            `json:"agent_config"`
	AgentPrompts map[string]interface{} `json:"agent_prompts,omitempty"`
}

type AgentConfig struct {
	AgentName           string       `json:"agent_name"`
	AgentType           string       `json:"agent_type"`
	AgentWelcomeMessage string       `json:"agent_welcome_message,omitempty"`
	Tasks               []TaskConfig `json:"tasks"`
}

type TaskConfig struct {
	TaskType        string                 `json:"task_type,omitempty"`
	Toolchain       *ToolchainConfig       `json:"toolchain,omitempty"`
	ToolsConfig     ToolsConfig            `json:"tools_config"`
	TaskSettings    map[string]interface{} `json:"task_config,omitempty"`
	WebTestMetadata *WebTestMetadata       `json:"_web_test_metadata,omitempty"`
}

type ToolchainConfig struct {
	Execution string     `json:"execution"`
	Pipelines [][]string `json:"pipelines"`
}

type ToolsConfig struct {
	LlmAgent      *LlmAgentConfig    `json:"llm_agent,omitempty"`
	Synthesizer   *SynthesizerConfig `json:"synthesizer,omitempty"`
	Transcriber   *TranscriberConfig `json:"transcriber,omitempty"`
	Input         *InputOutputConfig `json:"input,omitempty"`
	Output        *InputOutputConfig `json:"output,omitempty"`
	TelephonyMeta *TelephonyMeta     `json:"telephony_meta,omitempty"`
	APITools      interface{}        `json:"api_tools,omitempty"`
}

type InputOutputConfig struct {
	Provider     string `json:"provider"`
	Format       string `json:"format"`
	SamplingRate int    `json:"sampling_rate"`
}

type SynthesizerConfig struct {
	Provider       string                 `json:"provider"`
	ProviderConfig map[string]interface{} `json:"provider_config,omitempty"`
	Stream         bool                   `json:"stream"`
	BufferSize     int                    `json:"buffer_size"`
	AudioFormat    string                 `json:"audio_format"`
	SamplingRate   int                    `json:"sampling_rate"`
	Caching        bool                   `json:"caching"`
}

type TranscriberConfig struct {
	Model        string `json:"model,omitempty"`
	Language     string `json:"language"`
	Stream       bool   `json:"stream"`
	SamplingRate int    `json:"sampling_rate"`
	Encoding     string `json:"encoding"`
	Endpointing  int    `json:"endpointing,omitempty"`
	Task         string `json:"task,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type LlmAgentConfig struct {
	AgentFlowType string     `json:"agent_flow_type"`
	AgentType     string     `json:"agent_type"`
	LLMConfig     *LLMConfig `json:"llm_config,omitempty"`
}

type LLMConfig struct {
	Model         string  `json:"model,omitempty"`
	Provider      string  `json:"provider,omitempty"`
	Family        string  `json:"family"`
	AgentFlowType string  `json:"agent_flow_type"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
}

// TelephonyMeta preserves the original telephony-oriented settings when
// a config is adapted for browser testing, so the adaptation is
// reversible.
type TelephonyMeta struct {
	Input       *TelephonyEndpointMeta `json:"input,omitempty"`
	Output      *TelephonyEndpointMeta `json:"output,omitempty"`
	Synthesizer *TelephonySynthMeta    `json:"synthesizer,omitempty"`
}

type TelephonyEndpointMeta struct {
	Provider     string `json:"provider"`
	Format       string `json:"format"`
	SamplingRate *int   `json:"sampling_rate"`
}

type TelephonySynthMeta struct {
	AudioFormat string `json:"audio_format"`
}

type WebTestMetadata struct {
	AdaptedFor string `json:"adapted_for"`
	SampleRate int    `json:"sample_rate"`
	Timestamp  string `json:"timestamp"`
}

// AdaptOptions tunes TelephonyToWebConfig. Zero value means 16 kHz and
// telephony metadata preserved.
type AdaptOptions struct {
	TargetSampleRate  int
	DropTelephonyMeta bool
}

// Clone deep-copies the config through its JSON form.
func (c FullAgentConfig) Clone() FullAgentConfig {
	data, err := json.Marshal(c)
	if err != nil {
		return c
	}
	var out FullAgentConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return c
	}
	return out
}

// TelephonyToWebConfig converts a telephony-profile agent config (8 kHz
// WAV, twilio providers) into the equivalent browser-test profile:
// pcm_<rate> formats, default providers, streaming enabled, synthesizer
// buffer rescaled. The input is never mutated; original telephony
// fields are preserved under a telephony_meta side channel unless
// dropped via options.
func TelephonyToWebConfig(teleConfig FullAgentConfig, opts *AdaptOptions) FullAgentConfig {
	sampleRate := 16000
	keepMeta := true
	if opts != nil {
		if opts.TargetSampleRate > 0 {
			sampleRate = opts.TargetSampleRate
		}
		keepMeta = !opts.DropTelephonyMeta
	}

	cfg := teleConfig.Clone()
	pcmFormat := fmt.Sprintf("pcm_%d", sampleRate)

	cfg.AgentConfig.AgentType = "voice_web"
	name := cfg.AgentConfig.AgentName
	if name == "" {
		name = "TelephonyAgent"
	}
	cfg.AgentConfig.AgentName = name + "_webtest"

	for i := range cfg.AgentConfig.Tasks {
		task := &cfg.AgentConfig.Tasks[i]

		if task.Toolchain == nil {
			task.Toolchain = &ToolchainConfig{
				Execution: "parallel",
				Pipelines: [][]string{{"transcriber", "llm", "synthesizer"}},
			}
		}

		tools := &task.ToolsConfig

		if tools.Input == nil {
			tools.Input = &InputOutputConfig{}
		}
		adaptEndpoint(tools.Input, tools, pcmFormat, sampleRate, keepMeta, false)

		if tools.Output == nil {
			tools.Output = &InputOutputConfig{}
		}
		adaptEndpoint(tools.Output, tools, pcmFormat, sampleRate, keepMeta, true)

		if tools.Synthesizer == nil {
			tools.Synthesizer = &SynthesizerConfig{}
		}
		adaptSynthesizer(tools.Synthesizer, tools, pcmFormat, sampleRate, keepMeta)

		if tools.LlmAgent == nil {
			tools.LlmAgent = &LlmAgentConfig{}
		}
		adaptLLM(tools.LlmAgent)

		if tools.Transcriber == nil {
			tools.Transcriber = &TranscriberConfig{}
		}
		adaptTranscriber(tools.Transcriber, sampleRate)

		task.WebTestMetadata = &WebTestMetadata{
			AdaptedFor: "web",
			SampleRate: sampleRate,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		}
	}

	return cfg
}

func isTelephonyEndpoint(ep *InputOutputConfig) bool {
	return ep.Provider == "twilio" || strings.Contains(strings.ToLower(ep.Format), "wav")
}

func adaptEndpoint(ep *InputOutputConfig, tools *ToolsConfig, pcmFormat string, sampleRate int, keepMeta, isOutput bool) {
	if isTelephonyEndpoint(ep) {
		if keepMeta {
			if tools.TelephonyMeta == nil {
				tools.TelephonyMeta = &TelephonyMeta{}
			}
			meta := &TelephonyEndpointMeta{Provider: ep.Provider, Format: ep.Format}
			if ep.SamplingRate > 0 {
				rate := ep.SamplingRate
				meta.SamplingRate = &rate
			}
			if isOutput {
				tools.TelephonyMeta.Output = meta
			} else {
				tools.TelephonyMeta.Input = meta
			}
		}
		ep.Provider = "default"
		ep.Format = pcmFormat
		ep.SamplingRate = sampleRate
		return
	}

	if ep.Format == "" {
		ep.Format = pcmFormat
	}
	if ep.SamplingRate == 0 {
		ep.SamplingRate = sampleRate
	}
}

func adaptSynthesizer(synth *SynthesizerConfig, tools *ToolsConfig, pcmFormat string, sampleRate int, keepMeta bool) {
	if strings.Contains(strings.ToLower(synth.AudioFormat), "wav") {
		if keepMeta {
			if tools.TelephonyMeta == nil {
				tools.TelephonyMeta = &TelephonyMeta{}
			}
			tools.TelephonyMeta.Synthesizer = &TelephonySynthMeta{AudioFormat: synth.AudioFormat}
		}
		synth.AudioFormat = pcmFormat
		synth.SamplingRate = sampleRate
	} else if synth.AudioFormat == "" {
		synth.AudioFormat = pcmFormat
	}

	if synth.SamplingRate == 0 {
		synth.SamplingRate = sampleRate
	}

	// Telephony buffers are sized for an 8 kHz carrier path; scale them
	// down for the browser profile, floored at 16.
	if synth.BufferSize > 80 {
		rescaled := int(math.Round(float64(synth.BufferSize) * 2 / 3))
		if rescaled < 16 {
			rescaled = 16
		}
		synth.BufferSize = rescaled
	} else if synth.BufferSize == 0 {
		synth.BufferSize = 40
	}

	synth.Stream = true
}

func adaptLLM(llm *LlmAgentConfig) {
	if llm.AgentType == "" {
		llm.AgentType = "simple_llm_agent"
	}
	if llm.AgentFlowType == "" {
		llm.AgentFlowType = "streaming"
	}
	if llm.LLMConfig == nil {
		llm.LLMConfig = &LLMConfig{}
	}
	if llm.LLMConfig.AgentFlowType == "" {
		llm.LLMConfig.AgentFlowType = "streaming"
	}
	if llm.LLMConfig.Family == "" {
		llm.LLMConfig.Family = "openai"
	}
}

func adaptTranscriber(tr *TranscriberConfig, sampleRate int) {
	tr.Stream = true
	if tr.Encoding == "" {
		tr.Encoding = "linear16"
	}
	if tr.Language == "" {
		tr.Language = "en"
	}
	if tr.SamplingRate == 0 {
		tr.SamplingRate = sampleRate
	}
}
