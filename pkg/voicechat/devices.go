package voicechat

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// AudioDevice represents an audio device
type AudioDevice struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	IsDefaultInput    bool
	IsDefaultOutput   bool
	HostAPI           string
}

// ListAudioDevices enumerates the host's audio devices. It manages its
// own portaudio lifetime, so it can be called while no session is
// active.
func ListAudioDevices() ([]AudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, WrapError(err, ErrCodeDeviceUnavailable)
	}
	defer portaudio.Terminate()

	defaultInput, _ := portaudio.DefaultInputDevice()
	defaultOutput, _ := portaudio.DefaultOutputDevice()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, WrapError(err, ErrCodeDeviceUnavailable)
	}

	out := make([]AudioDevice, 0, len(devices))
	for i, dev := range devices {
		hostAPIName := "Unknown"
		if dev.HostApi != nil {
			hostAPIName = dev.HostApi.Name
		}
		out = append(out, AudioDevice{
			ID:                i,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefaultInput:    defaultInput != nil && dev == defaultInput,
			IsDefaultOutput:   defaultOutput != nil && dev == defaultOutput,
			HostAPI:           hostAPIName,
		})
	}
	return out, nil
}

// ValidateInputDevice checks that a device id exists, has input
// channels and supports the requested sample rate.
func ValidateInputDevice(deviceID, sampleRate int) error {
	if err := portaudio.Initialize(); err != nil {
		return WrapError(err, ErrCodeDeviceUnavailable)
	}
	defer portaudio.Terminate()

	device, err := deviceByID(deviceID)
	if err != nil {
		return err
	}
	if device.MaxInputChannels < 1 {
		return NewDeviceError(fmt.Sprintf("device %d (%s) has no input channels", deviceID, device.Name))
	}
	if float64(sampleRate) > device.DefaultSampleRate*2 {
		return NewDeviceError(fmt.Sprintf("device %d (%s) does not support %d Hz", deviceID, device.Name, sampleRate))
	}
	return nil
}

// deviceByID resolves a portaudio device by list index. Caller must
// hold an active portaudio initialization.
func deviceByID(deviceID int) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, WrapError(err, ErrCodeDeviceUnavailable)
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, NewDeviceError(fmt.Sprintf("no audio device with id %d", deviceID))
	}
	return devices[deviceID], nil
}
