package voice

import (
	"fmt"
	"strconv"
	"strings"
)

// Device identifies one enumerated audio input. Immutable once chosen for a
// session.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate int
	Default           bool
}

// FrameReader delivers fixed-size PCM16 mono frames from an open input
// stream. Read blocks for at most one frame duration.
type FrameReader interface {
	Read() ([]int16, error)
	Close() error
}

// Host abstracts the audio subsystem so negotiation and the engine can be
// driven by fakes in tests. The production implementation wraps PortAudio.
type Host interface {
	// Check verifies the audio facility is usable at all.
	Check() error
	// Devices enumerates every device, input-capable or not.
	Devices() ([]Device, error)
	// TryOpen opens and immediately closes a trial input stream.
	TryOpen(dev Device, rate int) error
	// Open starts an input stream delivering frames of frameSize samples.
	Open(dev Device, rate, frameSize int) (FrameReader, error)
	Close() error
}

// rateCandidates is the fixed negotiation order. 16 kHz avoids resampling
// entirely; the other two are what consumer hardware actually offers.
var rateCandidates = [3]int{16000, 48000, 44100}

// Negotiate resolves an input device and a working sample rate. The selector
// may be a device index, a case-insensitive name fragment, or empty (system
// default, then first input-capable device).
func Negotiate(h Host, selector string) (Device, int, error) {
	dev, err := findDevice(h, selector)
	if err != nil {
		return Device{}, 0, err
	}

	for _, rate := range rateCandidates {
		if err := h.TryOpen(dev, rate); err == nil {
			return dev, rate, nil
		}
	}
	return Device{}, 0, fmt.Errorf("device %q: %w", dev.Name, ErrStreamOpen)
}

func findDevice(h Host, selector string) (Device, error) {
	devices, err := h.Devices()
	if err != nil {
		return Device{}, fmt.Errorf("enumerate devices: %w", err)
	}

	selector = strings.TrimSpace(selector)
	if selector != "" {
		if idx, err := strconv.Atoi(selector); err == nil {
			if idx >= 0 && idx < len(devices) && devices[idx].MaxInputChannels > 0 {
				return devices[idx], nil
			}
		}
		frag := strings.ToLower(selector)
		for _, d := range devices {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), frag) {
				return d, nil
			}
		}
	}

	for _, d := range devices {
		if d.Default && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return Device{}, ErrDeviceNotFound
}

// InputDevices filters an enumeration down to input-capable devices, for
// the `voice devices` diagnostic.
func InputDevices(h Host) ([]Device, error) {
	devices, err := h.Devices()
	if err != nil {
		return nil, err
	}
	var in []Device
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			in = append(in, d)
		}
	}
	return in, nil
}
