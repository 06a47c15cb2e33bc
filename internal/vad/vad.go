package vad

import "log/slog"

// Detector classifies one fixed-duration frame of PCM16 audio as speech or
// silence. Implementations carry no cross-frame state; endpointing lives in
// the capture layer.
type Detector interface {
	IsSpeech(frame []int16) bool
	Name() string
	Close() error
}

// Config selects and tunes a detector.
type Config struct {
	SampleRate int
	// Mode is the WebRTC aggressiveness (0-3).
	Mode int
	// RMSThreshold is the energy fallback cutoff in int16 amplitude units.
	RMSThreshold float64
}

// DefaultConfig matches the capture pipeline's tuning.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:   sampleRate,
		Mode:         2,
		RMSThreshold: 200,
	}
}

// Select resolves a detector at configuration time: the WebRTC classifier
// when the rate supports it, the energy fallback otherwise. The choice is
// final for the session and surfaced through Detector.Name.
func Select(cfg Config) Detector {
	d, err := NewWebRTC(cfg)
	if err != nil {
		slog.Debug("webrtc vad unavailable, using energy fallback",
			"rate", cfg.SampleRate, "err", err)
		return NewEnergy(cfg.RMSThreshold)
	}
	return d
}
