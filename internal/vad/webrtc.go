package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// webrtcRates are the only sample rates the WebRTC classifier accepts.
var webrtcRates = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}

// WebRTC wraps the WebRTC voice-activity classifier.
type WebRTC struct {
	vad  *webrtcvad.VAD
	rate int
}

func NewWebRTC(cfg Config) (*WebRTC, error) {
	if !webrtcRates[cfg.SampleRate] {
		return nil, fmt.Errorf("sample rate %d not supported by webrtc vad", cfg.SampleRate)
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("create webrtc vad: %w", err)
	}

	mode := cfg.Mode
	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("set vad mode: %w", err)
	}

	return &WebRTC{vad: v, rate: cfg.SampleRate}, nil
}

func (w *WebRTC) Name() string { return "webrtc" }

func (w *WebRTC) Close() error { return nil }

// IsSpeech classifies one 10/20/30 ms frame. Classifier errors count as
// silence.
func (w *WebRTC) IsSpeech(frame []int16) bool {
	active, err := w.vad.Process(w.rate, int16ToLE(frame))
	if err != nil {
		return false
	}
	return active
}

func int16ToLE(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
