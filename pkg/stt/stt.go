package stt

import "context"

// Fragment is one piece of recognized text with its timing inside the
// submitted audio.
type Fragment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

// Result holds everything a backend recognized in one audio segment.
type Result struct {
	Fragments []Fragment
	Language  string // detected or forced
}

// Backend converts one utterance into text. Input is mono normalized
// float32 in [-1, 1] at 16 kHz; output is the ordered fragment list the
// pipeline concatenates.
type Backend interface {
	Transcribe(ctx context.Context, pcm16k []float32, language string) (Result, error)
	Name() string
	Close() error
}
