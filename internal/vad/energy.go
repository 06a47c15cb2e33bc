package vad

import "math"

// Energy is the fallback strategy: a frame counts as speech when its
// root-mean-square amplitude exceeds a fixed threshold.
type Energy struct {
	threshold float64
}

func NewEnergy(threshold float64) *Energy {
	if threshold <= 0 {
		threshold = 200
	}
	return &Energy{threshold: threshold}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Close() error { return nil }

func (e *Energy) IsSpeech(frame []int16) bool {
	if len(frame) == 0 {
		return false
	}
	return RMS(frame) > e.threshold
}

// RMS computes root-mean-square amplitude in int16 units.
func RMS(frame []int16) float64 {
	var sum float64
	for _, s := range frame {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(frame)))
}
