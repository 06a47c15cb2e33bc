package voice

import (
	"math"
	"testing"

	"murmur/pkg/util"
)

func TestResample16kIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4, 5}
	out := Resample16k(in, 16000)
	if &out[0] != &in[0] {
		t.Error("16 kHz input should be returned without copying")
	}
	if !util.EqualSlices(out, in) {
		t.Errorf("out = %v, want %v", out, in)
	}
}

func TestResample16kLength(t *testing.T) {
	for _, tc := range []struct {
		rate, n, want int
	}{
		{48000, 48000, 16000}, // one second
		{44100, 44100, 16000},
		{48000, 960, 320},  // one 20 ms frame
		{44100, 882, 320},  // one 20 ms frame
		{48000, 24000, 8000},
		{44100, 22050, 8000},
	} {
		out := Resample16k(make([]int16, tc.n), tc.rate)
		if len(out) != tc.want {
			t.Errorf("Resample16k(%d samples @ %d Hz): len = %d, want %d",
				tc.n, tc.rate, len(out), tc.want)
		}
	}
}

func TestResample16kEndpointsPreserved(t *testing.T) {
	in := make([]int16, 4800)
	for i := range in {
		in[i] = int16(i % 1000)
	}
	in[0] = -12345
	in[len(in)-2] = 23456
	in[len(in)-1] = 23456

	out := Resample16k(in, 48000)
	if out[0] != in[0] {
		t.Errorf("first sample = %d, want %d", out[0], in[0])
	}
	last := out[len(out)-1]
	if last < 23455 || last > 23456 {
		t.Errorf("last sample = %d, want ~23456", last)
	}
}

func TestResample16kConstantSignal(t *testing.T) {
	in := make([]int16, 44100)
	for i := range in {
		in[i] = 777
	}
	out := Resample16k(in, 44100)
	want := make([]int16, len(out))
	for i := range want {
		want[i] = 777
	}
	if !util.CloseSlices(out, want, 1) {
		t.Error("constant signal should survive interpolation")
	}
}

func TestResample16kRamp(t *testing.T) {
	// A linear ramp must stay linear under linear interpolation.
	in := make([]int16, 4410)
	for i := range in {
		in[i] = int16(i)
	}
	out := Resample16k(in, 44100)

	want := make([]int16, len(out))
	step := float64(len(in)-1) / float64(len(out)-1)
	for i := range want {
		want[i] = int16(math.Round(float64(i) * step))
	}
	if !util.CloseSlices(out, want, 1) {
		t.Error("ramp not preserved within one LSB")
	}
}

func TestResample16kEmpty(t *testing.T) {
	if out := Resample16k(nil, 48000); len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}
