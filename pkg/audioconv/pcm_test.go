package audioconv

import (
	"encoding/binary"
	"testing"
)

func TestPCM16ToFloat32Range(t *testing.T) {
	in := []int16{0, 16384, -16384, 32767, -32768}
	out := PCM16ToFloat32(in)
	if len(out) != len(in) {
		t.Fatalf("length mismatch: got %d want %d", len(out), len(in))
	}
	if out[0] != 0 {
		t.Errorf("zero sample maps to %f", out[0])
	}
	if out[4] != -1.0 {
		t.Errorf("min sample maps to %f, want -1", out[4])
	}
	for i, v := range out {
		if v < -1.0 || v > 1.0 {
			t.Errorf("sample %d out of range: %f", i, v)
		}
	}
}

func TestFloat32ToPCM16Clips(t *testing.T) {
	out := Float32ToPCM16([]float32{2.0, -2.0, 0})
	if out[0] != 32767 {
		t.Errorf("positive overflow clips to %d, want 32767", out[0])
	}
	if out[1] != -32768 {
		t.Errorf("negative overflow clips to %d, want -32768", out[1])
	}
	if out[2] != 0 {
		t.Errorf("zero maps to %d", out[2])
	}
}

func TestDownmixInterleaved(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := DownmixInterleaved(stereo, 2)
	want := []float32{0.5, 0.5, 0}
	if len(mono) != len(want) {
		t.Fatalf("length %d, want %d", len(mono), len(want))
	}
	for i := range want {
		if mono[i] != want[i] {
			t.Errorf("frame %d: got %f want %f", i, mono[i], want[i])
		}
	}
}

func TestResampleLinearIdentity(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3}
	out := ResampleLinear(in, 16000, 16000)
	if &out[0] != &in[0] {
		t.Error("same-rate resample should return the input slice")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := make([]int16, 160)
	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(data) != 44+320 {
		t.Fatalf("wav size %d, want %d", len(data), 44+320)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if sr := binary.LittleEndian.Uint32(data[24:28]); sr != 16000 {
		t.Errorf("sample rate %d, want 16000", sr)
	}
	if ch := binary.LittleEndian.Uint16(data[22:24]); ch != 1 {
		t.Errorf("channels %d, want 1", ch)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bit depth %d, want 16", bits)
	}
	if sz := binary.LittleEndian.Uint32(data[40:44]); sz != 320 {
		t.Errorf("data size %d, want 320", sz)
	}
}

func TestEncodeWAVRejectsEmpty(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("expected error for empty buffer")
	}
	if _, err := EncodeWAV([]int16{1}, 0); err == nil {
		t.Error("expected error for zero rate")
	}
}
