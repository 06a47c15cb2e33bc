package voice

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestRecord captures a fixed-duration mono recording from the negotiated
// device and writes it as 16-bit PCM WAV at path, for manual mic
// verification. Synchronous; usable while the engine is stopped.
func TestRecord(h Host, selector string, seconds int, path string) (Device, int, error) {
	if seconds <= 0 {
		seconds = 4
	}

	if err := h.Check(); err != nil {
		return Device{}, 0, fmt.Errorf("%w: audio: %v", ErrDependencyMissing, err)
	}

	dev, rate, err := Negotiate(h, selector)
	if err != nil {
		return Device{}, 0, err
	}

	frameSize := rate / 50 // 20 ms
	reader, err := h.Open(dev, rate, frameSize)
	if err != nil {
		return Device{}, 0, fmt.Errorf("%w: %v", ErrStreamOpen, err)
	}
	defer reader.Close()

	slog.Info("test recording", "device", dev.Name, "rate", rate,
		"dur", time.Duration(seconds)*time.Second)

	total := seconds * rate
	samples := make([]int16, 0, total)
	for len(samples) < total {
		frame, err := reader.Read()
		if err != nil {
			return Device{}, 0, fmt.Errorf("read frame: %w", err)
		}
		samples = append(samples, frame...)
	}
	samples = samples[:total]

	if err := writeWAV(path, samples, rate); err != nil {
		return Device{}, 0, err
	}
	return dev, rate, nil
}

func writeWAV(path string, samples []int16, rate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	return enc.Close()
}
