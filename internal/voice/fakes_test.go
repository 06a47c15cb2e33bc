package voice

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeHost scripts device enumeration and stream behavior for tests.
type fakeHost struct {
	mu       sync.Mutex
	devices  []Device
	rates    map[int]map[int]bool // device index -> accepted rates
	checkErr error
	devErr   error
	tried    []int
	reader   *scriptReader
	openErr  error
}

func (h *fakeHost) Check() error { return h.checkErr }
func (h *fakeHost) Close() error { return nil }

func (h *fakeHost) Devices() ([]Device, error) {
	if h.devErr != nil {
		return nil, h.devErr
	}
	return h.devices, nil
}

func (h *fakeHost) TryOpen(dev Device, rate int) error {
	h.mu.Lock()
	h.tried = append(h.tried, rate)
	h.mu.Unlock()
	if h.rates[dev.Index][rate] {
		return nil
	}
	return errors.New("rate not supported")
}

func (h *fakeHost) Open(dev Device, rate, frameSize int) (FrameReader, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	if h.reader == nil {
		h.reader = newScriptReader(nil, frameSize)
	}
	h.reader.frameSize = frameSize
	return h.reader, nil
}

func (h *fakeHost) triedRates() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.tried))
	copy(out, h.tried)
	return out
}

// scriptReader plays back a fixed frame sequence, then serves silence (or a
// scripted error) forever.
type scriptReader struct {
	mu        sync.Mutex
	frames    [][]int16
	pos       int
	frameSize int
	failAfter error // returned once the script is exhausted
	closed    bool
}

func newScriptReader(frames [][]int16, frameSize int) *scriptReader {
	return &scriptReader{frames: frames, frameSize: frameSize}
}

func (r *scriptReader) Read() ([]int16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("reader closed")
	}
	if r.pos < len(r.frames) {
		f := r.frames[r.pos]
		r.pos++
		return f, nil
	}
	if r.failAfter != nil {
		return nil, r.failAfter
	}
	// Script exhausted: behave like an idle microphone.
	time.Sleep(time.Millisecond)
	return make([]int16, r.frameSize), nil
}

func (r *scriptReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func inputDev(index int, name string, def bool) Device {
	return Device{Index: index, Name: name, MaxInputChannels: 1, DefaultSampleRate: 48000, Default: def}
}

func outputDev(index int, name string) Device {
	return Device{Index: index, Name: name, MaxInputChannels: 0}
}

// speechFrames builds n frames of a loud square-ish signal that clears the
// energy threshold.
func speechFrames(n, frameSize int) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		f := make([]int16, frameSize)
		for j := range f {
			if j%2 == 0 {
				f[j] = 3000
			} else {
				f[j] = -3000
			}
		}
		out[i] = f
	}
	return out
}

func silenceFrames(n, frameSize int) [][]int16 {
	out := make([][]int16, n)
	for i := range out {
		out[i] = make([]int16, frameSize)
	}
	return out
}

func concatFrames(seqs ...[][]int16) [][]int16 {
	var out [][]int16
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

func fmtRates(rates []int) string { return fmt.Sprint(rates) }
