package voice

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestTestRecordWritesWAV(t *testing.T) {
	h := &fakeHost{
		devices: []Device{inputDev(0, "Test Mic", true)},
		rates:   map[int]map[int]bool{0: {16000: true}},
		reader:  newScriptReader(speechFrames(10, 320), 320),
	}
	path := filepath.Join(t.TempDir(), "rec", "voice_test.wav")

	dev, rate, err := TestRecord(h, "", 1, path)
	if err != nil {
		t.Fatalf("TestRecord: %v", err)
	}
	if dev.Name != "Test Mic" || rate != 16000 {
		t.Errorf("recorded from %q at %d Hz", dev.Name, rate)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode recording: %v", err)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels = %d, want mono", dec.NumChans)
	}
	if dec.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", dec.SampleRate)
	}
	if len(buf.Data) != 16000 {
		t.Errorf("recorded %d samples, want one second at 16 kHz", len(buf.Data))
	}
	// The scripted speech frames land at the front of the capture.
	if buf.Data[0] != 3000 || buf.Data[1] != -3000 {
		t.Errorf("first samples = %d,%d, want the scripted signal", buf.Data[0], buf.Data[1])
	}
}

func TestTestRecordAudioUnavailable(t *testing.T) {
	h := &fakeHost{checkErr: errors.New("no audio subsystem")}
	_, _, err := TestRecord(h, "", 1, filepath.Join(t.TempDir(), "x.wav"))
	if !errors.Is(err, ErrDependencyMissing) {
		t.Errorf("err = %v, want ErrDependencyMissing", err)
	}
}

func TestTestRecordReadFailure(t *testing.T) {
	h := &fakeHost{
		devices: []Device{inputDev(0, "Mic", true)},
		rates:   map[int]map[int]bool{0: {16000: true}},
		reader:  newScriptReader(nil, 320),
	}
	h.reader.failAfter = errors.New("stream torn down")

	_, _, err := TestRecord(h, "", 1, filepath.Join(t.TempDir(), "x.wav"))
	if err == nil {
		t.Fatal("want an error when the stream dies mid-recording")
	}
}
