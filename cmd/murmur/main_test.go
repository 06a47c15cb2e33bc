package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"murmur/internal/config"
	"murmur/internal/voice"
)

func TestHandleLineQuit(t *testing.T) {
	a := &app{}
	for _, line := range []string{"exit", "quit", "EXIT"} {
		if _, quit := a.handleLine(line); !quit {
			t.Errorf("%q should request shutdown", line)
		}
	}
}

func TestHandleVoiceCommandRejectsForeignLines(t *testing.T) {
	a := &app{}
	for _, line := range []string{
		"hello there",
		"voice",   // no subcommand
		"voices start",
		"transcribe x.wav",
		"",
	} {
		if out, ok := a.handleVoiceCommand(line); ok {
			t.Errorf("%q matched the control grammar with output %q", line, out)
		}
	}
}

func TestBackendFactoryUnknownBackend(t *testing.T) {
	f := backendFactory(config.Config{Backend: "carrier-pigeon"})
	if _, err := f(); err == nil {
		t.Error("want an error for an unknown backend")
	}
}

func TestBackendFactoryMissingModel(t *testing.T) {
	f := backendFactory(config.Config{
		Backend:      "whisper",
		WhisperModel: filepath.Join(t.TempDir(), "absent.bin"),
	})
	_, err := f()
	if !errors.Is(err, voice.ErrDependencyMissing) {
		t.Errorf("err = %v, want ErrDependencyMissing", err)
	}
	if err == nil || !strings.Contains(err.Error(), "MURMUR_WHISPER_MODEL") {
		t.Errorf("error %v should tell the user which variable to set", err)
	}
}

func TestBackendFactoryMissingAPIKey(t *testing.T) {
	f := backendFactory(config.Config{Backend: "openai"})
	_, err := f()
	if !errors.Is(err, voice.ErrDependencyMissing) {
		t.Errorf("err = %v, want ErrDependencyMissing", err)
	}
}
