package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config is the environment-derived configuration, read once at boot and
// immutable afterwards.
type Config struct {
	// InputDevice is the device selector override (index or name fragment).
	InputDevice string
	// Backend selects the transcription backend: "whisper" or "openai".
	Backend string
	// WhisperModel is the ggml model path for the local backend, or the
	// model identifier for the remote one.
	WhisperModel string
	// Compute is the precision hint, logged at startup.
	Compute  string
	Language string
	// BusURL, when set, forwards recognized text over a websocket.
	BusURL string
	// ProxyAddr, when set, routes the remote backend through SOCKS5.
	ProxyAddr string
	// ChimePath is an optional MP3 cue played when listening starts.
	ChimePath string
	// TTS enables spoken acknowledgements.
	TTS bool
	// DataDir holds diagnostics output such as the test recording.
	DataDir string
	// WhisperThreads caps decoder threads; 0 means NumCPU.
	WhisperThreads int
	OpenAIKey      string
}

// FromEnv reads MURMUR_* variables, applying defaults where unset.
func FromEnv() Config {
	home, _ := os.UserHomeDir()

	return Config{
		InputDevice:    os.Getenv("MURMUR_INPUT_DEVICE"),
		Backend:        getenv("MURMUR_STT_BACKEND", "whisper"),
		WhisperModel:   getenv("MURMUR_WHISPER_MODEL", "models/ggml-small.en.bin"),
		Compute:        getenv("MURMUR_WHISPER_COMPUTE", "int8"),
		Language:       getenv("MURMUR_LANGUAGE", "en"),
		BusURL:         os.Getenv("MURMUR_BUS_URL"),
		ProxyAddr:      os.Getenv("MURMUR_PROXY"),
		ChimePath:      os.Getenv("MURMUR_CHIME"),
		TTS:            os.Getenv("MURMUR_TTS") == "1",
		DataDir:        getenv("MURMUR_DATA_DIR", filepath.Join(home, ".murmur")),
		WhisperThreads: getenvInt("MURMUR_WHISPER_THREADS", 0),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
	}
}

// TestRecordingPath is the well-known location of the mic self-test output.
func (c Config) TestRecordingPath() string {
	return filepath.Join(c.DataDir, "voice_test.wav")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
