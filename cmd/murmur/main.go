package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"murmur/internal/config"
	"murmur/internal/dispatch"
	"murmur/internal/ipc"
	"murmur/internal/notify"
	"murmur/internal/proxy"
	"murmur/internal/tts"
	"murmur/internal/voice"
	"murmur/pkg/audioconv"
	"murmur/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

const banner = `murmur — voice-command front end
Examples:
  voice devices | voice start | voice start 2 | voice start macbook microphone
  voice test | voice test 8 | voice status | voice stop
  transcribe recording.wav
Type 'exit' to quit.
`

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	autoStart := cli.BoolP("start", "s", false, "Start the voice engine immediately")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	cfg := config.FromEnv()

	host := voice.NewPortHost()
	defer host.Close()

	a := &app{cfg: cfg, host: host}

	sinks := dispatch.Tee{dispatch.Func(a.consumeUtterance)}
	if cfg.BusURL != "" {
		bus, err := dispatch.DialBus(cfg.BusURL)
		if err != nil {
			log.Error("Failed to connect to command bus", "url", cfg.BusURL, "err", err)
			os.Exit(1)
		}
		defer bus.Close()
		sinks = append(sinks, bus)
	}

	engCfg := voice.DefaultConfig()
	engCfg.Selector = cfg.InputDevice
	engCfg.Language = cfg.Language
	a.engine = voice.New(host, backendFactory(cfg), sinks, engCfg)

	if err := ipc.StartServer(a.handleIPC); err != nil {
		log.Error("Failed to start control socket", "err", err)
		os.Exit(1)
	}

	log.Info("Boot up - successful",
		"backend", cfg.Backend, "model", cfg.WhisperModel, "compute", cfg.Compute)

	if *autoStart {
		if out := a.voiceStart(""); out != "" {
			fmt.Println(out)
		}
	}

	fmt.Print(banner)
	repl(a)
	a.engine.StopWait()
}

func repl(a *app) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			out, quit := a.handleLine(line)
			if out != "" {
				fmt.Println(out)
			}
			if quit {
				fmt.Println("bye.")
				return
			}
		}
		fmt.Print("> ")
	}
	fmt.Println("\nbye.")
}

// backendFactory defers backend construction to session start so a missing
// model aborts `voice start` rather than boot.
func backendFactory(cfg config.Config) voice.BackendFactory {
	return func() (stt.Backend, error) {
		switch cfg.Backend {
		case "openai":
			if cfg.OpenAIKey == "" {
				return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", voice.ErrDependencyMissing)
			}
			var hc *http.Client
			if cfg.ProxyAddr != "" {
				var err error
				hc, err = proxy.NewSocksClient(cfg.ProxyAddr)
				if err != nil {
					return nil, fmt.Errorf("dial socks proxy %s: %w", cfg.ProxyAddr, err)
				}
			}
			model := cfg.WhisperModel
			if strings.HasSuffix(model, ".bin") {
				// Local model path left at its default; use the API default.
				model = ""
			}
			return stt.NewRemote(cfg.OpenAIKey, model, hc)
		case "whisper", "":
			if _, err := os.Stat(cfg.WhisperModel); err != nil {
				return nil, fmt.Errorf("%w: whisper model %s not found (set MURMUR_WHISPER_MODEL)",
					voice.ErrDependencyMissing, cfg.WhisperModel)
			}
			return stt.NewWhisper(cfg.WhisperModel, cfg.WhisperThreads)
		default:
			return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
		}
	}
}

type app struct {
	cfg    config.Config
	host   voice.Host
	engine *voice.Engine
}

// consumeUtterance is the local dispatch sink: print the recognized text
// and run it through the same control grammar the prompt uses, so "voice
// stop" works spoken.
func (a *app) consumeUtterance(text string) error {
	fmt.Printf("\n🎤 %s\n> ", text)
	if out, _ := a.handleVoiceCommand(text); out != "" {
		fmt.Println(out)
		fmt.Print("> ")
	}
	return nil
}

// handleLine processes one typed line. The second return value requests
// shutdown.
func (a *app) handleLine(line string) (string, bool) {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return "", true
	}

	if out, ok := a.handleVoiceCommand(line); ok {
		return out, false
	}

	fields := strings.Fields(line)
	if len(fields) == 2 && strings.EqualFold(fields[0], "transcribe") {
		return a.transcribeFile(fields[1]), false
	}

	return "Sorry, I didn't get that.", false
}

// handleVoiceCommand matches the fixed engine-control grammar. Anything
// else is not ours to interpret.
func (a *app) handleVoiceCommand(line string) (string, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) < 2 || fields[0] != "voice" {
		return "", false
	}

	rest := strings.Join(fields[2:], " ")
	switch fields[1] {
	case "start", "on":
		return a.voiceStart(rest), true
	case "stop", "off":
		return a.voiceStop(), true
	case "status":
		return a.engine.Status().String(), true
	case "devices":
		return a.listDevices(), true
	case "test":
		seconds := 4
		if rest != "" {
			if n, err := strconv.Atoi(rest); err == nil {
				seconds = n
			}
		}
		return a.testRecord(seconds), true
	}
	return "", false
}

func (a *app) voiceStart(selector string) string {
	if a.engine.Running() {
		return "[voice] already running."
	}
	if err := a.engine.Start(selector); err != nil {
		return fmt.Sprintf("[voice] start failed: %v", err)
	}

	if a.cfg.ChimePath != "" {
		go func() {
			if err := notify.Chime(a.cfg.ChimePath); err != nil {
				log.Warn("Chime failed", "err", err)
			}
		}()
	}
	a.speak("Voice started.")
	return "[voice] started. Listening…"
}

func (a *app) voiceStop() string {
	if !a.engine.Running() {
		return "[voice] already stopped."
	}
	a.engine.Stop()
	a.speak("Voice stopped.")
	return "[voice] stopping…"
}

func (a *app) listDevices() string {
	devices, err := voice.InputDevices(a.host)
	if err != nil {
		return fmt.Sprintf("[voice] could not list devices: %v", err)
	}
	if len(devices) == 0 {
		return "[voice] no input devices found."
	}

	var b strings.Builder
	b.WriteString("Input devices:\n")
	for _, d := range devices {
		def := ""
		if d.Default {
			def = " (default)"
		}
		fmt.Fprintf(&b, "  [%d] %s  (in=%d, default_sr=%d)%s\n",
			d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate, def)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *app) testRecord(seconds int) string {
	path := a.cfg.TestRecordingPath()
	dev, rate, err := voice.TestRecord(a.host, a.cfg.InputDevice, seconds, path)
	if err != nil {
		return fmt.Sprintf("[voice] test_record failed: %v", err)
	}
	return fmt.Sprintf("[voice] recorded %ds from %q at %d Hz. Wrote %s — play it to confirm the mic works.",
		seconds, dev.Name, rate, path)
}

func (a *app) transcribeFile(path string) string {
	pcm, err := audioconv.DecodeFile16k(path)
	if err != nil {
		return fmt.Sprintf("[stt] decode failed: %v", err)
	}

	backend, err := backendFactory(a.cfg)()
	if err != nil {
		return fmt.Sprintf("[stt] backend unavailable: %v", err)
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	res, err := backend.Transcribe(ctx, pcm, a.cfg.Language)
	if err != nil {
		return fmt.Sprintf("[stt] transcription failed: %v", err)
	}

	var parts []string
	for _, f := range res.Fragments {
		parts = append(parts, strings.TrimSpace(f.Text))
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return "[stt] no speech recognized."
	}
	return text
}

func (a *app) speak(msg string) {
	if !a.cfg.TTS {
		return
	}
	go func() {
		if err := tts.Speak(msg, a.cfg.Language); err != nil {
			log.Warn("TTS failed", "err", err)
		}
	}()
}

func (a *app) handleIPC(req ipc.Request) ipc.Response {
	switch req.Cmd {
	case "start":
		return ipc.Response{OK: true, Output: a.voiceStart(req.Arg)}
	case "stop":
		return ipc.Response{OK: true, Output: a.voiceStop()}
	case "status":
		return ipc.Response{OK: true, Output: a.engine.Status().String()}
	case "devices":
		return ipc.Response{OK: true, Output: a.listDevices()}
	case "test":
		seconds := 4
		if n, err := strconv.Atoi(req.Arg); err == nil && req.Arg != "" {
			seconds = n
		}
		return ipc.Response{OK: true, Output: a.testRecord(seconds)}
	default:
		log.Warn("Unknown control command", "cmd", req.Cmd)
		return ipc.Response{OK: false, Output: fmt.Sprintf("unknown command %q", req.Cmd)}
	}
}
