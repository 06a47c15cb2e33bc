package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"murmur/internal/dispatch"
	"murmur/internal/vad"
	"murmur/pkg/audioconv"
	"murmur/pkg/stt"
)

// State is the engine lifecycle: Stopped → Starting → Running → Stopping →
// Stopped.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Config is the session-independent engine tuning. Immutable after New.
type Config struct {
	// Selector is the default device selector, usually the env override.
	Selector string
	Endpoint EndpointConfig
	// VADMode is the WebRTC aggressiveness (0-3).
	VADMode int
	// RMSThreshold tunes the energy fallback.
	RMSThreshold float64
	Language     string
	// SegmentQueue and TextQueue bound the two hand-off channels. Enqueue
	// never blocks; overflow drops the item and logs.
	SegmentQueue int
	TextQueue    int
}

func DefaultConfig() Config {
	return Config{
		Endpoint:     DefaultEndpointConfig(),
		VADMode:      2,
		RMSThreshold: 200,
		Language:     "en",
		SegmentQueue: 32,
		TextQueue:    64,
	}
}

// BackendFactory builds the transcription backend at start time. Returning
// an error that wraps ErrDependencyMissing marks a missing prerequisite;
// anything else is treated as a load failure.
type BackendFactory func() (stt.Backend, error)

// Engine owns the capture → transcribe → dispatch pipeline. One segment
// queue, one text queue, three workers; device and rate are negotiated once
// per session and read-only afterwards.
type Engine struct {
	host       Host
	newBackend BackendFactory
	sink       dispatch.Sink
	cfg        Config

	mu          sync.Mutex
	state       State
	lastErr     error
	device      Device
	rate        int
	vadName     string
	backendName string
	segQ        chan Segment
	txtQ        chan string
	cancel      context.CancelFunc
	wg          *sync.WaitGroup
}

func New(host Host, newBackend BackendFactory, sink dispatch.Sink, cfg Config) *Engine {
	if cfg.SegmentQueue <= 0 {
		cfg.SegmentQueue = 32
	}
	if cfg.TextQueue <= 0 {
		cfg.TextQueue = 64
	}
	return &Engine{host: host, newBackend: newBackend, sink: sink, cfg: cfg}
}

// Start negotiates a device, loads the backend and spawns the three
// workers. A no-op with a notice when already running.
func (e *Engine) Start(selector string) error {
	e.mu.Lock()
	if e.state != Stopped {
		e.mu.Unlock()
		slog.Warn("voice engine already running")
		return nil
	}
	e.state = Starting
	e.mu.Unlock()

	if selector == "" {
		selector = e.cfg.Selector
	}

	if err := e.host.Check(); err != nil {
		return e.abortStart(fmt.Errorf("%w: audio: %v", ErrDependencyMissing, err))
	}

	backend, err := e.newBackend()
	if err != nil {
		if !errors.Is(err, ErrDependencyMissing) {
			err = fmt.Errorf("%w: %v", ErrModelLoad, err)
		}
		return e.abortStart(err)
	}

	dev, rate, err := Negotiate(e.host, selector)
	if err != nil {
		backend.Close()
		return e.abortStart(err)
	}

	det := vad.Select(vad.Config{
		SampleRate:   rate,
		Mode:         e.cfg.VADMode,
		RMSThreshold: e.cfg.RMSThreshold,
	})
	sgm := NewSegmenter(det, rate, e.cfg.Endpoint)

	reader, err := e.host.Open(dev, rate, sgm.FrameSize())
	if err != nil {
		det.Close()
		backend.Close()
		return e.abortStart(fmt.Errorf("%w: %v", ErrStreamOpen, err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	e.mu.Lock()
	e.device, e.rate = dev, rate
	e.vadName, e.backendName = det.Name(), backend.Name()
	e.segQ = make(chan Segment, e.cfg.SegmentQueue)
	e.txtQ = make(chan string, e.cfg.TextQueue)
	e.cancel, e.wg = cancel, wg
	e.lastErr = nil
	e.state = Running
	e.mu.Unlock()

	wg.Add(3)
	go e.captureLoop(ctx, reader, sgm, det)
	go e.transcribeLoop(ctx, backend)
	go e.dispatchLoop(ctx)

	slog.Info("voice engine started",
		"device", dev.Name, "index", dev.Index, "rate", rate,
		"vad", det.Name(), "backend", backend.Name())
	return nil
}

func (e *Engine) abortStart(err error) error {
	e.mu.Lock()
	e.lastErr = err
	e.state = Stopped
	e.mu.Unlock()
	return err
}

// Stop signals the workers and returns without waiting for them. Items
// already queued may still drain; nothing new is enqueued once the signal is
// observed.
func (e *Engine) Stop() {
	if wg, ok := e.beginStop(); ok {
		go e.finishStop(wg)
	}
}

// StopWait is the blocking variant: it returns once every worker has
// exited.
func (e *Engine) StopWait() {
	if wg, ok := e.beginStop(); ok {
		e.finishStop(wg)
	}
}

func (e *Engine) beginStop() (*sync.WaitGroup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		slog.Warn("voice engine not running")
		return nil, false
	}
	e.state = Stopping
	e.cancel()
	return e.wg, true
}

func (e *Engine) finishStop(wg *sync.WaitGroup) {
	wg.Wait()
	e.mu.Lock()
	if e.state == Stopping {
		e.state = Stopped
	}
	e.mu.Unlock()
	slog.Info("voice engine stopped")
}

// captureFailed records a mid-session recorder error and takes the whole
// engine down so status() shows a stopped engine with the cause, instead of
// running=true with a dead microphone.
func (e *Engine) captureFailed(err error) {
	slog.Error("recorder failed", "err", err)
	e.mu.Lock()
	e.lastErr = fmt.Errorf("recorder: %w", err)
	if e.state != Running {
		e.mu.Unlock()
		return
	}
	e.state = Stopping
	e.cancel()
	wg := e.wg
	e.mu.Unlock()
	go e.finishStop(wg)
}

func (e *Engine) captureLoop(ctx context.Context, reader FrameReader, sgm *Segmenter, det vad.Detector) {
	defer e.wgDone()
	defer det.Close()
	defer reader.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := reader.Read()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.captureFailed(err)
			return
		}

		seg, ok := sgm.Push(frame)
		if !ok {
			continue
		}
		select {
		case e.segQ <- seg:
			slog.Debug("segment queued", "dur", seg.Duration())
		default:
			slog.Warn("segment queue full, dropping utterance", "dur", seg.Duration())
		}
	}
}

func (e *Engine) transcribeLoop(ctx context.Context, backend stt.Backend) {
	defer e.wgDone()
	defer backend.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case seg := <-e.segQ:
			pcm := audioconv.PCM16ToFloat32(Resample16k(seg.Samples, seg.Rate))
			res, err := backend.Transcribe(ctx, pcm, e.cfg.Language)
			if err != nil {
				// One bad segment never halts the worker.
				slog.Warn("transcription failed, segment dropped",
					"dur", seg.Duration(), "err", err)
				continue
			}
			text := joinFragments(res.Fragments)
			if text == "" {
				continue
			}
			select {
			case e.txtQ <- text:
				slog.Debug("utterance decoded", "text", text)
			default:
				slog.Warn("text queue full, dropping utterance", "text", text)
			}
		}
	}
}

func (e *Engine) dispatchLoop(ctx context.Context) {
	defer e.wgDone()

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-e.txtQ:
			if err := e.sink.Dispatch(text); err != nil {
				slog.Warn("dispatch failed", "text", text, "err", err)
			}
		}
	}
}

func (e *Engine) wgDone() {
	e.mu.Lock()
	wg := e.wg
	e.mu.Unlock()
	wg.Done()
}

func joinFragments(frags []stt.Fragment) string {
	var b strings.Builder
	for i, f := range frags {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(f.Text))
	}
	return strings.TrimSpace(b.String())
}

// Status reports the engine snapshot. Safe in any state, including before
// the first Start.
type Status struct {
	State     State
	Device    string
	Index     int
	Rate      int
	SegQueue  int
	TextQueue int
	VAD       string
	Backend   string
	Err       error
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		State:   e.state,
		Device:  e.device.Name,
		Index:   e.device.Index,
		Rate:    e.rate,
		VAD:     e.vadName,
		Backend: e.backendName,
		Err:     e.lastErr,
	}
	if e.segQ != nil {
		st.SegQueue = len(e.segQ)
	}
	if e.txtQ != nil {
		st.TextQueue = len(e.txtQ)
	}
	return st
}

func (st Status) String() string {
	errStr := "none"
	if st.Err != nil {
		errStr = st.Err.Error()
	}
	dev := st.Device
	if dev == "" {
		dev = "-"
	}
	return fmt.Sprintf("[voice] state=%s device=%s rate=%d vad=%s backend=%s seg_q=%d txt_q=%d err=%s",
		st.State, dev, st.Rate, st.VAD, st.Backend, st.SegQueue, st.TextQueue, errStr)
}

// Running reports whether a session is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Running
}
