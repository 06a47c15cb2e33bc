package voice

import (
	"time"

	"murmur/internal/vad"
)

// FrameDuration is the fixed classification window. WebRTC VAD accepts
// 10/20/30 ms; 20 ms matches the source pipeline.
const FrameDuration = 20 * time.Millisecond

// Segment is one captured utterance: a contiguous PCM16 buffer tagged with
// the rate it was recorded at. Ownership moves through the segment queue and
// is never shared.
type Segment struct {
	Samples []int16
	Rate    int
}

// Duration reports the segment's play time.
func (s Segment) Duration() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.Rate)
}

// EndpointConfig tunes the utterance state machine.
type EndpointConfig struct {
	// SilenceHold ends an utterance after this much trailing silence.
	SilenceHold time.Duration
	// MaxSegment caps total utterance duration (speech plus silence) so a
	// pathological continuous signal cannot grow without bound.
	MaxSegment time.Duration
	// MinSpeechFrames is the emit threshold: utterances with fewer speech
	// frames are discarded as noise blips.
	MinSpeechFrames int
}

func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SilenceHold:     700 * time.Millisecond,
		MaxSegment:      12 * time.Second,
		MinSpeechFrames: 5,
	}
}

// Segmenter groups a stream of fixed-size frames into utterance segments.
// Two states: idle (no utterance in progress) and collecting. Silence frames
// inside an utterance are kept so the transcriber sees natural boundaries.
type Segmenter struct {
	det  vad.Detector
	rate int
	cfg  EndpointConfig

	collecting   bool
	buf          []int16
	speechFrames int
	silence      time.Duration
	total        time.Duration
}

func NewSegmenter(det vad.Detector, rate int, cfg EndpointConfig) *Segmenter {
	return &Segmenter{det: det, rate: rate, cfg: cfg}
}

// FrameSize is the per-frame sample count at the segmenter's rate.
func (s *Segmenter) FrameSize() int {
	return int(time.Duration(s.rate) * FrameDuration / time.Second)
}

// Push feeds one frame through the state machine. When an endpoint fires and
// the utterance is long enough, the finished segment is returned.
func (s *Segmenter) Push(frame []int16) (Segment, bool) {
	if s.det.IsSpeech(frame) {
		s.collecting = true
		s.buf = append(s.buf, frame...)
		s.speechFrames++
		s.silence = 0
		s.total += FrameDuration
	} else if s.collecting {
		s.buf = append(s.buf, frame...)
		s.silence += FrameDuration
		s.total += FrameDuration
	} else {
		return Segment{}, false
	}

	if s.silence >= s.cfg.SilenceHold || s.total >= s.cfg.MaxSegment {
		return s.flush()
	}
	return Segment{}, false
}

func (s *Segmenter) flush() (Segment, bool) {
	emit := s.speechFrames >= s.cfg.MinSpeechFrames
	var seg Segment
	if emit {
		seg = Segment{Samples: s.buf, Rate: s.rate}
	}
	s.collecting = false
	s.buf = nil
	s.speechFrames = 0
	s.silence = 0
	s.total = 0
	return seg, emit
}

// Collecting reports whether an utterance is in progress.
func (s *Segmenter) Collecting() bool { return s.collecting }
