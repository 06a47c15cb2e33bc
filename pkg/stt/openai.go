package stt

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"murmur/pkg/audioconv"
)

// Remote transcribes through the OpenAI audio API. It satisfies the same
// contract as the local backend: float32 mono 16 kHz in, fragments out. Each
// segment is shipped as an in-memory WAV upload.
type Remote struct {
	client openai.Client
	model  string
}

// NewRemote builds the API-backed transcriber. httpClient may be nil;
// pass one to route through a proxy.
func NewRemote(apiKey, model string, httpClient *http.Client) (*Remote, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Remote{client: openai.NewClient(opts...), model: model}, nil
}

func (r *Remote) Name() string { return "openai" }

func (r *Remote) Close() error { return nil }

func (r *Remote) Transcribe(ctx context.Context, pcm16k []float32, language string) (Result, error) {
	if len(pcm16k) == 0 {
		return Result{}, fmt.Errorf("no audio samples provided")
	}

	wavData, err := audioconv.EncodeWAV(audioconv.Float32ToPCM16(pcm16k), 16000)
	if err != nil {
		return Result{}, fmt.Errorf("encode segment: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), "segment.wav", "audio/wav"),
		Model: openai.AudioModel(r.model),
	}
	if language != "" && language != "auto" {
		params.Language = openai.String(language)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{Language: language}, nil
	}
	dur := float64(len(pcm16k)) / 16000.0
	return Result{
		Fragments: []Fragment{{Text: text, StartSec: 0, EndSec: dur}},
		Language:  language,
	}, nil
}
