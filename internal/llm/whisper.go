package llm

import (
	"context"
	"fmt"
	"strings"

	"talkbot/pkg/audioconv"
	"talkbot/pkg/stt"
)

// Voice notes longer than this are cut before local transcription.
const maxLocalSamples = audioconv.SampleRate * 60 * 5

// Whisper transcribes staged files locally with whisper.cpp.
type Whisper struct {
	tr       *stt.Transcriber
	language string
}

var _ Transcriber = (*Whisper)(nil)

func NewWhisper(modelPath, language string) (*Whisper, error) {
	tr, err := stt.NewTranscriber(modelPath)
	if err != nil {
		return nil, err
	}
	return &Whisper{tr: tr, language: language}, nil
}

func (w *Whisper) Transcribe(ctx context.Context, path string) (string, error) {
	pcm, err := audioconv.ConvertFileToPCM16k(ctx, path, audioconv.Options{MaxSamples: maxLocalSamples})
	if err != nil {
		return "", fmt.Errorf("decode audio: %w", err)
	}

	res, err := w.tr.TranscribePCM(ctx, pcm, stt.Options{Language: w.language})
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

func (w *Whisper) Close() error {
	return w.tr.Close()
}
