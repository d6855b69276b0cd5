//go:build !whisper

package stt

import "context"

type Transcriber struct{}

func NewTranscriber(modelPath string) (*Transcriber, error) {
	return nil, ErrUnavailable
}

func (t *Transcriber) Close() error {
	return nil
}

func (t *Transcriber) TranscribePCM(ctx context.Context, pcm16k []float32, opt Options) (Result, error) {
	return Result{}, ErrUnavailable
}
