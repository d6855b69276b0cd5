// Package voice stages voice notes into the slot pool and transcribes them.
package voice

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"

	"talkbot/internal/llm"
	"talkbot/internal/slots"
)

var ErrEmptyTranscription = errors.New("empty transcription")

// Fetcher downloads the file identified by fileRef to path.
type Fetcher interface {
	Fetch(ctx context.Context, fileRef, path string) error
}

type Service struct {
	pool    *slots.Pool
	fetcher Fetcher
	tr      llm.Transcriber
}

func NewService(pool *slots.Pool, fetcher Fetcher, tr llm.Transcriber) *Service {
	return &Service{pool: pool, fetcher: fetcher, tr: tr}
}

// Transcribe waits for a free slot, downloads the voice note into it and
// returns the recognized text. The slot is released on every path.
func (s *Service) Transcribe(ctx context.Context, fileRef string) (string, error) {
	slot, err := s.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire slot: %w", err)
	}
	defer func() {
		if err := os.Remove(slot.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to remove staged voice", "path", slot.Path, "err", err)
		}
		if err := s.pool.Release(slot.Index); err != nil {
			log.Error("Failed to release slot", "slot", slot.Index, "err", err)
		}
	}()

	log.Debug("Staging voice", "slot", slot.Index, "file", fileRef)

	if err := s.fetcher.Fetch(ctx, fileRef, slot.Path); err != nil {
		return "", fmt.Errorf("fetch voice: %w", err)
	}

	text, err := s.tr.Transcribe(ctx, slot.Path)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	if text == "" {
		return "", ErrEmptyTranscription
	}
	return text, nil
}

