// Package chat runs one conversational exchange against the model and keeps
// the stored transcript within the token budget.
package chat

import (
	"context"
	"fmt"
	log "log/slog"

	"talkbot/internal/llm"
	"talkbot/internal/markdown"
	"talkbot/internal/store"
	"talkbot/internal/transcript"
)

const (
	DefaultTokenThreshold = 3500
	DefaultDropCount      = 4
)

type Pipeline struct {
	store     store.Store
	completer llm.Completer
	threshold int64
	dropCount int
}

type Option func(*Pipeline)

// WithTruncation overrides the token threshold that triggers truncation and
// the number of oldest turns dropped when it does.
func WithTruncation(threshold int64, dropCount int) Option {
	return func(p *Pipeline) {
		if threshold > 0 {
			p.threshold = threshold
		}
		if dropCount > 0 {
			p.dropCount = dropCount
		}
	}
}

func NewPipeline(s store.Store, c llm.Completer, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     s,
		completer: c,
		threshold: DefaultTokenThreshold,
		dropCount: DefaultDropCount,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleExchange appends text as a user turn, asks the model for a reply with
// the full history, stores the reply and returns it escaped for MarkdownV2.
func (p *Pipeline) HandleExchange(ctx context.Context, userID int64, text string) (string, error) {
	err := p.store.Append(ctx, userID, transcript.Turn{Role: transcript.RoleUser, Content: text})
	if err != nil {
		return "", fmt.Errorf("append prompt: %w", err)
	}

	history, err := p.store.Turns(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	c, err := p.completer.Complete(ctx, history)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	err = p.store.Append(ctx, userID, transcript.Turn{Role: transcript.RoleAssistant, Content: c.Content})
	if err != nil {
		return "", fmt.Errorf("append reply: %w", err)
	}

	if c.TotalTokens >= p.threshold {
		if err := p.truncate(ctx, userID); err != nil {
			return "", err
		}
		log.Info("Truncated transcript", "user", userID, "tokens", c.TotalTokens, "dropped", p.dropCount)
	}

	return markdown.EscapeV2(c.Content), nil
}

func (p *Pipeline) truncate(ctx context.Context, userID int64) error {
	raw, err := p.store.Raw(ctx, userID)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	if err := p.store.Replace(ctx, userID, transcript.Truncate(raw, transcript.Delimiter, p.dropCount)); err != nil {
		return fmt.Errorf("truncate transcript: %w", err)
	}
	return nil
}
