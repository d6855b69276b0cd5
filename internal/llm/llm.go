// Package llm wraps the remote model services the bot talks to.
package llm

import (
	"context"

	"talkbot/internal/transcript"
)

// Completion is a model reply and the total tokens the call consumed.
type Completion struct {
	Content     string
	TotalTokens int64
}

// Completer produces the next assistant turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, history []transcript.Turn) (Completion, error)
}

// Transcriber turns a staged audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

type Client interface {
	Completer
	Transcriber
}
