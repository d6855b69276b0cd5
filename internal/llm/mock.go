package llm

import (
	"context"
	"fmt"

	"talkbot/internal/transcript"
)

// Mock answers without any network calls. Token usage is estimated from
// the history so truncation can be exercised offline.
type Mock struct {
	// Transcript is returned by Transcribe.
	Transcript string
}

var _ Client = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{Transcript: "[MOCK] voice message"}
}

func (m *Mock) Complete(ctx context.Context, history []transcript.Turn) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == transcript.RoleUser {
			last = history[i].Content
			break
		}
	}

	content := "[MOCK] This is a mock response."
	if last != "" {
		content = fmt.Sprintf("[MOCK] Received your message: %q.", truncate(last, 100))
	}

	var tokens int64
	for _, t := range history {
		tokens += int64(EstimateTokens(t.Content))
	}
	tokens += int64(EstimateTokens(content))

	return Completion{Content: content, TotalTokens: tokens}, nil
}

func (m *Mock) Transcribe(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Transcript, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
