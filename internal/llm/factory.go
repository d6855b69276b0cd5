package llm

import (
	"fmt"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
)

const (
	// ModeMock swaps every remote call for Mock.
	ModeMock = "MOCK"

	BackendOpenAI  = "openai"
	BackendWhisper = "whisper"
)

type Options struct {
	Mode               string
	API                openai.Client
	Model              string
	TranscriptionModel string
	STTBackend         string
	WhisperModel       string
	WhisperLanguage    string
}

// combined completes with one client and transcribes with another.
type combined struct {
	Completer
	Transcriber
}

// New builds the client selected by opts. The returned close func releases
// local models and is never nil.
func New(opts Options) (Client, func() error, error) {
	noop := func() error { return nil }

	if opts.Mode == ModeMock {
		log.Warn("Mock mode, no requests will reach OpenAI")
		return NewMock(), noop, nil
	}

	remote := NewOpenAI(opts.API, opts.Model, opts.TranscriptionModel)

	switch opts.STTBackend {
	case "", BackendOpenAI:
		return remote, noop, nil
	case BackendWhisper:
		w, err := NewWhisper(opts.WhisperModel, opts.WhisperLanguage)
		if err != nil {
			return nil, noop, fmt.Errorf("init whisper: %w", err)
		}
		return combined{Completer: remote, Transcriber: w}, w.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown stt backend %q", opts.STTBackend)
	}
}
