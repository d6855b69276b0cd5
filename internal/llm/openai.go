package llm

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"strings"

	openai "github.com/openai/openai-go/v3"

	"talkbot/internal/transcript"
)

const (
	DefaultChatModel          = openai.ChatModelGPT3_5Turbo
	DefaultTranscriptionModel = openai.AudioModelWhisper1
)

// OpenAI calls the chat completion and audio transcription endpoints.
type OpenAI struct {
	client   openai.Client
	model    string
	sttModel openai.AudioModel
}

var _ Client = (*OpenAI)(nil)

func NewOpenAI(client openai.Client, model, sttModel string) *OpenAI {
	if model == "" {
		model = string(DefaultChatModel)
	}
	stt := openai.AudioModel(sttModel)
	if sttModel == "" {
		stt = DefaultTranscriptionModel
	}
	return &OpenAI{client: client, model: model, sttModel: stt}
}

func (o *OpenAI) Complete(ctx context.Context, history []transcript.Turn) (Completion, error) {
	msgs, err := Messages(history)
	if err != nil {
		return Completion{}, err
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    o.model,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("no choices in response")
	}

	log.Debug("Completed", "model", resp.Model, "tokens", resp.Usage.TotalTokens)

	return Completion{
		Content:     resp.Choices[0].Message.Content,
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  f,
		Model: o.sttModel,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Messages converts stored turns into the chat completion history.
func Messages(history []transcript.Turn) ([]openai.ChatCompletionMessageParamUnion, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for i, t := range history {
		switch t.Role {
		case transcript.RoleUser:
			msgs = append(msgs, openai.UserMessage(t.Content))
		case transcript.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(t.Content))
		default:
			return nil, fmt.Errorf("turn %d: %w: %q", i, transcript.ErrInvalidRole, t.Role)
		}
	}
	return msgs, nil
}
