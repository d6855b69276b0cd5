package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkbot/internal/transcript"
	"talkbot/pkg/stt"
)

func TestMockEchoesLastUserTurn(t *testing.T) {
	m := NewMock()
	history := []transcript.Turn{
		{Role: transcript.RoleUser, Content: "first"},
		{Role: transcript.RoleAssistant, Content: "reply"},
		{Role: transcript.RoleUser, Content: "Hello"},
	}

	c, err := m.Complete(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, `[MOCK] Received your message: "Hello".`, c.Content)
	assert.Greater(t, c.TotalTokens, int64(0))

	c, err = m.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "[MOCK] This is a mock response.", c.Content)
}

func TestMockTokensGrowWithHistory(t *testing.T) {
	m := NewMock()
	short := []transcript.Turn{{Role: transcript.RoleUser, Content: "hi"}}
	long := []transcript.Turn{{Role: transcript.RoleUser, Content: strings.Repeat("word ", 400)}}

	a, err := m.Complete(context.Background(), short)
	require.NoError(t, err)
	b, err := m.Complete(context.Background(), long)
	require.NoError(t, err)
	assert.Greater(t, b.TotalTokens, a.TotalTokens)
}

func TestMockRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock().Complete(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = NewMock().Transcribe(ctx, "x.ogg")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 6, EstimateTokens("Привіт"))
}

func TestMessages(t *testing.T) {
	msgs, err := Messages([]transcript.Turn{
		{Role: transcript.RoleUser, Content: "q"},
		{Role: transcript.RoleAssistant, Content: "a"},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotNil(t, msgs[0].OfUser)
	assert.NotNil(t, msgs[1].OfAssistant)

	_, err = Messages([]transcript.Turn{{Role: "system", Content: "x"}})
	assert.ErrorIs(t, err, transcript.ErrInvalidRole)
}

func TestNewSelectsBackend(t *testing.T) {
	c, closeFn, err := New(Options{Mode: ModeMock})
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, c)
	assert.NoError(t, closeFn())

	api := openai.NewClient(option.WithAPIKey("test"))
	c, _, err = New(Options{API: api})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	_, _, err = New(Options{API: api, STTBackend: "vosk"})
	assert.Error(t, err)
}

func TestNewWhisperWithoutModel(t *testing.T) {
	_, _, err := New(Options{STTBackend: BackendWhisper})
	require.Error(t, err)
	if errors.Is(err, stt.ErrUnavailable) {
		return
	}
	assert.Contains(t, err.Error(), "whisper")
}
