package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkbot/internal/dialogue"
)

func TestEventFromMessage(t *testing.T) {
	from := &tgbotapi.User{ID: 11}

	ev := EventFromMessage(&tgbotapi.Message{From: from, Text: "/start"})
	assert.Equal(t, Event{UserID: 11, Kind: dialogue.KindText, Text: "/start"}, ev)

	ev = EventFromMessage(&tgbotapi.Message{From: from, Voice: &tgbotapi.Voice{FileID: "abc"}})
	assert.Equal(t, Event{UserID: 11, Kind: dialogue.KindVoice, FileRef: "abc"}, ev)

	ev = EventFromMessage(&tgbotapi.Message{From: from, Sticker: &tgbotapi.Sticker{FileID: "s"}})
	assert.Equal(t, dialogue.KindOther, ev.Kind)

	ev = EventFromMessage(&tgbotapi.Message{From: from, Photo: []tgbotapi.PhotoSize{{FileID: "p"}}, Caption: "look"})
	assert.Equal(t, dialogue.KindOther, ev.Kind)
}

func TestBuildMessage(t *testing.T) {
	m := BuildMessage(5, 9, Reply{Text: `a\.b`, Markdown: true})
	assert.Equal(t, int64(5), m.ChatID)
	assert.Equal(t, 9, m.ReplyToMessageID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, m.ParseMode)
	assert.Nil(t, m.ReplyMarkup)

	m = BuildMessage(5, 9, Reply{Text: "pick", Keyboard: [][]string{{"A", "B"}}})
	assert.Empty(t, m.ParseMode)
	kb, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.OneTimeKeyboard)
	assert.True(t, kb.ResizeKeyboard)
	require.Len(t, kb.Keyboard, 1)
	assert.Equal(t, "B", kb.Keyboard[0][1].Text)

	m = BuildMessage(5, 9, Reply{Text: "bye", RemoveKeyboard: true})
	rm, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, rm.RemoveKeyboard)
}

type staticResolver string

func (s staticResolver) GetFileDirectURL(fileID string) (string, error) {
	return string(s) + "/file/" + fileID, nil
}

func TestTelegramFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/voice-1" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("OggS-payload"))
	}))
	defer srv.Close()

	f := NewTelegramFetcher(staticResolver(srv.URL), srv.Client())
	path := filepath.Join(t.TempDir(), "file_0.ogg")

	require.NoError(t, f.Fetch(context.Background(), "voice-1", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "OggS-payload", string(data))

	err = f.Fetch(context.Background(), "missing", path)
	assert.ErrorContains(t, err, "unexpected status")
}

func TestTelegramFetcherHidesFileURL(t *testing.T) {
	const token = "123456:SECRET-TOKEN"

	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	f := NewTelegramFetcher(staticResolver(base+"/file/bot"+token), nil)
	err := f.Fetch(context.Background(), "voice/file_0.oga", filepath.Join(t.TempDir(), "file_0.ogg"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
	assert.Contains(t, err.Error(), "voice/file_0.oga")

	f = NewTelegramFetcher(staticResolver("http://bot"+token+"@[::1"), nil)
	err = f.Fetch(context.Background(), "v", filepath.Join(t.TempDir(), "file_0.ogg"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), token)
}
