// Package bot routes inbound chat events through the dialogue machine and
// produces the replies to send back.
package bot

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"talkbot/internal/dialogue"
	"talkbot/internal/session"
	"talkbot/internal/store"
	"talkbot/internal/voice"
)

// Event is one inbound message, independent of the transport.
type Event struct {
	UserID  int64
	Kind    dialogue.Kind
	Text    string
	FileRef string
}

// Reply is what the transport sends back for an Event.
type Reply struct {
	Text string
	// Markdown marks Text as already escaped for MarkdownV2.
	Markdown       bool
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Translator resolves UI strings.
type Translator interface {
	dialogue.Translator
	Default() string
}

type Exchanger interface {
	HandleExchange(ctx context.Context, userID int64, text string) (string, error)
}

type VoiceTranscriber interface {
	Transcribe(ctx context.Context, fileRef string) (string, error)
}

type Handler struct {
	users     store.Store
	states    session.Store
	tr        Translator
	rec       *dialogue.Recognizer
	languages []dialogue.LanguageOption
	chat      Exchanger
	voice     VoiceTranscriber
	locks     *userLocks
}

type Deps struct {
	Users     store.Store
	States    session.Store
	Translate Translator
	Languages []dialogue.LanguageOption
	Chat      Exchanger
	Voice     VoiceTranscriber
}

func NewHandler(d Deps) *Handler {
	langs := d.Languages
	if len(langs) == 0 {
		langs = dialogue.DefaultLanguages
	}
	return &Handler{
		users:     d.Users,
		states:    d.States,
		tr:        d.Translate,
		rec:       dialogue.NewRecognizer(d.Translate, langs),
		languages: langs,
		chat:      d.Chat,
		voice:     d.Voice,
		locks:     newUserLocks(),
	}
}

// Handle processes ev and always returns a reply. Events of one user are
// handled one at a time.
func (h *Handler) Handle(ctx context.Context, ev Event) Reply {
	unlock := h.locks.lock(ev.UserID)
	defer unlock()

	lg := log.With("user", ev.UserID)

	state, err := h.states.Get(ctx, ev.UserID)
	if err != nil {
		lg.Error("Failed to load state", "err", err)
		return h.failure(ctx, ev.UserID)
	}

	intent, selected := h.rec.Classify(dialogue.Input{Kind: ev.Kind, Text: ev.Text})
	tr := dialogue.Step(state, intent)

	lg.Debug("Dispatch", "state", state, "intent", intent, "action", tr.Action, "next", tr.Next)

	reply, err := h.perform(ctx, ev, tr.Action, selected)
	if err != nil {
		lg.Error("Failed to handle event", "action", tr.Action, "err", err)
		if errors.Is(err, voice.ErrEmptyTranscription) {
			return Reply{Text: h.tr.T(h.language(ctx, ev.UserID), "empty_voice")}
		}
		return h.failure(ctx, ev.UserID)
	}

	if tr.Next != state {
		if err := h.states.Set(ctx, ev.UserID, tr.Next); err != nil {
			lg.Error("Failed to save state", "state", tr.Next, "err", err)
			return h.failure(ctx, ev.UserID)
		}
	}
	return reply
}

func (h *Handler) perform(ctx context.Context, ev Event, action dialogue.Action, selected string) (Reply, error) {
	switch action {
	case dialogue.ActionGreet:
		if _, err := h.users.EnsureUser(ctx, ev.UserID); err != nil {
			return Reply{}, fmt.Errorf("ensure user: %w", err)
		}
		return h.askLanguage(ctx, ev.UserID), nil

	case dialogue.ActionAskLanguage:
		return h.askLanguage(ctx, ev.UserID), nil

	case dialogue.ActionSetLanguage:
		if err := h.users.SetLanguage(ctx, ev.UserID, selected); err != nil {
			return Reply{}, fmt.Errorf("set language: %w", err)
		}
		return Reply{
			Text:     h.tr.T(selected, "select"),
			Keyboard: [][]string{{h.tr.T(selected, "start_chat")}},
		}, nil

	case dialogue.ActionOpenChat:
		lang := h.language(ctx, ev.UserID)
		return Reply{
			Text:     h.tr.T(lang, "you_are_welcome"),
			Keyboard: [][]string{{h.tr.T(lang, "end_chat")}},
		}, nil

	case dialogue.ActionCloseChat:
		if err := h.users.Clear(ctx, ev.UserID); err != nil {
			return Reply{}, fmt.Errorf("clear transcript: %w", err)
		}
		lang := h.language(ctx, ev.UserID)
		return Reply{
			Text:     h.tr.T(lang, "finish"),
			Keyboard: [][]string{{h.tr.T(lang, "start_chat")}},
		}, nil

	case dialogue.ActionAskStartChat:
		lang := h.language(ctx, ev.UserID)
		button := h.tr.T(lang, "start_chat")
		return Reply{
			Text:     h.tr.T(lang, "press_start_chat", "Button", button),
			Keyboard: [][]string{{button}},
		}, nil

	case dialogue.ActionExchange:
		out, err := h.chat.HandleExchange(ctx, ev.UserID, ev.Text)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: out, Markdown: true}, nil

	case dialogue.ActionVoiceExchange:
		text, err := h.voice.Transcribe(ctx, ev.FileRef)
		if err != nil {
			return Reply{}, err
		}
		log.Debug("Transcribed voice", "user", ev.UserID, "chars", len(text))
		out, err := h.chat.HandleExchange(ctx, ev.UserID, text)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: out, Markdown: true}, nil

	case dialogue.ActionReset:
		return Reply{Text: h.tr.T(h.language(ctx, ev.UserID), "state_cleared"), RemoveKeyboard: true}, nil

	case dialogue.ActionUsage:
		return h.say(ctx, ev.UserID, "use"), nil
	case dialogue.ActionInfo:
		return h.say(ctx, ev.UserID, "info"), nil
	case dialogue.ActionAskStart:
		return h.say(ctx, ev.UserID, "start_first"), nil
	case dialogue.ActionUnsupported:
		return h.say(ctx, ev.UserID, "support"), nil
	}
	return Reply{}, fmt.Errorf("unhandled action %s", action)
}

// Reset drops the dialogue state of userID, as /clear_state does.
func (h *Handler) Reset(ctx context.Context, userID int64) error {
	unlock := h.locks.lock(userID)
	defer unlock()
	return h.states.Set(ctx, userID, dialogue.StateNone)
}

func (h *Handler) askLanguage(ctx context.Context, userID int64) Reply {
	row := make([]string, 0, len(h.languages))
	for _, l := range h.languages {
		row = append(row, l.Label)
	}
	return Reply{
		Text:     h.tr.T(h.language(ctx, userID), "choose_language"),
		Keyboard: [][]string{row},
	}
}

func (h *Handler) say(ctx context.Context, userID int64, key string) Reply {
	return Reply{Text: h.tr.T(h.language(ctx, userID), key)}
}

func (h *Handler) failure(ctx context.Context, userID int64) Reply {
	return h.say(ctx, userID, "error")
}

// language returns the stored locale of userID, or the default one.
func (h *Handler) language(ctx context.Context, userID int64) string {
	lang, err := h.users.Language(ctx, userID)
	if err != nil {
		log.Warn("Failed to load language", "user", userID, "err", err)
	}
	if lang == "" {
		return h.tr.Default()
	}
	return lang
}
