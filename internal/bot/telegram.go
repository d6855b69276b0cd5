package bot

import (
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"talkbot/internal/dialogue"
)

// HandleTimeout bounds the work done for a single update.
const HandleTimeout = 3 * time.Minute

// Sender delivers outbound messages. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start / Почати"},
	{Command: "use", Description: "How to use / Як користуватися"},
	{Command: "info", Description: "About / Про бота"},
	{Command: "clear_state", Description: "Reset / Скинути"},
}

type Telegram struct {
	api     *tgbotapi.BotAPI
	sender  Sender
	handler *Handler
	wg      sync.WaitGroup
}

func NewTelegram(api *tgbotapi.BotAPI, h *Handler) *Telegram {
	return &Telegram{api: api, sender: api, handler: h}
}

// Run long-polls for updates and handles each one on its own goroutine
// until ctx is done. In-flight updates are finished before Run returns.
func (t *Telegram) Run(ctx context.Context) error {
	if _, err := t.sender.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		log.Warn("Failed to register commands", "err", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.api.GetUpdatesChan(u)

	log.Info("Polling updates", "bot", t.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return errors.New("updates channel closed")
			}
			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				t.dispatch(ctx, update)
			}()
		}
	}
}

func (t *Telegram) dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	ev := EventFromMessage(msg)
	lg := log.With("req", uuid.NewString(), "user", ev.UserID, "chat", msg.Chat.ID)
	start := time.Now()

	// Let in-flight exchanges finish after shutdown starts.
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), HandleTimeout)
	defer cancel()

	reply := t.handler.Handle(hctx, ev)

	if _, err := t.sender.Send(BuildMessage(msg.Chat.ID, msg.MessageID, reply)); err != nil {
		lg.Error("Failed to send reply", "markdown", reply.Markdown, "err", err)
		return
	}
	lg.Debug("Handled update", "kind", ev.Kind, "took", time.Since(start))
}

// EventFromMessage classifies a Telegram message by media kind.
func EventFromMessage(msg *tgbotapi.Message) Event {
	ev := Event{UserID: msg.From.ID}
	switch {
	case msg.Voice != nil:
		ev.Kind = dialogue.KindVoice
		ev.FileRef = msg.Voice.FileID
	case msg.Text != "":
		ev.Kind = dialogue.KindText
		ev.Text = msg.Text
	default:
		ev.Kind = dialogue.KindOther
	}
	return ev
}

// BuildMessage renders r as a reply to replyTo in chatID.
func BuildMessage(chatID int64, replyTo int, r Reply) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, r.Text)
	m.ReplyToMessageID = replyTo
	if r.Markdown {
		m.ParseMode = tgbotapi.ModeMarkdownV2
	}

	switch {
	case len(r.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(r.Keyboard))
		for _, labels := range r.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(labels))
			for _, l := range labels {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(l))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		kb := tgbotapi.NewOneTimeReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		m.ReplyMarkup = kb
	case r.RemoveKeyboard:
		m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	return m
}
