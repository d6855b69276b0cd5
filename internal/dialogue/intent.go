package dialogue

import "strings"

type Intent int

const (
	IntentText Intent = iota
	IntentStart
	IntentReset
	IntentUsage
	IntentInfo
	IntentSelectLanguage
	IntentStartChat
	IntentEndChat
	IntentVoice
	IntentUnsupported
)

var intentNames = map[Intent]string{
	IntentText:           "text",
	IntentStart:          "start",
	IntentReset:          "reset",
	IntentUsage:          "usage",
	IntentInfo:           "info",
	IntentSelectLanguage: "select_language",
	IntentStartChat:      "start_chat",
	IntentEndChat:        "end_chat",
	IntentVoice:          "voice",
	IntentUnsupported:    "unsupported",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "unknown"
}

// Kind is the media kind of an inbound message.
type Kind int

const (
	KindText Kind = iota
	KindVoice
	KindOther
)

type Input struct {
	Kind Kind
	Text string
}

// Flag buttons shown on the language keyboard.
const (
	FlagGB = "\U0001F1EC\U0001F1E7"
	FlagUA = "\U0001F1FA\U0001F1E6"
)

// LanguageOption pairs a keyboard label with the locale it selects.
type LanguageOption struct {
	Label  string
	Locale string
}

var DefaultLanguages = []LanguageOption{
	{Label: FlagGB, Locale: "en"},
	{Label: FlagUA, Locale: "ua"},
}

var commands = map[string]Intent{
	"start":       IntentStart,
	"clear_state": IntentReset,
	"use":         IntentUsage,
	"help":        IntentUsage,
	"info":        IntentInfo,
}

// Translator resolves a UI string for a locale.
type Translator interface {
	T(locale, key string, kv ...any) string
	Locales() []string
}

// Recognizer maps raw input to an intent. Trigger texts for every locale
// are resolved once, when the recognizer is built.
type Recognizer struct {
	triggers  map[string]Intent
	languages map[string]string
}

func NewRecognizer(tr Translator, langs []LanguageOption) *Recognizer {
	r := &Recognizer{
		triggers:  make(map[string]Intent),
		languages: make(map[string]string, len(langs)),
	}
	for _, loc := range tr.Locales() {
		r.triggers[normalize(tr.T(loc, "start_chat"))] = IntentStartChat
		r.triggers[normalize(tr.T(loc, "end_chat"))] = IntentEndChat
	}
	for _, l := range langs {
		r.languages[normalize(l.Label)] = l.Locale
	}
	return r
}

// Classify returns the intent of in and, for IntentSelectLanguage, the
// chosen locale.
func (r *Recognizer) Classify(in Input) (Intent, string) {
	switch in.Kind {
	case KindVoice:
		return IntentVoice, ""
	case KindOther:
		return IntentUnsupported, ""
	}

	text := normalize(in.Text)
	if strings.HasPrefix(text, "/") {
		if intent, ok := commands[commandName(text)]; ok {
			return intent, ""
		}
		return IntentText, ""
	}
	if loc, ok := r.languages[text]; ok {
		return IntentSelectLanguage, loc
	}
	if intent, ok := r.triggers[text]; ok {
		return intent, ""
	}
	return IntentText, ""
}

// commandName extracts "start" from "/start@SomeBot payload".
func commandName(text string) string {
	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
