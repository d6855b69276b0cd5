// Package dialogue decides what a user's input means in their current
// conversation state and which state follows.
package dialogue

// State is the per-user dialogue state. The zero value means no dialogue
// has been started.
type State string

const (
	StateNone             State = ""
	StateAwaitingLanguage State = "awaiting_language"
	StateReady            State = "ready"
	StateAwaitingPrompt   State = "awaiting_prompt"
)

func (s State) Valid() bool {
	switch s {
	case StateNone, StateAwaitingLanguage, StateReady, StateAwaitingPrompt:
		return true
	}
	return false
}

func (s State) String() string {
	if s == StateNone {
		return "none"
	}
	return string(s)
}
