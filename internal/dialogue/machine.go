package dialogue

type Action int

const (
	ActionGreet Action = iota
	ActionAskStart
	ActionSetLanguage
	ActionAskLanguage
	ActionOpenChat
	ActionAskStartChat
	ActionUsage
	ActionInfo
	ActionExchange
	ActionVoiceExchange
	ActionCloseChat
	ActionReset
	ActionUnsupported
)

var actionNames = map[Action]string{
	ActionGreet:         "greet",
	ActionAskStart:      "ask_start",
	ActionSetLanguage:   "set_language",
	ActionAskLanguage:   "ask_language",
	ActionOpenChat:      "open_chat",
	ActionAskStartChat:  "ask_start_chat",
	ActionUsage:         "usage",
	ActionInfo:          "info",
	ActionExchange:      "exchange",
	ActionVoiceExchange: "voice_exchange",
	ActionCloseChat:     "close_chat",
	ActionReset:         "reset",
	ActionUnsupported:   "unsupported",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

type Transition struct {
	Action Action
	Next   State
}

type route struct {
	state  State
	intent Intent
}

var table = map[route]Transition{
	{StateNone, IntentStart}: {ActionGreet, StateAwaitingLanguage},

	{StateAwaitingLanguage, IntentSelectLanguage}: {ActionSetLanguage, StateReady},

	{StateReady, IntentStartChat}: {ActionOpenChat, StateAwaitingPrompt},
	{StateReady, IntentUsage}:     {ActionUsage, StateReady},
	{StateReady, IntentInfo}:      {ActionInfo, StateReady},

	{StateAwaitingPrompt, IntentEndChat}: {ActionCloseChat, StateReady},
	{StateAwaitingPrompt, IntentVoice}:   {ActionVoiceExchange, StateAwaitingPrompt},
}

// fallback applies when no (state, intent) route matches.
var fallback = map[State]Transition{
	StateNone:             {ActionAskStart, StateNone},
	StateAwaitingLanguage: {ActionAskLanguage, StateAwaitingLanguage},
	StateReady:            {ActionAskStartChat, StateReady},
	StateAwaitingPrompt:   {ActionExchange, StateAwaitingPrompt},
}

// Step returns the action to perform for intent in state and the state
// to move to afterwards. Reset and unsupported media are honoured in
// every state.
func Step(state State, intent Intent) Transition {
	switch intent {
	case IntentReset:
		return Transition{ActionReset, StateNone}
	case IntentUnsupported:
		return Transition{ActionUnsupported, state}
	}

	if t, ok := table[route{state, intent}]; ok {
		return t
	}
	if t, ok := fallback[state]; ok {
		return t
	}
	// Unknown stored state: start over.
	return Transition{ActionAskStart, StateNone}
}
