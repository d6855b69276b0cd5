package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	turns := []Turn{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: "Hi! How can I help?"},
		{Role: RoleUser, Content: "multi\nline\r\ncontent with \"quotes\" and \\ slashes"},
		{Role: RoleAssistant, Content: ""},
		{Role: RoleUser, Content: "Привіт 🇺🇦 <b>&</b> {'role': 'user'} #123#"},
	}

	blob, err := Encode(turns)
	require.NoError(t, err)
	assert.Equal(t, len(turns), Count(blob, Delimiter))

	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, turns, got)
}

func TestEncodeTurnAppendsDelimiter(t *testing.T) {
	rec, err := EncodeTurn(Turn{Role: RoleUser, Content: "a\nb"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rec, Delimiter))
	assert.Equal(t, 1, strings.Count(rec, Delimiter))
}

func TestEncodeRejectsUnknownRole(t *testing.T) {
	_, err := EncodeTurn(Turn{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = Encode([]Turn{{Role: RoleUser, Content: "ok"}, {Role: "", Content: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"python literal":  "{'role': 'user', 'content': 'hi'}\n",
		"unterminated":    `{"role":"user","content":"hi"}`,
		"bad role":        `{"role":"system","content":"hi"}` + "\n",
		"missing content": `{"role":"user"}` + "\n",
		"unknown field":   `{"role":"user","content":"hi","extra":1}` + "\n",
		"empty record":    `{"role":"user","content":"hi"}` + "\n\n",
		"trailing data":   `{"role":"user","content":"hi"} {}` + "\n",
		"null":            "null\n",
	}

	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(blob)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestDecodeKeepsOrder(t *testing.T) {
	var turns []Turn
	for i := 0; i < 20; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: strings.Repeat("x", i)})
	}
	blob, err := Encode(turns)
	require.NoError(t, err)

	got, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, turns, got)
}
