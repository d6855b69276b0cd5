// Package markdown prepares model output for Telegram's MarkdownV2 parse mode.
package markdown

import "strings"

// Escape is the MarkdownV2 escape character.
const Escape = '\\'

// reserved holds the MarkdownV2 special characters plus / ? ^ $,
// which Telegram also accepts in escaped form.
var reserved = map[byte]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
	'/':  true,
	'?':  true,
	'^':  true,
	'$':  true,
}

func IsReserved(ch byte) bool {
	return reserved[ch]
}

// EscapeV2 prefixes every reserved character with a backslash.
func EscapeV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if reserved[ch] {
			b.WriteByte(Escape)
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// UnescapeV2 reads text the way Telegram does: a backslash makes the next
// character literal.
func UnescapeV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == Escape && i+1 < len(text) {
			i++
			ch = text[i]
		}
		b.WriteByte(ch)
	}
	return b.String()
}
