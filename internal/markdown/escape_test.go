package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const allReserved = `\_*[]()~` + "`" + `>#+-=|{}.!/?^$`

func TestEscapeEveryReservedCharacter(t *testing.T) {
	out := EscapeV2(allReserved)

	assert.Equal(t, 2*len(allReserved), len(out))
	for i := 0; i < len(out); i += 2 {
		assert.Equal(t, byte(Escape), out[i], "position %d", i)
		assert.True(t, IsReserved(out[i+1]))
	}
}

func TestEscapeLeavesPlainText(t *testing.T) {
	in := "Hello world, Привіт 🇺🇦 123"
	assert.Equal(t, in, EscapeV2(in))
}

func TestEscapeMixed(t *testing.T) {
	assert.Equal(t, `1\.5 \+ 2 \= 3\.5\!`, EscapeV2("1.5 + 2 = 3.5!"))
	assert.Equal(t, `\*bold\* and \_it\_`, EscapeV2("*bold* and _it_"))
	assert.Equal(t, `C:\\path\/to`, EscapeV2(`C:\path/to`))
}

func TestEscapeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		allReserved,
		"code: `fmt.Println(\"hi\")` -> done.",
		`trailing backslash \`,
		"**nested [link](http://x.y/z?q=1)**",
		"эмодзи 😀 и #хэштег",
	}
	for _, in := range inputs {
		assert.Equal(t, in, UnescapeV2(EscapeV2(in)), "input %q", in)
	}
}
