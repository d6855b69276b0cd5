package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBlob(t *testing.T, n int) (string, []Turn) {
	t.Helper()
	turns := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		turns = append(turns, Turn{Role: role, Content: string(rune('a' + i))})
	}
	blob, err := Encode(turns)
	require.NoError(t, err)
	return blob, turns
}

func TestTruncateDropsOldest(t *testing.T) {
	blob, turns := sampleBlob(t, 6)

	got, err := Decode(Truncate(blob, Delimiter, 4))
	require.NoError(t, err)
	assert.Equal(t, turns[4:], got)
}

func TestTruncateBeyondLength(t *testing.T) {
	blob, _ := sampleBlob(t, 3)

	assert.Equal(t, "", Truncate(blob, Delimiter, 3))
	assert.Equal(t, "", Truncate(blob, Delimiter, 10))
	assert.Equal(t, "", Truncate("", Delimiter, 4))
}

func TestTruncateNonPositive(t *testing.T) {
	blob, _ := sampleBlob(t, 3)

	assert.Equal(t, blob, Truncate(blob, Delimiter, 0))
	assert.Equal(t, blob, Truncate(blob, Delimiter, -2))
}

func TestTruncateRepeatedReachesEmpty(t *testing.T) {
	blob, _ := sampleBlob(t, 11)

	prev := Count(blob, Delimiter)
	steps := 0
	for blob != "" {
		blob = Truncate(blob, Delimiter, 4)
		n := Count(blob, Delimiter)
		require.LessOrEqual(t, n, prev)
		prev = n
		steps++
		require.Less(t, steps, 10)
	}
	assert.Equal(t, 3, steps)
}

func TestTruncateCustomDelimiter(t *testing.T) {
	blob := "one#123#two#123#three#123#"

	assert.Equal(t, "three#123#", Truncate(blob, "#123#", 2))
	assert.Equal(t, 3, Count(blob, "#123#"))
}

func TestTruncateKeepsRecordsDecodable(t *testing.T) {
	blob, turns := sampleBlob(t, 9)

	for n := 0; n <= 9; n++ {
		got, err := Decode(Truncate(blob, Delimiter, n))
		require.NoError(t, err)
		if n == 9 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, turns[n:], got)
	}
}
