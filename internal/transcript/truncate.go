package transcript

import "strings"

// Truncate drops the oldest n delimiter-terminated records from blob and
// returns the remaining suffix. Asking for more records than blob holds
// yields an empty transcript.
func Truncate(blob, delimiter string, n int) string {
	if n <= 0 || delimiter == "" {
		return blob
	}

	rest := blob
	for ; n > 0; n-- {
		i := strings.Index(rest, delimiter)
		if i < 0 {
			return ""
		}
		rest = rest[i+len(delimiter):]
	}
	return rest
}
