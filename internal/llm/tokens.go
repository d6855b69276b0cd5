package llm

// EstimateTokens approximates the token count of text: about four ASCII
// characters per token, one token per non-ASCII rune.
func EstimateTokens(text string) int {
	weight := 0
	for _, r := range text {
		if r <= 127 {
			weight += 1
		} else {
			weight += 4
		}
	}
	return (weight + 3) / 4
}
