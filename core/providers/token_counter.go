package providers

// TokenCounterConfig configures character-based token estimation.
type TokenCounterConfig struct {
	CharsPerToken int
}

// DefaultTokenCounterConfig returns the standard four-characters-per-token
// heuristic.
func DefaultTokenCounterConfig() TokenCounterConfig {
	return TokenCounterConfig{CharsPerToken: 4}
}

// CharacterBasedCounter estimates tokens from character counts, rounding up.
// It is deterministic and provider-independent, which is what the advisory
// budget tracker needs; exact counts come back in Usage after the call.
type CharacterBasedCounter struct {
	config TokenCounterConfig
}

// NewCharacterBasedCounter creates a counter with the given configuration.
func NewCharacterBasedCounter(config TokenCounterConfig) *CharacterBasedCounter {
	if config.CharsPerToken <= 0 {
		config.CharsPerToken = 4
	}
	return &CharacterBasedCounter{config: config}
}

// Count estimates tokens across all messages.
func (c *CharacterBasedCounter) Count(messages []Message) (int, error) {
	total := 0
	for _, msg := range messages {
		total += c.charsToTokens(len(msg.Content))
	}
	return total, nil
}

// CountText estimates tokens for a single text.
func (c *CharacterBasedCounter) CountText(text string) (int, error) {
	return c.charsToTokens(len(text)), nil
}

func (c *CharacterBasedCounter) charsToTokens(chars int) int {
	return (chars + c.config.CharsPerToken - 1) / c.config.CharsPerToken
}
