package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Maximum number of due expressions listed in a single message
	DueListLimit int
	// Number of fresh random items to try when a quiz kind does not
	// apply to the picked expression
	MaxQuizRetries int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DueListLimit:   15,
		MaxQuizRetries: 5,
	}
}
