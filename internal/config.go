package internal

import (
	"fmt"
	"time"
)

// Config is the server-side environment configuration.
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8000"`
	RedisURL string `env:"REDIS_URL,default=redis://localhost:6379"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	HistoryLimit   int    `env:"HISTORY_LIMIT,default=50"`

	TokenSecret   string        `env:"TOKEN_SECRET,required=true"`
	TokenDuration time.Duration `env:"TOKEN_DURATION,default=6h"`

	OpenAIKey         string        `env:"OPENAI_API_KEY,required=true"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	CompletionModel   string        `env:"COMPLETION_MODEL,default=gpt-4o-mini"`
	ContextMessages   int           `env:"CONTEXT_MESSAGES,default=10"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT,default=30s"`

	MaskCharacter   string        `env:"MASK_CHARACTER,default=*"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
}

// MaskRune enforces that MASK_CHARACTER is a single character.
func MaskRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MASK_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
