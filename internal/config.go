package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize               int           `env:"BUFFER_SIZE,required=true"`
	CharReplacement          string        `env:"CHARACTER_REPLACEMENT,required=true"`
	LogLevel                 string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath           string        `env:"BADGER_FILEPATH,required=true"`
	Host                     string        `env:"HOST,required=true"`
	DebugPort                int           `env:"DEBUG_PORT,required=true"`
	AuthTokenDuration        time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	DirectoryRefreshInterval time.Duration `env:"DIRECTORY_REFRESH_INTERVAL,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
