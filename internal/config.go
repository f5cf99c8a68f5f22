package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	ListenAddr     string `env:"LISTEN_ADDR,required=true"`
	VideoRelayAddr string `env:"VIDEO_RELAY_ADDR,required=true"`
	AudioRelayAddr string `env:"AUDIO_RELAY_ADDR,required=true"`

	QueueSize         int           `env:"QUEUE_SIZE,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	LoginRatePerSecond float64       `env:"LOGIN_RATE_PER_SECOND,required=true"`
	LoginBurst         int           `env:"LOGIN_BURST,required=true"`
	LoginLimiterTTL    time.Duration `env:"LOGIN_LIMITER_TTL,required=true"`

	CensoredWords   string `env:"CENSORED_WORDS,required=true"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`
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

// WordList splits the comma separated CENSORED_WORDS value, dropping
// empty entries so a trailing comma does not poison the dictionary.
func WordList(str string) []string {
	parts := strings.Split(str, ",")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			words = append(words, w)
		}
	}
	return words
}
