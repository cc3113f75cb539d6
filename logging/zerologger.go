package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Structured field keys shared by every package.
const (
	GameCodeKey     string = "gameCode"
	RoundNumKey     string = "round"
	SeatNumKey      string = "seatNo"
	PlayerNameKey   string = "playerName"
	PlayerIDKey     string = "playerID"
	MsgTypeKey      string = "msgType"
	TimerPurposeKey string = "purpose"
	CardsKey        string = "cards"
)

// colorize reads COLORIZE_LOG. Colour is on unless the variable parses as false.
func colorize() bool {
	v := strings.TrimSpace(os.Getenv("COLORIZE_LOG"))
	if v == "" {
		return true
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return enabled
}

// GetZeroLogger returns a console logger tagged with name. A nil out writes to stdout.
func GetZeroLogger(name string, out io.Writer) *zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	output := zerolog.ConsoleWriter{Out: out, NoColor: !colorize(), TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Str("logger", name).Logger()
	return &logger
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

// SetLevel applies level to every logger in the process.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
