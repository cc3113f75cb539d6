package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"presidents.com/server/logging"
)

var environmentLogger = log.With().Str("logger_name", "util::environment").Logger()

type gameServerEnvironment struct {
	LogLevel        string
	NatsURL         string
	DealSetupMethod string
	RedisHost       string
	RedisPort       string
	RedisPW         string
	RedisDB         string
	TimingConfig    string

	EnableSeatMsgEncryption string
}

// Env is a helper object for accessing environment variables.
var Env = &gameServerEnvironment{
	LogLevel:        "LOG_LEVEL",
	NatsURL:         "NATS_URL",
	DealSetupMethod: "DEAL_SETUP_METHOD",
	RedisHost:       "REDIS_HOST",
	RedisPort:       "REDIS_PORT",
	RedisPW:         "REDIS_PW",
	RedisDB:         "REDIS_DB",
	TimingConfig:    "TIMING_CONFIG",

	EnableSeatMsgEncryption: "ENABLE_SEAT_MSG_ENCRYPTION",
}

func (g *gameServerEnvironment) GetZeroLogLogLevel() zerolog.Level {
	return logging.ParseLevel(os.Getenv(g.LogLevel))
}

// GetNatsURL returns the NATS server url, or "" when events are not published.
func (g *gameServerEnvironment) GetNatsURL() string {
	return os.Getenv(g.NatsURL)
}

func (g *gameServerEnvironment) GetDealSetupMethod() string {
	method := strings.ToLower(os.Getenv(g.DealSetupMethod))
	if method == "" {
		return "random"
	}
	return method
}

func (g *gameServerEnvironment) GetRedisHost() string {
	host := os.Getenv(g.RedisHost)
	if host == "" {
		msg := fmt.Sprintf("%s is not defined", g.RedisHost)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return host
}

func (g *gameServerEnvironment) GetRedisPort() int {
	return getInt(g.RedisPort, 6379)
}

func (g *gameServerEnvironment) GetRedisPW() string {
	return os.Getenv(g.RedisPW)
}

func (g *gameServerEnvironment) GetRedisDB() int {
	return getInt(g.RedisDB, 0)
}

// GetTimingConfig returns the path of the timing YAML file, or "" for defaults.
func (g *gameServerEnvironment) GetTimingConfig() string {
	return os.Getenv(g.TimingConfig)
}

func (g *gameServerEnvironment) GetEnableSeatMsgEncryption() string {
	return os.Getenv(g.EnableSeatMsgEncryption)
}

// ShouldEncryptSeatMsg reports whether seat-private events are encrypted with
// the player's id before publishing.
func (g *gameServerEnvironment) ShouldEncryptSeatMsg() bool {
	return g.GetEnableSeatMsgEncryption() == "1" || strings.ToLower(g.GetEnableSeatMsgEncryption()) == "true"
}

// getInt reads an integer variable, returning def when unset. A malformed
// value is a deployment error and panics.
func getInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		msg := fmt.Sprintf("Invalid %s: %s", name, v)
		environmentLogger.Error().Msg(msg)
		panic(msg)
	}
	return n
}
