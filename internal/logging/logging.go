// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "ECATPLC_LOG_LEVEL"
	EnvLogNoColor = "ECATPLC_LOG_NOCOLOR"
)

var initOnce sync.Once

// Init sets up the global console logger once and returns it. Level and
// color can be overridden through the environment.
func Init(app string) zerolog.Logger {
	initOnce.Do(func() {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    envBool(EnvLogNoColor),
		}
		logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
		logger = logger.Level(envLevel())
		log.Logger = logger
	})
	return log.Logger
}

func envLevel() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogLevel))) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
