package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const LogLevelEnv = "POS_TAGGER_LOGLEVEL"

var levels = map[string]zerolog.Level{
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
	"PANIC": zerolog.PanicLevel,
}

func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// Level maps a level name to its zerolog level. Unknown names are INFO.
func Level(name string) zerolog.Level {
	if level, ok := levels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return zerolog.InfoLevel
}

// NewLogger writes JSON lines to stderr at the level named by
// POS_TAGGER_LOGLEVEL.
func NewLogger(component string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(Level(os.Getenv(LogLevelEnv)))
}
