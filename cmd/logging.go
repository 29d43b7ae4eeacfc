package cmd

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Verbose enables console logging; without it only the rotating file gets the
// structured log.
var verbose = false

// SetVerbose turns console logging on. Called by main before Execute.
func SetVerbose(v bool) { verbose = v }

var (
	loggerOnce sync.Once
	appLogger  zerolog.Logger
)

// logger returns the application logger, built on first use from the
// settings. It returns a pointer so call sites can chain level methods.
func logger() *zerolog.Logger {
	loggerOnce.Do(func() {
		appLogger = newLogger()
	})
	return &appLogger
}

func newLogger() zerolog.Logger {
	var writers []io.Writer

	if verbose {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	logFile := settings.GetString("logging.file")
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     30, // days
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(settings.GetString("logging.level")))
	return zerolog.New(writer).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
