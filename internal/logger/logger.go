package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// Init configures the process-wide logger. Unknown levels fall back to info.
// pretty switches to the human readable console writer for local runs.
func Init(level string, pretty bool) {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	SetOutput(out)

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	log = log.Level(lvl)
	mu.Unlock()

	Info("logger initialized", map[string]any{"level": lvl.String()})
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(w).Level(log.GetLevel()).With().Timestamp().Logger()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, fields map[string]any) {
	current().Debug().Fields(fields).Msg(msg)
}

func Info(msg string, fields map[string]any) {
	current().Info().Fields(fields).Msg(msg)
}

func Warn(msg string, fields map[string]any) {
	current().Warn().Fields(fields).Msg(msg)
}

func Error(msg string, fields map[string]any) {
	current().Error().Fields(fields).Msg(msg)
}

func Fatal(msg string, fields map[string]any) {
	current().WithLevel(zerolog.FatalLevel).Fields(fields).Msg(msg)
	os.Exit(1)
}
