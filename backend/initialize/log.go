package initialize

import (
	"fmt"
	"io"
	"os"

	"task-tracker/backend/global"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	// console writer to stdout until ConfigureLogger runs
	cw := zerolog.ConsoleWriter{Out: os.Stdout}
	global.Logger = log.Output(cw)
}

// ConfigureLogger sets the global logger. With a path, JSON lines are
// appended to that file next to the console output.
func ConfigureLogger(level, path string) (io.Closer, error) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout}
	var closer io.Closer = nopCloser{}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, f)
		closer = f
	}
	global.Logger = zerolog.New(out).With().Timestamp().Logger()
	ApplyLogLevel(level)
	return closer, nil
}

// ApplyLogLevel sets the process-wide minimum level and is safe to call
// while requests are logging. Unknown levels fall back to info.
func ApplyLogLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
