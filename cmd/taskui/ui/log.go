package ui

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log stays silent unless InitLog is given a file; the terminal belongs to
// the UI.
var Log = zerolog.Nop()

func InitLog(path string) (io.Closer, error) {
	if path == "" {
		return io.NopCloser(nil), nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	Log = log.Output(zerolog.ConsoleWriter{Out: file, NoColor: true})
	return file, nil
}
