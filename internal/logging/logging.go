package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Local runs get the human console
// writer; everything else emits JSON lines.
func New(env string) zerolog.Logger {
	zerolog.TimestampFieldName = "ts"

	if env == "local" || env == "" {
		cw := zerolog.NewConsoleWriter()
		cw.TimeFormat = time.DateTime
		cw.Out = os.Stdout
		return zerolog.New(cw).
			Level(zerolog.DebugLevel).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}
