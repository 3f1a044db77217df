package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// init sets up the global logger and the zerolog parameters shared by every Logger.
func init() {
	GlobalLogger = NewLogger(zerolog.Disabled)

	// Errors created with pkg/errors carry a stack which zerolog can marshal
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
