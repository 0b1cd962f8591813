package log

import (
	"context"
	stdlog "log"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger routes goose migration output into zerolog at debug level.
type GooseLogger struct {
	logger *zerolog.Logger
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: FromCtx(ctx),
	}
}

// NewStdLogger adapts the context logger for libraries that take a *log.Logger.
func NewStdLogger(ctx context.Context, component string) *stdlog.Logger {
	l := FromCtx(ctx).With().Str("component", component).Logger()
	return stdlog.New(l, "", 0)
}
