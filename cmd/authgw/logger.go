package main

import (
	"github.com/rs/zerolog"

	authgate "github.com/goliatone/go-authgate"
)

var _ authgate.Logger = (*zlogger)(nil)

// zlogger adapts zerolog to the gateway's logger interface.
type zlogger struct {
	zl zerolog.Logger
}

func newLogger(zl zerolog.Logger) zlogger {
	return zlogger{zl: zl}
}

func (l zlogger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l zlogger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l zlogger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l zlogger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
