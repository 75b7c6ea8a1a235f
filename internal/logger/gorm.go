package logger

import (
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// gormWriter adapts a zerolog logger to gorm's Printf-style writer.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Debug().Msgf(format, args...)
}

// Gorm returns a gorm logger that writes SQL traces through zl. Slow queries
// are reported at warn level by gorm itself.
func Gorm(zl zerolog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if zl.GetLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}
	return gormlogger.New(gormWriter{log: zl.With().Str("component", "gorm").Logger()}, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
