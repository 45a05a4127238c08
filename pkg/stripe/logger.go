package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/nnaudio/storefront-api/pkg/logger"
)

var _ stripe.LeveledLoggerInterface = (*LeveledLogger)(nil)

// LeveledLogger routes stripe-go's internal request logging into zerolog.
type LeveledLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func NewLeveledLogger(ctx context.Context, logg *logger.Logger) *LeveledLogger {
	return &LeveledLogger{ctx: logg.WithField(ctx, "source", "stripe-go"), logg: logg}
}

func (l *LeveledLogger) Debugf(format string, v ...interface{}) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *LeveledLogger) Infof(format string, v ...interface{}) {
	l.logg.Info(l.ctx, fmt.Sprintf(format, v...))
}

func (l *LeveledLogger) Warnf(format string, v ...interface{}) {
	l.logg.Warn(l.ctx, fmt.Sprintf(format, v...))
}

func (l *LeveledLogger) Errorf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.logg.Error(l.ctx, "stripe.request_failed", errors.New(msg))
}
