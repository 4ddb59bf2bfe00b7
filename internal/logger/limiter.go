package logger

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Limiter throttles a repeating log site. Events over the rate are counted
// and the count is attached to the next line that gets through. Lines below
// the active level never spend a token. Give each call site its own Limiter
// so a noisy site cannot starve a rare one.
type Limiter struct {
	lim        *rate.Limiter
	suppressed atomic.Int64
}

// NewLimiter allows burst lines at once and one more every interval.
func NewLimiter(every time.Duration, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Every(every), burst)}
}

// Suppressed returns the number of events dropped since the last emitted line.
func (l *Limiter) Suppressed() int64 {
	return l.suppressed.Load()
}

// Warn logs at warn level if the limiter allows it.
func (l *Limiter) Warn(msg string, fields ...zap.Field) {
	if f, ok := l.allow(zapcore.WarnLevel, fields); ok {
		Log.Warn(msg, f...)
	}
}

// Error logs at error level if the limiter allows it.
func (l *Limiter) Error(msg string, fields ...zap.Field) {
	if f, ok := l.allow(zapcore.ErrorLevel, fields); ok {
		Log.Error(msg, f...)
	}
}

// Debug logs at debug level if the limiter allows it.
func (l *Limiter) Debug(msg string, fields ...zap.Field) {
	if f, ok := l.allow(zapcore.DebugLevel, fields); ok {
		Log.Debug(msg, f...)
	}
}

func (l *Limiter) allow(level zapcore.Level, fields []zap.Field) ([]zap.Field, bool) {
	if !Log.Core().Enabled(level) {
		return nil, false
	}
	if !l.lim.Allow() {
		l.suppressed.Add(1)
		return nil, false
	}
	if n := l.suppressed.Swap(0); n > 0 {
		fields = append(fields, zap.Int64("suppressed", n))
	}
	return fields, true
}
