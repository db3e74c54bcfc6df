package httpclient

import "go.uber.org/zap"

// Notifier is told about every request that did not succeed, regardless
// of which call issued it.
type Notifier interface {
	Notify(op string, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(op string, err error)

// Notify calls f.
func (f NotifierFunc) Notify(op string, err error) { f(op, err) }

// LogNotifier reports failures at warn level.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs err.
func (n LogNotifier) Notify(op string, err error) {
	n.Logger.Warn("request failed", zap.String("op", op), zap.Error(err))
}
