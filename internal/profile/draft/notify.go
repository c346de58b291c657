package draft

import (
	"go.uber.org/zap"
)

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient user-facing message such as a toast or banner.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives notices raised by the controller.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to logger. It is the default when no notifier
// is configured.
func LogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NotifierFunc(func(n Notice) {
		fields := []zap.Field{zap.String("level", n.Level.String())}
		if n.Err != nil {
			fields = append(fields, zap.Error(n.Err))
		}
		switch n.Level {
		case LevelError:
			logger.Error(n.Message, fields...)
		case LevelWarning:
			logger.Warn(n.Message, fields...)
		default:
			logger.Info(n.Message, fields...)
		}
	})
}
