package head

import "log"

// Logger receives diagnostics about dropped declarations. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// LoggerOrDefault returns logger, or the standard logger when nil.
func LoggerOrDefault(logger Logger) Logger {
	if logger == nil {
		return log.Default()
	}
	return logger
}
