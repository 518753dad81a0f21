package log

import (
	"context"
	"log"
)

// CslLogger writes leveled lines to the process console through the
// standard library logger. Debug lines are dropped unless the logger
// was built with debug enabled.
type CslLogger struct {
	debug bool
}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{}, nil
}

func NewDebugCslLogger() (*CslLogger, error) {
	return &CslLogger{debug: true}, nil
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	newFormat := "[INFO] " + format
	log.Printf(newFormat, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	newFormat := "[WARN] " + format
	log.Printf(newFormat, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	newFormat := "[ERROR] " + format
	log.Printf(newFormat, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	if !l.debug {
		return
	}
	newFormat := "[DEBUG] " + format
	log.Printf(newFormat, args...)
}
