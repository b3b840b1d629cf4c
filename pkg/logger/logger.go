package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is a thin leveled wrapper around the standard log.Logger.
type Logger struct {
	base  *log.Logger
	debug bool
}

// New creates a logger writing to stdout with the given prefix.
func New(prefix string, debug bool) *Logger {
	return &Logger{
		base:  log.New(os.Stdout, "["+prefix+"] ", log.LstdFlags),
		debug: debug,
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.base.Output(2, "INFO  "+fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.base.Output(2, "WARN  "+fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.base.Output(2, "ERROR "+fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.base.Output(2, "DEBUG "+fmt.Sprintf(format, v...))
}
