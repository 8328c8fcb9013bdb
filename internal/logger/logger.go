package logger

import (
	"fmt"
	"io"
	"log"
)

type Logger struct {
	traceLogger *log.Logger
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

func (l *Logger) Trace(v ...any) {
	if l.traceLogger != nil {
		_ = l.traceLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Debug(v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Info(v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Warn(v ...any) {
	if l.warnLogger != nil {
		_ = l.warnLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Error(v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintln(v...))
	}
}

func (l *Logger) Tracef(format string, v ...any) {
	if l.traceLogger != nil {
		_ = l.traceLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Debugf(format string, v ...any) {
	if l.debugLogger != nil {
		_ = l.debugLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Infof(format string, v ...any) {
	if l.infoLogger != nil {
		_ = l.infoLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Warnf(format string, v ...any) {
	if l.warnLogger != nil {
		_ = l.warnLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func (l *Logger) Errorf(format string, v ...any) {
	if l.errorLogger != nil {
		_ = l.errorLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

// NewLogger writes every level up to and including level to output.
// FATAL shares the ERROR writer, there is no separate Fatal method.
func NewLogger(level Level, output io.Writer) *Logger {
	flag := log.LstdFlags | log.Lshortfile
	newLevelLogger := func(l Level, prefix string) *log.Logger {
		if !l.Enabled(level) {
			return nil
		}
		return log.New(output, prefix, flag)
	}

	return &Logger{
		traceLogger: newLevelLogger(LevelTrace, "TRACE:"),
		debugLogger: newLevelLogger(LevelDebug, "DEBUG:"),
		infoLogger:  newLevelLogger(LevelInfo, "INFO :"),
		warnLogger:  newLevelLogger(LevelWarn, "WARN :"),
		errorLogger: newLevelLogger(LevelError, "ERROR:"),
	}
}

// Discard is a logger that writes nothing, handy in tests and one-shot commands.
func Discard() *Logger {
	return NewLogger(LevelOff, io.Discard)
}
