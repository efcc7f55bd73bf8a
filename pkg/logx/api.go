package logx

import (
	"fmt"
	"os"
)

var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger(LoadFromEnv())
}

// SetDefaultLogger replaces the process-wide logger.
func SetDefaultLogger(logger *Logger) { defaultLogger = logger }

// SetLevel sets the level on the default logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the output on the default logger.
func SetOutput(w *os.File) { defaultLogger.SetOutput(w) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// Fatal logs and exits the process.
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil, nil)
	defaultLogger.exit(1)
}

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
	defaultLogger.exit(1)
}

// FieldLogger carries structured context towards a terminal log call.
type FieldLogger struct {
	logger *Logger
	fields Fields
	err    error
}

// WithFields starts a structured entry on the default logger.
func WithFields(fields Fields) *FieldLogger {
	return &FieldLogger{logger: defaultLogger, fields: fields}
}

// WithError attaches an error to the entry.
func WithError(err error) *FieldLogger {
	return &FieldLogger{logger: defaultLogger, err: err}
}

// WithField adds a single key/value pair.
func (fl *FieldLogger) WithField(key string, value any) *FieldLogger {
	if fl.fields == nil {
		fl.fields = Fields{}
	}
	fl.fields[key] = value
	return fl
}

// WithFields merges fields into the entry. Later keys win.
func (fl *FieldLogger) WithFields(fields Fields) *FieldLogger {
	if fl.fields == nil {
		fl.fields = Fields{}
	}
	for k, v := range fields {
		fl.fields[k] = v
	}
	return fl
}

// WithError attaches an error to the entry.
func (fl *FieldLogger) WithError(err error) *FieldLogger {
	fl.err = err
	return fl
}

func (fl *FieldLogger) Debug(msg string) { fl.logger.log(LevelDebug, msg, fl.fields, fl.err) }
func (fl *FieldLogger) Info(msg string)  { fl.logger.log(LevelInfo, msg, fl.fields, fl.err) }
func (fl *FieldLogger) Warn(msg string)  { fl.logger.log(LevelWarn, msg, fl.fields, fl.err) }
func (fl *FieldLogger) Error(msg string) { fl.logger.log(LevelError, msg, fl.fields, fl.err) }

func (fl *FieldLogger) Debugf(format string, args ...any) {
	fl.logger.log(LevelDebug, fmt.Sprintf(format, args...), fl.fields, fl.err)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	fl.logger.log(LevelInfo, fmt.Sprintf(format, args...), fl.fields, fl.err)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	fl.logger.log(LevelWarn, fmt.Sprintf(format, args...), fl.fields, fl.err)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	fl.logger.log(LevelError, fmt.Sprintf(format, args...), fl.fields, fl.err)
}
