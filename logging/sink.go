package logging

import (
	"context"
	"fmt"
	"maps"
)

// SinkFunc is the minimal sink contract: a function receiving a level and a
// fully formatted message. Applications with an existing logging facility
// can redirect all library output through one via
// SetGlobalLogger(NewSinkLogger(fn)).
type SinkFunc func(level Level, message string)

// SinkLogger adapts a SinkFunc to the Logger interface. Level filtering
// happens before the sink is invoked; formatting matches DefaultLogger
// minus colors.
type SinkLogger struct {
	sink   SinkFunc
	level  Level
	fields Fields
}

// NewSinkLogger creates a logger that forwards every line to fn.
func NewSinkLogger(fn SinkFunc) *SinkLogger {
	return &SinkLogger{
		sink:   fn,
		level:  InfoLevel,
		fields: make(Fields),
	}
}

func (s *SinkLogger) emit(level Level, err error, msg string, fields ...Fields) {
	if level < s.level || s.sink == nil {
		return
	}

	allFields := make(Fields)
	maps.Copy(allFields, s.fields)
	for _, f := range fields {
		maps.Copy(allFields, f)
	}

	line := msg
	if err != nil {
		line += fmt.Sprintf(": %v", err)
	}
	if len(allFields) > 0 {
		line += fmt.Sprintf(" %+v", allFields)
	}

	s.sink(level, line)
}

func (s *SinkLogger) Debug(msg string, fields ...Fields) {
	s.emit(DebugLevel, nil, msg, fields...)
}

func (s *SinkLogger) Info(msg string, fields ...Fields) {
	s.emit(InfoLevel, nil, msg, fields...)
}

func (s *SinkLogger) Warn(msg string, fields ...Fields) {
	s.emit(WarnLevel, nil, msg, fields...)
}

func (s *SinkLogger) Error(err error, msg string, fields ...Fields) {
	s.emit(ErrorLevel, err, msg, fields...)
}

func (s *SinkLogger) Fatal(err error, msg string, fields ...Fields) {
	s.emit(FatalLevel, err, msg, fields...)
}

func (s *SinkLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields)
	maps.Copy(newFields, s.fields)
	maps.Copy(newFields, fields)

	return &SinkLogger{
		sink:   s.sink,
		level:  s.level,
		fields: newFields,
	}
}

func (s *SinkLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := ctx.Value(fieldsContextKey{}).(Fields); ok {
		return s.WithFields(fields)
	}
	return s
}

func (s *SinkLogger) SetLevel(level Level) {
	s.level = level
}
