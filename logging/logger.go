package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/medusa-stacktraces/logging/colors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// GlobalLogger describes a Logger that is disabled by default and is replaced once a project configuration is loaded.
// Each package should derive its own sub-logger from it.
var GlobalLogger *Logger

// Logger describes a custom logging object that can log events to any number of writers, in structured JSON or
// unstructured (optionally colorized) console format.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// context describes the key-value pairs attached to every event emitted by this logger
	context map[string]string

	// structuredLogger writes JSON events to every structured writer
	structuredLogger zerolog.Logger

	// structuredWriters describes the writers which receive structured output
	structuredWriters []io.Writer

	// unstructuredLogger writes non-colorized console events to every unstructured writer
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the writers which receive unstructured output without colors
	unstructuredWriters []io.Writer

	// unstructuredColorLogger writes colorized console events to every unstructured color writer
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the writers which receive unstructured output with colors
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger creates a new Logger with the provided log level and no writers.
func NewLogger(level zerolog.Level) *Logger {
	logger := &Logger{
		level:   level,
		context: make(map[string]string),
	}
	logger.rebuild()
	return logger
}

// NewSubLogger creates a new Logger which starts with this logger's writers and attaches the provided key-value pair to
// every event, so output can be filtered by it.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	context := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		context[k] = v
	}
	context[key] = value

	subLogger := &Logger{
		level:                    l.level,
		context:                  context,
		structuredWriters:        slices.Clone(l.structuredWriters),
		unstructuredWriters:      slices.Clone(l.unstructuredWriters),
		unstructuredColorWriters: slices.Clone(l.unstructuredColorWriters),
	}
	subLogger.rebuild()
	return subLogger
}

// AddWriter adds a writer which receives log output in the provided format. Colors only apply to unstructured
// output. Adding a writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writerList(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter removes a writer previously added with the same format and color flag. Removing an unknown writer is
// a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writerList(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i:i], (*writers)[i+1:]...)
			l.rebuild()
			return
		}
	}
}

// Level returns the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel updates the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// writerList returns the writer list matching the provided format and color flag.
func (l *Logger) writerList(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild recreates the underlying zerolog loggers after the writers, level or context changed.
func (l *Logger) rebuild() {
	l.structuredLogger = l.newZerologLogger(l.structuredWriters, true, func(w io.Writer) io.Writer {
		return w
	})
	l.unstructuredLogger = l.newZerologLogger(l.unstructuredWriters, false, func(w io.Writer) io.Writer {
		return setupDefaultFormatting(zerolog.ConsoleWriter{Out: w, NoColor: true}, l.level, false)
	})
	l.unstructuredColorLogger = l.newZerologLogger(l.unstructuredColorWriters, false, func(w io.Writer) io.Writer {
		return setupDefaultFormatting(zerolog.ConsoleWriter{Out: w}, l.level, true)
	})
}

// newZerologLogger creates a zerolog.Logger for the provided writers, which is disabled if there are none.
func (l *Logger) newZerologLogger(writers []io.Writer, timestamp bool, wrap func(io.Writer) io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	wrapped := make([]io.Writer, len(writers))
	for i, w := range writers {
		wrapped[i] = wrap(w)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(wrapped...)).Level(l.level).With()
	if timestamp {
		ctx = ctx.Timestamp()
	}
	for k, v := range l.context {
		ctx = ctx.Str(k, v)
	}
	return ctx.Logger()
}

// Trace logs a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug logs a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info logs an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn logs a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error logs an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic logs a panic event to every writer, then panics.
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the console and plain messages from args and sends an event at the provided level to every logger.
func (l *Logger) log(level zerolog.Level, args ...any) {
	colorMsg, plainMsg, err, info := buildMsgs(args...)

	structuredLog := l.structuredLogger.WithLevel(level)
	unstructuredLog := l.unstructuredLogger.WithLevel(level)
	colorLog := l.unstructuredColorLogger.WithLevel(level)

	// Stack traces are only attached at debug level or below, or when panicking
	withStack := l.level <= zerolog.DebugLevel || level == zerolog.PanicLevel
	for _, event := range []*zerolog.Event{structuredLog, unstructuredLog, colorLog} {
		chainErrorAndInfo(event, err, info, withStack)
	}

	structuredLog.Msg(plainMsg)
	unstructuredLog.Msg(plainMsg)
	colorLog.Msg(colorMsg)

	if level == zerolog.PanicLevel {
		panic(plainMsg)
	}
}

// buildMsgs takes a variadic list of arguments of any type and returns a colorized message for console output, a
// plain message, and optionally an error and a StructuredLogInfo object found among the arguments.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	colorCtx := colors.Reset
	colorOutput := make([]string, 0, len(args))
	plainOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// Switch the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info can be provided for each log message
			info = t
		case error:
			// Only one error can be provided for each log message
			err = t
		default:
			colorOutput = append(colorOutput, colorCtx(t))
			plainOutput = append(plainOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(plainOutput, ""), err, info
}

// chainErrorAndInfo attaches the error, an optional stack trace and the structured log info to an event. A nil event
// (one whose level is disabled) is left untouched.
func chainErrorAndInfo(event *zerolog.Event, err error, info StructuredLogInfo, withStack bool) {
	if event == nil {
		return
	}
	if err != nil {
		event.Err(err)
		if withStack {
			event.Stack()
		}
	}
	if info != nil {
		event.Any("info", info)
	}
}

// setupDefaultFormatting updates a console writer to the console format: no timestamp and level glyphs. Every part
// of the line is painted through the colors package, and only when the writer is colored.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level, colored bool) zerolog.ConsoleWriter {
	paint := func(c colors.ColorFunc) colors.ColorFunc {
		if colored {
			return c
		}
		return plain
	}

	writer.FormatTimestamp = func(i any) string {
		return ""
	}
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%v", i)
	}
	writer.FormatFieldName = func(i any) string {
		return paint(colors.Cyan)(fmt.Sprintf("%s=", i))
	}
	writer.FormatFieldValue = func(i any) string {
		return fmt.Sprintf("%s", i)
	}
	writer.FormatErrFieldName = func(i any) string {
		return paint(colors.Red)(fmt.Sprintf("%s=", i))
	}
	writer.FormatErrFieldValue = func(i any) string {
		return paint(colors.Red)(fmt.Sprintf("%s", i))
	}

	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsedLevel, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		switch parsedLevel {
		case zerolog.TraceLevel:
			return paint(colors.CyanBold)(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return paint(colors.BlueBold)(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return paint(colors.GreenBold)(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return paint(colors.YellowBold)(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return paint(colors.RedBold)(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return paint(colors.RedBold)(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return paint(colors.RedBold)(zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	// Service keys are noise on the console above debug level
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"service"}
	}

	return writer
}

// plain renders a value without any ANSI escape codes.
func plain(s any) string {
	return fmt.Sprintf("%v", s)
}
