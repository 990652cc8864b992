package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Level represents the severity level of log messages
type Level int

const (
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a --log-level value to a Level. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds the logger configuration
type Config struct {
	Level     Level
	UseColor  bool
	JSON      bool
	Component string
	// Output defaults to stderr; stdout stays reserved for generator output.
	Output io.Writer
}

// Logger represents the logger instance
type Logger struct {
	config Config
	logger *log.Logger
}

var defaultLogger *Logger

// New builds a standalone logger, mostly useful in tests.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{config: config, logger: log.New(out, "", 0)}
}

// Initialize sets up the default logger
func Initialize(config Config) error {
	if config.Level < TraceLevel || config.Level > ErrorLevel {
		return fmt.Errorf("invalid log level %d", config.Level)
	}
	defaultLogger = New(config)
	return nil
}

// Log writes a log message
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}

	entry := LogEntry{
		Time:      time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.config.Component,
	}

	if level <= DebugLevel {
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.File = file
			entry.Line = line
		}
	}

	if len(fields) > 0 {
		entry.Fields = make(map[string]interface{}, len(fields))
		for _, field := range fields {
			entry.Fields[field.Key] = field.Value
		}
	}

	var output string
	if l.config.JSON {
		jsonBytes, _ := json.Marshal(entry)
		output = string(jsonBytes)
	} else {
		output = l.formatPretty(entry)
	}

	l.logger.Print(output)
}

// formatPretty formats the log entry in a human-readable way
func (l *Logger) formatPretty(entry LogEntry) string {
	var builder strings.Builder

	builder.WriteString(entry.Time.Format("2006-01-02 15:04:05"))

	level := entry.Level
	if l.config.UseColor {
		switch entry.Level {
		case "TRACE":
			level = "\033[37mTRACE\033[0m"
		case "DEBUG":
			level = "\033[36mDEBUG\033[0m"
		case "INFO":
			level = "\033[32mINFO\033[0m"
		case "WARN":
			level = "\033[33mWARN\033[0m"
		case "ERROR":
			level = "\033[31mERROR\033[0m"
		}
	}
	fmt.Fprintf(&builder, " [%s]", level)

	if entry.Component != "" {
		fmt.Fprintf(&builder, " %s:", entry.Component)
	}

	fmt.Fprintf(&builder, " %s", entry.Message)

	writeFields(&builder, entry.Fields)

	if entry.File != "" {
		fmt.Fprintf(&builder, " (%s:%d)", entry.File, entry.Line)
	}

	return builder.String()
}

// writeFields appends " {k=v, ...}" with sorted keys, which keeps repeated runs diffable.
func writeFields(builder *strings.Builder, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	builder.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(", ")
		}
		fmt.Fprintf(builder, "%s=%v", k, fields[k])
	}
	builder.WriteString("}")
}

// Field represents a structured field in a log entry
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Path creates a "path" field
func Path(value string) Field {
	return Field{Key: "path", Value: value}
}

// Err creates an error field
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}

// LogEntry represents a log entry
type LogEntry struct {
	Time      time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Convenience functions for default logger
func Trace(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(TraceLevel, message, fields...)
	}
}

func Debug(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(DebugLevel, message, fields...)
	}
}

func Info(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(InfoLevel, message, fields...)
	}
}

func Warn(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(WarnLevel, message, fields...)
	} else {
		writeFallback(WarnLevel, message, fields)
	}
}

func Error(message string, fields ...Field) {
	if defaultLogger != nil {
		defaultLogger.Log(ErrorLevel, message, fields...)
	} else {
		writeFallback(ErrorLevel, message, fields)
	}
}

// fallbackOutput receives warnings and errors logged before Initialize.
var fallbackOutput io.Writer = os.Stderr

func writeFallback(level Level, message string, fields []Field) {
	var builder strings.Builder
	fmt.Fprintf(&builder, "[%s] sitegen: %s", level, message)
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	writeFields(&builder, m)
	builder.WriteString("\n")
	_, _ = io.WriteString(fallbackOutput, builder.String())
}

// SetOutput sets the output writer for the logger
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}
