package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// ColoredLogger renders log messages using colours when supported by the output writer.
type ColoredLogger struct {
	*StandardLogger
}

// NewColoredLogger returns a logger configured for colourful terminal output when possible.
func NewColoredLogger(options ...Option) *ColoredLogger {
	std := NewStandardLogger(options...)

	writer := std.output
	if writer == nil {
		writer = os.Stdout
	}

	useColor := isTerminal(writer) && os.Getenv("NO_COLOR") == ""

	std.formatter = &ColoredFormatter{
		timestampFormat: "15:04:05",
		enableColors:    useColor,
	}

	return &ColoredLogger{StandardLogger: std}
}

// ColoredFormatter renders log entries with coloured levels when enabled.
type ColoredFormatter struct {
	timestampFormat string
	enableColors    bool
}

// Format converts the Entry into a coloured textual representation.
func (f *ColoredFormatter) Format(entry *Entry) ([]byte, error) {
	timestampFormat := f.timestampFormat
	if timestampFormat == "" {
		timestampFormat = time.RFC3339
	}

	timestamp := entry.Time.Format(timestampFormat)

	level := entry.Level.String()
	if f.enableColors {
		level = colorizeLevel(level, entry.Level)
	}

	faint := color.New(color.Faint)
	fieldFmt := func(field Field) string {
		text := fmt.Sprintf("%s=%v", field.Key, field.Value)
		if f.enableColors {
			return faint.Sprint(text)
		}
		return text
	}

	return formatEntry(entry, timestamp, level, fieldFmt), nil
}
