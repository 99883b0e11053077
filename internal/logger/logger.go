package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New создает логгер. В pretty-режиме вывод цветной и читаемый,
// иначе пишется JSON по строке на событие.
func New(level string, pretty bool) zerolog.Logger {
	return newWithWriter(os.Stdout, level, pretty)
}

func newWithWriter(out io.Writer, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldInteger = true

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		out = consoleWriter(out)
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "tinyapp").
		Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05 MST",
	}

	output.FormatLevel = func(i interface{}) string {
		level, _ := i.(string)
		level = strings.ToUpper(level)

		var color string
		switch level {
		case "DEBUG":
			color = "\x1b[32m"
		case "INFO":
			color = "\x1b[34m"
		case "WARN":
			color = "\x1b[33m"
		case "ERROR", "FATAL":
			color = "\x1b[31m"
		default:
			color = "\x1b[0m"
		}

		return fmt.Sprintf("%s| %-6s|\x1b[0m", color, level)
	}

	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("\x1b[36m%s:\x1b[0m", i)
	}

	return output
}
