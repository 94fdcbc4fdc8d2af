package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// FormatPretty is accepted as an alias for the console format.
const FormatPretty = "pretty"

const colorReset = "\033[0m"

var levelTags = map[string]string{
	"DEBUG": "[DBG]",
	"INFO":  "[INF]",
	"WARN":  "[WRN]",
	"ERROR": "[ERR]",
	"FATAL": "[FTL]",
}

var levelColors = map[string]string{
	"DEBUG": "\033[36m",
	"INFO":  "\033[32m",
	"WARN":  "\033[33m",
	"ERROR": "\033[31m",
	"FATAL": "\033[35m",
}

// writerFor picks the log sink for cfg: a human-readable console writer for
// the console/pretty formats, raw JSON otherwise.
func writerFor(cfg *Config, serviceName string) io.Writer {
	out := outputWriter(cfg.Output)
	switch strings.ToLower(cfg.Format) {
	case "console", FormatPretty:
		return consoleWriter(cfg, serviceName, out)
	default:
		return out
	}
}

func consoleWriter(cfg *Config, serviceName string, out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		TimeFormat:  "15:04:05",
		NoColor:     cfg.NoColor,
		FormatLevel: levelFormatter(cfg.NoColor, serviceName),
		FormatMessage: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%s", i)
		},
		FormatFieldName: func(i any) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatFieldValue: func(i any) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%s", i)
		},
	}
}

// levelFormatter renders "[SVC][LVL]" prefixes, colored unless disabled.
func levelFormatter(noColor bool, serviceName string) func(any) string {
	prefix := serviceTag(serviceName, noColor)
	return func(i any) string {
		lvl := strings.ToUpper(fmt.Sprint(i))
		tag, known := levelTags[lvl]
		switch {
		case !known:
			tag = "[" + lvl + "]"
		case !noColor:
			tag = levelColors[lvl] + tag + colorReset
		}
		return prefix + tag
	}
}

// serviceTag abbreviates the service name to its first three letters. Short
// or placeholder names get no tag.
func serviceTag(serviceName string, noColor bool) string {
	if len(serviceName) < 3 || serviceName == "default" {
		return ""
	}
	tag := "[" + strings.ToUpper(serviceName[:3]) + "]"
	if noColor {
		return tag
	}
	return "\033[34m" + tag + colorReset
}

func outputWriter(name string) *os.File {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
