package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/logtail"
	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ParseColorMode converts "auto", "always" or "never" to a ColorMode,
// defaulting to ColorAuto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "yes", "true":
		return ColorAlways
	case "never", "no", "false":
		return ColorNever
	default:
		return ColorAuto
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

// ColorizeLine applies color to an entire log line based on its level.
func ColorizeLine(level config.LogLevel, line string) string {
	switch level {
	case config.LevelDebug:
		return colorGray + line + colorReset
	case config.LevelWarn:
		return colorYellow + line + colorReset
	case config.LevelError:
		return colorRed + line + colorReset
	case config.LevelFatal:
		return colorBold + colorRed + line + colorReset
	default:
		return line // INFO and UNKNOWN use default color
	}
}

// FormatLine formats a tailed line with optional coloring.
func FormatLine(line logtail.Line, colorize bool) string {
	if colorize {
		return ColorizeLine(line.Level, line.Text)
	}
	return line.Text
}

// WriteColoredLine writes a tailed line, colored according to mode.
func (wr *Writer) WriteColoredLine(line logtail.Line, mode ColorMode) error {
	_, err := fmt.Fprintln(wr.w, FormatLine(line, shouldColorize(mode, wr.w)))
	return err
}

// Heading returns title in bold when colorize is set.
func Heading(title string, colorize bool) string {
	if colorize {
		return colorBold + title + colorReset
	}
	return title
}

// Colorize reports whether w should receive ANSI colors under mode.
func Colorize(mode ColorMode, w io.Writer) bool {
	return shouldColorize(mode, w)
}
