package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter colors a piece of CLI output. Without color, the text is wrapped
// in plain-text markers instead so the meaning survives.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments like fmt.Sprint.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.wrap(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.wrap(fmt.Sprintf(format, a...))
}

func (f Formatter) wrap(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Mark returns ✓ or ✗.
func Mark(ok bool) string {
	if ok {
		return Success.Sprint("✓")
	}
	return Error.Sprint("✗")
}

// Hint formats a follow-up suggestion line.
func Hint(msg string) string {
	return Info.Sprint("→") + " " + msg
}

// EnsureNewline appends a newline unless s already ends with one.
func EnsureNewline(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}

// noColor honors NO_COLOR (https://no-color.org/) and fatih/color's own
// terminal detection.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Path formats secrets trees, export directories and files.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Highlight formats profile names. 'quoted' without color.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary details such as a secret's role. (parenthesized) without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}
)
