package fanout

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
)

const (
	dividerCharacterConstant    = "#"
	columnsEnvironmentConstant  = "COLUMNS"
	defaultDividerWidthConstant = 80
)

// fileDescriptor is satisfied by *os.File.
type fileDescriptor interface {
	Fd() uintptr
}

// WidthResolver reports the column count used for dividers.
type WidthResolver func(output io.Writer) int

// TerminalWidth asks the terminal attached to output for its width, then consults
// COLUMNS, then falls back to 80.
func TerminalWidth(output io.Writer) int {
	return resolveWidth(output, os.Getenv)
}

func resolveWidth(output io.Writer, lookupEnvironment func(string) string) int {
	if descriptor, ok := output.(fileDescriptor); ok {
		if width, _, sizeError := term.GetSize(descriptor.Fd()); sizeError == nil && width > 0 {
			return width
		}
	}
	if columns, parseError := strconv.Atoi(strings.TrimSpace(lookupEnvironment(columnsEnvironmentConstant))); parseError == nil && columns > 0 {
		return columns
	}
	return defaultDividerWidthConstant
}

func renderDivider(width int) string {
	if width <= 0 {
		width = defaultDividerWidthConstant
	}
	return strings.Repeat(dividerCharacterConstant, width)
}
