package prompt

import (
	"errors"
	"io"

	"github.com/mattn/go-isatty"
)

const nonInteractiveMessageConstant = "confirmation requires an interactive terminal (use --yes to skip it)"

// ErrNonInteractive indicates a confirmation was needed while standard input is not a terminal.
var ErrNonInteractive = errors.New(nonInteractiveMessageConstant)

// TerminalInput is a reader backed by a file descriptor, such as *os.File.
type TerminalInput interface {
	io.Reader
	Fd() uintptr
}

// TerminalDetector reports whether a file descriptor is attached to a terminal.
type TerminalDetector func(fileDescriptor uintptr) bool

// IsTerminal accepts regular and Cygwin/MSYS terminals.
func IsTerminal(fileDescriptor uintptr) bool {
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}

type terminalPrompter struct {
	input    TerminalInput
	detector TerminalDetector
	base     ConfirmationPrompter
}

// NewTerminalPrompter prompts on input/output, refusing with ErrNonInteractive when input is not a
// terminal. A nil detector selects IsTerminal.
func NewTerminalPrompter(input TerminalInput, output io.Writer, detector TerminalDetector) ConfirmationPrompter {
	if detector == nil {
		detector = IsTerminal
	}
	return &terminalPrompter{input: input, detector: detector, base: NewIOConfirmationPrompter(input, output)}
}

func (prompter *terminalPrompter) Confirm(question string) (bool, error) {
	if prompter.input == nil || !prompter.detector(prompter.input.Fd()) {
		return false, ErrNonInteractive
	}
	return prompter.base.Confirm(question)
}
