package prompt

import (
	"bufio"
	"io"
	"strings"
)

const questionSuffixConstant = " [y/N] "

// affirmativeAnswers lists the responses that confirm. Matching ignores case and surrounding space.
var affirmativeAnswers = map[string]struct{}{
	"y":   {},
	"yes": {},
}

// IOConfirmationPrompter asks on a writer and reads one line of answer from a reader.
type IOConfirmationPrompter struct {
	lines  *bufio.Scanner
	output io.Writer
}

// NewIOConfirmationPrompter constructs a prompter over input and output. A nil output skips the question.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{lines: bufio.NewScanner(input), output: output}
}

// Confirm reports true only for an affirmative answer. End of input declines.
func (prompter *IOConfirmationPrompter) Confirm(question string) (bool, error) {
	if prompter.output != nil {
		if _, writeError := io.WriteString(prompter.output, question+questionSuffixConstant); writeError != nil {
			return false, writeError
		}
	}

	if !prompter.lines.Scan() {
		return false, prompter.lines.Err()
	}
	return isAffirmative(prompter.lines.Text()), nil
}

func isAffirmative(answer string) bool {
	_, accepted := affirmativeAnswers[strings.ToLower(strings.TrimSpace(answer))]
	return accepted
}
