// Package prompt asks the operator to confirm destructive or wide-reaching commands.
package prompt

// ConfirmationPrompter asks a yes/no question.
type ConfirmationPrompter interface {
	Confirm(question string) (bool, error)
}
