package prompt

// NewSessionPrompter returns a prompter that confirms everything without asking when
// assumeYes is set, and defers to base otherwise.
func NewSessionPrompter(base ConfirmationPrompter, assumeYes bool) ConfirmationPrompter {
	return &sessionPrompter{basePrompter: base, assumeYes: assumeYes}
}

type sessionPrompter struct {
	basePrompter ConfirmationPrompter
	assumeYes    bool
}

func (dispatcher *sessionPrompter) Confirm(question string) (bool, error) {
	if dispatcher.assumeYes {
		return true, nil
	}
	if dispatcher.basePrompter == nil {
		return false, nil
	}
	return dispatcher.basePrompter.Confirm(question)
}
