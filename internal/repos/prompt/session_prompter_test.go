package prompt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/multigit/internal/repos/prompt"
)

type stubConfirmationPrompter struct {
	response    bool
	returnError error
	calls       int
}

func (prompter *stubConfirmationPrompter) Confirm(string) (bool, error) {
	prompter.calls++
	return prompter.response, prompter.returnError
}

func TestSessionPrompterSkipsPromptWhenAssumeYesEnabled(testInstance *testing.T) {
	base := &stubConfirmationPrompter{returnError: errors.New("must not be asked")}
	dispatcher := prompt.NewSessionPrompter(base, true)

	confirmed, confirmError := dispatcher.Confirm("Open 3 repositories?")
	require.NoError(testInstance, confirmError)
	require.True(testInstance, confirmed)
	require.Equal(testInstance, 0, base.calls)
}

func TestSessionPrompterDelegatesWithoutAssumeYes(testInstance *testing.T) {
	base := &stubConfirmationPrompter{response: false}
	dispatcher := prompt.NewSessionPrompter(base, false)

	confirmed, confirmError := dispatcher.Confirm("Open 3 repositories?")
	require.NoError(testInstance, confirmError)
	require.False(testInstance, confirmed)
	require.Equal(testInstance, 1, base.calls)
}

func TestSessionPrompterWithoutBaseDeclines(testInstance *testing.T) {
	confirmed, confirmError := prompt.NewSessionPrompter(nil, false).Confirm("Open 3 repositories?")
	require.NoError(testInstance, confirmError)
	require.False(testInstance, confirmed)
}
