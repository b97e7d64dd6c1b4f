package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyemirov/multigit/internal/execshell"
)

const (
	gitStatusSubcommandConstant               = "status"
	gitStatusPorcelainFlagConstant            = "--porcelain=v1"
	gitStatusUntrackedFlagConstant            = "--untracked-files=normal"
	gitRevParseSubcommandConstant             = "rev-parse"
	gitAbbrevRefFlagConstant                  = "--abbrev-ref"
	gitHeadReferenceConstant                  = "HEAD"
	gitSymbolicRefSubcommandConstant          = "symbolic-ref"
	gitQuietFlagConstant                      = "-q"
	gitForEachRefSubcommandConstant           = "for-each-ref"
	gitUpstreamFormatFlagConstant             = "--format=%(upstream:short)|%(upstream:track)"
	gitUpstreamFieldSeparatorConstant         = "|"
	gitUpstreamGoneMarkerConstant             = "[gone]"
	gitRevListSubcommandConstant              = "rev-list"
	gitLeftRightFlagConstant                  = "--left-right"
	gitCountFlagConstant                      = "--count"
	gitHeadUpstreamRangeConstant              = "HEAD...@{u}"
	gitStashSubcommandConstant                = "stash"
	gitStashListSubcommandConstant            = "list"
	detachedHeadExitCodeConstant              = 1
	repositoryPathFieldNameConstant           = "repository_path"
	requiredValueMessageConstant              = "value required"
	executorNotConfiguredMessageConstant      = "git executor not configured"
	repositoryOperationErrorTemplateConstant  = "%s operation failed"
	repositoryOperationErrorWithCauseConstant = "%s operation failed: %s"
	invalidRepositoryInputTemplateConstant    = "%s: %s"
	unexpectedCountOutputTemplateConstant     = "unexpected ahead/behind output %q"
	worktreeStatusOperationNameConstant       = RepositoryOperationName("WorktreeStatus")
	currentBranchOperationNameConstant        = RepositoryOperationName("GetCurrentBranch")
	upstreamBranchOperationNameConstant       = RepositoryOperationName("GetUpstreamBranch")
	aheadBehindOperationNameConstant          = RepositoryOperationName("CountAheadBehind")
	stashCountOperationNameConstant           = RepositoryOperationName("CountStashes")
)

// GitCommandExecutor exposes the subset of execshell functionality required by RepositoryManager.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager answers read-only questions about a checkout through the git binary.
type RepositoryManager struct {
	executor GitCommandExecutor
}

var (
	// ErrGitExecutorNotConfigured indicates the RepositoryManager was constructed without a git executor.
	ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
)

// InvalidRepositoryInputError indicates validation failures for repository operations.
type InvalidRepositoryInputError struct {
	FieldName string
	Message   string
}

// Error describes the validation failure.
func (inputError InvalidRepositoryInputError) Error() string {
	return fmt.Sprintf(invalidRepositoryInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryOperationName captures descriptive names for repository operations.
type RepositoryOperationName string

// RepositoryOperationError wraps execution failures for git operations.
type RepositoryOperationError struct {
	Operation RepositoryOperationName
	Cause     error
}

// Error describes the repository operation failure.
func (operationError RepositoryOperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(repositoryOperationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(repositoryOperationErrorWithCauseConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying error.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// UpstreamBranch describes the remote branch tracked by the current local branch.
type UpstreamBranch struct {
	Name       string
	Configured bool
}

// NewRepositoryManager constructs a RepositoryManager for the provided executor.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree returns true when the repository has no staged, unstaged or untracked changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	status, statusError := manager.WorktreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(status) == 0, nil
}

// WorktreeStatus returns the porcelain v1 status entries for the repository.
// Entries keep their two-character status prefix intact.
func (manager *RepositoryManager) WorktreeStatus(executionContext context.Context, repositoryPath string) ([]string, error) {
	trimmedPath, validationError := requirePath(repositoryPath)
	if validationError != nil {
		return nil, validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant, gitStatusUntrackedFlagConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return nil, RepositoryOperationError{Operation: worktreeStatusOperationNameConstant, Cause: executionError}
	}

	return splitOutputLines(executionResult.StandardOutput), nil
}

// GetCurrentBranch returns the abbreviated name of HEAD ("HEAD" when detached).
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedPath, validationError := requirePath(repositoryPath)
	if validationError != nil {
		return "", validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return "", RepositoryOperationError{Operation: currentBranchOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetUpstreamBranch reports the upstream of the current branch. A detached HEAD,
// a branch without upstream, and an upstream whose remote ref is gone all report Configured=false.
func (manager *RepositoryManager) GetUpstreamBranch(executionContext context.Context, repositoryPath string) (UpstreamBranch, error) {
	trimmedPath, validationError := requirePath(repositoryPath)
	if validationError != nil {
		return UpstreamBranch{}, validationError
	}

	symbolicResult, symbolicError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitSymbolicRefSubcommandConstant, gitQuietFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: trimmedPath,
	})
	if symbolicError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(symbolicError, &failedError) && failedError.ExitCode() == detachedHeadExitCodeConstant {
			return UpstreamBranch{}, nil
		}
		return UpstreamBranch{}, RepositoryOperationError{Operation: upstreamBranchOperationNameConstant, Cause: symbolicError}
	}

	headReference := strings.TrimSpace(symbolicResult.StandardOutput)
	if len(headReference) == 0 {
		return UpstreamBranch{}, nil
	}

	upstreamResult, upstreamError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitForEachRefSubcommandConstant, gitUpstreamFormatFlagConstant, headReference},
		WorkingDirectory: trimmedPath,
	})
	if upstreamError != nil {
		return UpstreamBranch{}, RepositoryOperationError{Operation: upstreamBranchOperationNameConstant, Cause: upstreamError}
	}

	fields := strings.SplitN(strings.TrimSpace(upstreamResult.StandardOutput), gitUpstreamFieldSeparatorConstant, 2)
	upstreamName := strings.TrimSpace(fields[0])
	if len(upstreamName) == 0 {
		return UpstreamBranch{}, nil
	}
	if len(fields) > 1 && strings.TrimSpace(fields[1]) == gitUpstreamGoneMarkerConstant {
		return UpstreamBranch{Name: upstreamName}, nil
	}

	return UpstreamBranch{Name: upstreamName, Configured: true}, nil
}

// CountAheadBehind returns how many commits HEAD is ahead of and behind its upstream.
// Callers must confirm an upstream exists first.
func (manager *RepositoryManager) CountAheadBehind(executionContext context.Context, repositoryPath string) (int, int, error) {
	trimmedPath, validationError := requirePath(repositoryPath)
	if validationError != nil {
		return 0, 0, validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevListSubcommandConstant, gitLeftRightFlagConstant, gitCountFlagConstant, gitHeadUpstreamRangeConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return 0, 0, RepositoryOperationError{Operation: aheadBehindOperationNameConstant, Cause: executionError}
	}

	counts := strings.Fields(executionResult.StandardOutput)
	if len(counts) != 2 {
		return 0, 0, RepositoryOperationError{
			Operation: aheadBehindOperationNameConstant,
			Cause:     fmt.Errorf(unexpectedCountOutputTemplateConstant, executionResult.StandardOutput),
		}
	}

	aheadCount, aheadError := strconv.Atoi(counts[0])
	if aheadError != nil {
		return 0, 0, RepositoryOperationError{Operation: aheadBehindOperationNameConstant, Cause: aheadError}
	}
	behindCount, behindError := strconv.Atoi(counts[1])
	if behindError != nil {
		return 0, 0, RepositoryOperationError{Operation: aheadBehindOperationNameConstant, Cause: behindError}
	}

	return aheadCount, behindCount, nil
}

// CountStashes returns the number of stash entries.
func (manager *RepositoryManager) CountStashes(executionContext context.Context, repositoryPath string) (int, error) {
	trimmedPath, validationError := requirePath(repositoryPath)
	if validationError != nil {
		return 0, validationError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStashSubcommandConstant, gitStashListSubcommandConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return 0, RepositoryOperationError{Operation: stashCountOperationNameConstant, Cause: executionError}
	}

	return len(splitOutputLines(executionResult.StandardOutput)), nil
}

func requirePath(repositoryPath string) (string, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return "", InvalidRepositoryInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return trimmedPath, nil
}

func splitOutputLines(output string) []string {
	lines := strings.Split(output, "\n")
	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmedLine := strings.TrimRight(line, "\r")
		if len(strings.TrimSpace(trimmedLine)) == 0 {
			continue
		}
		entries = append(entries, trimmedLine)
	}
	return entries
}
