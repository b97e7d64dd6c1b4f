package gitrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/multigit/internal/execshell"
	"github.com/tyemirov/multigit/internal/gitrepo"
)

const (
	testRepositoryPathConstant               = "/tmp/repo"
	testCleanWorktreeCaseNameConstant        = "clean"
	testDirtyWorktreeCaseNameConstant        = "dirty"
	testWorktreeErrorCaseNameConstant        = "error"
	testValidationCaseNameConstant           = "validation"
	testCurrentBranchSuccessCaseNameConstant = "current_branch_success"
	testCurrentBranchErrorCaseNameConstant   = "current_branch_error"
	testUpstreamConfiguredCaseNameConstant   = "upstream_configured"
	testUpstreamMissingCaseNameConstant      = "upstream_missing"
	testUpstreamGoneCaseNameConstant         = "upstream_gone"
	testUpstreamDetachedCaseNameConstant     = "upstream_detached"
	testUpstreamFailureCaseNameConstant      = "upstream_failure"
	testHeadReferenceConstant                = "refs/heads/main"
)

type stubGitExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func failedGitCommand(exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

func TestNewRepositoryManagerValidation(testInstance *testing.T) {
	testInstance.Run(testValidationCaseNameConstant, func(testInstance *testing.T) {
		manager, creationError := gitrepo.NewRepositoryManager(nil)
		require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
		require.Nil(testInstance, manager)
	})
}

func TestWorktreeStatus(testInstance *testing.T) {
	testCases := []struct {
		name            string
		executor        *stubGitExecutor
		repositoryPath  string
		expectedEntries []string
		expectedClean   bool
		errorType       any
	}{
		{
			name: testCleanWorktreeCaseNameConstant,
			executor: &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: ""}, nil
			}},
			repositoryPath:  testRepositoryPathConstant,
			expectedEntries: []string{},
			expectedClean:   true,
		},
		{
			name: testDirtyWorktreeCaseNameConstant,
			executor: &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: " M tracked.go\n?? new.go\n"}, nil
			}},
			repositoryPath:  testRepositoryPathConstant,
			expectedEntries: []string{" M tracked.go", "?? new.go"},
		},
		{
			name: testWorktreeErrorCaseNameConstant,
			executor: &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, errors.New("boom")
			}},
			repositoryPath: testRepositoryPathConstant,
			errorType:      gitrepo.RepositoryOperationError{},
		},
		{
			name:           testValidationCaseNameConstant,
			executor:       &stubGitExecutor{},
			repositoryPath: "  ",
			errorType:      gitrepo.InvalidRepositoryInputError{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager, creationError := gitrepo.NewRepositoryManager(testCase.executor)
			require.NoError(testInstance, creationError)

			entries, statusError := manager.WorktreeStatus(context.Background(), testCase.repositoryPath)
			if testCase.errorType != nil {
				require.Error(testInstance, statusError)
				require.IsType(testInstance, testCase.errorType, statusError)
				return
			}
			require.NoError(testInstance, statusError)
			require.Equal(testInstance, testCase.expectedEntries, entries)

			clean, cleanError := manager.CheckCleanWorktree(context.Background(), testCase.repositoryPath)
			require.NoError(testInstance, cleanError)
			require.Equal(testInstance, testCase.expectedClean, clean)

			recorded := testCase.executor.recordedDetails[0]
			require.Equal(testInstance, []string{"status", "--porcelain=v1", "--untracked-files=normal"}, recorded.Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, recorded.WorkingDirectory)
		})
	}
}

func TestGetCurrentBranch(testInstance *testing.T) {
	testCases := []struct {
		name           string
		executor       *stubGitExecutor
		expectedBranch string
		expectError    bool
	}{
		{
			name: testCurrentBranchSuccessCaseNameConstant,
			executor: &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: "main\n"}, nil
			}},
			expectedBranch: "main",
		},
		{
			name: testCurrentBranchErrorCaseNameConstant,
			executor: &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{}, failedGitCommand(128)
			}},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager, creationError := gitrepo.NewRepositoryManager(testCase.executor)
			require.NoError(testInstance, creationError)

			branch, branchError := manager.GetCurrentBranch(context.Background(), testRepositoryPathConstant)
			if testCase.expectError {
				require.Error(testInstance, branchError)
				require.IsType(testInstance, gitrepo.RepositoryOperationError{}, branchError)
				return
			}
			require.NoError(testInstance, branchError)
			require.Equal(testInstance, testCase.expectedBranch, branch)
			require.Equal(testInstance, []string{"rev-parse", "--abbrev-ref", "HEAD"}, testCase.executor.recordedDetails[0].Arguments)
		})
	}
}

func TestGetUpstreamBranch(testInstance *testing.T) {
	testCases := []struct {
		name             string
		symbolicResult   execshell.ExecutionResult
		symbolicError    error
		upstreamOutput   string
		expectedUpstream gitrepo.UpstreamBranch
		expectError      bool
	}{
		{
			name:             testUpstreamConfiguredCaseNameConstant,
			symbolicResult:   execshell.ExecutionResult{StandardOutput: testHeadReferenceConstant + "\n"},
			upstreamOutput:   "origin/main|[ahead 1]\n",
			expectedUpstream: gitrepo.UpstreamBranch{Name: "origin/main", Configured: true},
		},
		{
			name:             testUpstreamMissingCaseNameConstant,
			symbolicResult:   execshell.ExecutionResult{StandardOutput: testHeadReferenceConstant + "\n"},
			upstreamOutput:   "|\n",
			expectedUpstream: gitrepo.UpstreamBranch{},
		},
		{
			name:             testUpstreamGoneCaseNameConstant,
			symbolicResult:   execshell.ExecutionResult{StandardOutput: testHeadReferenceConstant + "\n"},
			upstreamOutput:   "origin/feature|[gone]\n",
			expectedUpstream: gitrepo.UpstreamBranch{Name: "origin/feature"},
		},
		{
			name:             testUpstreamDetachedCaseNameConstant,
			symbolicError:    failedGitCommand(1),
			expectedUpstream: gitrepo.UpstreamBranch{},
		},
		{
			name:          testUpstreamFailureCaseNameConstant,
			symbolicError: failedGitCommand(128),
			expectError:   true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{executeFunc: func(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
				if details.Arguments[0] == "symbolic-ref" {
					return testCase.symbolicResult, testCase.symbolicError
				}
				require.Equal(testInstance, testHeadReferenceConstant, details.Arguments[len(details.Arguments)-1])
				return execshell.ExecutionResult{StandardOutput: testCase.upstreamOutput}, nil
			}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			upstream, upstreamError := manager.GetUpstreamBranch(context.Background(), testRepositoryPathConstant)
			if testCase.expectError {
				require.Error(testInstance, upstreamError)
				return
			}
			require.NoError(testInstance, upstreamError)
			require.Equal(testInstance, testCase.expectedUpstream, upstream)
		})
	}
}

func TestCountAheadBehind(testInstance *testing.T) {
	testCases := []struct {
		name           string
		output         string
		expectedAhead  int
		expectedBehind int
		expectError    bool
	}{
		{name: "counts", output: "2\t5\n", expectedAhead: 2, expectedBehind: 5},
		{name: "even", output: "0\t0\n"},
		{name: "malformed", output: "garbage\n", expectError: true},
		{name: "non_numeric", output: "a\tb\n", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
				return execshell.ExecutionResult{StandardOutput: testCase.output}, nil
			}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(testInstance, creationError)

			ahead, behind, countError := manager.CountAheadBehind(context.Background(), testRepositoryPathConstant)
			if testCase.expectError {
				require.Error(testInstance, countError)
				return
			}
			require.NoError(testInstance, countError)
			require.Equal(testInstance, testCase.expectedAhead, ahead)
			require.Equal(testInstance, testCase.expectedBehind, behind)
			require.Equal(testInstance, []string{"rev-list", "--left-right", "--count", "HEAD...@{u}"}, executor.recordedDetails[0].Arguments)
		})
	}
}

func TestCountStashes(testInstance *testing.T) {
	executor := &stubGitExecutor{executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
		return execshell.ExecutionResult{StandardOutput: "stash@{0}: WIP on main\nstash@{1}: WIP on main\n"}, nil
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	count, countError := manager.CountStashes(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, countError)
	require.Equal(testInstance, 2, count)
}
