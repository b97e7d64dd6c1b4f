package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/execshell"
	"github.com/tyemirov/multigit/internal/gitrepo"
	"github.com/tyemirov/multigit/internal/repos/discovery"
	"github.com/tyemirov/multigit/internal/repos/inspect"
	"github.com/tyemirov/multigit/internal/repos/workingset"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveScanner returns the provided scanner or a filesystem-backed default.
func ResolveScanner(existing workingset.Scanner, fileSystem afero.Fs, logger *zap.Logger) workingset.Scanner {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemScanner(ResolveFileSystem(fileSystem), logger)
}

// ResolveShellExecutor returns the provided executor or constructs one over the host command runner.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger, humanReadableLogging bool) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadableLogging)
}

// ResolveStateInspector returns the provided inspector or binds a git-backed one to the executor.
func ResolveStateInspector(existing inspect.StateInspector, executor gitrepo.GitCommandExecutor) (inspect.StateInspector, error) {
	if existing != nil {
		return existing, nil
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, managerError
	}
	return inspect.NewGitInspector(repositoryManager)
}
