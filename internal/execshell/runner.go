package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
)

const environmentAssignmentTemplateSeparatorConstant = "="

// OSCommandRunner spawns processes on the host operating system.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs an OSCommandRunner.
func NewOSCommandRunner() OSCommandRunner {
	return OSCommandRunner{}
}

// Run starts the command and waits for it. A non-zero exit is reported through
// ExecutionResult.ExitCode; only failures to start or wait surface as errors.
func (runner OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	process := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	process.Dir = command.Details.WorkingDirectory
	process.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer

	if streams := command.Details.Streams; streams != nil {
		process.Stdin = streams.Input
		process.Stdout = streams.Output
		process.Stderr = streams.Error
	} else {
		if len(command.Details.StandardInput) > 0 {
			process.Stdin = bytes.NewReader(command.Details.StandardInput)
		}
		process.Stdout = &standardOutput
		process.Stderr = &standardError
	}

	runError := process.Run()
	result := ExecutionResult{
		StandardOutput: standardOutput.String(),
		StandardError:  standardError.String(),
	}
	if runError == nil {
		return result, nil
	}

	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}

	return ExecutionResult{}, runError
}

func mergeEnvironment(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}

	overrideNames := make([]string, 0, len(overrides))
	for name := range overrides {
		overrideNames = append(overrideNames, name)
	}
	sort.Strings(overrideNames)

	merged := make([]string, 0, len(base)+len(overrides))
	for _, assignment := range base {
		if _, overridden := overrides[environmentName(assignment)]; overridden {
			continue
		}
		merged = append(merged, assignment)
	}
	for _, name := range overrideNames {
		merged = append(merged, name+environmentAssignmentTemplateSeparatorConstant+overrides[name])
	}
	return merged
}

func environmentName(assignment string) string {
	for index := 0; index < len(assignment); index++ {
		if assignment[index] == environmentAssignmentTemplateSeparatorConstant[0] {
			return assignment[:index]
		}
	}
	return assignment
}
