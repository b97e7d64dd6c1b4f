package fanout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/execshell"
)

const (
	headerTemplateConstant                = "Running `%s` in %s\n\n"
	dividerTemplateConstant               = "\n%s\n\n"
	commandExecutorMissingMessageConstant = "fan-out command executor not configured"
	checkoutFailedLogMessageConstant      = "operation failed in checkout"
	checkoutFieldNameConstant             = "checkout"
	operationFieldNameConstant            = "operation"
)

// ErrCommandExecutorNotConfigured indicates NewExecutor received no command executor.
var ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessageConstant)

// CommandExecutor runs one shell command. execshell.ShellExecutor satisfies it.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// HeaderRenderer produces the line printed before the operation runs in a checkout.
type HeaderRenderer func(operation Operation, checkout string) string

// Executor visits checkouts one at a time and attaches each child process to the operator's streams.
type Executor struct {
	commandExecutor CommandExecutor
	input           io.Reader
	output          io.Writer
	errorOutput     io.Writer
	widthResolver   WidthResolver
	headerRenderer  HeaderRenderer
	dividers        bool
	logger          *zap.Logger
	clock           func() time.Time
}

// Option customises an Executor.
type Option func(*Executor)

// WithStreams replaces the standard streams used for headers and child processes.
func WithStreams(input io.Reader, output io.Writer, errorOutput io.Writer) Option {
	return func(executor *Executor) {
		if input != nil {
			executor.input = input
		}
		if output != nil {
			executor.output = output
		}
		if errorOutput != nil {
			executor.errorOutput = errorOutput
		}
	}
}

// WithWidthResolver overrides how the divider width is computed.
func WithWidthResolver(resolver WidthResolver) Option {
	return func(executor *Executor) {
		if resolver != nil {
			executor.widthResolver = resolver
		}
	}
}

// WithHeader replaces the default "Running `label` in checkout" header.
func WithHeader(renderer HeaderRenderer) Option {
	return func(executor *Executor) {
		if renderer != nil {
			executor.headerRenderer = renderer
		}
	}
}

// WithoutDividers suppresses the divider printed between checkouts.
func WithoutDividers() Option {
	return func(executor *Executor) {
		executor.dividers = false
	}
}

// WithLogger sets the logger receiving failure details and the run summary.
func WithLogger(logger *zap.Logger) Option {
	return func(executor *Executor) {
		if logger != nil {
			executor.logger = logger
		}
	}
}

// WithClock overrides the time source used for the run duration.
func WithClock(clock func() time.Time) Option {
	return func(executor *Executor) {
		if clock != nil {
			executor.clock = clock
		}
	}
}

// NewExecutor constructs an Executor bound to the process standard streams by default.
func NewExecutor(commandExecutor CommandExecutor, options ...Option) (*Executor, error) {
	if commandExecutor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}
	executor := &Executor{
		commandExecutor: commandExecutor,
		input:           os.Stdin,
		output:          os.Stdout,
		errorOutput:     os.Stderr,
		widthResolver:   TerminalWidth,
		headerRenderer:  runningHeader,
		dividers:        true,
		logger:          zap.NewNop(),
		clock:           time.Now,
	}
	for _, option := range options {
		option(executor)
	}
	return executor, nil
}

// Run executes the operation in every checkout of the working set, in order. Every checkout
// is attempted; the returned error is an AggregateError when any of them failed. An invalid
// operation is rejected before any checkout is visited.
func (executor *Executor) Run(executionContext context.Context, workingSet []string, operation Operation) (InvocationReport, error) {
	if validationError := operation.Validate(); validationError != nil {
		return InvocationReport{}, validationError
	}

	startTime := executor.clock()
	report := InvocationReport{Outcomes: make([]ExecutionOutcome, 0, len(workingSet))}
	showDividers := executor.dividers && len(workingSet) > 1
	divider := ""
	if showDividers {
		divider = renderDivider(executor.widthResolver(executor.output))
	}
	streams := &execshell.StandardStreams{Input: executor.input, Output: executor.output, Error: executor.errorOutput}

	for checkoutIndex, checkout := range workingSet {
		if showDividers && checkoutIndex > 0 {
			fmt.Fprintf(executor.output, dividerTemplateConstant, divider)
		}
		fmt.Fprint(executor.output, executor.headerRenderer(operation, checkout))

		outcome := ExecutionOutcome{Checkout: checkout}
		if _, executionError := executor.commandExecutor.Execute(executionContext, operation.shellCommand(checkout, streams)); executionError != nil {
			outcome.Error = NewCheckoutError(operation, checkout, executionError)
			fmt.Fprintln(executor.errorOutput, outcome.Error.Error())
			executor.logger.Debug(checkoutFailedLogMessageConstant,
				zap.String(checkoutFieldNameConstant, checkout),
				zap.String(operationFieldNameConstant, operation.Label()),
				zap.Error(executionError),
			)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.Duration = executor.clock().Sub(startTime)
	if len(workingSet) > 1 {
		executor.logger.Info(report.SummaryLine())
	}
	return report, report.Err()
}

func runningHeader(operation Operation, checkout string) string {
	return fmt.Sprintf(headerTemplateConstant, operation.Label(), checkout)
}

// NewCheckoutError describes an execution error for the operation in one checkout, carrying
// the exit code when the command ran and failed.
func NewCheckoutError(operation Operation, checkout string, executionError error) CheckoutError {
	checkoutError := CheckoutError{Label: operation.Label(), Checkout: checkout, Cause: executionError}
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		checkoutError.ExitCode = failedError.ExitCode()
	}
	return checkoutError
}
