package fanout

import (
	"fmt"
	"strings"
	"time"
)

const (
	aggregateErrorSingularTemplateConstant = "errors occurred in %d checkout"
	aggregateErrorPluralTemplateConstant   = "errors occurred in %d checkouts"
	summaryTemplateConstant                = "Summary: total.checkouts=%d succeeded=%d failed=%d duration_ms=%d"
)

// ExecutionOutcome records the result of running an operation in one checkout.
type ExecutionOutcome struct {
	Checkout string
	Error    error
}

// Succeeded reports whether the operation completed in the checkout.
func (outcome ExecutionOutcome) Succeeded() bool {
	return outcome.Error == nil
}

// InvocationReport holds one outcome per visited checkout, in visiting order.
type InvocationReport struct {
	Outcomes []ExecutionOutcome
	Duration time.Duration
}

// Failures returns the failed outcomes in visiting order.
func (report InvocationReport) Failures() []ExecutionOutcome {
	failures := make([]ExecutionOutcome, 0)
	for _, outcome := range report.Outcomes {
		if !outcome.Succeeded() {
			failures = append(failures, outcome)
		}
	}
	return failures
}

// Failed reports whether at least one checkout failed.
func (report InvocationReport) Failed() bool {
	return len(report.Failures()) > 0
}

// Err returns an AggregateError when any checkout failed and nil otherwise.
func (report InvocationReport) Err() error {
	failures := report.Failures()
	if len(failures) == 0 {
		return nil
	}
	return AggregateError{Failures: failures}
}

// SummaryLine renders the run totals on one line.
func (report InvocationReport) SummaryLine() string {
	failed := len(report.Failures())
	return fmt.Sprintf(summaryTemplateConstant, len(report.Outcomes), len(report.Outcomes)-failed, failed, report.Duration.Milliseconds())
}

// AggregateError summarizes every failed checkout of a run.
type AggregateError struct {
	Failures []ExecutionOutcome
}

// Error reports the failure count.
func (aggregateError AggregateError) Error() string {
	if len(aggregateError.Failures) == 1 {
		return fmt.Sprintf(aggregateErrorSingularTemplateConstant, 1)
	}
	return fmt.Sprintf(aggregateErrorPluralTemplateConstant, len(aggregateError.Failures))
}

// Unwrap exposes the individual checkout errors.
func (aggregateError AggregateError) Unwrap() []error {
	causes := make([]error, 0, len(aggregateError.Failures))
	for _, failure := range aggregateError.Failures {
		causes = append(causes, failure.Error)
	}
	return causes
}

// Checkouts lists the failed checkout paths.
func (aggregateError AggregateError) Checkouts() []string {
	checkouts := make([]string, 0, len(aggregateError.Failures))
	for _, failure := range aggregateError.Failures {
		checkouts = append(checkouts, failure.Checkout)
	}
	return checkouts
}

// CheckoutError describes why an operation failed in a checkout.
type CheckoutError struct {
	Label    string
	Checkout string
	ExitCode int
	Cause    error
}

// Error renders the non-zero exit or the start failure.
func (checkoutError CheckoutError) Error() string {
	if checkoutError.ExitCode != 0 {
		return fmt.Sprintf("%s failed in checkout `%s` with exit code %d", checkoutError.Label, checkoutError.Checkout, checkoutError.ExitCode)
	}
	return fmt.Sprintf("%s could not run in checkout `%s`: %s", checkoutError.Label, checkoutError.Checkout, strings.TrimSpace(fmt.Sprint(checkoutError.Cause)))
}

// Unwrap exposes the execution error.
func (checkoutError CheckoutError) Unwrap() error {
	return checkoutError.Cause
}
