// Package filter narrows a working set to checkouts matching state predicates.
package filter

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/repos/inspect"
)

// Predicate names a checkout property a filter can select on.
type Predicate string

const (
	// PredicateDirty selects checkouts with uncommitted or untracked changes.
	PredicateDirty Predicate = "dirty"
	// PredicateTracking selects checkouts whose current branch has an upstream.
	PredicateTracking Predicate = "tracking"
)

const (
	unknownPredicateTemplateConstant = "unknown filter %q (supported: %s)"
	inspectionSkippedMessageConstant = "excluding checkout after failed inspection"
	checkoutFieldNameConstant        = "checkout"
	predicateFieldNameConstant       = "predicate"
	predicateListSeparatorConstant   = ", "
)

// SupportedPredicates lists every predicate in a stable order.
func SupportedPredicates() []Predicate {
	return []Predicate{PredicateDirty, PredicateTracking}
}

// UnknownPredicateError reports a filter name outside the supported set.
type UnknownPredicateError struct {
	Name string
}

// Error describes the rejected filter name.
func (predicateError UnknownPredicateError) Error() string {
	supported := make([]string, 0, len(SupportedPredicates()))
	for _, predicate := range SupportedPredicates() {
		supported = append(supported, string(predicate))
	}
	return fmt.Sprintf(unknownPredicateTemplateConstant, predicateError.Name, strings.Join(supported, predicateListSeparatorConstant))
}

// ParsePredicates converts CLI filter values into predicates, preserving order.
// Duplicates are kept once; blank values are ignored.
func ParsePredicates(rawValues []string) ([]Predicate, error) {
	predicates := make([]Predicate, 0, len(rawValues))
	seen := make(map[Predicate]struct{}, len(rawValues))
	for _, rawValue := range rawValues {
		normalized := Predicate(strings.ToLower(strings.TrimSpace(rawValue)))
		if len(normalized) == 0 {
			continue
		}
		switch normalized {
		case PredicateDirty, PredicateTracking:
		default:
			return nil, UnknownPredicateError{Name: rawValue}
		}
		if _, duplicate := seen[normalized]; duplicate {
			continue
		}
		seen[normalized] = struct{}{}
		predicates = append(predicates, normalized)
	}
	return predicates, nil
}

// Evaluator applies predicates through a state inspector.
type Evaluator struct {
	inspector inspect.StateInspector
	logger    *zap.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(inspector inspect.StateInspector, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{inspector: inspector, logger: logger}
}

// Selection is the outcome of filtering a working set.
type Selection struct {
	// Checkouts matched at least one predicate, in working-set order.
	Checkouts []string
	// Uninspected matched nothing and had at least one failed inspection.
	Uninspected []string
}

// Apply keeps the checkouts for which at least one predicate holds, in their original order.
// An empty predicate list returns the working set unchanged. A failed inspection counts as
// a non-match for that predicate.
func (evaluator *Evaluator) Apply(executionContext context.Context, workingSet []string, predicates []Predicate) []string {
	return evaluator.Select(executionContext, workingSet, predicates).Checkouts
}

// Select is Apply that also reports the checkouts left out because they could not be inspected.
func (evaluator *Evaluator) Select(executionContext context.Context, workingSet []string, predicates []Predicate) Selection {
	if len(predicates) == 0 {
		return Selection{Checkouts: workingSet}
	}

	selection := Selection{Checkouts: make([]string, 0, len(workingSet))}
	for _, checkout := range workingSet {
		matched, inspectionFailed := evaluator.matchesAny(executionContext, checkout, predicates)
		switch {
		case matched:
			selection.Checkouts = append(selection.Checkouts, checkout)
		case inspectionFailed:
			selection.Uninspected = append(selection.Uninspected, checkout)
		}
	}
	return selection
}

func (evaluator *Evaluator) matchesAny(executionContext context.Context, checkout string, predicates []Predicate) (bool, bool) {
	inspectionFailed := false
	for _, predicate := range predicates {
		matched, evaluationError := evaluator.evaluate(executionContext, checkout, predicate)
		if evaluationError != nil {
			inspectionFailed = true
			evaluator.logger.Debug(inspectionSkippedMessageConstant,
				zap.String(checkoutFieldNameConstant, checkout),
				zap.String(predicateFieldNameConstant, string(predicate)),
				zap.Error(evaluationError),
			)
			continue
		}
		if matched {
			return true, false
		}
	}
	return false, inspectionFailed
}

func (evaluator *Evaluator) evaluate(executionContext context.Context, checkout string, predicate Predicate) (bool, error) {
	switch predicate {
	case PredicateDirty:
		state, stateError := evaluator.inspector.State(executionContext, checkout)
		if stateError != nil {
			return false, stateError
		}
		return state.Has(inspect.ConditionDirty), nil
	case PredicateTracking:
		return evaluator.inspector.HasTrackingBranch(executionContext, checkout)
	default:
		return false, UnknownPredicateError{Name: string(predicate)}
	}
}

// Apply filters a working set with a one-off Evaluator.
func Apply(executionContext context.Context, workingSet []string, predicates []Predicate, inspector inspect.StateInspector) []string {
	return NewEvaluator(inspector, nil).Apply(executionContext, workingSet, predicates)
}
