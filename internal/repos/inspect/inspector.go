// Package inspect answers read-only questions about the state of a checkout.
package inspect

import "context"

// TernaryValue reports a comparison with the upstream branch.
type TernaryValue string

const (
	// TernaryYes means the comparison holds.
	TernaryYes TernaryValue = "yes"
	// TernaryNo means the comparison does not hold.
	TernaryNo TernaryValue = "no"
	// TernaryNoUpstream means the current branch tracks nothing to compare against.
	TernaryNoUpstream TernaryValue = "no-upstream"
)

// Condition names a single repository state flag.
type Condition string

const (
	// ConditionDirty marks a checkout with uncommitted or untracked changes.
	ConditionDirty Condition = "dirty"
)

// RepositoryState is the set of conditions observed on a checkout. Empty means clean.
type RepositoryState struct {
	Conditions []Condition
}

// Has reports whether the condition is present.
func (state RepositoryState) Has(condition Condition) bool {
	for _, present := range state.Conditions {
		if present == condition {
			return true
		}
	}
	return false
}

// IsClean reports whether no condition is present.
func (state RepositoryState) IsClean() bool {
	return len(state.Conditions) == 0
}

// String renders the state for display.
func (state RepositoryState) String() string {
	if state.Has(ConditionDirty) {
		return "Dirty"
	}
	return "Clean"
}

// StateInspector queries checkout state. Every query may fail independently and a
// failure concerns only the checkout it was asked about.
type StateInspector interface {
	IsDirty(executionContext context.Context, checkoutPath string) (bool, error)
	CurrentBranch(executionContext context.Context, checkoutPath string) (string, error)
	HasTrackingBranch(executionContext context.Context, checkoutPath string) (bool, error)
	AheadOfRemote(executionContext context.Context, checkoutPath string) (TernaryValue, error)
	BehindRemote(executionContext context.Context, checkoutPath string) (TernaryValue, error)
	HasStashedWork(executionContext context.Context, checkoutPath string) (bool, error)
	State(executionContext context.Context, checkoutPath string) (RepositoryState, error)
	StatusFlags(executionContext context.Context, checkoutPath string) ([]StatusFlag, error)
}
