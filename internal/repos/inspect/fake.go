package inspect

import (
	"context"
	"fmt"
)

// FakeState is the canned answer set a FakeInspector returns for one checkout.
type FakeState struct {
	Dirty    bool
	Branch   string
	Tracking bool
	Ahead    TernaryValue
	Behind   TernaryValue
	Stashed  bool
	Flags    []StatusFlag
	Failure  error
}

// FakeInspector serves canned states keyed by checkout path. Unknown paths fail.
type FakeInspector struct {
	States  map[string]FakeState
	Queries []string
}

// NewFakeInspector constructs a FakeInspector over the provided states.
func NewFakeInspector(states map[string]FakeState) *FakeInspector {
	return &FakeInspector{States: states}
}

func (inspector *FakeInspector) lookup(query string, checkoutPath string) (FakeState, error) {
	inspector.Queries = append(inspector.Queries, query+":"+checkoutPath)
	state, found := inspector.States[checkoutPath]
	if !found {
		return FakeState{}, inspectionError(checkoutPath, fmt.Errorf("no canned state for %s", checkoutPath))
	}
	if state.Failure != nil {
		return FakeState{}, inspectionError(checkoutPath, state.Failure)
	}
	return state, nil
}

// IsDirty returns the canned dirty flag.
func (inspector *FakeInspector) IsDirty(_ context.Context, checkoutPath string) (bool, error) {
	state, lookupError := inspector.lookup("dirty", checkoutPath)
	return state.Dirty, lookupError
}

// CurrentBranch returns the canned branch.
func (inspector *FakeInspector) CurrentBranch(_ context.Context, checkoutPath string) (string, error) {
	state, lookupError := inspector.lookup("branch", checkoutPath)
	return state.Branch, lookupError
}

// HasTrackingBranch returns the canned tracking flag.
func (inspector *FakeInspector) HasTrackingBranch(_ context.Context, checkoutPath string) (bool, error) {
	state, lookupError := inspector.lookup("tracking", checkoutPath)
	return state.Tracking, lookupError
}

// AheadOfRemote returns the canned ahead value.
func (inspector *FakeInspector) AheadOfRemote(_ context.Context, checkoutPath string) (TernaryValue, error) {
	state, lookupError := inspector.lookup("ahead", checkoutPath)
	if lookupError != nil {
		return "", lookupError
	}
	return ternaryOrNoUpstream(state.Ahead), nil
}

// BehindRemote returns the canned behind value.
func (inspector *FakeInspector) BehindRemote(_ context.Context, checkoutPath string) (TernaryValue, error) {
	state, lookupError := inspector.lookup("behind", checkoutPath)
	if lookupError != nil {
		return "", lookupError
	}
	return ternaryOrNoUpstream(state.Behind), nil
}

// HasStashedWork returns the canned stash flag.
func (inspector *FakeInspector) HasStashedWork(_ context.Context, checkoutPath string) (bool, error) {
	state, lookupError := inspector.lookup("stashes", checkoutPath)
	return state.Stashed, lookupError
}

// State derives the condition set from the canned dirty flag.
func (inspector *FakeInspector) State(_ context.Context, checkoutPath string) (RepositoryState, error) {
	state, lookupError := inspector.lookup("state", checkoutPath)
	if lookupError != nil {
		return RepositoryState{}, lookupError
	}
	if state.Dirty {
		return RepositoryState{Conditions: []Condition{ConditionDirty}}, nil
	}
	return RepositoryState{}, nil
}

// StatusFlags returns the canned flags.
func (inspector *FakeInspector) StatusFlags(_ context.Context, checkoutPath string) ([]StatusFlag, error) {
	state, lookupError := inspector.lookup("flags", checkoutPath)
	if lookupError != nil {
		return nil, lookupError
	}
	return state.Flags, nil
}

func ternaryOrNoUpstream(value TernaryValue) TernaryValue {
	if len(value) == 0 {
		return TernaryNoUpstream
	}
	return value
}
