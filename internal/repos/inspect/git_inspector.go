package inspect

import (
	"context"
	"errors"

	"github.com/tyemirov/multigit/internal/gitrepo"
	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
)

// ErrRepositoryQueriesNotConfigured indicates a GitInspector was built without a query backend.
var ErrRepositoryQueriesNotConfigured = errors.New("repository queries not configured")

// RepositoryQueries exposes the git queries the inspector is built from.
type RepositoryQueries interface {
	WorktreeStatus(executionContext context.Context, repositoryPath string) ([]string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetUpstreamBranch(executionContext context.Context, repositoryPath string) (gitrepo.UpstreamBranch, error)
	CountAheadBehind(executionContext context.Context, repositoryPath string) (int, int, error)
	CountStashes(executionContext context.Context, repositoryPath string) (int, error)
}

// GitInspector answers state queries through the git command line.
type GitInspector struct {
	queries RepositoryQueries
}

// NewGitInspector constructs a GitInspector.
func NewGitInspector(queries RepositoryQueries) (*GitInspector, error) {
	if queries == nil {
		return nil, ErrRepositoryQueriesNotConfigured
	}
	return &GitInspector{queries: queries}, nil
}

// IsDirty reports whether the checkout has staged, unstaged, untracked or conflicted entries.
func (inspector *GitInspector) IsDirty(executionContext context.Context, checkoutPath string) (bool, error) {
	entries, statusError := inspector.queries.WorktreeStatus(executionContext, checkoutPath)
	if statusError != nil {
		return false, inspectionError(checkoutPath, statusError)
	}
	return HasChanges(entries), nil
}

// CurrentBranch returns the short name of HEAD.
func (inspector *GitInspector) CurrentBranch(executionContext context.Context, checkoutPath string) (string, error) {
	branch, branchError := inspector.queries.GetCurrentBranch(executionContext, checkoutPath)
	if branchError != nil {
		return "", inspectionError(checkoutPath, branchError)
	}
	return branch, nil
}

// HasTrackingBranch reports whether the current branch has a live upstream.
func (inspector *GitInspector) HasTrackingBranch(executionContext context.Context, checkoutPath string) (bool, error) {
	upstream, upstreamError := inspector.queries.GetUpstreamBranch(executionContext, checkoutPath)
	if upstreamError != nil {
		return false, inspectionError(checkoutPath, upstreamError)
	}
	return upstream.Configured, nil
}

// AheadOfRemote reports whether HEAD has commits its upstream lacks.
func (inspector *GitInspector) AheadOfRemote(executionContext context.Context, checkoutPath string) (TernaryValue, error) {
	ahead, _, compareError := inspector.compareWithUpstream(executionContext, checkoutPath)
	return ahead, compareError
}

// BehindRemote reports whether the upstream has commits HEAD lacks.
func (inspector *GitInspector) BehindRemote(executionContext context.Context, checkoutPath string) (TernaryValue, error) {
	_, behind, compareError := inspector.compareWithUpstream(executionContext, checkoutPath)
	return behind, compareError
}

// HasStashedWork reports whether the stash list is non-empty.
func (inspector *GitInspector) HasStashedWork(executionContext context.Context, checkoutPath string) (bool, error) {
	stashCount, stashError := inspector.queries.CountStashes(executionContext, checkoutPath)
	if stashError != nil {
		return false, inspectionError(checkoutPath, stashError)
	}
	return stashCount > 0, nil
}

// State computes the condition set for the checkout.
func (inspector *GitInspector) State(executionContext context.Context, checkoutPath string) (RepositoryState, error) {
	dirty, dirtyError := inspector.IsDirty(executionContext, checkoutPath)
	if dirtyError != nil {
		return RepositoryState{}, dirtyError
	}
	if dirty {
		return RepositoryState{Conditions: []Condition{ConditionDirty}}, nil
	}
	return RepositoryState{}, nil
}

// StatusFlags lists the kinds of change present in the checkout.
func (inspector *GitInspector) StatusFlags(executionContext context.Context, checkoutPath string) ([]StatusFlag, error) {
	entries, statusError := inspector.queries.WorktreeStatus(executionContext, checkoutPath)
	if statusError != nil {
		return nil, inspectionError(checkoutPath, statusError)
	}
	return ParseStatusFlags(entries), nil
}

func (inspector *GitInspector) compareWithUpstream(executionContext context.Context, checkoutPath string) (TernaryValue, TernaryValue, error) {
	upstream, upstreamError := inspector.queries.GetUpstreamBranch(executionContext, checkoutPath)
	if upstreamError != nil {
		return "", "", inspectionError(checkoutPath, upstreamError)
	}
	if !upstream.Configured {
		return TernaryNoUpstream, TernaryNoUpstream, nil
	}

	aheadCount, behindCount, countError := inspector.queries.CountAheadBehind(executionContext, checkoutPath)
	if countError != nil {
		return "", "", inspectionError(checkoutPath, countError)
	}
	return ternaryFromCount(aheadCount), ternaryFromCount(behindCount), nil
}

func ternaryFromCount(count int) TernaryValue {
	if count > 0 {
		return TernaryYes
	}
	return TernaryNo
}

func inspectionError(checkoutPath string, cause error) error {
	return repoerrors.Wrap(repoerrors.OperationInspect, checkoutPath, repoerrors.ErrInspectionFailed, cause)
}
