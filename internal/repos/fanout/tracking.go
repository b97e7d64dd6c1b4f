package fanout

import (
	"context"

	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/repos/filter"
	"github.com/tyemirov/multigit/internal/repos/inspect"
)

// TrackingCheckouts narrows a working set to checkouts whose current branch has an upstream.
// Checkouts that cannot be inspected are dropped. pull runs on this set.
func TrackingCheckouts(executionContext context.Context, workingSet []string, inspector inspect.StateInspector, logger *zap.Logger) []string {
	return filter.NewEvaluator(inspector, logger).Apply(executionContext, workingSet, []filter.Predicate{filter.PredicateTracking})
}
