// Package workingset computes the ordered set of checkouts a command operates on.
package workingset

import (
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/multigit/internal/repos/registry"
)

const (
	scopeOverrideMessageConstant   = "resolving working set from scope override"
	registryResolveMessageConstant = "resolving working set from registry"
	scopeFieldNameConstant         = "scope"
	checkoutCountFieldNameConstant = "checkout_count"
	containerFieldNameConstant     = "container_count"
)

// Scanner discovers checkouts beneath a directory.
type Scanner interface {
	Scan(root string) []string
}

// Resolver turns a registry snapshot or a scope override into a working set.
type Resolver struct {
	scanner Scanner
	logger  *zap.Logger
}

// NewResolver constructs a Resolver backed by the provided scanner.
func NewResolver(scanner Scanner, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{scanner: scanner, logger: logger}
}

// Resolve returns the sorted, deduplicated working set. A non-blank scopeOverride
// replaces the registry entirely with a scan of that directory.
func (resolver *Resolver) Resolve(snapshot registry.Snapshot, scopeOverride string) []string {
	trimmedScope := strings.TrimSpace(scopeOverride)
	if len(trimmedScope) > 0 {
		resolver.logger.Debug(scopeOverrideMessageConstant, zap.String(scopeFieldNameConstant, trimmedScope))
		return normalize(resolver.scanner.Scan(trimmedScope))
	}

	resolver.logger.Debug(registryResolveMessageConstant,
		zap.Int(checkoutCountFieldNameConstant, len(snapshot.Checkouts)),
		zap.Int(containerFieldNameConstant, len(snapshot.Containers)),
	)

	candidates := make([]string, 0, len(snapshot.Checkouts))
	candidates = append(candidates, snapshot.Checkouts...)
	for _, container := range snapshot.Containers {
		candidates = append(candidates, resolver.scanner.Scan(container)...)
	}
	return normalize(candidates)
}

func normalize(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	workingSet := make([]string, 0, len(paths))
	for _, path := range paths {
		trimmedPath := strings.TrimSpace(path)
		if len(trimmedPath) == 0 {
			continue
		}
		cleanedPath := filepath.Clean(trimmedPath)
		if _, duplicate := seen[cleanedPath]; duplicate {
			continue
		}
		seen[cleanedPath] = struct{}{}
		workingSet = append(workingSet, cleanedPath)
	}
	sort.Strings(workingSet)
	return workingSet
}
