package pathutils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	homeDirectorySymbolConstant = "~"
)

// HomeDirectoryResolver locates the current user's home directory.
type HomeDirectoryResolver func() (string, error)

// PathSanitizerConfiguration toggles optional normalization steps.
type PathSanitizerConfiguration struct {
	MakeAbsolute bool
	Deduplicate  bool
}

// PathSanitizer trims, expands and cleans user-supplied filesystem paths.
type PathSanitizer struct {
	resolveHomeDirectory HomeDirectoryResolver
	configuration        PathSanitizerConfiguration
}

// NewPathSanitizer constructs a sanitizer using the process home directory.
func NewPathSanitizer() *PathSanitizer {
	return NewPathSanitizerWithConfiguration(nil, PathSanitizerConfiguration{})
}

// NewPathSanitizerWithConfiguration constructs a sanitizer with explicit options.
func NewPathSanitizerWithConfiguration(resolver HomeDirectoryResolver, configuration PathSanitizerConfiguration) *PathSanitizer {
	if resolver == nil {
		resolver = os.UserHomeDir
	}
	return &PathSanitizer{resolveHomeDirectory: resolver, configuration: configuration}
}

// SanitizePath normalizes a single path. Blank input yields an empty string.
func (sanitizer *PathSanitizer) SanitizePath(rawPath string) string {
	trimmedPath := strings.TrimSpace(rawPath)
	if len(trimmedPath) == 0 {
		return ""
	}

	expandedPath := sanitizer.expandHomeDirectory(trimmedPath)
	if sanitizer.configuration.MakeAbsolute {
		if absolutePath, absoluteError := filepath.Abs(expandedPath); absoluteError == nil {
			expandedPath = absolutePath
		}
	}
	return filepath.Clean(expandedPath)
}

// Sanitize normalizes every path, dropping blanks. Nil is returned when nothing remains.
func (sanitizer *PathSanitizer) Sanitize(rawPaths []string) []string {
	sanitized := make([]string, 0, len(rawPaths))
	seen := make(map[string]struct{}, len(rawPaths))
	for _, rawPath := range rawPaths {
		sanitizedPath := sanitizer.SanitizePath(rawPath)
		if len(sanitizedPath) == 0 {
			continue
		}
		if sanitizer.configuration.Deduplicate {
			if _, duplicate := seen[sanitizedPath]; duplicate {
				continue
			}
			seen[sanitizedPath] = struct{}{}
		}
		sanitized = append(sanitized, sanitizedPath)
	}

	if len(sanitized) == 0 {
		return nil
	}
	if sanitizer.configuration.Deduplicate {
		sort.Strings(sanitized)
	}
	return sanitized
}

func (sanitizer *PathSanitizer) expandHomeDirectory(path string) string {
	if path != homeDirectorySymbolConstant && !strings.HasPrefix(path, homeDirectorySymbolConstant+string(filepath.Separator)) {
		return path
	}
	homeDirectory, homeError := sanitizer.resolveHomeDirectory()
	if homeError != nil || len(homeDirectory) == 0 {
		return path
	}
	if path == homeDirectorySymbolConstant {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, homeDirectorySymbolConstant+string(filepath.Separator)))
}
