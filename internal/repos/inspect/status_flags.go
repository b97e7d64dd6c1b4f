package inspect

import "strings"

// StatusFlag names a kind of change present in a checkout.
type StatusFlag string

const (
	StatusIndexNew         StatusFlag = "new"
	StatusIndexModified    StatusFlag = "modified"
	StatusIndexDeleted     StatusFlag = "deleted"
	StatusIndexRenamed     StatusFlag = "renamed"
	StatusIndexTypeChange  StatusFlag = "typechange"
	StatusWorktreeNew      StatusFlag = "wt-new"
	StatusWorktreeModified StatusFlag = "wt-modified"
	StatusWorktreeDeleted  StatusFlag = "wt-deleted"
	StatusWorktreeType     StatusFlag = "wt-typechange"
	StatusWorktreeRenamed  StatusFlag = "wt-renamed"
	StatusConflicted       StatusFlag = "conflicted"
)

const (
	untrackedStatusCode     = "??"
	ignoredStatusCode       = "!!"
	porcelainStatusCodeSize = 2
)

// orderedStatusFlags is the display order of status flags.
var orderedStatusFlags = []StatusFlag{
	StatusIndexNew,
	StatusIndexModified,
	StatusIndexDeleted,
	StatusIndexRenamed,
	StatusIndexTypeChange,
	StatusWorktreeNew,
	StatusWorktreeModified,
	StatusWorktreeDeleted,
	StatusWorktreeType,
	StatusWorktreeRenamed,
	StatusConflicted,
}

var conflictStatusCodes = map[string]struct{}{
	"DD": {}, "AU": {}, "UD": {}, "UA": {}, "DU": {}, "AA": {}, "UU": {},
}

var indexStatusFlags = map[byte]StatusFlag{
	'A': StatusIndexNew,
	'C': StatusIndexNew,
	'M': StatusIndexModified,
	'D': StatusIndexDeleted,
	'R': StatusIndexRenamed,
	'T': StatusIndexTypeChange,
}

var worktreeStatusFlags = map[byte]StatusFlag{
	'M': StatusWorktreeModified,
	'D': StatusWorktreeDeleted,
	'T': StatusWorktreeType,
	'R': StatusWorktreeRenamed,
}

// ParseStatusFlags maps porcelain v1 entries to the distinct flags they carry, in display order.
// Ignored entries contribute nothing.
func ParseStatusFlags(entries []string) []StatusFlag {
	present := make(map[StatusFlag]struct{})
	for _, entry := range entries {
		for _, flag := range entryStatusFlags(entry) {
			present[flag] = struct{}{}
		}
	}

	flags := make([]StatusFlag, 0, len(present))
	for _, flag := range orderedStatusFlags {
		if _, found := present[flag]; found {
			flags = append(flags, flag)
		}
	}
	return flags
}

// HasChanges reports whether any entry marks the checkout dirty.
func HasChanges(entries []string) bool {
	for _, entry := range entries {
		if len(entryStatusFlags(entry)) > 0 {
			return true
		}
	}
	return false
}

func entryStatusFlags(entry string) []StatusFlag {
	if len(strings.TrimSpace(entry)) == 0 || len(entry) < porcelainStatusCodeSize {
		return nil
	}

	statusCode := entry[:porcelainStatusCodeSize]
	switch statusCode {
	case ignoredStatusCode:
		return nil
	case untrackedStatusCode:
		return []StatusFlag{StatusWorktreeNew}
	}
	if _, conflicted := conflictStatusCodes[statusCode]; conflicted {
		return []StatusFlag{StatusConflicted}
	}

	flags := make([]StatusFlag, 0, porcelainStatusCodeSize)
	if flag, found := indexStatusFlags[statusCode[0]]; found {
		flags = append(flags, flag)
	}
	if flag, found := worktreeStatusFlags[statusCode[1]]; found {
		flags = append(flags, flag)
	}
	return flags
}
