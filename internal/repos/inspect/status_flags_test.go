package inspect_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/multigit/internal/repos/inspect"
)

func TestParseStatusFlags(testInstance *testing.T) {
	testCases := []struct {
		name          string
		entries       []string
		expectedFlags []inspect.StatusFlag
		expectChanges bool
	}{
		{
			name:          "clean",
			entries:       []string{},
			expectedFlags: []inspect.StatusFlag{},
		},
		{
			name:          "ignored_only",
			entries:       []string{"!! build/"},
			expectedFlags: []inspect.StatusFlag{},
		},
		{
			name:          "untracked",
			entries:       []string{"?? notes.txt"},
			expectedFlags: []inspect.StatusFlag{inspect.StatusWorktreeNew},
			expectChanges: true,
		},
		{
			name:    "index_and_worktree_on_one_entry",
			entries: []string{"MM main.go", "A  added.go"},
			expectedFlags: []inspect.StatusFlag{
				inspect.StatusIndexNew,
				inspect.StatusIndexModified,
				inspect.StatusWorktreeModified,
			},
			expectChanges: true,
		},
		{
			name:    "every_kind_in_display_order",
			entries: []string{"UU merge.go", " T link", "R  old -> new", " D gone.go", "D  staged-gone.go", "T  kind", "?? fresh", " M edit.go", "C  copy -> copied"},
			expectedFlags: []inspect.StatusFlag{
				inspect.StatusIndexNew,
				inspect.StatusIndexDeleted,
				inspect.StatusIndexRenamed,
				inspect.StatusIndexTypeChange,
				inspect.StatusWorktreeNew,
				inspect.StatusWorktreeModified,
				inspect.StatusWorktreeDeleted,
				inspect.StatusWorktreeType,
				inspect.StatusConflicted,
			},
			expectChanges: true,
		},
		{
			name:          "conflict_codes",
			entries:       []string{"AA both-added", "DU deleted-by-us"},
			expectedFlags: []inspect.StatusFlag{inspect.StatusConflicted},
			expectChanges: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedFlags, inspect.ParseStatusFlags(testCase.entries))
			require.Equal(testInstance, testCase.expectChanges, inspect.HasChanges(testCase.entries))
		})
	}
}

func TestRepositoryStateRendering(testInstance *testing.T) {
	dirty := inspect.RepositoryState{Conditions: []inspect.Condition{inspect.ConditionDirty}}
	require.True(testInstance, dirty.Has(inspect.ConditionDirty))
	require.False(testInstance, dirty.IsClean())
	require.Equal(testInstance, "Dirty", dirty.String())

	clean := inspect.RepositoryState{}
	require.True(testInstance, clean.IsClean())
	require.Equal(testInstance, "Clean", clean.String())
}
