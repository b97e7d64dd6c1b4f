package discovery

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// GitMetadataDirectoryName names the metadata entry that marks a checkout root.
const GitMetadataDirectoryName = ".git"

// CheckoutProbe answers whether a directory is the root of a git checkout.
type CheckoutProbe struct {
	fileSystem afero.Fs
}

// NewCheckoutProbe constructs a probe over the provided filesystem; nil selects the OS filesystem.
func NewCheckoutProbe(fileSystem afero.Fs) CheckoutProbe {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return CheckoutProbe{fileSystem: fileSystem}
}

// IsCheckout reports whether a .git entry exists directly beneath the path.
// A .git file (linked worktree or submodule) counts as well as a .git directory.
func (probe CheckoutProbe) IsCheckout(path string) bool {
	if len(path) == 0 {
		return false
	}
	_, statError := probe.fileSystem.Stat(filepath.Join(path, GitMetadataDirectoryName))
	return statError == nil
}
