package discovery

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	hiddenDirectoryPrefixConstant      = "."
	unreadableDirectoryMessageConstant = "skipping unreadable directory"
	scanCompletedMessageConstant       = "checkout scan completed"
	scanRootMissingMessageConstant     = "scan root is not a directory"
	directoryFieldNameConstant         = "directory"
	rootFieldNameConstant              = "root"
	checkoutCountFieldNameConstant     = "checkout_count"
)

// FilesystemScanner discovers checkout roots beneath a directory.
type FilesystemScanner struct {
	fileSystem afero.Fs
	probe      CheckoutProbe
	logger     *zap.Logger
}

// NewFilesystemScanner constructs a scanner; nil arguments select the OS filesystem and a no-op logger.
func NewFilesystemScanner(fileSystem afero.Fs, logger *zap.Logger) *FilesystemScanner {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesystemScanner{
		fileSystem: fileSystem,
		probe:      NewCheckoutProbe(fileSystem),
		logger:     logger,
	}
}

// Scan returns every checkout root under root, sorted by path.
// A missing or non-directory root yields an empty result.
// Hidden directories are not entered and checkouts are never descended into.
func (scanner *FilesystemScanner) Scan(root string) []string {
	trimmedRoot := strings.TrimSpace(root)
	if len(trimmedRoot) == 0 {
		return []string{}
	}
	cleanedRoot := filepath.Clean(trimmedRoot)

	rootInfo, statError := scanner.fileSystem.Stat(cleanedRoot)
	if statError != nil || !rootInfo.IsDir() {
		scanner.logger.Debug(scanRootMissingMessageConstant, zap.String(rootFieldNameConstant, cleanedRoot))
		return []string{}
	}

	if scanner.probe.IsCheckout(cleanedRoot) {
		return []string{cleanedRoot}
	}

	checkouts := make([]string, 0)
	scanner.walk(cleanedRoot, &checkouts)
	sort.Strings(checkouts)

	scanner.logger.Debug(scanCompletedMessageConstant,
		zap.String(rootFieldNameConstant, cleanedRoot),
		zap.Int(checkoutCountFieldNameConstant, len(checkouts)),
	)
	return checkouts
}

func (scanner *FilesystemScanner) walk(directory string, checkouts *[]string) {
	entries, readError := afero.ReadDir(scanner.fileSystem, directory)
	if readError != nil {
		scanner.logger.Debug(unreadableDirectoryMessageConstant,
			zap.String(directoryFieldNameConstant, directory),
			zap.Error(readError),
		)
		return
	}

	directoryIsCheckout := scanner.probe.IsCheckout(directory)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		entryName := entry.Name()
		if scanner.shouldPrune(entryName, directoryIsCheckout) {
			continue
		}

		entryPath := filepath.Join(directory, entryName)
		if scanner.probe.IsCheckout(entryPath) {
			*checkouts = append(*checkouts, entryPath)
			continue
		}
		scanner.walk(entryPath, checkouts)
	}
}

// shouldPrune drops hidden directories and anything living beside a .git entry,
// which keeps object-store internals from being reported as checkouts.
func (scanner *FilesystemScanner) shouldPrune(entryName string, parentIsCheckout bool) bool {
	if strings.HasPrefix(entryName, hiddenDirectoryPrefixConstant) {
		return true
	}
	return parentIsCheckout && entryName != GitMetadataDirectoryName
}
