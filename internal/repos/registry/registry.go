// Package registry persists the checkouts and containers an operator has registered.
package registry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	repoerrors "github.com/tyemirov/multigit/internal/repos/errors"
	pathutils "github.com/tyemirov/multigit/internal/utils/path"
)

const (
	applicationDirectoryNameConstant = "multigit"
	registryFileNameConstant         = "registry.yaml"
	temporaryFileSuffixConstant      = ".tmp"
	registryDirectoryPermissions     = 0o755
	registryFilePermissions          = 0o644
	malformedRegistryMessageConstant = "registry file is malformed; continuing with an empty registry"
	registryLoadedMessageConstant    = "registry loaded"
	registrySavedMessageConstant     = "registry saved"
	registryPathFieldNameConstant    = "registry_path"
	checkoutCountFieldNameConstant   = "checkout_count"
	containerCountFieldNameConstant  = "container_count"
	xdgConfigHomeEnvironmentVariable = "XDG_CONFIG_HOME"
)

// Kind classifies a registered path.
type Kind string

const (
	// KindCheckout marks a path that was a checkout root when registered.
	KindCheckout Kind = "checkout"
	// KindContainer marks a path that is scanned for checkouts.
	KindContainer Kind = "container"
)

// Snapshot is the persisted content of the registry.
type Snapshot struct {
	Checkouts  []string `yaml:"checkouts"`
	Containers []string `yaml:"containers"`
}

// IsEmpty reports whether nothing is registered.
func (snapshot Snapshot) IsEmpty() bool {
	return len(snapshot.Checkouts) == 0 && len(snapshot.Containers) == 0
}

// Registration records how a path was classified.
type Registration struct {
	Path string
	Kind Kind
}

// CheckoutProbe classifies registration candidates.
type CheckoutProbe interface {
	IsCheckout(path string) bool
}

// Store reads and mutates the registry file.
type Store struct {
	fileSystem  afero.Fs
	filePath    string
	probe       CheckoutProbe
	lockFactory LockFactory
	logger      *zap.Logger
	sanitizer   *pathutils.PathSanitizer
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithFileSystem overrides the filesystem used for registry IO.
func WithFileSystem(fileSystem afero.Fs) StoreOption {
	return func(store *Store) {
		if fileSystem != nil {
			store.fileSystem = fileSystem
		}
	}
}

// WithLogger installs a logger for registry diagnostics.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(store *Store) {
		if logger != nil {
			store.logger = logger
		}
	}
}

// WithLockFactory overrides how the registry write lock is obtained.
func WithLockFactory(factory LockFactory) StoreOption {
	return func(store *Store) {
		if factory != nil {
			store.lockFactory = factory
		}
	}
}

// WithCheckoutProbe overrides how registration candidates are classified.
func WithCheckoutProbe(probe CheckoutProbe) StoreOption {
	return func(store *Store) {
		if probe != nil {
			store.probe = probe
		}
	}
}

// NewStore constructs a Store for the registry file at filePath.
func NewStore(filePath string, probe CheckoutProbe, options ...StoreOption) (*Store, error) {
	sanitizer := pathutils.NewPathSanitizerWithConfiguration(nil, pathutils.PathSanitizerConfiguration{MakeAbsolute: true})
	sanitizedPath := sanitizer.SanitizePath(filePath)
	if len(sanitizedPath) == 0 {
		return nil, repoerrors.WrapMessage(repoerrors.OperationRegistryLoad, "", repoerrors.ErrPathMissing, "registry file path required")
	}

	store := &Store{
		fileSystem: afero.NewOsFs(),
		filePath:   sanitizedPath,
		probe:      probe,
		logger:     zap.NewNop(),
		sanitizer:  sanitizer,
	}
	for _, option := range options {
		option(store)
	}
	if store.lockFactory == nil {
		store.lockFactory = defaultLockFactory(store.fileSystem)
	}
	if store.probe == nil {
		return nil, repoerrors.WrapMessage(repoerrors.OperationRegistryLoad, sanitizedPath, repoerrors.ErrPathMissing, "checkout probe required")
	}
	return store, nil
}

// DefaultFilePath resolves the registry location under the user configuration directory.
func DefaultFilePath() (string, error) {
	configurationHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariable))
	if len(configurationHome) == 0 {
		userConfigurationDirectory, directoryError := os.UserConfigDir()
		if directoryError != nil {
			return "", directoryError
		}
		configurationHome = userConfigurationDirectory
	}
	return filepath.Join(configurationHome, applicationDirectoryNameConstant, registryFileNameConstant), nil
}

// FilePath exposes the resolved registry location.
func (store *Store) FilePath() string {
	return store.filePath
}

// Load reads the registry. A missing file yields an empty snapshot; a malformed one is
// logged at warn level and treated as empty.
func (store *Store) Load() (Snapshot, error) {
	contents, readError := afero.ReadFile(store.fileSystem, store.filePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, repoerrors.Wrap(repoerrors.OperationRegistryLoad, store.filePath, repoerrors.ErrRegistryUnreadable, readError)
	}

	snapshot := Snapshot{}
	if decodeError := yaml.Unmarshal(contents, &snapshot); decodeError != nil {
		store.logger.Warn(malformedRegistryMessageConstant,
			zap.String(registryPathFieldNameConstant, store.filePath),
			zap.Error(repoerrors.Wrap(repoerrors.OperationRegistryLoad, store.filePath, repoerrors.ErrRegistryMalformed, decodeError)),
		)
		return Snapshot{}, nil
	}

	normalized := store.normalize(snapshot)
	store.logger.Debug(registryLoadedMessageConstant,
		zap.String(registryPathFieldNameConstant, store.filePath),
		zap.Int(checkoutCountFieldNameConstant, len(normalized.Checkouts)),
		zap.Int(containerCountFieldNameConstant, len(normalized.Containers)),
	)
	return normalized, nil
}

// Register classifies each path as a checkout or a container and persists it.
// A path moves between sets when its classification changes.
func (store *Store) Register(paths []string) ([]Registration, error) {
	candidates := store.sanitizer.Sanitize(paths)
	if len(candidates) == 0 {
		return nil, repoerrors.WrapMessage(repoerrors.OperationRegister, "", repoerrors.ErrPathMissing, "no path to register")
	}

	registrations := make([]Registration, 0, len(candidates))
	mutationError := store.mutate(repoerrors.OperationRegister, func(snapshot Snapshot) Snapshot {
		checkouts := toSet(snapshot.Checkouts)
		containers := toSet(snapshot.Containers)
		for _, candidate := range candidates {
			if store.probe.IsCheckout(candidate) {
				checkouts[candidate] = struct{}{}
				delete(containers, candidate)
				registrations = append(registrations, Registration{Path: candidate, Kind: KindCheckout})
				continue
			}
			containers[candidate] = struct{}{}
			delete(checkouts, candidate)
			registrations = append(registrations, Registration{Path: candidate, Kind: KindContainer})
		}
		return Snapshot{Checkouts: fromSet(checkouts), Containers: fromSet(containers)}
	})
	if mutationError != nil {
		return nil, mutationError
	}
	return registrations, nil
}

// Unregister removes each path from both sets and returns the paths that were present.
func (store *Store) Unregister(paths []string) ([]string, error) {
	candidates := store.sanitizer.Sanitize(paths)
	if len(candidates) == 0 {
		return nil, repoerrors.WrapMessage(repoerrors.OperationUnregister, "", repoerrors.ErrPathMissing, "no path to unregister")
	}

	removed := make([]string, 0, len(candidates))
	mutationError := store.mutate(repoerrors.OperationUnregister, func(snapshot Snapshot) Snapshot {
		checkouts := toSet(snapshot.Checkouts)
		containers := toSet(snapshot.Containers)
		for _, candidate := range candidates {
			_, inCheckouts := checkouts[candidate]
			_, inContainers := containers[candidate]
			if inCheckouts || inContainers {
				removed = append(removed, candidate)
			}
			delete(checkouts, candidate)
			delete(containers, candidate)
		}
		return Snapshot{Checkouts: fromSet(checkouts), Containers: fromSet(containers)}
	})
	if mutationError != nil {
		return nil, mutationError
	}
	return removed, nil
}

// UnregisterAll clears both sets.
func (store *Store) UnregisterAll() error {
	return store.mutate(repoerrors.OperationUnregister, func(Snapshot) Snapshot {
		return Snapshot{Checkouts: []string{}, Containers: []string{}}
	})
}

func (store *Store) mutate(operation repoerrors.Operation, transform func(Snapshot) Snapshot) error {
	if directoryError := store.fileSystem.MkdirAll(filepath.Dir(store.filePath), registryDirectoryPermissions); directoryError != nil {
		return repoerrors.Wrap(operation, store.filePath, repoerrors.ErrRegistryWriteFailed, directoryError)
	}

	lock := store.lockFactory(store.filePath + lockFileSuffixConstant)
	if lockError := lock.Lock(); lockError != nil {
		return repoerrors.Wrap(operation, store.filePath, repoerrors.ErrRegistryLockFailed, lockError)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	current, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	return store.save(transform(current))
}

func (store *Store) save(snapshot Snapshot) error {
	normalized := store.normalize(snapshot)

	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(normalized); encodeError != nil {
		return repoerrors.Wrap(repoerrors.OperationRegistrySave, store.filePath, repoerrors.ErrRegistryWriteFailed, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return repoerrors.Wrap(repoerrors.OperationRegistrySave, store.filePath, repoerrors.ErrRegistryWriteFailed, closeError)
	}

	temporaryPath := store.filePath + temporaryFileSuffixConstant
	if writeError := afero.WriteFile(store.fileSystem, temporaryPath, buffer.Bytes(), registryFilePermissions); writeError != nil {
		return repoerrors.Wrap(repoerrors.OperationRegistrySave, store.filePath, repoerrors.ErrRegistryWriteFailed, writeError)
	}
	if renameError := store.fileSystem.Rename(temporaryPath, store.filePath); renameError != nil {
		_ = store.fileSystem.Remove(temporaryPath)
		return repoerrors.Wrap(repoerrors.OperationRegistrySave, store.filePath, repoerrors.ErrRegistryWriteFailed, renameError)
	}

	store.logger.Debug(registrySavedMessageConstant,
		zap.String(registryPathFieldNameConstant, store.filePath),
		zap.Int(checkoutCountFieldNameConstant, len(normalized.Checkouts)),
		zap.Int(containerCountFieldNameConstant, len(normalized.Containers)),
	)
	return nil
}

func (store *Store) normalize(snapshot Snapshot) Snapshot {
	return Snapshot{
		Checkouts:  fromSet(toSet(store.sanitizer.Sanitize(snapshot.Checkouts))),
		Containers: fromSet(toSet(store.sanitizer.Sanitize(snapshot.Containers))),
	}
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		set[path] = struct{}{}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
