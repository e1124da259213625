package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"sdkpcm/internal/depset"
)

// Current schema version - increment when Snapshot format changes
const snapshotSchemaVersion uint16 = 1

// ErrSchemaMismatch is returned by Load for snapshots written by another format version.
var ErrSchemaMismatch = errors.New("registry snapshot schema mismatch")

// Snapshot is the on-disk form of a registry. Dependency sets are stored as
// the module names they reach because arena refs only live for one evaluation.
type Snapshot struct {
	Schema  uint16
	Entries []SnapshotEntry
}

// SnapshotEntry is one compiled module inside a Snapshot.
type SnapshotEntry struct {
	Name              string
	ModuleName        string
	IsFramework       bool
	Output            string
	IsSwiftModule     bool
	InputRelativePath string
	DepModules        []string
	ClangDeps         []string
}

// Snapshot captures every entry of r. sets resolves the entries' dependency refs.
func (r *Registry) Snapshot(sets *depset.Arena) Snapshot {
	snap := Snapshot{Schema: snapshotSchemaVersion}
	for _, info := range r.All() {
		entry := SnapshotEntry{
			Name:              info.Name,
			ModuleName:        info.ModuleName,
			IsFramework:       info.IsFramework,
			Output:            info.Output,
			IsSwiftModule:     info.IsSwiftModule,
			InputRelativePath: info.InputRelativePath,
		}
		if sets != nil && !info.Deps.IsEmpty() {
			entry.DepModules = sets.Labels(info.Deps)
			entry.ClangDeps = append([]string(nil), sets.Project(info.Deps, depset.ClangDeps)...)
		}
		snap.Entries = append(snap.Entries, entry)
	}
	return snap
}

// Save writes a msgpack snapshot of r to path, replacing it atomically.
func (r *Registry) Save(path string, sets *depset.Arena) error {
	snap := r.Snapshot(sets)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("registry snapshot: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return fmt.Errorf("registry snapshot: %w", err)
	}
	tmp := f.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(&snap); err != nil {
		_ = f.Close()
		return fmt.Errorf("registry snapshot: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("registry snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads a snapshot written by Save.
func Load(path string) (Snapshot, error) {
	var snap Snapshot
	// #nosec G304 -- path is supplied by the user
	f, err := os.Open(path)
	if err != nil {
		return snap, fmt.Errorf("registry snapshot: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("registry snapshot %s: decode: %w", path, err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return Snapshot{}, fmt.Errorf("registry snapshot %s: schema %d, want %d: %w", path, snap.Schema, snapshotSchemaVersion, ErrSchemaMismatch)
	}
	return snap, nil
}

// Lookup returns the entry for a module name.
func (s Snapshot) Lookup(name string) (SnapshotEntry, bool) {
	for _, e := range s.Entries {
		if e.ModuleName == name {
			return e, true
		}
	}
	return SnapshotEntry{}, false
}
