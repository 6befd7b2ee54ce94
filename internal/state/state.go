package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"bootstrap/internal/logger"
)

// ToolState records a tool this program installed.
// It records the installed version (when known), where it landed and how.
type ToolState struct {
	Version     string    `json:"version,omitempty"`
	InstallPath string    `json:"install_path,omitempty"`
	Method      string    `json:"method"`
	InstalledAt time.Time `json:"installed_at"`
}

// RepoState records the revision a configuration repository was last synced to.
type RepoState struct {
	Path     string    `json:"path"`
	Revision string    `json:"revision"`
	SyncedAt time.Time `json:"synced_at"`
}

// State holds the receipts of previous runs. It is informational only:
// nothing reads it to skip or resume a step.
type State struct {
	Tools map[string]ToolState `json:"tools"` // Map from tool name to its ToolState
	Repos map[string]RepoState `json:"repos"` // Map from repo name to its RepoState
}

// New returns an empty State with initialized maps.
func New() *State {
	return &State{
		Tools: make(map[string]ToolState),
		Repos: make(map[string]RepoState),
	}
}

// Load loads the saved state from a JSON file at the given path.
// If the file does not exist or cannot be parsed, it returns a new empty State.
func Load(fs afero.Fs, path string) *State {
	file, err := afero.ReadFile(fs, path)
	if err != nil {
		return New()
	}

	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		logger.Warn("[WARN] Ignoring unreadable state file %s: %v\n", path, err)
		return New()
	}

	// Ensure maps are initialized if JSON contained null for these fields
	if st.Tools == nil {
		st.Tools = make(map[string]ToolState)
	}
	if st.Repos == nil {
		st.Repos = make(map[string]RepoState)
	}
	return &st
}

// Save writes the given State to a JSON file at the given path, creating
// the parent directory when needed.
func Save(fs afero.Fs, path string, st *State) error {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal state")
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create state directory for %s", path)
	}
	if err := afero.WriteFile(fs, path, file, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write state file %s", path)
	}
	return nil
}
