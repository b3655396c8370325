// Package telemetry sends anonymous usage events for Vanessa. Telemetry
// is off until enabled, and events never include the signed-in identity.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// StateFileName is the opt-in state file inside the Vanessa home.
const StateFileName = "telemetry.json"

// State is the persisted opt-in flag and the random id events are
// reported under.
type State struct {
	Enabled     bool      `json:"enabled"`
	AnonymousID string    `json:"anonymous_id"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// LoadState reads the state from dir. A missing file gives a disabled
// state with a fresh anonymous id.
func LoadState(fsys afero.Fs, dir string) (*State, error) {
	if dir == "" {
		return nil, errors.New("telemetry: no state directory")
	}
	st := &State{}
	data, err := afero.ReadFile(fsys, filepath.Join(dir, StateFileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read telemetry state: %w", err)
	default:
		if err := json.Unmarshal(data, st); err != nil {
			return nil, fmt.Errorf("parse telemetry state: %w", err)
		}
	}
	if st.AnonymousID == "" {
		st.AnonymousID = uuid.NewString()
	}
	return st, nil
}

// Save writes the state to dir, readable only by the owner.
func (s *State) Save(fsys afero.Fs, dir string) error {
	if dir == "" {
		return errors.New("telemetry: no state directory")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create telemetry dir: %w", err)
	}
	s.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, filepath.Join(dir, StateFileName), data, 0o600); err != nil {
		return fmt.Errorf("write telemetry state: %w", err)
	}
	return nil
}
