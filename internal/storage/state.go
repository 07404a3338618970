package storage

import (
	"encoding/json"
	"os"
	"time"
)

// StateFile persists fetch resume state as a small JSON object. Writes are
// read-modify-write: keys other than the ones owned here survive a write
// instead of being clobbered.
type StateFile struct {
	path string
}

// NewStateFile creates a state file handle at the given path
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// RecordLastRetrieved records the terminal issue key of a fetch pass along
// with the pass's run ID and a timestamp
func (s *StateFile) RecordLastRetrieved(lastKey, runID string) error {
	state := make(map[string]interface{})
	if data, err := os.ReadFile(s.path); err == nil {
		// An unreadable state file starts over; resume state is best-effort
		_ = json.Unmarshal(data, &state)
	}

	state["last_ticket_retrieved"] = lastKey
	state["run_id"] = runID
	state["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// LastRetrieved returns the last recorded terminal issue key, or "" when no
// state has been recorded. Resume stays manual: callers print this and pass
// --start themselves.
func (s *StateFile) LastRetrieved() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var state map[string]interface{}
	if err := json.Unmarshal(data, &state); err != nil {
		return "", err
	}
	key, _ := state["last_ticket_retrieved"].(string)
	return key, nil
}
