// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// persistedState is the JSON shape of the log's state file: the current
// tail offset and the checkpoint table keyed by consumer id. Recent batch
// ids are not part of it: the idempotency cache lives only in memory, so a
// batch_id resubmitted after the log is reopened is appended again.
type persistedState struct {
	TailOffset  Offset                `json:"tail_offset"`
	Checkpoints map[string]Checkpoint `json:"checkpoints"`
}

// writeStateFile atomically replaces the state file at path with the
// marshaled state via write-temp-then-rename, so a reader never observes
// a partially written state file.
func writeStateFile(path string, state persistedState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal recorder state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp state file into place: %w", err)
	}
	return nil
}

// readStateFile loads the state file at path, returning a zero-value state
// (not an error) if the file does not exist yet.
func readStateFile(path string) (persistedState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return persistedState{Checkpoints: map[string]Checkpoint{}}, nil
	}
	if err != nil {
		return persistedState{}, fmt.Errorf("read state file: %w", err)
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return persistedState{}, fmt.Errorf("parse state file: %w", err)
	}
	if state.Checkpoints == nil {
		state.Checkpoints = map[string]Checkpoint{}
	}
	return state, nil
}
