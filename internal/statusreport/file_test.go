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

package statusreport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.json")

	now := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)
	want := Report{
		GeneratedAt:  now,
		Gate:         SchedulerGate{Active: true, ControlPlaneEnabled: true},
		StalledPanes: []string{"pane-a", "pane-b"},
		Backup: BackupState{
			Enabled:     true,
			Schedule:    "daily",
			NextRunAt:   &now,
			CountKept:   5,
			Destination: "/var/backups/frankenterm",
		},
	}

	require.NoError(t, Write(path, want))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, want.Gate, got.Gate)
	assert.Equal(t, want.StalledPanes, got.StalledPanes)
	assert.Equal(t, want.Backup.Schedule, got.Backup.Schedule)
	assert.True(t, got.GeneratedAt.Equal(want.GeneratedAt))
}

func TestRead_MissingFileErrors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
