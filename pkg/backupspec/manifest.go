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

package backupspec

import "time"

// Archive file names, fixed by the collaborator contract.
const (
	DatabaseFile    = "database.db"
	ManifestFile    = "manifest.json"
	ChecksumsFile   = "checksums.sha256"
	DatabaseSQLFile = "database.sql" // optional text dump
)

// CurrentSchemaVersion is the manifest schema version this build writes and
// the highest one it accepts on restore.
const CurrentSchemaVersion = 1

// Manifest is the machine-readable metadata written alongside an archive's
// database.db. A restore reads this before touching the database file.
type Manifest struct {
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"` // ISO-8601 on the wire via time.Time's MarshalJSON
	RowCounts     RowCounts `json:"row_counts"`
	Checksums     Checksums `json:"checksums"`
	HasSQLDump    bool      `json:"has_sql_dump"`
}

// RowCounts summarizes the backed-up tables' sizes, enough for a restore to
// sanity-check completeness without re-scanning the database.
type RowCounts struct {
	Events    int64 `json:"events"`
	Chunks    int64 `json:"chunks"`
	Documents int64 `json:"documents"`
}

// Checksums carries the SHA-256 digests also recorded in checksums.sha256,
// duplicated into the manifest so a restore can verify without a second file.
type Checksums struct {
	DatabaseSHA256 string `json:"database_sha256"`
	SQLDumpSHA256  string `json:"sql_dump_sha256,omitempty"`
}

// ArchiveLayout is the set of paths one backup occupies under a destination
// directory. SQLDumpPath is empty when the archive has no text dump.
type ArchiveLayout struct {
	Dir           string
	DatabasePath  string
	ManifestPath  string
	ChecksumsPath string
	SQLDumpPath   string
}

// NewArchiveLayout resolves the fixed file set for an archive rooted at dir.
// includeSQLDump controls whether SQLDumpPath is populated.
func NewArchiveLayout(dir string, includeSQLDump bool) ArchiveLayout {
	l := ArchiveLayout{
		Dir:           dir,
		DatabasePath:  joinPath(dir, DatabaseFile),
		ManifestPath:  joinPath(dir, ManifestFile),
		ChecksumsPath: joinPath(dir, ChecksumsFile),
	}
	if includeSQLDump {
		l.SQLDumpPath = joinPath(dir, DatabaseSQLFile)
	}
	return l
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}

// CompatibleSchemaVersion reports whether a manifest's schema_version can be
// read by this build. A backup newer than CurrentSchemaVersion is a
// permanent schema-incompatibility error, never retried.
func CompatibleSchemaVersion(v int) bool {
	return v > 0 && v <= CurrentSchemaVersion
}
