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

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
)

func TestSHA256Hex_KnownVector(t *testing.T) {
	got, err := SHA256Hex(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", got)
}

func TestVerifyChecksum_MismatchIsIntegrityError(t *testing.T) {
	err := VerifyChecksum(strings.NewReader("hello"), "deadbeef")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Integrity))
}

func TestVerifyChecksum_MatchIsNil(t *testing.T) {
	sum, err := SHA256Hex(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.NoError(t, VerifyChecksum(strings.NewReader("hello"), sum))
}

func TestComputeChecksums_HashesDatabaseAndSQLDumpConcurrently(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, DatabaseFile)
	sqlPath := filepath.Join(dir, DatabaseSQLFile)
	require.NoError(t, os.WriteFile(dbPath, []byte("database-bytes"), 0o600))
	require.NoError(t, os.WriteFile(sqlPath, []byte("sql-dump-bytes"), 0o600))

	sums, err := ComputeChecksums(dbPath, sqlPath)
	require.NoError(t, err)

	wantDB, err := SHA256Hex(strings.NewReader("database-bytes"))
	require.NoError(t, err)
	wantSQL, err := SHA256Hex(strings.NewReader("sql-dump-bytes"))
	require.NoError(t, err)

	assert.Equal(t, wantDB, sums.DatabaseSHA256)
	assert.Equal(t, wantSQL, sums.SQLDumpSHA256)
}

func TestComputeChecksums_NoSQLDump(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, DatabaseFile)
	require.NoError(t, os.WriteFile(dbPath, []byte("database-bytes"), 0o600))

	sums, err := ComputeChecksums(dbPath, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sums.DatabaseSHA256)
	assert.Empty(t, sums.SQLDumpSHA256)
}

func TestComputeChecksums_MissingFileErrors(t *testing.T) {
	_, err := ComputeChecksums(filepath.Join(t.TempDir(), "missing.db"), "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.TransientIO))
}
