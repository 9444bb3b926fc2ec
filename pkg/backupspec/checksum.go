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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of r's full contents.
func SHA256Hex(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errs.New(errs.TransientIO, "backupspec.SHA256Hex", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum reports whether want matches the hex digest read from r,
// as an Integrity-kind error when it doesn't: a checksum mismatch on a
// restored backup is fatal and requires operator action, never retried.
func VerifyChecksum(r io.Reader, want string) error {
	got, err := SHA256Hex(r)
	if err != nil {
		return err
	}
	if got != want {
		return errs.New(errs.Integrity, "backupspec.VerifyChecksum",
			fmt.Errorf("checksum mismatch: want %s, got %s", want, got))
	}
	return nil
}

// ComputeChecksums hashes an archive's database file and, if sqlDumpPath is
// non-empty, its SQL dump, concurrently. Both files can be large enough
// that hashing them serially is a visible fraction of backup time.
func ComputeChecksums(databasePath, sqlDumpPath string) (Checksums, error) {
	var sums Checksums
	var g errgroup.Group

	g.Go(func() error {
		sum, err := sha256File(databasePath)
		if err != nil {
			return err
		}
		sums.DatabaseSHA256 = sum
		return nil
	})

	if sqlDumpPath != "" {
		g.Go(func() error {
			sum, err := sha256File(sqlDumpPath)
			if err != nil {
				return err
			}
			sums.SQLDumpSHA256 = sum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Checksums{}, err
	}
	return sums, nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errs.New(errs.TransientIO, "backupspec.sha256File", err)
	}
	defer f.Close()
	return SHA256Hex(f)
}
