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

package chunking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// contentHash is the content-addressing primitive: sha256 over the exact
// normalized text the chunk carries. Two chunks with identical text always
// hash identically regardless of which events produced them.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// chunkID derives the chunk's stable identity from everything that defines
// "the same chunk": the policy that produced it, which pane/direction it
// belongs to, its ordinal span in the log, and its content. Any change to
// the underlying text (and therefore contentHash) or its span changes the
// id, which is exactly the identity scheme testable property #6 requires.
func chunkID(policyVersion, paneID string, direction Direction, startOrdinal, endOrdinal int64, hash string) string {
	input := fmt.Sprintf("%s:%s:%s:%d:%d:%s", policyVersion, paneID, direction, startOrdinal, endOrdinal, hash)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
