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

package search

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the sort key of the last result on a page: whatever the next
// page resumes strictly after. Callers must treat the encoded form as
// opaque; its fields are only meaningful to this package. Primary holds
// whatever metric the query's Sort.Field selects (the relevance score in
// millis, or the raw value of occurred_at/recorded_at/sequence/log_offset);
// the remaining three fields are the fixed deterministic tie-break that
// applies no matter which field is primary.
type Cursor struct {
	Primary      int64
	OccurredAtMs int64
	Sequence     int64
	LogOffset    int64
}

// Encode renders the cursor as an opaque token safe to hand back to a client.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a token produced by Cursor.Encode.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}
	return c, nil
}
