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

import "fmt"

// Offset identifies a record's position in the log. Ordinal is log-global
// and monotonic; SegmentID and ByteOffset together give a cheap resume
// hint without rescanning from the start.
type Offset struct {
	SegmentID  string `json:"segment_id"`
	Ordinal    int64  `json:"ordinal"`
	ByteOffset int64  `json:"byte_offset"`
}

// Less implements the total lexicographic order over (segment_id, ordinal,
// byte_offset) that the log's invariants depend on.
func (o Offset) Less(other Offset) bool {
	if o.SegmentID != other.SegmentID {
		return o.SegmentID < other.SegmentID
	}
	if o.Ordinal != other.Ordinal {
		return o.Ordinal < other.Ordinal
	}
	return o.ByteOffset < other.ByteOffset
}

func (o Offset) String() string {
	return fmt.Sprintf("%s:%d@%d", o.SegmentID, o.Ordinal, o.ByteOffset)
}

// Record pairs a stored Event with the Offset it was assigned on append.
type Record struct {
	Event  Event  `json:"event"`
	Offset Offset `json:"offset"`
}

// Checkpoint is a per-consumer record of the highest offset fully
// processed. At most one Checkpoint exists per ConsumerID at any time.
type Checkpoint struct {
	ConsumerID    string        `json:"consumer_id"`
	UptoOffset    Offset        `json:"upto_offset"`
	SchemaVersion SchemaVersion `json:"schema_version"`
	CommittedAtMs int64         `json:"committed_at_ms"`
}
