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

package reindex

import "github.com/kraklabs/frankenterm-core/pkg/recorder"

// RangeKind discriminates the BackfillRange union.
type RangeKind int

const (
	RangeAll RangeKind = iota
	RangeOrdinal
	RangeTime
)

// BackfillRange bounds which records the core loop considers in-range. The
// zero value is RangeAll.
type BackfillRange struct {
	Kind RangeKind

	StartOrdinal int64
	EndOrdinal   int64 // inclusive

	StartMs int64
	EndMs   int64 // inclusive
}

// AllRange constructs the unbounded range.
func AllRange() BackfillRange { return BackfillRange{Kind: RangeAll} }

// OrdinalRange constructs an inclusive ordinal-bounded range.
func OrdinalRange(start, end int64) BackfillRange {
	return BackfillRange{Kind: RangeOrdinal, StartOrdinal: start, EndOrdinal: end}
}

// TimeRange constructs an inclusive occurred_at_ms-bounded range.
func TimeRange(startMs, endMs int64) BackfillRange {
	return BackfillRange{Kind: RangeTime, StartMs: startMs, EndMs: endMs}
}

// pastEnd reports whether rec is beyond the range's end boundary, meaning
// the core loop should stop rather than merely filter and continue.
func (r BackfillRange) pastEnd(rec recorder.Record) bool {
	switch r.Kind {
	case RangeOrdinal:
		return rec.Offset.Ordinal > r.EndOrdinal
	case RangeTime:
		return rec.Event.OccurredAtMs > r.EndMs
	default:
		return false
	}
}

// inRange reports whether rec falls within the range's bounds at all
// (start inclusive); out-of-range-but-not-past-end records are filtered.
func (r BackfillRange) inRange(rec recorder.Record) bool {
	switch r.Kind {
	case RangeOrdinal:
		return rec.Offset.Ordinal >= r.StartOrdinal && rec.Offset.Ordinal <= r.EndOrdinal
	case RangeTime:
		return rec.Event.OccurredAtMs >= r.StartMs && rec.Event.OccurredAtMs <= r.EndMs
	default:
		return true
	}
}

// startOffset is the offset the log reader should open at when no
// checkpoint exists yet, for ordinal ranges; other range kinds start from
// the log head.
func (r BackfillRange) startOffset(segmentID string) recorder.Offset {
	if r.Kind == RangeOrdinal {
		return recorder.Offset{SegmentID: segmentID, Ordinal: r.StartOrdinal}
	}
	return recorder.Offset{SegmentID: segmentID}
}
