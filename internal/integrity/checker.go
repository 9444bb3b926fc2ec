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

package integrity

import (
	"context"
	"fmt"

	"github.com/kraklabs/frankenterm-core/pkg/index"
	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

// Mismatch records a document whose stored log_offset disagrees with the
// ordinal of the event that should have produced it.
type Mismatch struct {
	EventID        string
	ExpectedOffset int64
	ActualOffset   int64
}

// Report is the result of one Check run.
type Report struct {
	StartOrdinal  int64
	EndOrdinal    int64
	EventsChecked int

	Scanned int
	Matched int
	Missing []string
	Mismatches []Mismatch

	Consistent bool

	// TotalIndexDocuments is optional: -1 when the caller didn't ask for
	// it (CountTotal is an extra pass over a potentially large index).
	TotalIndexDocuments int
}

// Options configures one Check call.
type Options struct {
	StartOrdinal          int64
	EndOrdinal            int64 // inclusive
	MaxEvents             int   // 0 means unbounded
	ExpectedSchemaVersion recorder.SchemaVersion
	IncludeTotalCount     bool
	SegmentID             string
}

// Check scans [StartOrdinal, EndOrdinal] of log (capped at MaxEvents
// schema-matching events) and cross-checks each event against lookup.
// Consistency holds iff every schema-matching event in range has a
// document whose log_offset equals its ordinal; a lookup failure counts
// as missing.
func Check(ctx context.Context, log recorder.AppendLog, lookup index.Lookup, opts Options) (Report, error) {
	report := Report{
		StartOrdinal:        opts.StartOrdinal,
		EndOrdinal:          opts.EndOrdinal,
		TotalIndexDocuments: -1,
	}

	const readChunk = 256
	from := recorder.Offset{SegmentID: opts.SegmentID, Ordinal: opts.StartOrdinal}
	discardFirst := false

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		recs, err := log.ReadBatch(ctx, from, readChunk)
		if err != nil {
			return report, fmt.Errorf("read batch: %w", err)
		}
		short := len(recs) < readChunk
		if discardFirst && len(recs) > 0 {
			recs = recs[1:]
			discardFirst = false
		}
		if len(recs) == 0 {
			break
		}

		done := false
		for _, rec := range recs {
			if rec.Offset.Ordinal > opts.EndOrdinal {
				done = true
				break
			}
			if rec.Event.SchemaVersion != opts.ExpectedSchemaVersion {
				continue
			}
			if opts.MaxEvents > 0 && report.EventsChecked >= opts.MaxEvents {
				done = true
				break
			}

			report.EventsChecked++
			report.Scanned++

			exists, err := lookup.HasEventID(ctx, rec.Event.EventID)
			if err != nil || !exists {
				report.Missing = append(report.Missing, rec.Event.EventID)
				continue
			}

			offset, ok, err := lookup.GetLogOffsetForEvent(ctx, rec.Event.EventID)
			if err != nil || !ok {
				report.Missing = append(report.Missing, rec.Event.EventID)
				continue
			}
			if offset != rec.Offset.Ordinal {
				report.Mismatches = append(report.Mismatches, Mismatch{
					EventID:        rec.Event.EventID,
					ExpectedOffset: rec.Offset.Ordinal,
					ActualOffset:   offset,
				})
				continue
			}
			report.Matched++
		}

		if done || short {
			break
		}
		from = recs[len(recs)-1].Offset
		discardFirst = true
	}

	report.Consistent = len(report.Missing) == 0 && len(report.Mismatches) == 0

	if opts.IncludeTotalCount {
		total, err := lookup.CountTotal(ctx)
		if err != nil {
			return report, fmt.Errorf("count total: %w", err)
		}
		report.TotalIndexDocuments = total
	}

	return report, nil
}
