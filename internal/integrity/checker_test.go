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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/frankenterm-core/pkg/index"
	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

func seedEvents(t *testing.T, n int) *recorder.MemoryLog {
	t.Helper()
	log := recorder.NewMemoryLog("seg-0")
	ctx := context.Background()
	for i := 0; i < n; i++ {
		ev := recorder.Event{
			EventID:      "e" + string(rune('0'+i)),
			PaneID:       "p1",
			OccurredAtMs: int64(1000 + i),
			Payload:      recorder.IngressText{Text: "x", Encoding: "utf-8"},
		}
		_, err := log.AppendBatch(ctx, "seed-"+string(rune('0'+i)), []recorder.Event{ev}, recorder.Durable)
		require.NoError(t, err)
	}
	return log
}

func TestCheck_ConsistentWhenFullyIndexed(t *testing.T) {
	log := seedEvents(t, 4)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	recs, err := log.ReadBatch(ctx, recorder.Offset{}, 10)
	require.NoError(t, err)
	for _, r := range recs {
		_, err := idx.AddDocument(ctx, index.Document{EventID: r.Event.EventID, PaneID: r.Event.PaneID, LogOffset: r.Offset.Ordinal})
		require.NoError(t, err)
	}
	_, err = idx.Commit(ctx)
	require.NoError(t, err)

	report, err := Check(ctx, log, idx, Options{EndOrdinal: 3, ExpectedSchemaVersion: recorder.CurrentSchemaVersion})
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 4, report.Matched)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Mismatches)
}

func TestCheck_ReportsMissingDocuments(t *testing.T) {
	log := seedEvents(t, 3)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	// Only index the first event.
	_, err := idx.AddDocument(ctx, index.Document{EventID: "e0", PaneID: "p1", LogOffset: 0})
	require.NoError(t, err)
	_, err = idx.Commit(ctx)
	require.NoError(t, err)

	report, err := Check(ctx, log, idx, Options{EndOrdinal: 2, ExpectedSchemaVersion: recorder.CurrentSchemaVersion})
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.ElementsMatch(t, []string{"e1", "e2"}, report.Missing)
}

func TestCheck_ReportsLogOffsetMismatch(t *testing.T) {
	log := seedEvents(t, 2)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	_, err := idx.AddDocument(ctx, index.Document{EventID: "e0", PaneID: "p1", LogOffset: 99})
	require.NoError(t, err)
	_, err = idx.AddDocument(ctx, index.Document{EventID: "e1", PaneID: "p1", LogOffset: 1})
	require.NoError(t, err)
	_, err = idx.Commit(ctx)
	require.NoError(t, err)

	report, err := Check(ctx, log, idx, Options{EndOrdinal: 1, ExpectedSchemaVersion: recorder.CurrentSchemaVersion})
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, "e0", report.Mismatches[0].EventID)
	assert.Equal(t, int64(0), report.Mismatches[0].ExpectedOffset)
	assert.Equal(t, int64(99), report.Mismatches[0].ActualOffset)
}
