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

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/frankenterm-core/pkg/index"
	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

func seedLog(t *testing.T, n int) *recorder.MemoryLog {
	t.Helper()
	log := recorder.NewMemoryLog("seg-0")
	ctx := context.Background()
	for i := 0; i < n; i++ {
		ev := recorder.Event{
			EventID:      "e" + string(rune('0'+i)),
			PaneID:       "p1",
			OccurredAtMs: int64(1000 + i),
			Payload:      recorder.IngressText{Text: "x", Encoding: "utf-8", Ingress: recorder.IngressKeystroke},
		}
		_, err := log.AppendBatch(ctx, "seed-"+string(rune('0'+i)), []recorder.Event{ev}, recorder.Durable)
		require.NoError(t, err)
	}
	return log
}

func TestFullReindex_IndexesEveryEvent(t *testing.T) {
	log := seedLog(t, 5)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	progress, err := FullReindex(ctx, log, idx, "indexer", 2, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, progress.EventsIndexed)
	assert.True(t, progress.CaughtUp)

	total, err := idx.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestBackfill_ResumesWithoutDuplicating(t *testing.T) {
	log := seedLog(t, 6)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	// First run only gets through 2 batches of size 2 (4 events) before
	// the caller bails, simulating a crash mid-run.
	_, err := Backfill(ctx, log, idx, "indexer", AllRange(), 2, 2, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)
	total, err := idx.CountTotal(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, total)

	// Resuming under the same consumer id picks up where it left off.
	progress, err := Backfill(ctx, log, idx, "indexer", AllRange(), 2, 0, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.EventsIndexed)

	total, err = idx.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, total, "resume must not duplicate already-indexed events")
}

func TestBackfill_OrdinalRangeRespectsMaxBatches(t *testing.T) {
	// S5: OrdinalRange{3,6} with batch_size=2, max_batches=1 only processes
	// the first in-range batch and stops, leaving ordinals 5-6 unvisited.
	log := seedLog(t, 8)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	progress, err := Backfill(ctx, log, idx, "backfill-1", OrdinalRange(3, 6), 2, 1, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.EventsIndexed)
	assert.False(t, progress.CaughtUp)

	// Resuming nets a full fresh batch (5,6), not just the one record left
	// over after discarding the checkpointed duplicate from a short read.
	progress, err = Backfill(ctx, log, idx, "backfill-1", OrdinalRange(3, 6), 2, 1, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.EventsIndexed)

	total, err := idx.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, total, "ordinals 3,4,5,6 all indexed across both calls")
}

func TestFullReindex_LeavesOtherConsumersCheckpointsAlone(t *testing.T) {
	log := seedLog(t, 3)
	idx := index.NewMemoryBackend()
	ctx := context.Background()

	_, err := FullReindex(ctx, log, idx, "live-indexer", 10, recorder.CurrentSchemaVersion, nil)
	require.NoError(t, err)

	_, ok, err := log.ReadCheckpoint(ctx, "backfill-consumer")
	require.NoError(t, err)
	assert.False(t, ok, "a full reindex under live-indexer must not write the backfill consumer's checkpoint")
}
