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

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
)

// MemoryLog is an in-memory AppendLog, used by package tests and by the
// reindex/integrity pipelines' own test suites where durability to disk is
// irrelevant. It satisfies the same ordering, idempotency and checkpoint
// invariants as FileLog.
type MemoryLog struct {
	segmentID string

	mu          sync.Mutex
	records     []Record
	checkpoints map[string]Checkpoint
	batchCache  *batchLRU
}

// NewMemoryLog constructs an empty MemoryLog.
func NewMemoryLog(segmentID string) *MemoryLog {
	if segmentID == "" {
		segmentID = "seg-0"
	}
	return &MemoryLog{
		segmentID:   segmentID,
		checkpoints: map[string]Checkpoint{},
		batchCache:  newBatchLRU(0),
	}
}

func (l *MemoryLog) AppendBatch(ctx context.Context, batchID string, events []Event, want Durability) (AppendResult, error) {
	if batchID == "" {
		return AppendResult{}, errs.New(errs.Configuration, "recorder.AppendBatch", errors.New("batch_id is required"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.batchCache.get(batchID); ok {
		cached.Deduped = true
		return cached, nil
	}
	if len(events) == 0 {
		return AppendResult{}, errs.New(errs.Configuration, "recorder.AppendBatch", errors.New("events must be non-empty"))
	}

	ordinal := int64(len(l.records))
	firstOffset := Offset{SegmentID: l.segmentID, Ordinal: ordinal, ByteOffset: ordinal}
	var lastOffset Offset
	for i := range events {
		events[i].SchemaVersion = CurrentSchemaVersion
		off := Offset{SegmentID: l.segmentID, Ordinal: ordinal, ByteOffset: ordinal}
		l.records = append(l.records, Record{Event: events[i], Offset: off})
		lastOffset = off
		ordinal++
	}

	result := AppendResult{FirstOffset: firstOffset, LastOffset: lastOffset, Reached: Durable}
	l.batchCache.add(batchID, result)
	return result, nil
}

func (l *MemoryLog) ReadBatch(ctx context.Context, from Offset, maxEvents int) ([]Record, error) {
	if maxEvents <= 0 {
		return nil, errs.New(errs.Configuration, "recorder.ReadBatch", errors.New("maxEvents must be positive"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if from.Ordinal < 0 || from.Ordinal > int64(len(l.records)) {
		return nil, errs.New(errs.Integrity, "recorder.ReadBatch", fmt.Errorf("ordinal %d out of range", from.Ordinal))
	}

	end := from.Ordinal + int64(maxEvents)
	if end > int64(len(l.records)) {
		end = int64(len(l.records))
	}
	out := make([]Record, end-from.Ordinal)
	copy(out, l.records[from.Ordinal:end])
	return out, nil
}

func (l *MemoryLog) CommitCheckpoint(ctx context.Context, consumerID string, upto Offset, schemaVersion SchemaVersion) error {
	if consumerID == "" {
		return errs.New(errs.Configuration, "recorder.CommitCheckpoint", errors.New("consumer_id is required"))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if upto.Ordinal > int64(len(l.records)) {
		return errs.New(errs.Integrity, "recorder.CommitCheckpoint", fmt.Errorf("checkpoint ordinal %d past log tail %d", upto.Ordinal, len(l.records)))
	}
	l.checkpoints[consumerID] = Checkpoint{
		ConsumerID:    consumerID,
		UptoOffset:    upto,
		SchemaVersion: schemaVersion,
		CommittedAtMs: time.Now().UnixMilli(),
	}
	return nil
}

func (l *MemoryLog) ReadCheckpoint(ctx context.Context, consumerID string) (Checkpoint, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp, ok := l.checkpoints[consumerID]
	return cp, ok, nil
}

// Len reports the number of records currently stored; test helper.
func (l *MemoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

var _ AppendLog = (*MemoryLog)(nil)
var _ AppendLog = (*FileLog)(nil)
