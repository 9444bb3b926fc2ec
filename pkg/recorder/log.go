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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
)

// AppendLog is the C1 contract: a durable, ordered, checkpointable event
// stream. Implementations must uphold monotonic-ordinal assignment,
// append-only storage (no offset is ever rewritten or deleted), and
// at-least-once-with-idempotent-replay semantics for consumers.
type AppendLog interface {
	// AppendBatch appends events as a single atomic unit, returning once
	// the requested Durability level has been reached. Re-submission
	// with the same batchID is a no-op that returns the original result.
	AppendBatch(ctx context.Context, batchID string, events []Event, want Durability) (AppendResult, error)

	// ReadBatch reads up to maxEvents records starting at from (inclusive),
	// in ordinal order.
	ReadBatch(ctx context.Context, from Offset, maxEvents int) ([]Record, error)

	// CommitCheckpoint persists that consumerID has fully processed
	// everything up to and including upto.
	CommitCheckpoint(ctx context.Context, consumerID string, upto Offset, schemaVersion SchemaVersion) error

	// ReadCheckpoint returns the last committed checkpoint for consumerID,
	// if any.
	ReadCheckpoint(ctx context.Context, consumerID string) (Checkpoint, bool, error)
}

// FileLogConfig configures a FileLog.
type FileLogConfig struct {
	// Dir is the directory holding the append-only data file and the
	// separate state file.
	Dir string
	// SegmentID names the single segment this log instance writes to.
	// Segment rotation is out of scope for this package; multi-segment
	// logs compose several FileLog instances behind a higher-level router.
	SegmentID string
	// BatchCacheSize bounds the idempotent batch_id LRU. Zero uses
	// defaultBatchLRUSize.
	BatchCacheSize int
	// FsyncRetryAttempts bounds retries of a failing fsync, classified as
	// a Transient I/O error. Zero uses a default of 3.
	FsyncRetryAttempts uint
	Logger             *slog.Logger
}

const dataFileName = "data.log"
const stateFileName = "state.json"

// FileLog is the on-disk AppendLog implementation: an append-only data
// file plus a separate state file (tail offset, checkpoint table) updated
// via atomic rename.
type FileLog struct {
	segmentID string
	dataPath  string
	statePath string
	logger    *slog.Logger

	fsyncAttempts uint

	// mu enforces the single-writer discipline: the writer serializes all
	// appends and is the only path that assigns ordinals.
	mu sync.Mutex

	writeFile *os.File
	readFile  *os.File

	tail        Offset // next record will be assigned tail.Ordinal, written at tail.ByteOffset
	checkpoints map[string]Checkpoint
	batchCache  *lruCache
}

// lruCache is a tiny indirection so FileLog doesn't need to import the LRU
// package's generic type name in its own field declarations twice.
type lruCache = batchLRU

// NewFileLog opens (creating if necessary) a FileLog rooted at cfg.Dir.
func NewFileLog(cfg FileLogConfig) (*FileLog, error) {
	if cfg.Dir == "" {
		return nil, errs.New(errs.Configuration, "recorder.NewFileLog", errors.New("dir is required"))
	}
	segmentID := cfg.SegmentID
	if segmentID == "" {
		segmentID = "seg-0"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recorder dir: %w", err)
	}

	dataPath := filepath.Join(cfg.Dir, dataFileName)
	statePath := filepath.Join(cfg.Dir, stateFileName)

	writeFile, err := os.OpenFile(dataPath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recorder data file for append: %w", err)
	}
	readFile, err := os.Open(dataPath)
	if err != nil {
		writeFile.Close()
		return nil, fmt.Errorf("open recorder data file for read: %w", err)
	}

	state, err := readStateFile(statePath)
	if err != nil {
		writeFile.Close()
		readFile.Close()
		return nil, err
	}

	tail := state.TailOffset
	if tail.SegmentID == "" {
		tail = Offset{SegmentID: segmentID, Ordinal: 0, ByteOffset: 0}
	}

	fsyncAttempts := cfg.FsyncRetryAttempts
	if fsyncAttempts == 0 {
		fsyncAttempts = 3
	}

	return &FileLog{
		segmentID:     segmentID,
		dataPath:      dataPath,
		statePath:     statePath,
		logger:        logger,
		fsyncAttempts: fsyncAttempts,
		writeFile:     writeFile,
		readFile:      readFile,
		tail:          tail,
		checkpoints:   state.Checkpoints,
		batchCache:    newBatchLRU(cfg.BatchCacheSize),
	}, nil
}

// Close releases the log's file handles.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err1 := l.writeFile.Close()
	err2 := l.readFile.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (l *FileLog) AppendBatch(ctx context.Context, batchID string, events []Event, want Durability) (AppendResult, error) {
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

	firstOffset := l.tail
	frames := make([]byte, 0, len(events)*128)
	ordinal := l.tail.Ordinal
	bytePos := l.tail.ByteOffset
	lastOffset := firstOffset
	for i := range events {
		events[i].SchemaVersion = CurrentSchemaVersion
		payload, err := json.Marshal(events[i])
		if err != nil {
			return AppendResult{}, fmt.Errorf("marshal event %d of batch %s: %w", i, batchID, err)
		}
		frame := encodeFrame(CurrentSchemaVersion, payload)
		lastOffset = Offset{SegmentID: l.segmentID, Ordinal: ordinal, ByteOffset: bytePos}
		frames = append(frames, frame...)
		bytePos += int64(len(frame))
		ordinal++
	}

	// Partial-batch safety: a single Write of the concatenated frame bytes
	// either lands in full or (on crash) leaves a torn tail that readFrame
	// treats as trailing corruption — there is no window where some but
	// not all of the batch's frames are individually observable as valid.
	n, err := l.writeFile.Write(frames)
	if err != nil {
		return AppendResult{}, errs.New(errs.TransientIO, "recorder.AppendBatch", fmt.Errorf("write frames: %w", err))
	}

	reached := Queued
	l.tail = Offset{SegmentID: l.segmentID, Ordinal: ordinal, ByteOffset: l.tail.ByteOffset + int64(n)}

	if want.atLeast(Appended) {
		if err := l.fsyncData(ctx); err != nil {
			return AppendResult{}, err
		}
		reached = Appended
	}
	if want.atLeast(Durable) {
		if err := l.persistState(); err != nil {
			return AppendResult{}, err
		}
		reached = Durable
	}

	result := AppendResult{FirstOffset: firstOffset, LastOffset: lastOffset, Reached: reached}
	l.batchCache.add(batchID, result)
	return result, nil
}

// fsyncData flushes the data file with bounded retry, since fsync failures
// (disk pressure, transient EIO) are classified as Transient I/O and
// retried on the append path.
func (l *FileLog) fsyncData(ctx context.Context) error {
	err := retry.Do(
		func() error { return l.writeFile.Sync() },
		retry.Context(ctx),
		retry.Attempts(l.fsyncAttempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return errs.New(errs.TransientIO, "recorder.fsyncData", err)
	}
	return nil
}

func (l *FileLog) persistState() error {
	state := persistedState{TailOffset: l.tail, Checkpoints: l.checkpoints}
	if err := writeStateFile(l.statePath, state); err != nil {
		return errs.New(errs.TransientIO, "recorder.persistState", err)
	}
	return nil
}

func (l *FileLog) ReadBatch(ctx context.Context, from Offset, maxEvents int) ([]Record, error) {
	if maxEvents <= 0 {
		return nil, errs.New(errs.Configuration, "recorder.ReadBatch", errors.New("maxEvents must be positive"))
	}

	section := io.NewSectionReader(l.readFile, from.ByteOffset, 1<<62)
	records := make([]Record, 0, maxEvents)
	ordinal := from.Ordinal
	pos := from.ByteOffset

	for len(records) < maxEvents {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		frame, err := readFrame(section)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, errTrailingCorruption) {
				l.logger.Warn("recorder: stopping scan at trailing corruption", "segment", l.segmentID, "ordinal", ordinal, "byte_offset", pos)
				break
			}
			return records, err
		}

		var ev Event
		if err := json.Unmarshal(frame.Payload, &ev); err != nil {
			// A checksum-valid frame with un-parseable JSON is a schema or
			// programmer error, not crash corruption: surface it.
			return records, fmt.Errorf("decode event at ordinal %d: %w", ordinal, err)
		}

		records = append(records, Record{
			Event:  ev,
			Offset: Offset{SegmentID: l.segmentID, Ordinal: ordinal, ByteOffset: pos},
		})
		pos += frame.WireLen
		ordinal++
	}

	return records, nil
}

func (l *FileLog) CommitCheckpoint(ctx context.Context, consumerID string, upto Offset, schemaVersion SchemaVersion) error {
	if consumerID == "" {
		return errs.New(errs.Configuration, "recorder.CommitCheckpoint", errors.New("consumer_id is required"))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if upto.Ordinal > l.tail.Ordinal {
		return errs.New(errs.Integrity, "recorder.CommitCheckpoint", fmt.Errorf("checkpoint ordinal %d is past log tail %d", upto.Ordinal, l.tail.Ordinal))
	}

	l.checkpoints[consumerID] = Checkpoint{
		ConsumerID:    consumerID,
		UptoOffset:    upto,
		SchemaVersion: schemaVersion,
		CommittedAtMs: time.Now().UnixMilli(),
	}
	return l.persistState()
}

func (l *FileLog) ReadCheckpoint(ctx context.Context, consumerID string) (Checkpoint, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp, ok := l.checkpoints[consumerID]
	return cp, ok, nil
}
