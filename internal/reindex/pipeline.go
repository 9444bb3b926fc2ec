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
	"fmt"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
	"github.com/kraklabs/frankenterm-core/pkg/index"
	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

// ProgressFunc reports a snapshot after every committed batch.
type ProgressFunc func(Progress)

// Progress is returned to the caller describing one pipeline run.
type Progress struct {
	EventsRead      int
	EventsIndexed   int
	EventsSkipped   int
	EventsFiltered  int
	BatchesCommitted int
	CurrentOrdinal  int64
	CaughtUp        bool
	DocsCleared     int
}

// Config parameterizes one core-loop run.
type Config struct {
	ConsumerID            string
	Range                 BackfillRange
	BatchSize             int
	MaxBatches            int // 0 means unbounded
	DedupOnReplay         bool
	ExpectedSchemaVersion recorder.SchemaVersion
	// ToDocument converts a log record into the index document the writer
	// expects; callers own the chunking/field-mapping decision.
	ToDocument func(recorder.Record) index.Document
	OnProgress ProgressFunc
}

// Run executes the shared core loop against log and idx until the range is
// exhausted, a short batch is read, or MaxBatches is reached. It is the
// single implementation behind both full reindex and backfill: the only
// difference between those entry points is which ConsumerID and Range
// (and, for full reindex, whether ClearAll runs first) the caller passes.
func Run(ctx context.Context, log recorder.AppendLog, idx index.Writer, cfg Config) (Progress, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.ToDocument == nil {
		return Progress{}, errs.New(errs.Configuration, "reindex.Run", fmt.Errorf("ToDocument is required"))
	}

	var progress Progress

	cp, hasCheckpoint, err := log.ReadCheckpoint(ctx, cfg.ConsumerID)
	if err != nil {
		return progress, fmt.Errorf("read checkpoint: %w", err)
	}

	var from recorder.Offset
	var skipFirst bool
	if hasCheckpoint {
		from = cp.UptoOffset
		skipFirst = true
	} else {
		from = cfg.Range.startOffset(from.SegmentID)
	}
	progress.CurrentOrdinal = from.Ordinal

	batches := 0
	for {
		if cfg.MaxBatches > 0 && batches >= cfg.MaxBatches {
			break
		}
		if err := ctx.Err(); err != nil {
			return progress, err
		}

		// ReadBatch is from-inclusive, and from always points at the last
		// record already processed (the checkpoint, or the prior
		// iteration's lastOffset). Reading one extra record and discarding
		// it here is what "skip the checkpointed record once" costs in a
		// from-inclusive API; it still nets a full BatchSize of fresh
		// records per batch, matching a reader that opened once and called
		// next_record() a single time before each batch read.
		readSize := cfg.BatchSize
		if skipFirst {
			readSize = cfg.BatchSize + 1
		}

		recs, err := log.ReadBatch(ctx, from, readSize)
		if err != nil {
			return progress, fmt.Errorf("read batch: %w", err)
		}
		// short reflects whether the log actually had fewer than readSize
		// records available — i.e. fewer than a full fresh BatchSize once
		// the skipped duplicate is accounted for.
		short := len(recs) < readSize
		if skipFirst && len(recs) > 0 {
			recs = recs[1:]
		}
		skipFirst = false
		// lastOffset is the offset of the last record physically read and
		// processed this batch. Resuming reopens the log at lastOffset
		// (as given by the log, not recomputed) and skips that one record
		// — the same pattern checkpoint resume uses — so FileLog's
		// byte-offset seek is always fed an offset the log itself produced.
		var lastOffset recorder.Offset
		haveLastOffset := false
		crossedEnd := false
		touchedAny := false

		for _, rec := range recs {
			progress.EventsRead++

			if cfg.Range.pastEnd(rec) {
				crossedEnd = true
				break
			}
			lastOffset = rec.Offset
			haveLastOffset = true

			if !cfg.Range.inRange(rec) {
				progress.EventsFiltered++
				touchedAny = true
				continue
			}
			if rec.Event.SchemaVersion != cfg.ExpectedSchemaVersion {
				progress.EventsSkipped++
				continue
			}

			if cfg.DedupOnReplay {
				if err := idx.DeleteByEventID(ctx, rec.Event.EventID); err != nil {
					return progress, fmt.Errorf("dedup delete %s: %w", rec.Event.EventID, err)
				}
			}

			reason, err := idx.AddDocument(ctx, cfg.ToDocument(rec))
			if err != nil {
				return progress, fmt.Errorf("add document %s: %w", rec.Event.EventID, err)
			}
			if reason != index.RejectNone {
				progress.EventsSkipped++
				continue
			}
			progress.EventsIndexed++
			touchedAny = true
		}

		if touchedAny {
			if _, err := idx.Commit(ctx); err != nil {
				return progress, fmt.Errorf("commit: %w", err)
			}
			progress.BatchesCommitted++
			if haveLastOffset {
				if err := log.CommitCheckpoint(ctx, cfg.ConsumerID, lastOffset, cfg.ExpectedSchemaVersion); err != nil {
					return progress, fmt.Errorf("commit checkpoint: %w", err)
				}
				progress.CurrentOrdinal = lastOffset.Ordinal
			}
		}

		batches++
		if cfg.OnProgress != nil {
			cfg.OnProgress(progress)
		}

		if crossedEnd {
			progress.CaughtUp = true
			break
		}
		if short {
			progress.CaughtUp = true
			break
		}
		if haveLastOffset {
			from = lastOffset
			skipFirst = true
		}
	}

	return progress, nil
}

// FullReindex clears the index (only on a fresh run, never when a
// checkpoint is already in progress) and replays the entire log under a
// dedicated consumer id.
func FullReindex(ctx context.Context, log recorder.AppendLog, idx index.Writer, consumerID string, batchSize int, schemaVersion recorder.SchemaVersion, onProgress ProgressFunc) (Progress, error) {
	_, hasCheckpoint, err := log.ReadCheckpoint(ctx, consumerID)
	if err != nil {
		return Progress{}, fmt.Errorf("read checkpoint: %w", err)
	}

	var cleared int
	if !hasCheckpoint {
		cleared, err = idx.ClearAll(ctx)
		if err != nil {
			return Progress{}, fmt.Errorf("clear index: %w", err)
		}
	}

	progress, err := Run(ctx, log, idx, Config{
		ConsumerID:            consumerID,
		Range:                 AllRange(),
		BatchSize:             batchSize,
		DedupOnReplay:         true,
		ExpectedSchemaVersion: schemaVersion,
		ToDocument:            defaultToDocument,
		OnProgress:            onProgress,
	})
	progress.DocsCleared = cleared
	return progress, err
}

// Backfill replays a bounded range under a consumer id distinct from the
// live indexer's, so it never disturbs steady-state indexing.
func Backfill(ctx context.Context, log recorder.AppendLog, idx index.Writer, consumerID string, rng BackfillRange, batchSize, maxBatches int, schemaVersion recorder.SchemaVersion, onProgress ProgressFunc) (Progress, error) {
	return Run(ctx, log, idx, Config{
		ConsumerID:            consumerID,
		Range:                 rng,
		BatchSize:             batchSize,
		MaxBatches:            maxBatches,
		DedupOnReplay:         true,
		ExpectedSchemaVersion: schemaVersion,
		ToDocument:            defaultToDocument,
		OnProgress:            onProgress,
	})
}

// defaultToDocument maps a raw event record directly onto an index
// document (one document per event); callers wanting the chunked
// representation pass their own ToDocument through Config instead.
func defaultToDocument(rec recorder.Record) index.Document {
	ev := rec.Event
	doc := index.Document{
		EventID:       ev.EventID,
		PaneID:        ev.PaneID,
		SessionID:     ev.SessionID,
		WorkflowID:    ev.WorkflowID,
		CorrelationID: ev.CorrelationID,
		Source:        ev.Source,
		EventType:     ev.EventType(),
		OccurredAtMs:  ev.OccurredAtMs,
		RecordedAtMs:  ev.RecordedAtMs,
		Sequence:      ev.Seq,
		LogOffset:     rec.Offset.Ordinal,
	}
	switch p := ev.Payload.(type) {
	case recorder.IngressText:
		doc.Text = p.Text
		doc.TextSymbols = p.Text
		doc.IngressKind = p.Ingress
		doc.Redaction = p.Redact
	case recorder.EgressOutput:
		doc.Text = p.Text
		doc.TextSymbols = p.Text
		doc.SegmentKind = p.Segment
		doc.IsGap = p.IsGap
		doc.Redaction = p.Redact
	case recorder.ControlMarker:
		doc.ControlMarkerType = p.Type
	case recorder.LifecycleMarker:
		doc.LifecyclePhase = p.Phase
	}
	return doc
}
