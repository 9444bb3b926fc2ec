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
	"sort"

	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

// BuildChunks is the pure C2 policy entry point: it turns a slice of
// recorded events (with their log offsets) into the finalized semantic
// chunks that should be handed to the index writer. It performs no I/O and
// consults no clock; every timestamp comes from the events themselves.
func BuildChunks(records []recorder.Record, cfg Config) []Chunk {
	sorted := make([]recorder.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset.Less(sorted[j].Offset)
	})

	b := &builder{cfg: cfg}
	for _, rec := range sorted {
		b.ingest(rec)
	}
	b.flush()

	chunks := b.finalize()
	chunks = glueMixedPairs(chunks, cfg)
	chunks = glueTrailing(chunks, cfg)
	return chunks
}

// accumulator holds the in-progress chunk while ingesting contributions.
type accumulator struct {
	paneID    string
	sessionID string
	sessionSet bool
	direction Direction

	startOffset recorder.Offset
	endOffset   recorder.Offset

	eventIDs   []string
	eventCount int
	sourceEventCount int

	startMs int64
	endMs   int64

	parts []string
	chars int

	overlap *OverlapMeta
}

type builder struct {
	cfg    Config
	cur    *accumulator
	chunks []Chunk

	// pendingOverlap is set by seedOverlap right after a soft-split flush
	// and consumed by ingestContribution when it creates the next
	// accumulator.
	pendingOverlap *OverlapMeta
}

// classification of a single record.
type kind int

const (
	kindBoundaryOnly kind = iota
	kindIngress
	kindEgress
)

func classify(ev recorder.Event) (kind, string) {
	switch p := ev.Payload.(type) {
	case recorder.IngressText:
		return kindIngress, "[IN] " + normalizeText(p.Text)
	case recorder.EgressOutput:
		if p.IsGap {
			return kindBoundaryOnly, ""
		}
		return kindEgress, "[OUT] " + normalizeText(p.Text)
	default:
		// ControlMarker, LifecycleMarker: boundary-only, no text.
		return kindBoundaryOnly, ""
	}
}

func (b *builder) ingest(rec recorder.Record) {
	k, text := classify(rec.Event)
	if k == kindBoundaryOnly {
		b.flush()
		return
	}
	direction := DirectionIngress
	if k == kindEgress {
		direction = DirectionEgress
	}

	if b.cur != nil && b.hardBoundary(rec.Event, direction) {
		b.flush()
	}

	contribs := splitOversized(rec.Event.EventID, text, b.cfg.MaxChunkChars)
	for i, c := range contribs {
		b.ingestContribution(rec, direction, c, i == 0)
	}
}

func (b *builder) hardBoundary(ev recorder.Event, direction Direction) bool {
	a := b.cur
	if a.paneID != ev.PaneID {
		return true
	}
	if a.direction != direction {
		return true
	}
	if b.cfg.HardGapMs > 0 && ev.OccurredAtMs-a.endMs > b.cfg.HardGapMs {
		return true
	}
	return false
}

func (b *builder) ingestContribution(rec recorder.Record, direction Direction, c contribution, countsAsSourceEvent bool) {
	projectedChars := len(c.text)
	if b.cur != nil {
		projectedChars += b.cur.chars + 1 // +1 for the joining newline
	}
	projectedEvents := 1
	if b.cur != nil {
		projectedEvents = b.cur.eventCount + 1
	}
	projectedWindow := int64(0)
	if b.cur != nil {
		end := rec.Event.OccurredAtMs
		if end < b.cur.endMs {
			end = b.cur.endMs
		}
		projectedWindow = end - b.cur.startMs
	}

	exceeds := b.cur != nil && (
		(b.cfg.MaxChunkChars > 0 && projectedChars > b.cfg.MaxChunkChars) ||
			(b.cfg.MaxChunkEvents > 0 && projectedEvents > b.cfg.MaxChunkEvents) ||
			(b.cfg.MaxWindowMs > 0 && projectedWindow > b.cfg.MaxWindowMs))

	if exceeds {
		prev := b.cur
		b.flush()
		if prev.paneID == rec.Event.PaneID && prev.direction == direction && prev.chars > 0 {
			b.seedOverlap(prev)
		}
	}

	if b.cur == nil {
		b.cur = &accumulator{
			paneID:      rec.Event.PaneID,
			direction:   direction,
			startOffset: rec.Offset,
			startMs:     rec.Event.OccurredAtMs,
			overlap:     b.pendingOverlap,
		}
		b.pendingOverlap = nil
		if b.cur.overlap != nil {
			b.cur.parts = append(b.cur.parts, b.cur.overlap.PrefixText)
			b.cur.chars += len(b.cur.overlap.PrefixText)
		}
	}

	a := b.cur
	if !a.sessionSet {
		a.sessionID = rec.Event.SessionID
		a.sessionSet = true
	} else if a.sessionID != rec.Event.SessionID {
		a.sessionID = ""
	}

	a.parts = append(a.parts, c.text)
	a.chars += len(c.text)
	a.eventIDs = append(a.eventIDs, c.eventID)
	a.eventCount++
	if countsAsSourceEvent {
		a.sourceEventCount++
	}
	a.endOffset = rec.Offset
	a.endMs = rec.Event.OccurredAtMs
}

// pendingOverlap carries an overlap seed from a soft-split flush to the
// next ingestContribution call that creates a new accumulator.
func (b *builder) seedOverlap(prev *accumulator) {
	text := prev.joinedText()
	n := b.cfg.OverlapChars
	if n <= 0 {
		return
	}
	runes := []rune(text)
	start := 0
	if len(runes) > n {
		start = len(runes) - n
	}
	prefix := string(runes[start:])
	b.pendingOverlap = &OverlapMeta{
		SourceChunkID: "", // resolved in flush, once the prior chunk's id is known
		CharCount:     len([]rune(prefix)),
		PrefixText:    prefix,
	}
}

func (a *accumulator) joinedText() string {
	out := ""
	for i, p := range a.parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

// flush finalizes the current accumulator, if any, into a Chunk.
func (b *builder) flush() {
	if b.cur == nil {
		return
	}
	a := b.cur
	b.cur = nil
	text := a.joinedText()
	hash := contentHash(text)
	id := chunkID(b.cfg.PolicyVersion, a.paneID, a.direction, a.startOffset.Ordinal, a.endOffset.Ordinal, hash)

	overlap := a.overlap
	if overlap != nil && len(b.chunks) > 0 {
		overlap.SourceChunkID = b.chunks[len(b.chunks)-1].ChunkID
	}

	b.chunks = append(b.chunks, Chunk{
		ChunkID:                     id,
		ContentHash:                 hash,
		PolicyVersion:               b.cfg.PolicyVersion,
		PaneID:                      a.paneID,
		SessionID:                   a.sessionID,
		Direction:                   a.direction,
		StartOffset:                 a.startOffset,
		EndOffset:                   a.endOffset,
		EventIDs:                    a.eventIDs,
		EventCount:                  a.eventCount,
		OccurredAtStartMs:           a.startMs,
		OccurredAtEndMs:             a.endMs,
		Text:                        text,
		TextChars:                   a.chars,
		Overlap:                     overlap,
		SourceEventCountBeforeSplit: a.sourceEventCount,
	})
}

func (b *builder) finalize() []Chunk {
	return b.chunks
}
