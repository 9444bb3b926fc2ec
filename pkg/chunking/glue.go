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

// adjacent reports whether b immediately continues a: same pane and
// segment, b starting at a's last ordinal (slices of one split event) or the
// next one, and close enough in time. Any ordinal in between, such as a
// skipped boundary-only event, makes the chunks non-adjacent.
func adjacent(a, b Chunk, cfg Config) bool {
	if a.PaneID != b.PaneID {
		return false
	}
	if a.StartOffset.SegmentID != b.StartOffset.SegmentID {
		return false
	}
	gap := b.StartOffset.Ordinal - a.EndOffset.Ordinal
	if gap < 0 || gap > 1 {
		return false
	}
	timeGap := b.OccurredAtStartMs - a.OccurredAtEndMs
	if timeGap < 0 {
		timeGap = -timeGap
	}
	return timeGap <= cfg.MergeWindowMs
}

// merge combines two adjacent chunks into one, recomputing the identity
// fields so the result still satisfies the chunk_id/content_hash scheme.
func merge(first, second Chunk, cfg Config) Chunk {
	text := first.Text + "\n" + second.Text
	hash := contentHash(text)

	direction := first.Direction
	if direction != second.Direction {
		direction = DirectionMixedGlued
	}

	sessionID := first.SessionID
	if sessionID != second.SessionID {
		sessionID = ""
	}

	id := chunkID(cfg.PolicyVersion, first.PaneID, direction, first.StartOffset.Ordinal, second.EndOffset.Ordinal, hash)

	return Chunk{
		ChunkID:                     id,
		ContentHash:                 hash,
		PolicyVersion:               cfg.PolicyVersion,
		PaneID:                      first.PaneID,
		SessionID:                   sessionID,
		Direction:                   direction,
		StartOffset:                 first.StartOffset,
		EndOffset:                   second.EndOffset,
		EventIDs:                    append(append([]string{}, first.EventIDs...), second.EventIDs...),
		EventCount:                  first.EventCount + second.EventCount,
		OccurredAtStartMs:           first.OccurredAtStartMs,
		OccurredAtEndMs:             second.OccurredAtEndMs,
		Text:                        text,
		TextChars:                   len(text),
		Overlap:                     first.Overlap,
		SourceEventCountBeforeSplit: first.SourceEventCountBeforeSplit + second.SourceEventCountBeforeSplit,
	}
}

// glueMixedPairs is glue pass 1: a tiny ingress chunk immediately followed
// by an adjacent egress chunk is merged into a single mixed_glued chunk,
// since an ingress command and its own output are more useful indexed
// together than as two near-empty fragments.
func glueMixedPairs(chunks []Chunk, cfg Config) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for i := 0; i < len(chunks); i++ {
		if i+1 < len(chunks) &&
			chunks[i].Direction == DirectionIngress && chunks[i].isTiny(cfg) &&
			chunks[i+1].Direction == DirectionEgress &&
			adjacent(chunks[i], chunks[i+1], cfg) {
			out = append(out, merge(chunks[i], chunks[i+1], cfg))
			i++
			continue
		}
		out = append(out, chunks[i])
	}
	return out
}

// glueTrailing is glue pass 2: any remaining tiny chunk adjacent to its
// immediate predecessor is folded backward into it, regardless of
// direction. This mops up tiny fragments glueMixedPairs's narrower
// ingress-then-egress rule doesn't cover.
func glueTrailing(chunks []Chunk, cfg Config) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(out) > 0 && c.isTiny(cfg) && adjacent(out[len(out)-1], c, cfg) {
			out[len(out)-1] = merge(out[len(out)-1], c, cfg)
			continue
		}
		out = append(out, c)
	}
	return out
}
