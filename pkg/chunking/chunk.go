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

import "github.com/kraklabs/frankenterm-core/pkg/recorder"

// Direction classifies which side of a pane's I/O a chunk's text came from.
type Direction string

const (
	DirectionIngress    Direction = "ingress"
	DirectionEgress     Direction = "egress"
	DirectionMixedGlued Direction = "mixed_glued"
)

// OverlapMeta describes the overlap prefix a chunk inherited from the chunk
// that preceded it across a soft split, so downstream consumers can tell
// genuinely new content from repeated context.
type OverlapMeta struct {
	SourceChunkID string
	CharCount     int
	PrefixText    string
}

// Chunk is a finalized, content-addressed semantic chunk.
type Chunk struct {
	ChunkID       string
	ContentHash   string
	PolicyVersion string

	PaneID    string
	SessionID string
	Direction Direction

	StartOffset recorder.Offset
	EndOffset   recorder.Offset

	EventIDs   []string
	EventCount int

	OccurredAtStartMs int64
	OccurredAtEndMs   int64

	Text      string
	TextChars int

	Overlap *OverlapMeta

	// SourceEventCountBeforeSplit records how many original events
	// contributed before any oversized-event split inflated EventIDs;
	// supplemented from original_source's chunk diagnostics, dropped by
	// the distilled spec.
	SourceEventCountBeforeSplit int
}

func (c Chunk) isTiny(cfg Config) bool {
	return c.TextChars < cfg.MinChunkChars
}
