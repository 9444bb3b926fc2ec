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

// Config carries every knob the policy depends on. Two calls to BuildChunks
// with equal Config values and equal input sequences always produce
// byte-identical output, including chunk ids — this is the whole point of
// the policy being pure.
type Config struct {
	// PolicyVersion is folded into every chunk id so that a future change
	// to the chunking rules never collides with ids produced by an older
	// version, even over identical input.
	PolicyVersion string

	// MaxChunkChars bounds a chunk's accumulated text length. A
	// contribution that alone exceeds this is split into fixed-width
	// slices before accumulation (see splitOversized).
	MaxChunkChars int
	// MaxChunkEvents bounds the number of contributing events per chunk.
	MaxChunkEvents int
	// MaxWindowMs bounds the span between a chunk's first and last
	// contribution timestamps.
	MaxWindowMs int64

	// HardGapMs is the occurred_at_ms gap beyond which two otherwise
	// compatible contributions are forced into separate chunks regardless
	// of size budgets.
	HardGapMs int64

	// MinChunkChars is the threshold under which a finalized chunk is
	// considered "tiny" and eligible for the glue passes.
	MinChunkChars int
	// MergeWindowMs bounds the occurred_at_ms gap the glue passes will
	// cross when attaching a tiny chunk to a neighbor.
	MergeWindowMs int64

	// OverlapChars is the number of trailing characters carried forward
	// from a soft-split chunk into the chunk that continues it.
	OverlapChars int
}

// DefaultConfig returns reasonable defaults for interactive terminal
// sessions; callers are expected to override at least PolicyVersion.
func DefaultConfig() Config {
	return Config{
		PolicyVersion:  "v1",
		MaxChunkChars:  4000,
		MaxChunkEvents: 200,
		MaxWindowMs:    30_000,
		HardGapMs:      120_000,
		MinChunkChars:  40,
		MergeWindowMs:  2_000,
		OverlapChars:   200,
	}
}
