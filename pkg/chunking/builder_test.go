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
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/frankenterm-core/pkg/recorder"
)

func rec(pane string, ordinal int64, ms int64, payload recorder.Payload) recorder.Record {
	return recorder.Record{
		Event: recorder.Event{
			EventID:      pane + "-e" + strconv.FormatInt(ordinal, 10),
			PaneID:       pane,
			SessionID:    "sess-1",
			OccurredAtMs: ms,
			Payload:      payload,
		},
		Offset: recorder.Offset{SegmentID: "seg-0", Ordinal: ordinal},
	}
}

func ingress(text string) recorder.Payload {
	return recorder.IngressText{Text: text, Encoding: "utf-8", Ingress: recorder.IngressKeystroke}
}

func egress(text string) recorder.Payload {
	return recorder.EgressOutput{Text: text, Encoding: "utf-8", Segment: recorder.SegmentStdout}
}

func TestBuildChunks_IsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("ls")),
		rec("p1", 1, 1010, egress("file1\nfile2\n")),
	}
	a := BuildChunks(records, cfg)
	b := BuildChunks(records, cfg)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ChunkID, b[i].ChunkID)
		assert.Equal(t, a[i].ContentHash, b[i].ContentHash)
		assert.Equal(t, a[i].Text, b[i].Text)
	}
}

func TestBuildChunks_OutOfOrderInputSortedFirst(t *testing.T) {
	cfg := DefaultConfig()
	inOrder := []recorder.Record{
		rec("p1", 0, 1000, ingress("ls")),
		rec("p1", 1, 1010, egress("out")),
	}
	shuffled := []recorder.Record{inOrder[1], inOrder[0]}

	a := BuildChunks(inOrder, cfg)
	b := BuildChunks(shuffled, cfg)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ChunkID, b[i].ChunkID)
	}
}

func TestBuildChunks_HardBoundaryOnPaneChange(t *testing.T) {
	cfg := DefaultConfig()
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("cmd-a")),
		rec("p2", 1, 1001, ingress("cmd-b")),
	}
	chunks := BuildChunks(records, cfg)
	require.Len(t, chunks, 2)
	assert.Equal(t, "p1", chunks[0].PaneID)
	assert.Equal(t, "p2", chunks[1].PaneID)
}

func TestBuildChunks_HardBoundaryOnLargeTimeGap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HardGapMs = 5000
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("first")),
		rec("p1", 1, 100000, ingress("second")),
	}
	chunks := BuildChunks(records, cfg)
	require.Len(t, chunks, 2)
}

func TestBuildChunks_DirectionChangeIsHardBoundary(t *testing.T) {
	// S4: a direction change (ingress -> egress) within the same pane and
	// within time/size budgets still forces a boundary, because direction
	// is part of a chunk's identity. A zero merge window keeps the glue
	// passes from recombining the two chunks afterwards.
	cfg := DefaultConfig()
	cfg.MergeWindowMs = 0
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("cmd")),
		rec("p1", 1, 1001, egress("output")),
	}
	chunks := BuildChunks(records, cfg)
	require.Len(t, chunks, 2)
	assert.Equal(t, DirectionIngress, chunks[0].Direction)
	assert.Equal(t, DirectionEgress, chunks[1].Direction)
}

func TestBuildChunks_DirectionChangeWithTinyIngressGluesForward(t *testing.T) {
	// S4, alternate outcome: when the ingress chunk is tiny and the
	// egress chunk follows immediately, the mixed-glue pass recombines
	// what the hard-boundary pass split apart.
	cfg := DefaultConfig()
	cfg.MinChunkChars = 1000 // anything under this is "tiny"
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("ls")),
		rec("p1", 1, 1001, egress("file1\n")),
	}
	chunks := BuildChunks(records, cfg)
	require.Len(t, chunks, 1)
	assert.Equal(t, DirectionMixedGlued, chunks[0].Direction)
	assert.Contains(t, chunks[0].Text, "ls")
	assert.Contains(t, chunks[0].Text, "file1")
}

func TestBuildChunks_BoundaryOnlyEventFlushesWithoutText(t *testing.T) {
	cfg := DefaultConfig()
	records := []recorder.Record{
		rec("p1", 0, 1000, ingress("cmd")),
		rec("p1", 1, 1001, recorder.ControlMarker{Type: recorder.ControlResizeRequested}),
		rec("p1", 2, 1002, ingress("cmd2")),
	}
	chunks := BuildChunks(records, cfg)
	require.Len(t, chunks, 2)
	assert.Equal(t, "cmd", strings.TrimPrefix(chunks[0].Text, "[IN] "))
	assert.Equal(t, "cmd2", strings.TrimPrefix(chunks[1].Text, "[IN] "))
}

func TestBuildChunks_SoftSplitCarriesOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunkChars = 20
	cfg.OverlapChars = 5
	cfg.MinChunkChars = 0 // no chunk counts as tiny, so trailing glue leaves the splits alone
	records := []recorder.Record{
		rec("p1", 0, 1000, egress("0123456789")),
		rec("p1", 1, 1001, egress("abcdefghij")),
		rec("p1", 2, 1002, egress("klmnopqrst")),
	}
	chunks := BuildChunks(records, cfg)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.NotNil(t, chunks[1].Overlap)
	assert.Equal(t, chunks[0].ChunkID, chunks[1].Overlap.SourceChunkID)
	assert.LessOrEqual(t, chunks[1].Overlap.CharCount, 5)
}

func TestBuildChunks_OversizedEventSplitsWithPartSuffix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunkChars = 10
	records := []recorder.Record{
		// "[OUT] " (6 chars) + 20 chars of payload = 26 chars, split into
		// three 10-char-or-fewer slices.
		rec("p1", 0, 1000, egress("0123456789ABCDEFGHIJ")),
	}
	chunks := BuildChunks(records, cfg)
	require.GreaterOrEqual(t, len(chunks), 1)
	var ids []string
	for _, c := range chunks {
		ids = append(ids, c.EventIDs...)
	}
	require.Len(t, ids, 3)
	assert.NotContains(t, ids[0], "::part")
	assert.Contains(t, ids[1], "::part2")
	assert.Contains(t, ids[2], "::part3")
}

func TestBuildChunks_IdentityChangesWithContent(t *testing.T) {
	cfg := DefaultConfig()
	a := BuildChunks([]recorder.Record{rec("p1", 0, 1000, ingress("hello"))}, cfg)
	b := BuildChunks([]recorder.Record{rec("p1", 0, 1000, ingress("goodbye"))}, cfg)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ChunkID, b[0].ChunkID)
	assert.NotEqual(t, a[0].ContentHash, b[0].ContentHash)
}

func TestBuildChunks_SessionIDClearedWhenHeterogeneous(t *testing.T) {
	cfg := DefaultConfig()
	r1 := rec("p1", 0, 1000, ingress("a"))
	r2 := rec("p1", 1, 1001, ingress("b"))
	r2.Event.SessionID = "other-session"
	chunks := BuildChunks([]recorder.Record{r1, r2}, cfg)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].SessionID)
}
