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

package search

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/frankenterm-core/pkg/index"
)

type fakeSource struct{ docs []index.Document }

func (f fakeSource) Snapshot() []index.Document { return f.docs }

func doc(id, paneID, text string, seq int64) index.Document {
	return index.Document{EventID: id, PaneID: paneID, Text: text, OccurredAtMs: seq * 10, Sequence: seq, LogOffset: seq}
}

func TestRun_FiltersByPaneAndMatchesTerm(t *testing.T) {
	src := fakeSource{docs: []index.Document{
		doc("e1", "p1", "hello world", 1),
		doc("e2", "p2", "hello there", 2),
		doc("e3", "p1", "goodbye world", 3),
	}}

	res := Run(src, Query{Text: "hello", Filters: Filters{PaneIDs: []string{"p1"}}})
	require.Len(t, res.Items, 1)
	assert.Equal(t, "e1", res.Items[0].Document.EventID)
}

func TestRun_TextQueryRequiresAtLeastOneTermMatch(t *testing.T) {
	src := fakeSource{docs: []index.Document{doc("e1", "p1", "nothing relevant", 1)}}
	res := Run(src, Query{Text: "zzzznomatch"})
	assert.Empty(t, res.Items)
}

func TestRun_FilterOnlyQueryMatchesEverythingScoreZero(t *testing.T) {
	src := fakeSource{docs: []index.Document{doc("e1", "p1", "anything", 1)}}
	res := Run(src, Query{Filters: Filters{PaneIDs: []string{"p1"}}})
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(0), res.Items[0].Score)
}

func TestRun_TextSymbolsBoostOutscoresPlainText(t *testing.T) {
	a := doc("e1", "p1", "match here", 1)
	b := doc("e2", "p1", "plain match", 2)
	b.TextSymbols = "match"
	src := fakeSource{docs: []index.Document{a, b}}

	res := Run(src, Query{Text: "match"})
	require.Len(t, res.Items, 2)
	// b scores higher: its term hits both Text and TextSymbols.
	assert.Equal(t, "e2", res.Items[0].Document.EventID)
}

// Property #9: pagination never overlaps or skips results across pages.
func TestRun_PaginationNonOverlapping(t *testing.T) {
	var docs []index.Document
	for i := int64(1); i <= 10; i++ {
		docs = append(docs, doc("e"+strconv.FormatInt(i, 10), "p1", "term", i))
	}
	src := fakeSource{docs: docs}

	seen := map[string]bool{}
	var order []string
	var cursor *Cursor
	for {
		res := Run(src, Query{Text: "term", Page: Page{Cursor: cursor, Limit: 3}})
		require.LessOrEqual(t, len(res.Items), 3)
		for _, item := range res.Items {
			assert.False(t, seen[item.Document.EventID], "duplicate result %s across pages", item.Document.EventID)
			seen[item.Document.EventID] = true
			order = append(order, item.Document.EventID)
		}
		if res.NextCursor == nil {
			break
		}
		cursor = res.NextCursor
	}

	assert.Len(t, seen, 10)
	assert.Len(t, order, 10)
}

func TestRun_SortByOccurredAtDescending(t *testing.T) {
	src := fakeSource{docs: []index.Document{
		doc("e1", "p1", "x", 1),
		doc("e2", "p1", "x", 2),
		doc("e3", "p1", "x", 3),
	}}
	res := Run(src, Query{Filters: Filters{}, Sort: Sort{Field: SortOccurredAt, Descending: true}})
	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{
		res.Items[0].Document.EventID, res.Items[1].Document.EventID, res.Items[2].Document.EventID,
	})
}

func TestExtractSnippets_FindsEachTermOnce(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	frags := ExtractSnippets(text, []string{"quick", "lazy"}, SnippetConfig{MaxFragments: 2, MaxFragmentLen: 20, PreMarker: "[", PostMarker: "]"})
	require.Len(t, frags, 2)
	assert.Contains(t, frags[0], "quick")
	assert.Contains(t, frags[1], "lazy")
}

func TestCursor_RoundTrips(t *testing.T) {
	c := Cursor{Primary: 42, OccurredAtMs: 100, Sequence: 7, LogOffset: 3}
	decoded, err := DecodeCursor(c.Encode())
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
}
