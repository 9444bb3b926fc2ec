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
	"sort"

	"github.com/kraklabs/frankenterm-core/pkg/index"
)

// Result is one matched document plus its score and extracted snippets.
type Result struct {
	Document index.Document
	Score    int64
	Cursor   Cursor
	Snippets []string
}

// Results is one page of matches.
type Results struct {
	Items      []Result
	NextCursor *Cursor
}

// Source supplies the document set a query runs over. MemoryBackend's
// Snapshot satisfies this directly.
type Source interface {
	Snapshot() []index.Document
}

const defaultLimit = 20

// Run executes q against src: filters, scores, sorts, paginates, and
// attaches snippets. Default sort is relevance.
func Run(src Source, q Query) Results {
	terms := tokenizeQuery(q.Text)
	limit := q.Page.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	type scored struct {
		doc    index.Document
		score  int64
		cursor Cursor
	}

	var matches []scored
	for _, doc := range src.Snapshot() {
		if !matchFilters(doc, q.Filters) {
			continue
		}
		score, ok := scoreDocument(doc, terms, q)
		if !ok {
			continue
		}
		matches = append(matches, scored{
			doc:   doc,
			score: score,
			cursor: Cursor{
				Primary:      primaryValue(doc, score, q.Sort.Field),
				OccurredAtMs: doc.OccurredAtMs,
				Sequence:     doc.Sequence,
				LogOffset:    doc.LogOffset,
			},
		})
	}

	desc := q.Sort.Descending || q.Sort.Field == SortRelevance
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].cursor, matches[j].cursor
		if a.Primary != b.Primary {
			if desc {
				return a.Primary > b.Primary
			}
			return a.Primary < b.Primary
		}
		if a.OccurredAtMs != b.OccurredAtMs {
			return a.OccurredAtMs > b.OccurredAtMs
		}
		if a.Sequence != b.Sequence {
			return a.Sequence > b.Sequence
		}
		return a.LogOffset > b.LogOffset
	})

	start := 0
	if q.Page.Cursor != nil {
		cur := *q.Page.Cursor
		for start < len(matches) && !afterCursor(matches[start].cursor, cur, desc) {
			start++
		}
	}

	end := start + limit
	var next *Cursor
	if end < len(matches) {
		c := matches[end-1].cursor
		next = &c
	}
	if end > len(matches) {
		end = len(matches)
	}

	items := make([]Result, 0, end-start)
	for _, m := range matches[start:end] {
		items = append(items, Result{
			Document: m.doc,
			Score:    m.score,
			Cursor:   m.cursor,
			Snippets: ExtractSnippets(pickSnippetSource(m.doc), terms, snippetConfig(q)),
		})
	}

	return Results{Items: items, NextCursor: next}
}

func primaryValue(doc index.Document, score int64, field SortField) int64 {
	switch field {
	case SortOccurredAt:
		return doc.OccurredAtMs
	case SortRecordedAt:
		return doc.RecordedAtMs
	case SortSequence:
		return doc.Sequence
	case SortLogOffset:
		return doc.LogOffset
	default:
		return score
	}
}

// afterCursor reports whether candidate sorts strictly after cursor in the
// page's order, so resuming a page never repeats or skips a result.
func afterCursor(candidate, cursor Cursor, desc bool) bool {
	if candidate.Primary != cursor.Primary {
		if desc {
			return candidate.Primary < cursor.Primary
		}
		return candidate.Primary > cursor.Primary
	}
	if candidate.OccurredAtMs != cursor.OccurredAtMs {
		return candidate.OccurredAtMs < cursor.OccurredAtMs
	}
	if candidate.Sequence != cursor.Sequence {
		return candidate.Sequence < cursor.Sequence
	}
	return candidate.LogOffset < cursor.LogOffset
}

func pickSnippetSource(doc index.Document) string {
	if doc.Text != "" {
		return doc.Text
	}
	return doc.TextSymbols
}

func snippetConfig(q Query) SnippetConfig {
	if q.Snippet.MaxFragments == 0 && q.Snippet.MaxFragmentLen == 0 {
		return DefaultSnippetConfig()
	}
	return q.Snippet
}
