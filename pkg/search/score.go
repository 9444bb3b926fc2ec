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

import "github.com/kraklabs/frankenterm-core/pkg/index"

// scoreDocument returns the document's relevance score in fixed-point
// millis (so Cursor comparisons stay exact integers rather than floats)
// along with whether any query term matched at all. A filter-only query
// (no terms) always reports matched=true with score 0: filters alone
// already decided inclusion.
func scoreDocument(doc index.Document, terms []string, q Query) (scoreMillis int64, matched bool) {
	if len(terms) == 0 {
		return 0, true
	}

	textCounts := termCounts(Tokenize(doc.Text))
	symbolCounts := termCounts(Tokenize(doc.TextSymbols))

	var score float64
	anyMatch := false
	for _, term := range terms {
		if n := textCounts[term]; n > 0 {
			score += float64(n) * q.textBoost()
			anyMatch = true
		}
		if n := symbolCounts[term]; n > 0 {
			score += float64(n) * q.textSymbolsBoost()
			anyMatch = true
		}
	}
	if !anyMatch {
		return 0, false
	}
	return int64(score * 1000), true
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
