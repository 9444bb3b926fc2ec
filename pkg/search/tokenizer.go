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
	"regexp"
	"strings"
)

// tokenRe matches one term: letters, digits, underscore, and the path/time
// punctuation terminal transcripts are full of (so "/usr/bin" or
// "12:03:04" tokenize as single terms, not noise-separated fragments).
var tokenRe = regexp.MustCompile(`[A-Za-z0-9_./:-]+`)

// Tokenize splits text into lowercased terms using tokenRe.
func Tokenize(text string) []string {
	matches := tokenRe.FindAllString(text, -1)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = strings.ToLower(m)
	}
	return out
}

// tokenizeQuery splits and dedups the free-text query into distinct terms,
// preserving first-seen order (used for deterministic snippet scanning).
func tokenizeQuery(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range Tokenize(text) {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
