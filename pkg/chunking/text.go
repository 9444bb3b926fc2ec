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
)

// normalizeText canonicalizes line endings to LF and trims trailing
// whitespace from every line, leaving leading whitespace (indentation)
// untouched. This keeps identical terminal output byte-identical across
// platforms that differ only in line-ending convention.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// contribution is one unit of text considered for inclusion in a chunk,
// produced either directly from an event or as one fixed-width slice of an
// oversized event.
type contribution struct {
	eventID string
	text    string
}

// splitOversized slices text wider than maxChars into fixed-width parts.
// The first slice keeps the original event id; the second and later slices
// get an "::part{n}" suffix, where n is the 1-based slice number, so a
// 3-slice split produces ids {id, id::part2, id::part3}.
func splitOversized(eventID, text string, maxChars int) []contribution {
	if maxChars <= 0 || len(text) <= maxChars {
		return []contribution{{eventID: eventID, text: text}}
	}
	runes := []rune(text)
	var out []contribution
	n := 1
	for start := 0; start < len(runes); start += maxChars {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		id := eventID
		if n > 1 {
			id = eventID + "::part" + strconv.Itoa(n)
		}
		out = append(out, contribution{eventID: id, text: string(runes[start:end])})
		n++
	}
	return out
}
