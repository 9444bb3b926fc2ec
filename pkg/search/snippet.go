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

import "strings"

// ExtractSnippets returns up to cfg.MaxFragments windows of text around the
// first case-insensitive occurrence of each term, in term order, each
// wrapped in cfg.PreMarker/PostMarker and capped at cfg.MaxFragmentLen
// characters. Terms with no occurrence contribute no fragment.
func ExtractSnippets(text string, terms []string, cfg SnippetConfig) []string {
	if cfg.MaxFragments <= 0 || cfg.MaxFragmentLen <= 0 || len(terms) == 0 || text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	runes := []rune(text)
	lowerRunes := []rune(lower)

	var fragments []string
	for _, term := range terms {
		if len(fragments) >= cfg.MaxFragments {
			break
		}
		termRunes := []rune(term)
		idx := indexRunes(lowerRunes, termRunes)
		if idx < 0 {
			continue
		}
		fragments = append(fragments, buildFragment(runes, idx, len(termRunes), cfg))
	}
	return fragments
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func buildFragment(runes []rune, matchStart, matchLen int, cfg SnippetConfig) string {
	window := cfg.MaxFragmentLen
	half := (window - matchLen) / 2
	if half < 0 {
		half = 0
	}
	start := matchStart - half
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(runes) {
		end = len(runes)
		start = end - window
		if start < 0 {
			start = 0
		}
	}
	frag := string(runes[start:end])
	return cfg.PreMarker + frag + cfg.PostMarker
}
