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

// SortField selects what Results are ordered by before the deterministic
// tie-break is applied.
type SortField int

const (
	SortRelevance SortField = iota
	SortOccurredAt
	SortRecordedAt
	SortSequence
	SortLogOffset
)

// Direction is a shorthand filter over ingress/egress document shape,
// distinct from the free-form EventType/IngressKind/SegmentKind filters.
type Direction int

const (
	DirectionAny Direction = iota
	DirectionIn
	DirectionOut
)

// Int64Range bounds a field inclusively; a nil bound is unconstrained.
type Int64Range struct {
	Min *int64
	Max *int64
}

func (r Int64Range) contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Filters are AND-combined; within a single field that takes a set (e.g.
// PaneIDs), membership in the set is OR'd.
type Filters struct {
	PaneIDs           []string
	SessionID         string
	WorkflowID        string
	CorrelationID     string
	Sources           []string
	EventTypes        []string
	IngressKind       string
	SegmentKind       string
	ControlMarkerType string
	LifecyclePhase    string
	IsGap             *bool
	Redaction         string
	Direction         Direction

	OccurredAtMs Int64Range
	Sequence     Int64Range
	LogOffset    Int64Range
}

// SnippetConfig controls fragment extraction around matched terms.
type SnippetConfig struct {
	MaxFragments   int
	MaxFragmentLen int
	PreMarker      string
	PostMarker     string
}

// DefaultSnippetConfig mirrors reasonable defaults for transcript text.
func DefaultSnippetConfig() SnippetConfig {
	return SnippetConfig{MaxFragments: 3, MaxFragmentLen: 160, PreMarker: "[", PostMarker: "]"}
}

// Sort selects the order Results come back in; Field == SortRelevance ties
// break the same way every other field does (occurred_at desc, sequence
// desc, log_offset desc) once score is exhausted.
type Sort struct {
	Field      SortField
	Descending bool
}

// Page requests one page of results: Cursor (nil for the first page) and
// Limit (the max number of results to return).
type Page struct {
	Cursor *Cursor
	Limit  int
}

// Query is one lexical search request.
type Query struct {
	Text    string
	Filters Filters
	Sort    Sort
	Page    Page
	Snippet SnippetConfig
	// FieldBoosts overrides the default per-field score multipliers; keys
	// are "text" and "text_symbols". Missing keys use the default.
	FieldBoosts map[string]float64
}

const (
	defaultTextBoost        = 1.0
	defaultTextSymbolsBoost = 1.25
)

func (q Query) textBoost() float64 {
	if v, ok := q.FieldBoosts["text"]; ok {
		return v
	}
	return defaultTextBoost
}

func (q Query) textSymbolsBoost() float64 {
	if v, ok := q.FieldBoosts["text_symbols"]; ok {
		return v
	}
	return defaultTextSymbolsBoost
}
