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

func contains(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// matchFilters applies every AND-combined structural filter to doc.
func matchFilters(doc index.Document, f Filters) bool {
	if !contains(f.PaneIDs, doc.PaneID) {
		return false
	}
	if f.SessionID != "" && doc.SessionID != f.SessionID {
		return false
	}
	if f.WorkflowID != "" && doc.WorkflowID != f.WorkflowID {
		return false
	}
	if f.CorrelationID != "" && doc.CorrelationID != f.CorrelationID {
		return false
	}
	if !contains(f.Sources, doc.Source) {
		return false
	}
	if !contains(f.EventTypes, doc.EventType) {
		return false
	}
	if f.IngressKind != "" && doc.IngressKind != f.IngressKind {
		return false
	}
	if f.SegmentKind != "" && doc.SegmentKind != f.SegmentKind {
		return false
	}
	if f.ControlMarkerType != "" && doc.ControlMarkerType != f.ControlMarkerType {
		return false
	}
	if f.LifecyclePhase != "" && doc.LifecyclePhase != f.LifecyclePhase {
		return false
	}
	if f.IsGap != nil && doc.IsGap != *f.IsGap {
		return false
	}
	if f.Redaction != "" && doc.Redaction != f.Redaction {
		return false
	}
	switch f.Direction {
	case DirectionIn:
		if doc.IngressKind == "" {
			return false
		}
	case DirectionOut:
		if doc.SegmentKind == "" {
			return false
		}
	}
	if !f.OccurredAtMs.contains(doc.OccurredAtMs) {
		return false
	}
	if !f.Sequence.contains(doc.Sequence) {
		return false
	}
	if !f.LogOffset.contains(doc.LogOffset) {
		return false
	}
	return true
}
