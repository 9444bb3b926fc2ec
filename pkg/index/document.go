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

package index

import "github.com/kraklabs/frankenterm-core/pkg/recorder"

// Document is what the lexical query service searches over. It mirrors one
// indexed event (or, from the chunking pipeline, one semantic chunk) with
// both a natural-language text surface and a symbol-preserving one.
type Document struct {
	EventID       string
	PaneID        string
	SessionID     string
	WorkflowID    string
	CorrelationID string

	Source    string
	EventType recorder.PayloadKind

	IngressKind        recorder.IngressKind
	SegmentKind        recorder.SegmentKind
	ControlMarkerType  recorder.ControlMarkerType
	LifecyclePhase     recorder.LifecyclePhase
	IsGap              bool
	Redaction          recorder.RedactionLevel

	OccurredAtMs int64
	RecordedAtMs int64
	Sequence     int64
	LogOffset    int64

	Text        string
	TextSymbols string
}

// RejectReason enumerates why add_document refused a document.
type RejectReason string

const (
	RejectNone             RejectReason = ""
	RejectMissingEventID   RejectReason = "missing_event_id"
	RejectMissingPaneID    RejectReason = "missing_pane_id"
	RejectSchemaIncompatible RejectReason = "schema_incompatible"
)

// CommitStats reports what a Commit call flushed.
type CommitStats struct {
	DocumentsWritten int
	DocumentsDeleted int
}
