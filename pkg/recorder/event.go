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

package recorder

import "fmt"

// SchemaVersion tags the wire shape of an Event so consumers (reindex,
// backfill) can detect and skip records produced by an incompatible writer.
type SchemaVersion uint16

// CurrentSchemaVersion is the schema version this package produces.
const CurrentSchemaVersion SchemaVersion = 1

// Causality carries the optional parent/trigger/root event ids that relate
// an event to the ones that caused it.
type Causality struct {
	ParentEventID  string `json:"parent_event_id,omitempty"`
	TriggerEventID string `json:"trigger_event_id,omitempty"`
	RootEventID    string `json:"root_event_id,omitempty"`
}

// RedactionLevel classifies how much of a payload's text has been redacted
// before it reached the recorder.
type RedactionLevel string

const (
	RedactionNone    RedactionLevel = "none"
	RedactionPartial RedactionLevel = "partial"
	RedactionFull    RedactionLevel = "full"
)

// IngressKind classifies the source of ingress text.
type IngressKind string

const (
	IngressKeystroke IngressKind = "keystroke"
	IngressPaste     IngressKind = "paste"
	IngressSynthetic IngressKind = "synthetic"
)

// SegmentKind classifies a slice of egress output.
type SegmentKind string

const (
	SegmentStdout SegmentKind = "stdout"
	SegmentStderr SegmentKind = "stderr"
	SegmentEcho   SegmentKind = "echo"
)

// ControlMarkerType enumerates the control-marker kinds the flight recorder
// understands. Supplemented from original_source/crates/frankenterm-core's
// event model, which the distilled spec left as "typed ... JSON details".
type ControlMarkerType string

const (
	ControlResizeRequested    ControlMarkerType = "resize_requested"
	ControlPaneClosed         ControlMarkerType = "pane_closed"
	ControlScrollbackCleared  ControlMarkerType = "scrollback_cleared"
	ControlTitleChanged       ControlMarkerType = "title_changed"
	ControlBellRung           ControlMarkerType = "bell_rung"
	ControlCwdChanged         ControlMarkerType = "cwd_changed"
)

// LifecyclePhase enumerates the lifecycle-marker phases.
type LifecyclePhase string

const (
	LifecycleSpawned  LifecyclePhase = "spawned"
	LifecycleExited   LifecyclePhase = "exited"
	LifecycleAttached LifecyclePhase = "attached"
	LifecycleDetached LifecyclePhase = "detached"
)

// PayloadKind discriminates the tagged Payload union.
type PayloadKind string

const (
	PayloadIngressText    PayloadKind = "ingress_text"
	PayloadEgressOutput   PayloadKind = "egress_output"
	PayloadControlMarker  PayloadKind = "control_marker"
	PayloadLifecycleMarker PayloadKind = "lifecycle_marker"
)

// Payload is the tagged union of event payload kinds. Exactly one concrete
// type below implements it for any given Event.
type Payload interface {
	Kind() PayloadKind
}

// IngressText carries raw input text fed into a pane.
type IngressText struct {
	Text     string         `json:"text"`
	Encoding string         `json:"encoding"`
	Redact   RedactionLevel `json:"redaction"`
	Ingress  IngressKind    `json:"ingress_kind"`
}

func (IngressText) Kind() PayloadKind { return PayloadIngressText }

// EgressOutput carries output text produced by a pane's child process.
type EgressOutput struct {
	Text     string         `json:"text"`
	Encoding string         `json:"encoding"`
	Redact   RedactionLevel `json:"redaction"`
	Segment  SegmentKind    `json:"segment_kind"`
	IsGap    bool           `json:"is_gap"`
}

func (EgressOutput) Kind() PayloadKind { return PayloadEgressOutput }

// ControlMarker carries a typed, structured control-plane notification.
type ControlMarker struct {
	Type    ControlMarkerType `json:"type"`
	Details map[string]any    `json:"details,omitempty"`
}

func (ControlMarker) Kind() PayloadKind { return PayloadControlMarker }

// LifecycleMarker carries a pane/session lifecycle transition.
type LifecycleMarker struct {
	Phase   LifecyclePhase `json:"phase"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (LifecycleMarker) Kind() PayloadKind { return PayloadLifecycleMarker }

// Event is the unit of the append log.
type Event struct {
	SchemaVersion SchemaVersion `json:"schema_version"`
	EventID       string        `json:"event_id"`
	PaneID        string        `json:"pane_id"`
	SessionID     string        `json:"session_id,omitempty"`
	WorkflowID    string        `json:"workflow_id,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	Source        string        `json:"source"`

	OccurredAtMs int64 `json:"occurred_at_ms"`
	RecordedAtMs int64 `json:"recorded_at_ms"`

	// Seq is the per-pane monotonic sequence assigned by the producer.
	Seq int64 `json:"seq"`

	Causality Causality `json:"causality,omitempty"`

	Payload Payload `json:"-"`
	// PayloadKind and PayloadRaw are the wire encoding of Payload; see
	// MarshalJSON/UnmarshalJSON.
}

// EventType returns a short, stable tag describing the event's payload,
// matching the document field the index writer contract expects.
func (e Event) EventType() PayloadKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

func (e Event) String() string {
	return fmt.Sprintf("Event{id=%s pane=%s seq=%d kind=%s}", e.EventID, e.PaneID, e.Seq, e.EventType())
}
