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

import (
	"encoding/json"
	"fmt"
)

// eventWire is the on-disk/JSON shape of Event: the tagged Payload union is
// flattened into a kind tag plus a raw payload blob.
type eventWire struct {
	SchemaVersion SchemaVersion   `json:"schema_version"`
	EventID       string          `json:"event_id"`
	PaneID        string          `json:"pane_id"`
	SessionID     string          `json:"session_id,omitempty"`
	WorkflowID    string          `json:"workflow_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Source        string          `json:"source"`
	OccurredAtMs  int64           `json:"occurred_at_ms"`
	RecordedAtMs  int64           `json:"recorded_at_ms"`
	Seq           int64           `json:"seq"`
	Causality     Causality       `json:"causality,omitempty"`
	PayloadKind   PayloadKind     `json:"payload_kind"`
	PayloadRaw    json.RawMessage `json:"payload"`
}

// MarshalJSON flattens Event's tagged Payload into {payload_kind, payload}.
func (e Event) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	var kind PayloadKind
	if e.Payload != nil {
		kind = e.Payload.Kind()
		b, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal event %s payload: %w", e.EventID, err)
		}
		raw = b
	}
	return json.Marshal(eventWire{
		SchemaVersion: e.SchemaVersion,
		EventID:       e.EventID,
		PaneID:        e.PaneID,
		SessionID:     e.SessionID,
		WorkflowID:    e.WorkflowID,
		CorrelationID: e.CorrelationID,
		Source:        e.Source,
		OccurredAtMs:  e.OccurredAtMs,
		RecordedAtMs:  e.RecordedAtMs,
		Seq:           e.Seq,
		Causality:     e.Causality,
		PayloadKind:   kind,
		PayloadRaw:    raw,
	})
}

// UnmarshalJSON reconstructs Event's tagged Payload from {payload_kind, payload}.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}
	e.SchemaVersion = w.SchemaVersion
	e.EventID = w.EventID
	e.PaneID = w.PaneID
	e.SessionID = w.SessionID
	e.WorkflowID = w.WorkflowID
	e.CorrelationID = w.CorrelationID
	e.Source = w.Source
	e.OccurredAtMs = w.OccurredAtMs
	e.RecordedAtMs = w.RecordedAtMs
	e.Seq = w.Seq
	e.Causality = w.Causality

	if len(w.PayloadRaw) == 0 {
		e.Payload = nil
		return nil
	}

	switch w.PayloadKind {
	case PayloadIngressText:
		var p IngressText
		if err := json.Unmarshal(w.PayloadRaw, &p); err != nil {
			return fmt.Errorf("unmarshal ingress_text payload: %w", err)
		}
		e.Payload = p
	case PayloadEgressOutput:
		var p EgressOutput
		if err := json.Unmarshal(w.PayloadRaw, &p); err != nil {
			return fmt.Errorf("unmarshal egress_output payload: %w", err)
		}
		e.Payload = p
	case PayloadControlMarker:
		var p ControlMarker
		if err := json.Unmarshal(w.PayloadRaw, &p); err != nil {
			return fmt.Errorf("unmarshal control_marker payload: %w", err)
		}
		e.Payload = p
	case PayloadLifecycleMarker:
		var p LifecycleMarker
		if err := json.Unmarshal(w.PayloadRaw, &p); err != nil {
			return fmt.Errorf("unmarshal lifecycle_marker payload: %w", err)
		}
		e.Payload = p
	default:
		return fmt.Errorf("unknown payload kind %q for event %s", w.PayloadKind, w.EventID)
	}
	return nil
}
