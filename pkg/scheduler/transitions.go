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

package scheduler

import "sort"

// MarkActivePhase records a phase transition reported by the executor for
// the pane's currently active work. It returns false (a no-op) if seq no
// longer matches the pane's active work, which happens when the executor's
// report races a cancellation; a rejection lifecycle event is emitted in
// that case so the mismatch is observable. Phases are not enforced
// monotone: the executor may legitimately revisit an earlier phase (e.g.
// re-entering "reflowing" after a retried PTY resize).
func (s *Scheduler) MarkActivePhase(paneID string, seq int64, phase ActivePhase, nowMs int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pane, ok := s.panes[paneID]
	if !ok || pane.active == nil || pane.active.ActiveSeq != seq {
		var activeSeq *int64
		if ok && pane.active != nil {
			activeSeq = ptr(pane.active.ActiveSeq)
		}
		s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: seq, ObservedAtMs: ptr(nowMs), ActiveSeq: activeSeq, Stage: "phase_rejected", Detail: "stale_seq"})
		s.publishLocked()
		return false
	}
	pane.active.Phase = phase
	pane.active.PhaseSetAtMs = nowMs
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: seq, ObservedAtMs: ptr(nowMs), ActiveSeq: ptr(seq), Stage: "phase", Detail: phase.String()})
	s.publishLocked()
	return true
}

// CancelActiveIfSuperseded cancels the pane's active work if a later intent
// has since been accepted for it (pane.latestSeq > active.ActiveSeq).
// Returns true if a cancellation happened.
func (s *Scheduler) CancelActiveIfSuperseded(paneID string, nowMs int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.cancelActiveIfSupersededLocked(paneID, nowMs)
	if ok {
		s.publishLocked()
	}
	return ok
}

func (s *Scheduler) cancelActiveIfSupersededLocked(paneID string, nowMs int64) bool {
	pane, ok := s.panes[paneID]
	if !ok || pane.active == nil {
		return false
	}
	if pane.latestSeq <= pane.active.ActiveSeq {
		return false
	}
	canceled := pane.active
	supersededBy := pane.latestSeq
	pane.active = nil
	if s.metrics != nil {
		s.metrics.cancellations.Inc()
	}
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: canceled.ActiveSeq, ObservedAtMs: ptr(nowMs), ActiveSeq: ptr(canceled.ActiveSeq), LatestSeq: ptr(supersededBy), Stage: "cancel", Detail: "superseded"})
	return true
}

// IsSuperseded reports whether seq is no longer the pane's active work:
// either nothing is active, or a different seq is. It is read-only and
// never mutates scheduler state; executors poll it to decide whether an
// in-flight resize should still apply.
func (s *Scheduler) IsSuperseded(paneID string, seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pane, ok := s.panes[paneID]
	if !ok || pane.active == nil {
		return true
	}
	return pane.active.ActiveSeq != seq
}

// CompleteActive clears the pane's active work if it is still running seq.
// Returns false if seq no longer matches (a stale completion report).
func (s *Scheduler) CompleteActive(paneID string, seq int64, nowMs int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pane, ok := s.panes[paneID]
	if !ok || pane.active == nil || pane.active.ActiveSeq != seq {
		return false
	}
	pane.active = nil
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: seq, ObservedAtMs: ptr(nowMs), Stage: "complete", Detail: "completed"})
	s.publishLocked()
	return true
}

// StalledTransactions returns the panes whose active work has held its
// current phase since at or before nowMs-thresholdMs, sorted by pane id.
func (s *Scheduler) StalledTransactions(nowMs, thresholdMs int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stalled []string
	for id, p := range s.panes {
		if p.active == nil {
			continue
		}
		if nowMs-p.active.PhaseSetAtMs >= thresholdMs {
			stalled = append(stalled, id)
		}
	}
	sort.Strings(stalled)
	return stalled
}
