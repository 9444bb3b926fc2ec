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

// PaneSnapshot is a read-only view of one pane's scheduler state.
type PaneSnapshot struct {
	PaneID    string
	LatestSeq int64
	Pending   *PendingIntent
	Active    *ActiveWork
}

// DebugSnapshot is the globally published, point-in-time view of the whole
// scheduler, safe to read concurrently with the hot submit/frame path.
type DebugSnapshot struct {
	Gate      GateState
	FrameSeq  int64
	Panes     []PaneSnapshot
	Lifecycle []LifecycleEvent
}

// Snapshot returns the most recently published debug snapshot, trimming its
// lifecycle event list to at most limit entries (0 means unbounded). Reading
// this never blocks on, or is blocked by, the scheduler's hot path: it only
// takes the snapshot-specific read lock.
func (s *Scheduler) Snapshot(limit int) DebugSnapshot {
	s.snapMu.RLock()
	snap := *s.snapshot
	s.snapMu.RUnlock()

	if limit > 0 && limit < len(snap.Lifecycle) {
		snap.Lifecycle = snap.Lifecycle[len(snap.Lifecycle)-limit:]
	}
	return snap
}

// publishLocked rebuilds the published snapshot from current state. Must be
// called with s.mu held; it takes the snapshot write lock only for the
// brief pointer swap.
func (s *Scheduler) publishLocked() {
	panes := make([]PaneSnapshot, 0, len(s.panes))
	pendingCount, activeCount := 0, 0
	for id, p := range s.panes {
		// Pending/Active are deep-copied here, not shared with the live
		// *PendingIntent/*ActiveWork: deferLocked and MarkActivePhase keep
		// mutating those in place under s.mu, while Snapshot readers only
		// hold snapMu. Publishing the live pointers would let a reader
		// observe a torn Deferrals/AgingCredit/Phase update.
		var pending *PendingIntent
		if p.pending != nil {
			cp := *p.pending
			pending = &cp
			pendingCount++
		}
		var active *ActiveWork
		if p.active != nil {
			cp := *p.active
			active = &cp
			activeCount++
		}
		panes = append(panes, PaneSnapshot{PaneID: id, LatestSeq: p.latestSeq, Pending: pending, Active: active})
	}
	snap := &DebugSnapshot{
		Gate:      s.gateLocked(),
		FrameSeq:  s.frameSeq,
		Panes:     panes,
		Lifecycle: s.ring.snapshot(0),
	}

	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()

	if s.metrics != nil {
		s.metrics.pendingGauge.Set(float64(pendingCount))
		s.metrics.activeGauge.Set(float64(activeCount))
	}
}
