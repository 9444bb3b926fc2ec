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

import "sync"

// Scheduler is the single authority ordering resize work across all panes.
// mu guards every field below it except snapMu/snapshot: that pair forms an
// independent many-readers-single-writer path so a caller polling
// DebugSnapshot never contends with the hot submit/frame path, and the hot
// path never blocks on a slow snapshot reader. Grounded on panestate.Manager's
// split between its coarse map lock and its separately-locked per-entry
// state; here the split runs along a different axis (decision state vs.
// published snapshot) because every scheduling decision is cross-pane.
type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	panes    map[string]*paneState
	frameSeq int64
	nextSeq  int64
	ring     *lifecycleRing
	metrics  *Metrics

	snapMu   sync.RWMutex
	snapshot *DebugSnapshot
}

// New constructs a Scheduler. m may be nil (no metrics recorded).
func New(cfg Config, m *Metrics) *Scheduler {
	s := &Scheduler{
		cfg:     cfg,
		panes:   make(map[string]*paneState),
		ring:    newLifecycleRing(cfg.ringCap()),
		metrics: m,
	}
	s.publishLocked()
	return s
}

// SetConfig replaces the live configuration. Changes take effect on the
// next SubmitIntent/ScheduleFrame call.
func (s *Scheduler) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.publishLocked()
}

func (s *Scheduler) paneLocked(id string) *paneState {
	p, ok := s.panes[id]
	if !ok {
		p = &paneState{}
		s.panes[id] = p
	}
	return p
}

func (s *Scheduler) nextIntentSeq() int64 {
	s.nextSeq++
	return s.nextSeq
}

func (s *Scheduler) emit(ev LifecycleEvent) {
	ev.FrameSeq = s.frameSeq
	s.ring.write(ev)
}

func ptr(v int64) *int64 { return &v }
