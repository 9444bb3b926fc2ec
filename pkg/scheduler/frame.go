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

// forcedBonus is added to a background candidate's score once it has been
// deferred at least MaxDeferralsBeforeForce times.
const forcedBonus = 1000

// FrameResult reports what one ScheduleFrame call did.
type FrameResult struct {
	FrameSeq               int64
	EffectiveBudgetUnits   int
	InputGuardrailApplied  bool
	Admitted               []string // pane ids admitted into the active slot
	Deferred               []string
	Forced                 []string // admitted via the starvation-forcing exception
	Oversubscribed         []string // admitted over the remaining budget with an empty frame
	DroppedDeferralTimeout []string
}

type candidate struct {
	pane   string
	intent *PendingIntent
	score  int
	forced bool
}

// ScheduleFrame runs one scheduling round: it drops stale-deferred pending
// intents, computes the effective per-frame budget (reserving units away
// from resize work when the input backlog is over threshold), scores and
// sorts every pane with a pending intent and no active work, then greedily
// admits candidates into the active slot until the budget is exhausted —
// with at most one empty-frame oversubscription and one starvation-forced
// over-budget admission per frame, neither available while the input
// reservation is in effect.
func (s *Scheduler) ScheduleFrame(budgetUnits, pendingInputEvents int, nowMs int64) FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frameSeq++
	result := FrameResult{FrameSeq: s.frameSeq}

	if budgetUnits <= 0 {
		budgetUnits = s.cfg.FrameBudgetUnits
	}

	result.DroppedDeferralTimeout = s.dropStaleDeferralsLocked(nowMs)

	gate := s.gateLocked()
	if !gate.Active {
		if s.metrics != nil {
			s.metrics.suppressedFrames.Inc()
		}
		s.publishLocked()
		return result
	}

	effective := budgetUnits
	inputReserveActive := s.cfg.InputGuardrailEnabled && pendingInputEvents >= s.cfg.InputBacklogThreshold && budgetUnits > 1
	if inputReserveActive {
		reserve := s.cfg.InputReserveUnits
		if reserve < 1 {
			reserve = 1
		}
		if reserve > budgetUnits-1 {
			reserve = budgetUnits - 1
		}
		effective = budgetUnits - reserve
		result.InputGuardrailApplied = true
	}
	result.EffectiveBudgetUnits = effective

	candidates := s.buildCandidatesLocked()
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.intent.SubmittedAtMs != b.intent.SubmittedAtMs {
			return a.intent.SubmittedAtMs < b.intent.SubmittedAtMs
		}
		if a.intent.IntentSeq != b.intent.IntentSeq {
			return a.intent.IntentSeq < b.intent.IntentSeq
		}
		return a.pane < b.pane
	})

	remaining := effective
	admittedAny := false
	oversubscribedUsed := false
	forcedOverBudgetUsed := false

	for _, c := range candidates {
		fits := c.intent.WorkUnits <= remaining
		switch {
		case fits:
			remaining -= c.intent.WorkUnits
			s.admitLocked(c.pane, c.intent, nowMs)
			admittedAny = true
			result.Admitted = append(result.Admitted, c.pane)
			if c.forced {
				result.Forced = append(result.Forced, c.pane)
				if s.metrics != nil {
					s.metrics.forcedAdmissions.Inc()
				}
			}
		case !admittedAny && !inputReserveActive && s.cfg.AllowSingleOversubscription && !oversubscribedUsed:
			oversubscribedUsed = true
			admittedAny = true
			s.admitLocked(c.pane, c.intent, nowMs)
			result.Admitted = append(result.Admitted, c.pane)
			result.Oversubscribed = append(result.Oversubscribed, c.pane)
			if s.metrics != nil {
				s.metrics.oversubscriptions.Inc()
			}
		case c.forced && !inputReserveActive && !forcedOverBudgetUsed:
			forcedOverBudgetUsed = true
			admittedAny = true
			s.admitLocked(c.pane, c.intent, nowMs)
			result.Admitted = append(result.Admitted, c.pane)
			result.Forced = append(result.Forced, c.pane)
			if s.metrics != nil {
				s.metrics.forcedAdmissions.Inc()
			}
		default:
			pushedOutByReserve := inputReserveActive && c.intent.WorkUnits <= budgetUnits
			s.deferLocked(c.pane, c.intent, pushedOutByReserve, nowMs)
			result.Deferred = append(result.Deferred, c.pane)
		}
	}

	s.publishLocked()
	return result
}

// buildCandidatesLocked returns one entry per pane that has a pending
// intent and no active work: a busy pane (active != nil) never competes
// for admission again until its current work completes or is canceled.
func (s *Scheduler) buildCandidatesLocked() []candidate {
	var out []candidate
	for id, p := range s.panes {
		if p.pending == nil || p.active != nil {
			continue
		}
		in := p.pending
		starving := in.Class == ClassBackground && s.cfg.MaxDeferralsBeforeForce > 0 && in.Deferrals >= s.cfg.MaxDeferralsBeforeForce
		score := in.Class.basePriority() + in.AgingCredit
		if starving {
			score += forcedBonus
		}
		out = append(out, candidate{pane: id, intent: in, score: score, forced: starving})
	}
	return out
}

func (s *Scheduler) admitLocked(paneID string, in *PendingIntent, nowMs int64) {
	pane := s.panes[paneID]
	pane.active = &ActiveWork{PaneID: paneID, ActiveSeq: in.IntentSeq, Class: in.Class, Phase: PhasePreparing, PhaseSetAtMs: in.SubmittedAtMs}
	pane.pending = nil
	if s.metrics != nil {
		s.metrics.admitted.WithLabelValues(in.Class.String()).Inc()
	}
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: in.IntentSeq, ObservedAtMs: ptr(nowMs), ActiveSeq: ptr(in.IntentSeq), Stage: "admit", Detail: "admitted"})
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: in.IntentSeq, ObservedAtMs: ptr(nowMs), ActiveSeq: ptr(in.IntentSeq), Stage: "phase", Detail: PhasePreparing.String()})
}

func (s *Scheduler) deferLocked(paneID string, in *PendingIntent, pushedOutByReserve bool, nowMs int64) {
	in.Deferrals++
	credit := s.cfg.AgingCreditPerFrame
	if in.Class == ClassInteractive {
		credit = s.cfg.AgingCreditPerFrame / 2
	}
	in.AgingCredit += credit
	if in.AgingCredit > s.cfg.MaxAgingCredit {
		in.AgingCredit = s.cfg.MaxAgingCredit
	}
	if pushedOutByReserve && s.metrics != nil {
		s.metrics.inputGuardrailDeferrals.Inc()
	}
	s.emit(LifecycleEvent{PaneID: paneID, IntentSeq: in.IntentSeq, ObservedAtMs: ptr(nowMs), PendingSeq: ptr(in.IntentSeq), Stage: "defer", Detail: "deferred"})
}

// dropStaleDeferralsLocked removes pending intents that have been deferred
// MaxDeferralsBeforeDrop times without ever being admitted, run once at the
// start of every frame before scoring.
func (s *Scheduler) dropStaleDeferralsLocked(nowMs int64) []string {
	if s.cfg.MaxDeferralsBeforeDrop <= 0 {
		return nil
	}
	var dropped []string
	for id, p := range s.panes {
		if p.pending != nil && p.pending.Deferrals >= s.cfg.MaxDeferralsBeforeDrop {
			dropped = append(dropped, id)
			s.emit(LifecycleEvent{PaneID: id, IntentSeq: p.pending.IntentSeq, ObservedAtMs: ptr(nowMs), Stage: "drop", Detail: "dropped_deferral_timeout"})
			p.pending = nil
			if s.metrics != nil {
				s.metrics.droppedDeferrals.Inc()
			}
		}
	}
	sort.Strings(dropped)
	return dropped
}
