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

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(cfg Config) *Scheduler {
	return New(cfg, NewMetrics(prometheus.NewRegistry()))
}

func activeCfg() Config {
	cfg := DefaultConfig()
	cfg.ControlPlaneEnabled = true
	return cfg
}

// S1: an interactive submit on a pane under overload preempts the oldest
// pending background intent rather than being dropped.
func TestSubmitIntent_InteractivePreemptsBackgroundUnderOverload(t *testing.T) {
	cfg := activeCfg()
	cfg.MaxPendingPanes = 1
	s := newTestScheduler(cfg)

	res := s.SubmitIntent("bg-pane", ClassBackground, 10, 1, 1000)
	require.Equal(t, Accepted, res.Kind)

	res = s.SubmitIntent("ia-pane", ClassInteractive, 10, 1, 2000)
	require.Equal(t, Accepted, res.Kind)
	assert.Equal(t, []string{"bg-pane"}, res.EvictedPending)

	snap := s.Snapshot(0)
	var bg, ia *PaneSnapshot
	for i := range snap.Panes {
		switch snap.Panes[i].PaneID {
		case "bg-pane":
			bg = &snap.Panes[i]
		case "ia-pane":
			ia = &snap.Panes[i]
		}
	}
	require.NotNil(t, bg)
	require.NotNil(t, ia)
	assert.Nil(t, bg.Pending)
	require.NotNil(t, ia.Pending)
}

// S1 (frame side): given both classes fit the budget, interactive still
// sorts ahead of background by base priority.
func TestScheduleFrame_InteractiveOutranksBackground(t *testing.T) {
	s := newTestScheduler(activeCfg())

	require.Equal(t, Accepted, s.SubmitIntent("bg", ClassBackground, 10, 1, 1000).Kind)
	require.Equal(t, Accepted, s.SubmitIntent("ia", ClassInteractive, 10, 1, 1000).Kind)

	res := s.ScheduleFrame(15, 0, 2000)
	require.Len(t, res.Admitted, 1)
	assert.Equal(t, "ia", res.Admitted[0])
	assert.Equal(t, []string{"bg"}, res.Deferred)
}

// S2: once admitted, a pane's active work holds across frames until
// explicitly completed or superseded — scheduling more frames with nothing
// new pending doesn't disturb it.
func TestActiveWork_HoldsAcrossFrames(t *testing.T) {
	s := newTestScheduler(activeCfg())
	require.Equal(t, Accepted, s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000).Kind)

	res := s.ScheduleFrame(100, 0, 1000)
	require.Equal(t, []string{"p1"}, res.Admitted)

	require.True(t, s.MarkActivePhase("p1", 1, PhaseReflowing, 1010))

	// A frame with nothing new pending leaves the active work untouched.
	res2 := s.ScheduleFrame(100, 0, 1020)
	assert.Empty(t, res2.Admitted)

	snap := s.Snapshot(0)
	require.Len(t, snap.Panes, 1)
	require.NotNil(t, snap.Panes[0].Active)
	assert.Equal(t, PhaseReflowing, snap.Panes[0].Active.Phase)

	require.True(t, s.CompleteActive("p1", 1, 1030))
	snap = s.Snapshot(0)
	assert.Nil(t, snap.Panes[0].Active)
}

// S3: a background candidate repeatedly deferred past MaxDeferralsBeforeForce
// is eventually forced into admission even though it never outscores a
// steady stream of interactive work.
func TestScheduleFrame_StarvationForcesAdmission(t *testing.T) {
	cfg := activeCfg()
	cfg.MaxDeferralsBeforeForce = 2
	s := newTestScheduler(cfg)

	require.Equal(t, Accepted, s.SubmitIntent("bg", ClassBackground, 10, 1, 1000).Kind)

	// Two frames of pure interactive pressure defer the background
	// candidate twice, crossing MaxDeferralsBeforeForce.
	for i := int64(0); i < 2; i++ {
		paneID := "ia"
		seq := 100 + i
		require.Equal(t, Accepted, s.SubmitIntent(paneID, ClassInteractive, 10, seq, 1000+i).Kind)
		res := s.ScheduleFrame(10, 0, 1000+i)
		assert.Equal(t, []string{paneID}, res.Admitted)
		assert.Equal(t, []string{"bg"}, res.Deferred)
		require.True(t, s.CompleteActive(paneID, seq, 1000+i))
	}

	// Third frame: no interactive competitor at all — bg should be forced.
	res := s.ScheduleFrame(10, 0, 1002)
	assert.Contains(t, res.Admitted, "bg")
	assert.Contains(t, res.Forced, "bg")
}

// S6: with the admission gate closed, submits are suppressed and the
// configured legacy-fallback flag is reported back to the caller.
func TestSubmitIntent_KillSwitchSuppressesAndReportsFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ControlPlaneEnabled = false
	cfg.LegacyFallbackEnabled = true
	s := newTestScheduler(cfg)

	res := s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000)
	require.Equal(t, SuppressedByKillSwitch, res.Kind)
	assert.True(t, res.LegacyFallback)

	gate := s.Gate()
	assert.False(t, gate.Active)
}

func TestSubmitIntent_EmergencyDisableOverridesControlPlaneEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ControlPlaneEnabled = true
	cfg.EmergencyDisable = true
	s := newTestScheduler(cfg)

	res := s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000)
	assert.Equal(t, SuppressedByKillSwitch, res.Kind)
}

// Property: while the gate is inactive, a submit is suppressed and counted
// by the kill-switch metric, and a frame returns an empty schedule and is
// counted by the frame-level metric.
func TestScheduleFrame_GateInactiveSuppressesAndRecordsMetric(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ControlPlaneEnabled = false
	cfg.LegacyFallbackEnabled = true
	s := newTestScheduler(cfg)

	subRes := s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000)
	require.Equal(t, SuppressedByKillSwitch, subRes.Kind)

	result := s.ScheduleFrame(10, 0, 1001)
	assert.Empty(t, result.Admitted)
	assert.Empty(t, result.Deferred)

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.suppressedByKill))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.suppressedFrames))
}

// Property: a stale or repeated intent_seq is rejected, never silently
// accepted or coalesced.
func TestSubmitIntent_RejectsNonMonotonicSeq(t *testing.T) {
	s := newTestScheduler(activeCfg())
	require.Equal(t, Accepted, s.SubmitIntent("p1", ClassInteractive, 5, 5, 1000).Kind)

	res := s.SubmitIntent("p1", ClassInteractive, 5, 5, 1001)
	assert.Equal(t, RejectedNonMonotonic, res.Kind)
	assert.Equal(t, int64(5), res.LatestSeq)

	res = s.SubmitIntent("p1", ClassInteractive, 5, 3, 1002)
	assert.Equal(t, RejectedNonMonotonic, res.Kind)
}

// Property: the effective frame budget reserves units away from resize work
// once the input backlog crosses threshold, and never drops below 1 or
// above budget-1.
func TestScheduleFrame_InputGuardrailReservesBudget(t *testing.T) {
	cfg := activeCfg()
	cfg.InputGuardrailEnabled = true
	cfg.InputBacklogThreshold = 5
	cfg.InputReserveUnits = 20
	s := newTestScheduler(cfg)

	res := s.ScheduleFrame(25, 10, 1000)
	assert.True(t, res.InputGuardrailApplied)
	assert.Equal(t, 5, res.EffectiveBudgetUnits)

	res2 := s.ScheduleFrame(25, 1, 1001)
	assert.False(t, res2.InputGuardrailApplied)
	assert.Equal(t, 25, res2.EffectiveBudgetUnits)
}

// Property: admission ordering is a deterministic, stable function of
// (score desc, submitted_at asc, intent_seq asc, pane_id asc) — re-running
// the same frame inputs always produces the same admission order.
func TestScheduleFrame_DeterministicOrdering(t *testing.T) {
	build := func() *Scheduler {
		s := newTestScheduler(activeCfg())
		require.Equal(t, Accepted, s.SubmitIntent("c", ClassBackground, 1, 1, 1000).Kind)
		require.Equal(t, Accepted, s.SubmitIntent("b", ClassBackground, 1, 1, 1000).Kind)
		require.Equal(t, Accepted, s.SubmitIntent("a", ClassBackground, 1, 1, 1000).Kind)
		return s
	}

	r1 := build().ScheduleFrame(2, 0, 2000)
	r2 := build().ScheduleFrame(2, 0, 2000)
	assert.Equal(t, r1.Admitted, r2.Admitted)
	assert.Equal(t, r1.Deferred, r2.Deferred)
	// Tie-broken alphabetically by pane id among equal score/submit/seq.
	assert.Equal(t, []string{"a", "b"}, r1.Admitted)
}

// Property: a pending intent dropped for exceeding MaxDeferralsBeforeDrop
// disappears from subsequent snapshots and never gets admitted later.
func TestScheduleFrame_DropsPendingAfterMaxDeferrals(t *testing.T) {
	cfg := activeCfg()
	cfg.MaxDeferralsBeforeForce = 1000 // disable forcing so we can observe the drop
	cfg.MaxDeferralsBeforeDrop = 2
	s := newTestScheduler(cfg)

	require.Equal(t, Accepted, s.SubmitIntent("blocked", ClassBackground, 100, 1, 1000).Kind)
	require.Equal(t, Accepted, s.SubmitIntent("blocker", ClassInteractive, 1, 1, 1000).Kind)

	// Frame 1: blocker admitted (fits budget 1), blocked deferred (doesn't fit).
	res := s.ScheduleFrame(1, 0, 1000)
	assert.Equal(t, []string{"blocker"}, res.Admitted)
	assert.Equal(t, []string{"blocked"}, res.Deferred)
	require.True(t, s.CompleteActive("blocker", 1, 1000))

	require.Equal(t, Accepted, s.SubmitIntent("blocker", ClassInteractive, 1, 2, 1001).Kind)
	res = s.ScheduleFrame(1, 0, 1001)
	assert.Equal(t, []string{"blocked"}, res.Deferred)
	require.True(t, s.CompleteActive("blocker", 2, 1001))

	require.Equal(t, Accepted, s.SubmitIntent("blocker", ClassInteractive, 1, 3, 1002).Kind)
	res = s.ScheduleFrame(1, 0, 1002)
	assert.Contains(t, res.DroppedDeferralTimeout, "blocked")

	snap := s.Snapshot(0)
	for _, p := range snap.Panes {
		if p.PaneID == "blocked" {
			assert.Nil(t, p.Pending)
		}
	}
}

// Property: canceling active work that is superseded emits a cancellation
// and clears the pane's active slot. Supersession compares the pane's own
// latest accepted seq against its active seq — no seq is passed in.
func TestCancelActiveIfSuperseded(t *testing.T) {
	s := newTestScheduler(activeCfg())
	require.Equal(t, Accepted, s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000).Kind)
	res := s.ScheduleFrame(10, 0, 1000)
	require.Equal(t, []string{"p1"}, res.Admitted)

	// Not superseded yet: latestSeq (1) == activeSeq (1).
	assert.False(t, s.CancelActiveIfSuperseded("p1", 1001))

	// A fresh submit bumps the pane's latestSeq past its active seq.
	require.Equal(t, Accepted, s.SubmitIntent("p1", ClassInteractive, 5, 2, 1002).Kind)
	assert.True(t, s.CancelActiveIfSuperseded("p1", 1003))
	snap := s.Snapshot(0)
	for _, p := range snap.Panes {
		if p.PaneID == "p1" {
			assert.Nil(t, p.Active)
		}
	}

	// Re-canceling once already caught up is a no-op.
	assert.False(t, s.CancelActiveIfSuperseded("p1", 1004))
}

func TestStalledTransactions_ReportsPhaseOverThreshold(t *testing.T) {
	s := newTestScheduler(activeCfg())
	require.Equal(t, Accepted, s.SubmitIntent("p1", ClassInteractive, 5, 1, 1000).Kind)
	res := s.ScheduleFrame(10, 0, 1000)
	require.Equal(t, []string{"p1"}, res.Admitted)

	assert.Empty(t, s.StalledTransactions(1500, 1000))
	assert.Equal(t, []string{"p1"}, s.StalledTransactions(2500, 1000))
}

func TestLifecycleRing_BoundedAndFIFO(t *testing.T) {
	cfg := activeCfg()
	cfg.MaxLifecycleEvents = 3
	s := newTestScheduler(cfg)

	for i := int64(1); i <= 5; i++ {
		s.SubmitIntent("p1", ClassInteractive, 1, i, 1000+i)
	}

	snap := s.Snapshot(0)
	require.Len(t, snap.Lifecycle, 3)
	// Only the last 3 submit events survive; earliest surviving one carries
	// intent_seq 3 (seqs 1 and 2 were overwritten).
	assert.Equal(t, int64(3), snap.Lifecycle[0].IntentSeq)
	assert.Equal(t, int64(5), snap.Lifecycle[2].IntentSeq)
}
