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

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the scheduler's prometheus collectors. A nil *Metrics
// (the zero Scheduler) is valid: every method nil-checks before recording,
// so callers who don't want metrics registered at all can just not call
// NewMetrics.
type Metrics struct {
	admitted         *prometheus.CounterVec
	rejectedNonMono  prometheus.Counter
	droppedOverload  prometheus.Counter
	suppressedByKill prometheus.Counter
	suppressedFrames prometheus.Counter
	droppedDeferrals prometheus.Counter

	inputGuardrailDeferrals prometheus.Counter
	forcedAdmissions        prometheus.Counter
	oversubscriptions       prometheus.Counter
	cancellations           prometheus.Counter

	pendingGauge prometheus.Gauge
	activeGauge  prometheus.Gauge
}

// NewMetrics constructs and registers the scheduler's collectors against
// reg. Pass prometheus.NewRegistry() in tests to avoid polluting the
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		admitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frankenterm",
			Subsystem: "resize_scheduler",
			Name:      "admitted_total",
			Help:      "Intents admitted into the active slot, by work class.",
		}, []string{"class"}),
		rejectedNonMono: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "rejected_non_monotonic_total",
			Help: "Submits rejected for carrying a stale intent_seq.",
		}),
		droppedOverload: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "dropped_overload_total",
			Help: "Submits dropped because the pending queue was full.",
		}),
		suppressedByKill: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "suppressed_by_kill_switch_total",
			Help: "Submits suppressed while the admission gate is closed.",
		}),
		suppressedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "suppressed_frames_total",
			Help: "ScheduleFrame calls that returned an empty schedule because the admission gate was closed.",
		}),
		droppedDeferrals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "dropped_deferral_timeout_total",
			Help: "Pending intents dropped for exceeding max deferrals.",
		}),
		inputGuardrailDeferrals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "input_guardrail_deferrals_total",
			Help: "Candidates deferred while the input guardrail reserve was active that would have fit the unreserved frame budget.",
		}),
		forcedAdmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "forced_admissions_total",
			Help: "Candidates admitted via the starvation-forcing exception.",
		}),
		oversubscriptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "oversubscriptions_total",
			Help: "Candidates admitted over the remaining frame budget.",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "cancellations_total",
			Help: "Active work canceled for being superseded by a newer intent.",
		}),
		pendingGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "pending_panes",
			Help: "Current count of panes with a pending intent.",
		}),
		activeGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "frankenterm", Subsystem: "resize_scheduler",
			Name: "active_panes",
			Help: "Current count of panes with active work.",
		}),
	}
	reg.MustRegister(
		m.admitted, m.rejectedNonMono, m.droppedOverload, m.suppressedByKill,
		m.suppressedFrames, m.droppedDeferrals, m.inputGuardrailDeferrals,
		m.forcedAdmissions, m.oversubscriptions, m.cancellations,
		m.pendingGauge, m.activeGauge,
	)
	return m
}
