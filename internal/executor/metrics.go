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

package executor

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	lockWaitSeconds  prometheus.Histogram
	workSeconds      prometheus.Histogram
	retryAttempts    prometheus.Histogram
	backoffSeconds   prometheus.Histogram
	applied          prometheus.Counter
	superseded       prometheus.Counter
	noop             prometheus.Counter
	resizeFailed     prometheus.Counter
}

// NewMetrics constructs and registers the executor's collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lockWaitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "lock_wait_seconds", Help: "Time spent waiting for the PTY or terminal lock.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		workSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "apply_seconds", Help: "Time spent applying one resize end to end.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		retryAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "retry_attempts", Help: "Number of resize() attempts needed per apply.",
			Buckets: []float64{1, 2, 3, 4},
		}),
		backoffSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "backoff_seconds", Help: "Delay slept before each resize() retry.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 8),
		}),
		applied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "applied_total", Help: "Resizes applied to completion.",
		}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "superseded_total", Help: "Resizes abandoned for being superseded by a newer intent.",
		}),
		noop: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "noop_total", Help: "Resizes skipped because the PTY was already at the target size.",
		}),
		resizeFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frankenterm", Subsystem: "resize_executor",
			Name: "resize_failed_total", Help: "resize() calls that exhausted all retry attempts.",
		}),
	}
	reg.MustRegister(
		m.lockWaitSeconds, m.workSeconds, m.retryAttempts, m.backoffSeconds,
		m.applied, m.superseded, m.noop, m.resizeFailed,
	)
	return m
}
