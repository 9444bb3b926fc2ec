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

import (
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Task is one admitted resize: a pane, the scheduler's intent/active seq
// for it, and the size it should converge to.
type Task struct {
	PaneID string
	Seq    int64
	Target Size
}

// Canceler reports whether a pane's active work has already been
// superseded by a newer admission, so the executor can abandon an in-flight
// apply without clobbering state a later resize already owns.
type Canceler interface {
	IsSuperseded(paneID string, seq int64) bool
}

// PhaseReporter receives the executor's phase transitions and final
// completion, normally backed by a *scheduler.Scheduler.
type PhaseReporter interface {
	MarkActivePhase(paneID string, seq int64, phase int, nowMs int64) bool
	CompleteActive(paneID string, seq int64, nowMs int64) bool
}

// Phase constants mirror pkg/scheduler's ActivePhase values without
// importing that package, keeping the executor usable against any
// PhaseReporter.
const (
	PhasePreparing = iota
	PhaseReflowing
	PhasePresenting
)

// PaneResources are the pane-scoped locks and handles the executor needs to
// actually carry out a resize.
type PaneResources struct {
	PTY               PTY
	PTYMu             *sync.Mutex
	TerminalMu        *sync.Mutex
	ApplyTerminalSize func(Size) error
}

// Clock abstracts wall-clock time so tests can inject deterministic values.
type Clock func() int64

// paneQueue holds at most one pending task per pane; a task submitted while
// one is already pending replaces it (coalescing), and at most one worker
// goroutine runs per pane at a time.
type paneQueue struct {
	mu      sync.Mutex
	pending *Task
	running bool
}

// Executor applies admitted resize decisions to real PTYs, one worker per
// pane, spawned on the pane's empty-to-nonempty queue transition and
// retired once its queue drains.
type Executor struct {
	mu        sync.Mutex
	resources map[string]PaneResources
	queues    map[string]*paneQueue

	canceler Canceler
	reporter PhaseReporter
	metrics  *Metrics
	now      Clock

	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// New constructs an Executor. m and reporter may be nil for tests that only
// want to exercise the queueing/apply behavior in isolation.
func New(canceler Canceler, reporter PhaseReporter, m *Metrics, now Clock) *Executor {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Executor{
		resources:   make(map[string]PaneResources),
		queues:      make(map[string]*paneQueue),
		canceler:    canceler,
		reporter:    reporter,
		metrics:     m,
		now:         now,
		maxAttempts: DefaultMaxAttempts,
		baseBackoff: DefaultBaseBackoff,
		maxBackoff:  DefaultMaxBackoff,
	}
}

// Register attaches the PTY/terminal handles a pane's resizes will run
// against. Must be called before the first Submit for that pane.
func (e *Executor) Register(paneID string, res PaneResources) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resources[paneID] = res
}

func (e *Executor) queueFor(paneID string) *paneQueue {
	e.mu.Lock()
	defer e.mu.Unlock()
	q, ok := e.queues[paneID]
	if !ok {
		q = &paneQueue{}
		e.queues[paneID] = q
	}
	return q
}

// Submit enqueues task for its pane, coalescing onto any already-pending
// task for the same pane. Spawns a worker only on the empty-to-nonempty
// transition; an already-running worker picks up the coalesced task itself.
func (e *Executor) Submit(task Task) {
	q := e.queueFor(task.PaneID)

	q.mu.Lock()
	q.pending = &task
	spawn := !q.running
	if spawn {
		q.running = true
	}
	q.mu.Unlock()

	if spawn {
		go e.worker(task.PaneID, q)
	}
}

func (e *Executor) worker(paneID string, q *paneQueue) {
	for {
		q.mu.Lock()
		task := q.pending
		q.pending = nil
		q.mu.Unlock()

		if task == nil {
			q.mu.Lock()
			q.running = false
			q.mu.Unlock()
			return
		}

		e.apply(paneID, *task)

		q.mu.Lock()
		if q.pending == nil {
			q.running = false
			q.mu.Unlock()
			return
		}
		q.mu.Unlock()
	}
}

// apply runs the five-step sequence: read current size, check supersession,
// resize under lock with retry, check supersession again, apply the new
// size to the terminal under lock.
func (e *Executor) apply(paneID string, task Task) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.workSeconds.Observe(time.Since(start).Seconds())
		}
	}()

	e.mu.Lock()
	res, ok := e.resources[paneID]
	e.mu.Unlock()
	if !ok {
		return
	}

	e.reportPhase(paneID, task.Seq, PhasePreparing)

	lockStart := time.Now()
	res.PTYMu.Lock()
	cur, err := res.PTY.GetSize()
	res.PTYMu.Unlock()
	e.observeLockWait(lockStart)
	if err == nil && cur == task.Target {
		if e.metrics != nil {
			e.metrics.noop.Inc()
		}
		e.complete(paneID, task.Seq)
		return
	}

	if e.superseded(paneID, task.Seq) {
		return
	}

	e.reportPhase(paneID, task.Seq, PhaseReflowing)

	lockStart = time.Now()
	res.PTYMu.Lock()
	attempts := 0
	resizeErr := retry.Do(
		func() error {
			attempts++
			return res.PTY.Resize(task.Target)
		},
		retry.Attempts(uint(e.maxAttempts)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			d := backoffDelay(int(n)+1, e.baseBackoff, e.maxBackoff)
			if e.metrics != nil {
				e.metrics.backoffSeconds.Observe(d.Seconds())
			}
			return d
		}),
	)
	res.PTYMu.Unlock()
	e.observeLockWait(lockStart)
	if e.metrics != nil {
		e.metrics.retryAttempts.Observe(float64(attempts))
	}
	if resizeErr != nil {
		if e.metrics != nil {
			e.metrics.resizeFailed.Inc()
		}
		return
	}

	if e.superseded(paneID, task.Seq) {
		return
	}

	e.reportPhase(paneID, task.Seq, PhasePresenting)

	lockStart = time.Now()
	res.TerminalMu.Lock()
	var applyErr error
	if res.ApplyTerminalSize != nil {
		applyErr = res.ApplyTerminalSize(task.Target)
	}
	res.TerminalMu.Unlock()
	e.observeLockWait(lockStart)
	if applyErr != nil {
		return
	}

	if e.metrics != nil {
		e.metrics.applied.Inc()
	}
	e.complete(paneID, task.Seq)
}

func (e *Executor) observeLockWait(start time.Time) {
	if e.metrics != nil {
		e.metrics.lockWaitSeconds.Observe(time.Since(start).Seconds())
	}
}

func (e *Executor) superseded(paneID string, seq int64) bool {
	if e.canceler == nil {
		return false
	}
	sup := e.canceler.IsSuperseded(paneID, seq)
	if sup && e.metrics != nil {
		e.metrics.superseded.Inc()
	}
	return sup
}

func (e *Executor) reportPhase(paneID string, seq int64, phase int) {
	if e.reporter != nil {
		e.reporter.MarkActivePhase(paneID, seq, phase, e.now())
	}
}

func (e *Executor) complete(paneID string, seq int64) {
	if e.reporter != nil {
		e.reporter.CompleteActive(paneID, seq, e.now())
	}
}
