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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePTY struct {
	mu          sync.Mutex
	size        Size
	failUntil   int
	resizeCalls int
}

func (f *fakePTY) GetSize() (Size, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size, nil
}

func (f *fakePTY) Resize(s Size) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizeCalls++
	if f.resizeCalls <= f.failUntil {
		return errors.New("transient resize failure")
	}
	f.size = s
	return nil
}

type fakeReporter struct {
	mu        sync.Mutex
	phases    []int
	completed []int64
}

func (r *fakeReporter) MarkActivePhase(paneID string, seq int64, phase int, nowMs int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
	return true
}

func (r *fakeReporter) CompleteActive(paneID string, seq int64, nowMs int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, seq)
	return true
}

type fakeCanceler struct {
	mu          sync.Mutex
	supersededSeqs map[int64]bool
}

func (c *fakeCanceler) IsSuperseded(paneID string, seq int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supersededSeqs[seq]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func newTestExecutor() (*Executor, *fakeReporter, *fakeCanceler) {
	reporter := &fakeReporter{}
	canceler := &fakeCanceler{supersededSeqs: make(map[int64]bool)}
	ex := New(canceler, reporter, nil, func() int64 { return 0 })
	return ex, reporter, canceler
}

func TestApply_NoopWhenAlreadyAtTargetSize(t *testing.T) {
	ex, reporter, _ := newTestExecutor()
	pty := &fakePTY{size: Size{Rows: 24, Cols: 80}}
	ex.Register("p1", PaneResources{PTY: pty, PTYMu: &sync.Mutex{}, TerminalMu: &sync.Mutex{}})

	ex.Submit(Task{PaneID: "p1", Seq: 1, Target: Size{Rows: 24, Cols: 80}})
	waitFor(t, func() bool { return len(reporter.completed) == 1 })

	assert.Equal(t, 0, pty.resizeCalls)
	assert.Equal(t, []int64{1}, reporter.completed)
}

func TestApply_ResizesAndAppliesTerminalSize(t *testing.T) {
	ex, reporter, _ := newTestExecutor()
	pty := &fakePTY{size: Size{Rows: 24, Cols: 80}}
	var applied Size
	ex.Register("p1", PaneResources{
		PTY: pty, PTYMu: &sync.Mutex{}, TerminalMu: &sync.Mutex{},
		ApplyTerminalSize: func(s Size) error { applied = s; return nil },
	})

	ex.Submit(Task{PaneID: "p1", Seq: 1, Target: Size{Rows: 30, Cols: 100}})
	waitFor(t, func() bool { return len(reporter.completed) == 1 })

	assert.Equal(t, 1, pty.resizeCalls)
	assert.Equal(t, Size{Rows: 30, Cols: 100}, applied)
	assert.Equal(t, []int{PhasePreparing, PhaseReflowing, PhasePresenting}, reporter.phases)
}

func TestApply_RetriesTransientResizeFailure(t *testing.T) {
	ex, reporter, _ := newTestExecutor()
	ex.baseBackoff = time.Microsecond
	ex.maxBackoff = 10 * time.Microsecond
	pty := &fakePTY{size: Size{Rows: 24, Cols: 80}, failUntil: 2}
	ex.Register("p1", PaneResources{PTY: pty, PTYMu: &sync.Mutex{}, TerminalMu: &sync.Mutex{}})

	ex.Submit(Task{PaneID: "p1", Seq: 1, Target: Size{Rows: 30, Cols: 100}})
	waitFor(t, func() bool { return len(reporter.completed) == 1 })

	assert.Equal(t, 3, pty.resizeCalls)
}

func TestApply_AbandonsWhenSupersededBeforePtyResize(t *testing.T) {
	ex, reporter, canceler := newTestExecutor()
	canceler.supersededSeqs[1] = true
	pty := &fakePTY{size: Size{Rows: 24, Cols: 80}}
	ex.Register("p1", PaneResources{PTY: pty, PTYMu: &sync.Mutex{}, TerminalMu: &sync.Mutex{}})

	ex.Submit(Task{PaneID: "p1", Seq: 1, Target: Size{Rows: 30, Cols: 100}})
	time.Sleep(20 * time.Millisecond) // let the worker run to completion/abandonment

	assert.Equal(t, 0, pty.resizeCalls)
	assert.Empty(t, reporter.completed)
}

func TestSubmit_CoalescesPendingTaskForSamePane(t *testing.T) {
	ex, reporter, _ := newTestExecutor()
	pty := &fakePTY{size: Size{Rows: 10, Cols: 10}}
	ex.Register("p1", PaneResources{PTY: pty, PTYMu: &sync.Mutex{}, TerminalMu: &sync.Mutex{}})

	// Hold the pane's PTY lock briefly so the first worker hasn't drained
	// before the second submit lands, forcing the coalesce path.
	pty.mu.Lock()
	ex.Submit(Task{PaneID: "p1", Seq: 1, Target: Size{Rows: 20, Cols: 20}})
	ex.Submit(Task{PaneID: "p1", Seq: 2, Target: Size{Rows: 30, Cols: 30}})
	pty.mu.Unlock()

	waitFor(t, func() bool { return len(reporter.completed) >= 1 })
	waitFor(t, func() bool {
		q := ex.queueFor("p1")
		q.mu.Lock()
		defer q.mu.Unlock()
		return !q.running
	})

	require.NotEmpty(t, reporter.completed)
	assert.Equal(t, int64(2), reporter.completed[len(reporter.completed)-1])
}
