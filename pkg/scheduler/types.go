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

// WorkClass distinguishes interactive resizes (the user is dragging a pane
// right now) from background ones (layout settling, programmatic resize).
type WorkClass int

const (
	ClassBackground WorkClass = iota
	ClassInteractive
)

func (c WorkClass) String() string {
	if c == ClassInteractive {
		return "interactive"
	}
	return "background"
}

// basePriority gives interactive work a flat head start over background
// work; aging credit and starvation-forcing are what let background work
// eventually win anyway.
func (c WorkClass) basePriority() int {
	if c == ClassInteractive {
		return 100
	}
	return 10
}

// ActivePhase is where an admitted resize currently sits in its own
// lifecycle. Transitions between phases are caller-driven (the executor
// reports them) and are not enforced monotone: a caller may legitimately
// re-enter "reflowing" after "presenting" if a PTY resize must be retried.
type ActivePhase int

const (
	PhasePreparing ActivePhase = iota
	PhaseReflowing
	PhasePresenting
)

func (p ActivePhase) String() string {
	switch p {
	case PhaseReflowing:
		return "reflowing"
	case PhasePresenting:
		return "presenting"
	default:
		return "preparing"
	}
}

// PendingIntent is a not-yet-admitted resize request for one pane.
type PendingIntent struct {
	PaneID        string
	IntentSeq     int64
	Class         WorkClass
	WorkUnits     int
	SubmittedAtMs int64
	Deferrals     int
	AgingCredit   int
}

// ActiveWork is a resize currently admitted and running (or about to run)
// for one pane.
type ActiveWork struct {
	PaneID       string
	ActiveSeq    int64
	Class        WorkClass
	Phase        ActivePhase
	PhaseSetAtMs int64
}

// paneState is the scheduler's internal per-pane bookkeeping. At most one
// PendingIntent and one ActiveWork exist per pane at a time; a new submit
// coalesces onto the existing pending slot rather than queuing a second one.
type paneState struct {
	latestSeq int64
	pending   *PendingIntent
	active    *ActiveWork
}
