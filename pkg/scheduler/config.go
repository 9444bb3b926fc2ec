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

// Config is the externally-settable configuration surface. Every field
// except MaxLifecycleEvents is read under the scheduler's coarse lock at
// decision time, so a caller can mutate them live via Scheduler.SetConfig
// without restarting anything.
type Config struct {
	// ControlPlaneEnabled and EmergencyDisable together form the admission
	// gate: active = ControlPlaneEnabled && !EmergencyDisable.
	ControlPlaneEnabled bool
	EmergencyDisable    bool
	// LegacyFallbackEnabled is reported back to callers whenever the gate is
	// closed, so they know whether to fall back to the pre-scheduler resize
	// path or simply drop the resize.
	LegacyFallbackEnabled bool

	// FrameBudgetUnits is the nominal per-frame work budget before any
	// input-guardrail reservation is subtracted.
	FrameBudgetUnits int

	// InputGuardrailEnabled reserves InputReserveUnits of the frame budget
	// away from resize work whenever pending terminal input is at or above
	// InputBacklogThreshold.
	InputGuardrailEnabled bool
	InputBacklogThreshold int
	InputReserveUnits     int

	// MaxDeferralsBeforeForce bumps a repeatedly-skipped background
	// candidate into a forced admission exception regardless of score.
	// Interactive candidates are never forced.
	MaxDeferralsBeforeForce int
	// MaxDeferralsBeforeDrop drops a pending intent at the start of a frame
	// once it has been deferred this many times without ever running.
	MaxDeferralsBeforeDrop int

	AgingCreditPerFrame int
	MaxAgingCredit      int

	// AllowSingleOversubscription lets one candidate over the remaining
	// budget through per frame when nothing else fits, so a single large
	// pane is never starved forever by smaller neighbors.
	AllowSingleOversubscription bool

	// MaxPendingPanes bounds total pending intents; once reached, admitting
	// a new interactive intent evicts the oldest background pending intent.
	MaxPendingPanes int

	// MaxLifecycleEvents bounds the lifecycle event ring. Zero means use
	// DefaultMaxLifecycleEvents. It is read once by New; SetConfig does not
	// resize the ring.
	MaxLifecycleEvents int
}

// DefaultMaxLifecycleEvents is the ring capacity used when Config leaves
// MaxLifecycleEvents unset.
const DefaultMaxLifecycleEvents = 256

// DefaultConfig returns reasonable out-of-the-box values; the control plane
// is off until a caller opts in explicitly.
func DefaultConfig() Config {
	return Config{
		ControlPlaneEnabled:         false,
		EmergencyDisable:            false,
		LegacyFallbackEnabled:       true,
		FrameBudgetUnits:            100,
		InputGuardrailEnabled:       true,
		InputBacklogThreshold:       8,
		InputReserveUnits:           10,
		MaxDeferralsBeforeForce:     3,
		MaxDeferralsBeforeDrop:      10,
		AgingCreditPerFrame:         2,
		MaxAgingCredit:              20,
		AllowSingleOversubscription: true,
		MaxPendingPanes:             64,
		MaxLifecycleEvents:          DefaultMaxLifecycleEvents,
	}
}

func (c Config) gateActive() bool {
	return c.ControlPlaneEnabled && !c.EmergencyDisable
}

func (c Config) ringCap() int {
	if c.MaxLifecycleEvents > 0 {
		return c.MaxLifecycleEvents
	}
	return DefaultMaxLifecycleEvents
}
