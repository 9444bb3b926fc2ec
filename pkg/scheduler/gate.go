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

// GateState reports whether the scheduler is currently admitting intents,
// and the values that produced that verdict.
type GateState struct {
	Active                bool
	ControlPlaneEnabled   bool
	EmergencyDisable      bool
	LegacyFallbackEnabled bool
}

// Gate returns the current admission gate state.
func (s *Scheduler) Gate() GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateLocked()
}

func (s *Scheduler) gateLocked() GateState {
	return GateState{
		Active:                s.cfg.gateActive(),
		ControlPlaneEnabled:   s.cfg.ControlPlaneEnabled,
		EmergencyDisable:      s.cfg.EmergencyDisable,
		LegacyFallbackEnabled: s.cfg.LegacyFallbackEnabled,
	}
}
