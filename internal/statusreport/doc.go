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

// Package statusreport defines the status snapshot the recording daemon
// periodically publishes to disk and the frankenterm-coreutil CLI reads: the
// scheduler's gate state, stalled-pane summaries drawn from its debug
// snapshot, and the scheduled-backup state. The daemon and the CLI are
// separate processes, so this is a file handoff rather than an in-process
// call.
package statusreport
