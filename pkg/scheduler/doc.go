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

// Package scheduler implements the C6 resize scheduler: the single
// authority ordering resize work across all panes under a global
// per-frame budget. Its locking discipline — one coarse exclusive lock
// guarding all scheduler state, with a distinct reader-writer lock
// guarding only the published debug snapshot — is grounded on
// panestate.Manager's coarse-map/fine-entry split, adapted here to a
// single coarse writer lock plus a second independent snapshot lock
// instead of per-entry locks, since every scheduling decision touches
// cross-pane state (budgets, sort order) that per-pane locks can't serialize.
package scheduler
