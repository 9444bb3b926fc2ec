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

// Package recorder implements the durable, ordered, checkpointable event
// log (the flight recorder's append log). Producers append batches of
// events; consumers scan records in ordinal order and checkpoint their
// progress independently of one another.
//
// The log never rewrites or deletes an offset; checkpoints only advance.
// Replaying any suffix of the log against an idempotent consumer yields
// state indistinguishable from an uninterrupted run.
package recorder
