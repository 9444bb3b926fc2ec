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

package main

// Exit codes: success is always 0. Configuration errors (bad flags, unknown
// command, malformed schedule) are distinguishable from runtime errors
// (status file unreadable, archive copy or write failed) so scripts can
// tell "you asked for something wrong" apart from "something broke".
const (
	successExitCode      = 0
	configErrorExitCode  = 1
	runtimeErrorExitCode = 2
)
