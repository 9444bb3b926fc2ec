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

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/kraklabs/frankenterm-core/internal/statusreport"
)

// runStatus reads the daemon's published status report and prints it,
// surfacing scheduler gate state, stalled-pane summaries, and scheduled-
// backup state.
func runStatus(globals GlobalFlags) int {
	report, err := statusreport.Read(globals.StatusPath)
	if err != nil {
		if globals.JSON {
			_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: cannot read status file %s: %v\n", globals.StatusPath, err)
			fmt.Fprintln(os.Stderr, "Is the frankenterm recording daemon running?")
		}
		return runtimeErrorExitCode
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return successExitCode
	}

	printStatus(report, globals.NoColor)
	return successExitCode
}

func printStatus(report statusreport.Report, noColor bool) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	if noColor {
		bold.DisableColor()
		dim.DisableColor()
	}

	bold.Println("Scheduler")
	gate := report.Gate
	fmt.Printf("  gate active:        %v\n", gate.Active)
	fmt.Printf("  control plane:      %v\n", gate.ControlPlaneEnabled)
	fmt.Printf("  emergency disable:  %v\n", gate.EmergencyDisable)
	fmt.Printf("  legacy fallback:    %v\n", gate.LegacyFallbackEnabled)

	fmt.Println()
	bold.Println("Stalled panes")
	if len(report.StalledPanes) == 0 {
		dim.Println("  none")
	} else {
		for _, pane := range report.StalledPanes {
			fmt.Printf("  - %s\n", pane)
		}
	}

	fmt.Println()
	bold.Println("Backup")
	b := report.Backup
	fmt.Printf("  enabled:      %v\n", b.Enabled)
	if b.Schedule != "" {
		fmt.Printf("  schedule:     %s\n", b.Schedule)
	}
	if b.NextRunAt != nil {
		fmt.Printf("  next run:     %s\n", b.NextRunAt.Format("2006-01-02 15:04:05 MST"))
	}
	if b.LastRunAt != nil {
		fmt.Printf("  last run:     %s\n", b.LastRunAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Printf("  count kept:   %d\n", b.CountKept)
	if b.Destination != "" {
		fmt.Printf("  destination:  %s\n", b.Destination)
	}

	dim.Printf("\ngenerated at %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}
