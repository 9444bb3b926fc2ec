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

// Package main implements frankenterm-coreutil, a thin CLI over the
// recording daemon's on-disk status report and backup schedule.
//
// Usage:
//
//	frankenterm-coreutil status [--json]         Show scheduler/backup status
//	frankenterm-coreutil backup next [--json]    Show the next scheduled backup time
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	JSON       bool
	NoColor    bool
	StatusPath string
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		statusPath  = flag.String("status-file", defaultStatusPath(), "Path to the daemon's status report file")
	)
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `frankenterm-coreutil - recording daemon status and backup CLI

Usage:
  frankenterm-coreutil <command> [options]

Commands:
  status        Show scheduler gate, stalled panes, and backup state
  backup next   Show the next scheduled backup time

Global Options:
  --json            Output in JSON format
  --no-color        Disable color output
  --status-file     Path to the daemon's status report file
  -V, --version      Show version and exit
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("frankenterm-coreutil version %s (commit %s, built %s)\n", version, commit, date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		*noColor = true
	}

	globals := GlobalFlags{JSON: *jsonOutput, NoColor: *noColor, StatusPath: *statusPath}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "status":
		os.Exit(runStatus(globals))
	case "backup":
		os.Exit(runBackup(args[1:], globals))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(configErrorExitCode)
	}
}

func defaultStatusPath() string {
	if dir := os.Getenv("FRANKENTERM_DATA_DIR"); dir != "" {
		return dir + "/status.json"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "status.json"
	}
	return home + "/.frankenterm/status.json"
}
