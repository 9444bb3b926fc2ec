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
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/frankenterm-core/pkg/backupspec"
)

// runBackup dispatches "backup" subcommands: "next" computes the next
// scheduled run time, "run" copies a database file into a fresh archive
// directory and writes its manifest and checksums.
func runBackup(args []string, globals GlobalFlags) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: frankenterm-coreutil backup <next|run> [options]")
		return configErrorExitCode
	}

	switch args[0] {
	case "next":
		return runBackupNext(args[1:], globals)
	case "run":
		return runBackupRun(args[1:], globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown backup subcommand: %s\n", args[0])
		return configErrorExitCode
	}
}

func runBackupNext(args []string, globals GlobalFlags) int {
	cfg, err := LoadConfig(defaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return configErrorExitCode
	}
	defaultSchedule := cfg.Backup.Schedule
	if defaultSchedule == "" {
		defaultSchedule = "daily"
	}

	fs := flag.NewFlagSet("backup next", flag.ContinueOnError)
	schedule := fs.String("schedule", defaultSchedule, `Schedule: "hourly", "daily", "weekly", or a 5-field cron`)
	if err := fs.Parse(args); err != nil {
		return configErrorExitCode
	}

	sched, err := backupspec.ParseSchedule(*schedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid schedule %q: %v\n", *schedule, err)
		return configErrorExitCode
	}

	next := sched.NextAfter(time.Now())
	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]string{
			"schedule": sched.String(),
			"next_run": next.Format(time.RFC3339),
		})
		return successExitCode
	}

	fmt.Printf("next run for schedule %q: %s\n", sched.String(), next.Format("2006-01-02 15:04:05 MST"))
	return successExitCode
}

// runBackupRun copies a database file into a fresh archive directory and
// writes its manifest and checksums. --source is required; the destination
// falls back to the on-disk config when not given on the command line.
func runBackupRun(args []string, globals GlobalFlags) int {
	cfg, err := LoadConfig(defaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return configErrorExitCode
	}

	fs := flag.NewFlagSet("backup run", flag.ContinueOnError)
	source := fs.String("source", "", "path to the live database file")
	dest := fs.String("destination", cfg.Backup.Destination, "archive directory to write into")
	includeSQLDump := fs.Bool("sql-dump", false, "also copy a SQL text dump into the archive")
	if err := fs.Parse(args); err != nil {
		return configErrorExitCode
	}

	if *source == "" {
		fmt.Fprintln(os.Stderr, "Error: --source is required")
		return configErrorExitCode
	}
	if *dest == "" {
		fmt.Fprintln(os.Stderr, "Error: --destination is required (flag or config backup.destination)")
		return configErrorExitCode
	}

	if err := os.MkdirAll(*dest, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: create archive directory: %v\n", err)
		return runtimeErrorExitCode
	}

	layout := backupspec.NewArchiveLayout(*dest, *includeSQLDump)
	if err := copyWithProgress(*source, layout.DatabasePath, globals.NoColor); err != nil {
		fmt.Fprintf(os.Stderr, "Error: copy database: %v\n", err)
		return runtimeErrorExitCode
	}

	sums, err := backupspec.ComputeChecksums(layout.DatabasePath, layout.SQLDumpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: compute checksums: %v\n", err)
		return runtimeErrorExitCode
	}
	if err := os.WriteFile(layout.ChecksumsPath, []byte(sums.DatabaseSHA256+"  "+backupspec.DatabaseFile+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write checksums: %v\n", err)
		return runtimeErrorExitCode
	}

	manifest := backupspec.Manifest{
		SchemaVersion: backupspec.CurrentSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Checksums:     sums,
		HasSQLDump:    *includeSQLDump,
	}
	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode manifest: %v\n", err)
		return runtimeErrorExitCode
	}
	if err := os.WriteFile(layout.ManifestPath, manifestBytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: write manifest: %v\n", err)
		return runtimeErrorExitCode
	}

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]string{
			"archive_dir": layout.Dir,
			"database":    layout.DatabasePath,
		})
		return successExitCode
	}
	fmt.Printf("backup archived to %s\n", layout.Dir)
	return successExitCode
}

// copyWithProgress copies src to dst, rendering a progress bar sized to
// src's length. The bar is suppressed when color is disabled, matching
// non-interactive invocations (piped output, CI logs).
func copyWithProgress(src, dst string, noColor bool) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	var w io.Writer = out
	if !noColor {
		bar := progressbar.DefaultBytes(info.Size(), "copying database")
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, in); err != nil {
		return err
	}
	return out.Sync()
}
