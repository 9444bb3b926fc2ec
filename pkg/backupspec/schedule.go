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

package backupspec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kraklabs/frankenterm-core/pkg/errs"
)

// Schedule is a parsed backup cadence: either one of the named shorthands
// or a 5-field cron expression where every field is "*" or a single numeric
// value in range (no ranges, steps, or lists — the contract is intentionally
// narrow).
type Schedule struct {
	raw string

	named namedCadence

	minute     *int // 0-59
	hour       *int // 0-23
	dayOfMonth *int // 1-31
	month      *int // 1-12
	dayOfWeek  *int // 0-6, 0 = Sunday
}

type namedCadence int

const (
	cadenceNone namedCadence = iota
	cadenceHourly
	cadenceDaily
	cadenceWeekly
)

// String returns the schedule text it was parsed from.
func (s Schedule) String() string { return s.raw }

// ParseSchedule parses "hourly", "daily", "weekly", or a 5-field cron string
// ("m h dom mon dow", each "*" or a single in-range number). A malformed
// schedule is a Configuration error: fail fast, never retried.
func ParseSchedule(s string) (Schedule, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "hourly":
		return Schedule{raw: trimmed, named: cadenceHourly}, nil
	case "daily":
		return Schedule{raw: trimmed, named: cadenceDaily}, nil
	case "weekly":
		return Schedule{raw: trimmed, named: cadenceWeekly}, nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) != 5 {
		return Schedule{}, errs.New(errs.Configuration, "backupspec.ParseSchedule",
			fmt.Errorf("schedule %q: expected \"hourly\", \"daily\", \"weekly\", or a 5-field cron", s))
	}

	sched := Schedule{raw: trimmed}
	parsers := []struct {
		field    string
		lo, hi   int
		assignTo **int
	}{
		{fields[0], 0, 59, &sched.minute},
		{fields[1], 0, 23, &sched.hour},
		{fields[2], 1, 31, &sched.dayOfMonth},
		{fields[3], 1, 12, &sched.month},
		{fields[4], 0, 6, &sched.dayOfWeek},
	}
	for _, p := range parsers {
		v, err := parseCronField(p.field, p.lo, p.hi)
		if err != nil {
			return Schedule{}, errs.New(errs.Configuration, "backupspec.ParseSchedule", err)
		}
		*p.assignTo = v
	}
	return sched, nil
}

func parseCronField(field string, lo, hi int) (*int, error) {
	if field == "*" {
		return nil, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return nil, fmt.Errorf("cron field %q: not \"*\" or a number", field)
	}
	if n < lo || n > hi {
		return nil, fmt.Errorf("cron field %q: out of range [%d,%d]", field, lo, hi)
	}
	return &n, nil
}

// NextAfter returns the next instant strictly after t that the schedule
// fires at. Minute resolution; seconds and sub-second components of t are
// dropped before searching. Satisfies testable property #10: the result is
// always strictly greater than t.
func (s Schedule) NextAfter(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	switch s.named {
	case cadenceHourly:
		return t.Add(time.Hour)
	case cadenceDaily:
		return t.AddDate(0, 0, 1)
	case cadenceWeekly:
		return t.AddDate(0, 0, 7)
	}

	candidate := t.Add(time.Minute)
	// Bounded search: a valid 5-field cron (single numeric values, no lists)
	// repeats at most once a year, so four years of minutes is a generous
	// ceiling that can never legitimately be exhausted.
	limit := candidate.AddDate(4, 0, 0)
	for candidate.Before(limit) {
		if s.matches(candidate) {
			return candidate
		}
		candidate = candidate.Add(time.Minute)
	}
	return limit
}

func (s Schedule) matches(t time.Time) bool {
	if s.minute != nil && *s.minute != t.Minute() {
		return false
	}
	if s.hour != nil && *s.hour != t.Hour() {
		return false
	}
	if s.dayOfMonth != nil && *s.dayOfMonth != t.Day() {
		return false
	}
	if s.month != nil && *s.month != int(t.Month()) {
		return false
	}
	if s.dayOfWeek != nil && *s.dayOfWeek != int(t.Weekday()) {
		return false
	}
	return true
}
