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

// Package errs defines the error taxonomy shared by the recorder, reindex,
// integrity, scheduler and search packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy purposes. It is never
// meant to be exhaustive of Go's error model, only of the handling policy
// described by the core design.
type Kind int

const (
	// Unknown is the zero value; prefer a specific Kind whenever possible.
	Unknown Kind = iota
	// Configuration covers invalid cron fields, batch_size = 0, unknown
	// schedule keywords, and similar fail-fast-at-the-boundary conditions.
	Configuration
	// SchemaIncompatible covers backups newer than supported or codec
	// version mismatches. Permanent, never retried.
	SchemaIncompatible
	// TransientIO covers broken pipes, connection resets, read/write
	// timeouts. Retryable with bounded backoff.
	TransientIO
	// ProtocolCorruption covers unexpected response serials, oversized
	// frames, malformed frames. Recoverable only by reconnecting.
	ProtocolCorruption
	// RemoteLogical covers a server-reported failure in a response.
	// Surfaced to the caller, never retried automatically.
	RemoteLogical
	// Integrity covers checkpoint offsets past the log end, or chunk text
	// hash mismatches on verify. Fatal; requires operator action.
	Integrity
	// Overload covers scheduler pending-cap reached, log append
	// backpressure. Converted to a structured outcome, not an exception.
	Overload
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case SchemaIncompatible:
		return "schema_incompatible"
	case TransientIO:
		return "transient_io"
	case ProtocolCorruption:
		return "protocol_corruption"
	case RemoteLogical:
		return "remote_logical"
	case Integrity:
		return "integrity"
	case Overload:
		return "overload"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind and the operation that
// produced it, so callers can errors.As for kind-specific handling without
// string-matching messages.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error for the given kind and operation.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err (or anything it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// Retryable reports whether the error's kind is one the design allows
// automatic retry for (TransientIO only; Overload is reported as a
// structured outcome rather than retried transparently).
func Retryable(err error) bool {
	return Is(err, TransientIO)
}
