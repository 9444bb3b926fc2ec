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

package recorder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Each record is stored as a length-prefixed, schema-tagged,
// checksum-protected frame:
//
//	u32 payload_length | u8 schema_version | u32 crc32c(payload) | payload
//
// This mirrors the append-only log framing used throughout the retrieval
// pack's write-ahead logs (length-prefixed records with a trailing or
// embedded checksum, e.g. ChuLiYu-raft-recovery's WAL and
// tomtom215-cartographus's event appender), adapted to a fixed binary
// header instead of a JSON envelope so frame boundaries are unambiguous
// even when a frame is truncated mid-write.
const frameHeaderLen = 4 + 1 + 4

// maxFrameLen bounds a single frame's payload size; larger values are
// treated as protocol corruption rather than attempted reads.
const maxFrameLen = 64 << 20 // 64 MiB

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// errTrailingCorruption signals that a scan hit a frame that doesn't
// checksum or doesn't fit the stream. This terminates a scan as
// end-of-log, not as an error, because it is indistinguishable from a
// power-loss tail.
var errTrailingCorruption = errors.New("recorder: trailing corruption")

// encodeFrame serializes payload into the on-disk frame format.
func encodeFrame(schemaVersion SchemaVersion, payload []byte) []byte {
	if len(payload) > maxFrameLen {
		panic(fmt.Sprintf("recorder: payload length %d exceeds maxFrameLen", len(payload)))
	}
	buf := make([]byte, frameHeaderLen+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	buf[4] = byte(schemaVersion)
	sum := crc32.Checksum(payload, crc32cTable)
	binary.BigEndian.PutUint32(buf[5:9], sum)
	copy(buf[frameHeaderLen:], payload)
	return buf
}

// decodedFrame is one successfully parsed frame plus the number of bytes
// it occupied on the wire.
type decodedFrame struct {
	SchemaVersion SchemaVersion
	Payload       []byte
	WireLen       int64
}

// readFrame reads exactly one frame from r. It returns io.EOF when r is
// exhausted cleanly at a frame boundary (normal end of log), and
// errTrailingCorruption when a partial or invalid frame is encountered
// (crash tail) — both are "stop scanning", just distinguished for callers
// that want to log the difference.
func readFrame(r io.Reader) (decodedFrame, error) {
	header := make([]byte, frameHeaderLen)
	n, err := io.ReadFull(r, header)
	if err == io.EOF && n == 0 {
		return decodedFrame{}, io.EOF
	}
	if err != nil {
		// Short header read: a torn write from a crash mid-append.
		return decodedFrame{}, errTrailingCorruption
	}

	payloadLen := binary.BigEndian.Uint32(header[0:4])
	if payloadLen > maxFrameLen {
		return decodedFrame{}, errTrailingCorruption
	}
	schemaVersion := SchemaVersion(header[4])
	wantSum := binary.BigEndian.Uint32(header[5:9])

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return decodedFrame{}, errTrailingCorruption
	}

	gotSum := crc32.Checksum(payload, crc32cTable)
	if gotSum != wantSum {
		return decodedFrame{}, errTrailingCorruption
	}

	return decodedFrame{
		SchemaVersion: schemaVersion,
		Payload:       payload,
		WireLen:       int64(frameHeaderLen) + int64(payloadLen),
	}, nil
}
