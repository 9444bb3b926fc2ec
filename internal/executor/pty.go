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

package executor

import (
	"os"

	"github.com/creack/pty"
)

// Size is the terminal size the executor asks a PTY to take on.
type Size struct {
	Rows uint16
	Cols uint16
}

// PTY is the narrow surface the executor needs from a pane's backing
// pseudo-terminal: read its current size and ask it to take on a new one.
// Implementations must be safe to call from a single goroutine at a time
// (the executor never calls these concurrently for the same pane).
type PTY interface {
	GetSize() (Size, error)
	Resize(Size) error
}

// filePTY adapts an *os.File PTY master to the PTY interface using
// creack/pty, the library this codebase already uses to drive real PTYs.
type filePTY struct {
	f *os.File
}

// NewFilePTY wraps an OS pty master file.
func NewFilePTY(f *os.File) PTY {
	return &filePTY{f: f}
}

func (p *filePTY) GetSize() (Size, error) {
	ws, err := pty.GetsizeFull(p.f)
	if err != nil {
		return Size{}, err
	}
	return Size{Rows: ws.Rows, Cols: ws.Cols}, nil
}

func (p *filePTY) Resize(s Size) error {
	return pty.Setsize(p.f, &pty.Winsize{Rows: s.Rows, Cols: s.Cols})
}
