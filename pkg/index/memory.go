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

package index

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory WriterLookup, the reference implementation
// used by tests and by deployments small enough not to need a persistent
// index. It follows the same coarse RWMutex discipline as the backend it
// is grounded on: writes take the exclusive lock, reads take the shared
// one, and a closed flag blocks further use.
type MemoryBackend struct {
	mu     sync.RWMutex
	closed bool

	docs    map[string]Document // event_id -> document
	pending map[string]Document // staged by AddDocument, flushed on Commit
	deletes map[string]struct{} // staged by DeleteByEventID, flushed on Commit
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs:    map[string]Document{},
		pending: map[string]Document{},
		deletes: map[string]struct{}{},
	}
}

func (b *MemoryBackend) AddDocument(ctx context.Context, doc Document) (RejectReason, error) {
	if doc.EventID == "" {
		return RejectMissingEventID, nil
	}
	if doc.PaneID == "" {
		return RejectMissingPaneID, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return RejectNone, errClosed
	}
	delete(b.deletes, doc.EventID)
	b.pending[doc.EventID] = doc
	return RejectNone, nil
}

func (b *MemoryBackend) DeleteByEventID(ctx context.Context, eventID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	delete(b.pending, eventID)
	b.deletes[eventID] = struct{}{}
	return nil
}

func (b *MemoryBackend) Commit(ctx context.Context) (CommitStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return CommitStats{}, errClosed
	}

	for id := range b.deletes {
		if _, ok := b.docs[id]; ok {
			delete(b.docs, id)
		}
	}
	stats := CommitStats{DocumentsDeleted: len(b.deletes)}
	b.deletes = map[string]struct{}{}

	for id, doc := range b.pending {
		b.docs[id] = doc
	}
	stats.DocumentsWritten = len(b.pending)
	b.pending = map[string]Document{}

	return stats, nil
}

func (b *MemoryBackend) ClearAll(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, errClosed
	}
	n := len(b.docs)
	b.docs = map[string]Document{}
	b.pending = map[string]Document{}
	b.deletes = map[string]struct{}{}
	return n, nil
}

func (b *MemoryBackend) HasEventID(ctx context.Context, eventID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false, errClosed
	}
	_, ok := b.docs[eventID]
	return ok, nil
}

func (b *MemoryBackend) GetLogOffsetForEvent(ctx context.Context, eventID string) (int64, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, false, errClosed
	}
	doc, ok := b.docs[eventID]
	if !ok {
		return 0, false, nil
	}
	return doc.LogOffset, true, nil
}

func (b *MemoryBackend) CountTotal(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, errClosed
	}
	return len(b.docs), nil
}

// Close marks the backend unusable; grounded on EmbeddedBackend's
// closed-flag-under-lock pattern.
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Snapshot returns a defensive copy of every currently committed document,
// for tests and the search service's initial load.
func (b *MemoryBackend) Snapshot() []Document {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Document, 0, len(b.docs))
	for _, d := range b.docs {
		out = append(out, d)
	}
	return out
}

var _ WriterLookup = (*MemoryBackend)(nil)
