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

import "context"

// Writer is the C3 index writer contract: an abstract sink for chunk/event
// documents. add_document may reject with a typed reason rather than
// erroring; delete_by_event_id is always idempotent.
type Writer interface {
	AddDocument(ctx context.Context, doc Document) (RejectReason, error)
	DeleteByEventID(ctx context.Context, eventID string) error
	Commit(ctx context.Context) (CommitStats, error)
	// ClearAll drops every document, returning how many were removed. Used
	// by the full-reindex entry point before a from-scratch run.
	ClearAll(ctx context.Context) (int, error)
}

// Lookup is the read sub-contract used only by the integrity checker.
type Lookup interface {
	HasEventID(ctx context.Context, eventID string) (bool, error)
	GetLogOffsetForEvent(ctx context.Context, eventID string) (int64, bool, error)
	CountTotal(ctx context.Context) (int, error)
}

// WriterLookup is satisfied by any backend that serves both the write path
// and the integrity-check read path, which every implementation in this
// package does.
type WriterLookup interface {
	Writer
	Lookup
}
