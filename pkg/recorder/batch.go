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
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultBatchLRUSize bounds the idempotency cache of recent batch ids.
// Grounded on transparency-dev-trillian-tessera's dedupe.go, which wraps an
// Add function with an in-memory github.com/hashicorp/golang-lru/v2 cache
// keyed by entry identity so repeat submissions return the original result
// instead of being re-applied.
const defaultBatchLRUSize = 4096

// AppendResult is returned by AppendBatch. A repeat call with the same
// batch_id returns the identical AppendResult with Deduped set, honoring
// the idempotent-producer contract.
type AppendResult struct {
	FirstOffset Offset
	LastOffset  Offset
	Reached     Durability
	Deduped     bool
}

// batchLRU wraps the hashicorp LRU cache with the get/add shape FileLog
// uses, keeping the generic instantiation in one place.
type batchLRU struct {
	cache *lru.Cache[string, AppendResult]
}

func newBatchLRU(size int) *batchLRU {
	if size <= 0 {
		size = defaultBatchLRUSize
	}
	c, err := lru.New[string, AppendResult](size)
	if err != nil {
		// Only non-positive sizes cause lru.New to fail, and size is
		// normalized above, so this is unreachable in practice.
		panic(err)
	}
	return &batchLRU{cache: c}
}

func (b *batchLRU) get(batchID string) (AppendResult, bool) {
	return b.cache.Get(batchID)
}

func (b *batchLRU) add(batchID string, result AppendResult) {
	b.cache.Add(batchID, result)
}
