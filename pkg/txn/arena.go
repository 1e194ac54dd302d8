// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package txn is the transaction bookkeeping the log reader mutates: a
// fixed-capacity chunk arena, an id-to-transaction table, and a
// first-sequence min-heap the orchestrator consults when computing the
// checkpoint floor.
package txn

import cerror "github.com/philipgreat/OpenLogReplicator/pkg/errors"

// Chunk is one fixed-size buffer of an open transaction's redo payload.
type Chunk struct {
	buf []byte
}

// Bytes returns the chunk's backing buffer for the log reader to fill.
func (c *Chunk) Bytes() []byte { return c.buf }

// Arena is a fixed-capacity pool of Chunks. Allocation is O(1) pop from a
// free list; an empty free list is a fatal configuration error (the
// upstream load exceeds RedoBuffers).
type Arena struct {
	size      int
	free      []*Chunk
	allocated int
}

// NewArena allocates buffers chunks of size bytes each, all initially
// free.
func NewArena(buffers, size int) *Arena {
	a := &Arena{size: size, free: make([]*Chunk, 0, buffers)}
	for i := 0; i < buffers; i++ {
		a.free = append(a.free, &Chunk{buf: make([]byte, size)})
	}
	return a
}

// Alloc pops one chunk off the free list. Returns pkg/errors.
// ErrArenaExhausted if none remain.
func (a *Arena) Alloc() (*Chunk, error) {
	if len(a.free) == 0 {
		return nil, cerror.ErrArenaExhausted.GenWithStackByArgs(a.allocated, a.TotalBuffers())
	}
	n := len(a.free) - 1
	c := a.free[n]
	a.free = a.free[:n]
	a.allocated++
	return c, nil
}

// Free returns a chunk to the free list.
func (a *Arena) Free(c *Chunk) {
	a.free = append(a.free, c)
	a.allocated--
}

// FreeBuffers reports how many chunks are currently unallocated, for the
// shutdown diagnostic dump.
func (a *Arena) FreeBuffers() int { return len(a.free) }

// TotalBuffers reports the arena's fixed capacity.
func (a *Arena) TotalBuffers() int { return len(a.free) + a.allocated }
