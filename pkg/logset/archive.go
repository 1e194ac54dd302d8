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

package logset

import (
	"container/heap"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
)

// archiveHeap is the underlying container/heap.Interface implementation,
// ordered by Sequence ascending. Duplicate sequences from different
// archive destinations are kept; only the first one popped at a given
// sequence is ever used, which dedups them implicitly.
type archiveHeap []catalog.Descriptor

func (h archiveHeap) Len() int            { return len(h) }
func (h archiveHeap) Less(i, j int) bool  { return h[i].Sequence < h[j].Sequence }
func (h archiveHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *archiveHeap) Push(x interface{}) { *h = append(*h, x.(catalog.Descriptor)) }
func (h *archiveHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ArchiveQueue is a min-heap of archived log descriptors ordered by
// sequence, rebuilt every refresh cycle from the catalog. The
// orchestrator is the sole owner of the popped values: Pop destroys the
// handle, matching the original's "priority queue of owning handles"
// design note.
type ArchiveQueue struct {
	h archiveHeap
}

// NewArchiveQueue builds a fresh queue from the catalog's archived-log
// rows for this cycle.
func NewArchiveQueue(descs []catalog.Descriptor) *ArchiveQueue {
	q := &ArchiveQueue{h: append(archiveHeap(nil), descs...)}
	heap.Init(&q.h)
	return q
}

// Len reports the number of archived descriptors still queued.
func (q *ArchiveQueue) Len() int { return q.h.Len() }

// Peek returns the lowest-sequence descriptor without removing it.
func (q *ArchiveQueue) Peek() (catalog.Descriptor, bool) {
	if q.h.Len() == 0 {
		return catalog.Descriptor{}, false
	}
	return q.h[0], true
}

// Pop removes and returns the lowest-sequence descriptor.
func (q *ArchiveQueue) Pop() (catalog.Descriptor, bool) {
	if q.h.Len() == 0 {
		return catalog.Descriptor{}, false
	}
	return heap.Pop(&q.h).(catalog.Descriptor), true
}
