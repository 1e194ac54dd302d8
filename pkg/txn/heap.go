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

package txn

import "container/heap"

// txnHeap is the container/heap.Interface implementation backing Heap,
// ordered by FirstSequence ascending, same idiom as pkg/logset's
// archiveHeap.
type txnHeap []*Transaction

func (h txnHeap) Len() int { return len(h) }
func (h txnHeap) Less(i, j int) bool {
	return h[i].FirstSequence < h[j].FirstSequence
}

func (h txnHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}

func (h *txnHeap) Push(x interface{}) {
	tx := x.(*Transaction)
	tx.heapIndex = len(*h)
	*h = append(*h, tx)
}

func (h *txnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	tx := old[n-1]
	old[n-1] = nil
	tx.heapIndex = -1
	*h = old[:n-1]
	return tx
}

// Heap is a min-heap over open transactions keyed by FirstSequence,
// consulted only at checkpoint time to compute the checkpoint floor.
// Insert on begin, Remove on commit/rollback; both O(log n) with n
// bounded by MaxConcurrentTransactions.
type Heap struct {
	h txnHeap
}

// NewHeap returns an empty transaction heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Insert adds tx to the heap. Called when the log reader opens a new
// transaction.
func (h *Heap) Insert(tx *Transaction) {
	heap.Push(&h.h, tx)
}

// Remove removes tx from the heap. Called when the log reader commits or
// rolls back a transaction.
func (h *Heap) Remove(tx *Transaction) {
	if tx.heapIndex < 0 || tx.heapIndex >= len(h.h) || h.h[tx.heapIndex] != tx {
		return
	}
	heap.Remove(&h.h, tx.heapIndex)
}

// Len reports the number of open transactions tracked by the heap.
func (h *Heap) Len() int { return h.h.Len() }

// MinFirstSequence returns the lowest FirstSequence among open
// transactions and reports whether any are open at all.
func (h *Heap) MinFirstSequence() (uint32, bool) {
	if h.h.Len() == 0 {
		return 0, false
	}
	return h.h[0].FirstSequence, true
}
