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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaAllocFreeIsLIFO(t *testing.T) {
	t.Parallel()
	a := NewArena(2, 16)
	require.Equal(t, 2, a.FreeBuffers())

	c1, err := a.Alloc()
	require.NoError(t, err)
	require.Equal(t, 1, a.FreeBuffers())

	c2, err := a.Alloc()
	require.NoError(t, err)
	require.Equal(t, 0, a.FreeBuffers())

	_, err = a.Alloc()
	require.Error(t, err, "allocating from an exhausted arena must fail")

	a.Free(c1)
	a.Free(c2)
	require.Equal(t, 2, a.FreeBuffers())

	c, err := a.Alloc()
	require.NoError(t, err)
	require.Same(t, c2, c, "the most recently freed chunk is handed out first")
}

func TestHeapMinFirstSequence(t *testing.T) {
	t.Parallel()
	h := NewHeap()
	_, ok := h.MinFirstSequence()
	require.False(t, ok)

	tx1 := &Transaction{ID: "a", FirstSequence: 105}
	tx2 := &Transaction{ID: "b", FirstSequence: 100}
	tx3 := &Transaction{ID: "c", FirstSequence: 110}
	h.Insert(tx1)
	h.Insert(tx2)
	h.Insert(tx3)

	min, ok := h.MinFirstSequence()
	require.True(t, ok)
	require.Equal(t, uint32(100), min)

	h.Remove(tx2)
	min, ok = h.MinFirstSequence()
	require.True(t, ok)
	require.Equal(t, uint32(105), min)

	h.Remove(tx1)
	h.Remove(tx3)
	require.Equal(t, 0, h.Len())
}

func TestTablePutGetDelete(t *testing.T) {
	t.Parallel()
	tbl := NewTable()
	tx := &Transaction{ID: "xid-1", FirstSequence: 1}
	tbl.Put(tx)

	got, ok := tbl.Get("xid-1")
	require.True(t, ok)
	require.Same(t, tx, got)

	tbl.Delete("xid-1")
	_, ok = tbl.Get("xid-1")
	require.False(t, ok)
}
