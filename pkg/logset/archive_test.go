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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
)

func TestArchiveQueuePopsAscending(t *testing.T) {
	t.Parallel()
	q := NewArchiveQueue([]catalog.Descriptor{
		{Sequence: 103}, {Sequence: 100}, {Sequence: 102}, {Sequence: 101},
	})
	require.Equal(t, 4, q.Len())

	var got []uint32
	for q.Len() > 0 {
		d, ok := q.Pop()
		require.True(t, ok)
		got = append(got, d.Sequence)
	}
	require.Equal(t, []uint32{100, 101, 102, 103}, got)
}

func TestArchiveQueuePopEmpty(t *testing.T) {
	t.Parallel()
	q := NewArchiveQueue(nil)
	_, ok := q.Pop()
	require.False(t, ok)
}

func TestArchiveQueueKeepsDuplicateSequences(t *testing.T) {
	t.Parallel()
	q := NewArchiveQueue([]catalog.Descriptor{
		{Sequence: 100, Path: "/dest1/a"},
		{Sequence: 100, Path: "/dest2/a"},
	})
	require.Equal(t, 2, q.Len())
	first, _ := q.Pop()
	require.Equal(t, uint32(100), first.Sequence)
}
