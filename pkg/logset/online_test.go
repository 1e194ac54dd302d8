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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestNewOnlineSetPicksFirstReadableMember(t *testing.T) {
	dir := t.TempDir()
	g1m1 := filepath.Join(dir, "g1m1")
	g1m2 := filepath.Join(dir, "g1m2")
	touch(t, g1m2) // only the second member exists on disk

	members := []catalog.LogfileMember{
		{Group: 1, MemberPath: g1m1},
		{Group: 1, MemberPath: g1m2},
	}

	set, err := NewOnlineSet(members, func(ctx context.Context, path string) (uint32, error) { return 0, nil })
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.Equal(t, g1m2, set.byGroup[1].Path)
}

func TestNewOnlineSetFailsWhenGroupHasNoReadableMember(t *testing.T) {
	dir := t.TempDir()
	members := []catalog.LogfileMember{
		{Group: 1, MemberPath: filepath.Join(dir, "missing")},
	}
	_, err := NewOnlineSet(members, nil)
	require.Error(t, err)
}

func TestFindReportsHigherExists(t *testing.T) {
	dir := t.TempDir()
	p1, p2 := filepath.Join(dir, "g1"), filepath.Join(dir, "g2")
	touch(t, p1)
	touch(t, p2)
	members := []catalog.LogfileMember{{Group: 1, MemberPath: p1}, {Group: 2, MemberPath: p2}}

	seqs := map[string]uint32{p1: 42, p2: 43}
	set, err := NewOnlineSet(members, func(ctx context.Context, path string) (uint32, error) {
		return seqs[path], nil
	})
	require.NoError(t, err)
	require.NoError(t, set.Reload(context.Background()))

	_, found, higher := set.Find(42)
	require.True(t, found)
	require.True(t, higher)

	_, found, higher = set.Find(44)
	require.False(t, found)
	require.False(t, higher)
}
