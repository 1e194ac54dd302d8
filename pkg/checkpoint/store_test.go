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

package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmptyNotError(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir(), "ORCL")
	pos, ok := s.Load()
	require.False(t, ok)
	require.True(t, pos.IsZero())
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir(), "ORCL")
	want := Position{Database: "ORCL", Sequence: 42, SCN: 9000, Resetlogs: 7}

	require.NoError(t, s.Save(want))

	got, ok := s.Load()
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestLoadDatabaseMismatchTreatedAsEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewStore(dir, "ORCL")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ORCL.json"),
		[]byte(`{"database":"OTHER","sequence":1,"scn":0,"resetlogs":0}`), 0o644))

	pos, ok := s.Load()
	require.False(t, ok)
	require.True(t, pos.IsZero())
}

func TestLoadParseErrorTreatedAsEmpty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewStore(dir, "ORCL")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ORCL.json"), []byte("{not json"), 0o644))

	pos, ok := s.Load()
	require.False(t, ok)
	require.True(t, pos.IsZero())
}

func TestSaveIsAtomicNoPartialFileOnSuccess(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewStore(dir, "ORCL")
	require.NoError(t, s.Save(Position{Database: "ORCL", Sequence: 1, SCN: 1, Resetlogs: 1}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "ORCL.json", entries[0].Name())
}
