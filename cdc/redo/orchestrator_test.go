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

package redo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	catalogfixture "github.com/philipgreat/OpenLogReplicator/pkg/catalog/fixture"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	"github.com/philipgreat/OpenLogReplicator/pkg/config"
	"github.com/philipgreat/OpenLogReplicator/pkg/logreader"
	readerfixture "github.com/philipgreat/OpenLogReplicator/pkg/logreader/fixture"
)

type collectingBuffer struct {
	events []logreader.Event
}

func (b *collectingBuffer) Emit(ctx context.Context, ev logreader.Event) error {
	b.events = append(b.events, ev)
	return nil
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Alias = "test"
	cfg.Database = "ORCL"
	cfg.User = "c##redo"
	cfg.Passwd = "secret"
	cfg.ConnectString = "localhost:1521/ORCLPDB1"
	cfg.CheckpointDir = t.TempDir()
	cfg.RedoReadSleep = 1000 // 1ms, so idle cycles in tests don't stall
	return cfg
}

func testBootstrap() catalog.BootstrapInfo {
	return catalog.BootstrapInfo{
		LogMode:            "ARCHIVELOG",
		SupplementalLogMin: "YES",
		Endianness:         "Little",
		CurrentSCN:         9000,
		Resetlogs:          77,
		VersionBanner:      "Oracle Database 19c Enterprise Edition",
		DBName:             "ORCL",
	}
}

// runUntilShutdown starts Run in a goroutine and stops it once stopAfter
// has elapsed, returning any error Run produced.
func runUntilShutdown(t *testing.T, o *Orchestrator, stopAfter time.Duration) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- o.Run(context.Background()) }()
	time.Sleep(stopAfter)
	o.Shutdown()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator did not shut down in time")
		return nil
	}
}

func TestCleanAdvanceProcessesBothOnlineGroups(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.OnlineSequence = 42
	cat.OnlineMembers = []catalog.LogfileMember{
		{Group: 1, MemberPath: touchFile(t, "g1.log")},
		{Group: 2, MemberPath: touchFile(t, "g2.log")},
	}

	reader := readerfixture.New()
	reader.Sequences[cat.OnlineMembers[0].MemberPath] = 42
	reader.Sequences[cat.OnlineMembers[1].MemberPath] = 43

	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := runUntilShutdown(t, o, 50*time.Millisecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, o.databaseSequence.Load(), uint32(44))
	require.True(t, cat.Closed)
}

func TestOnlineToArchiveHandoffClonesPartialState(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.BootstrapInfo.Resetlogs = 5
	cat.OnlineSequence = 100
	member := touchFile(t, "g1.log")
	cat.OnlineMembers = []catalog.LogfileMember{{Group: 1, MemberPath: member}}
	cat.ArchivedLogs = []catalog.Descriptor{
		{Path: "/arch/100.arc", Sequence: 100, Group: 0, NextSCN: 9100},
	}

	reader := readerfixture.New(readerfixture.Script{
		Sequence: 100,
		Online:   true,
		Result:   logreader.ResultWrongSequenceSwitched,
		Partial:  &logreader.PartialState{Offset: 4096},
	})
	// The online group keeps reporting sequence 100 for the whole run; once
	// the archived copy has advanced the read position to 101, Phase A no
	// longer matches it.
	reader.Sequences[member] = 100

	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := runUntilShutdown(t, o, 50*time.Millisecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, o.databaseSequence.Load(), uint32(101))

	var sawClone bool
	for _, c := range reader.Calls {
		if !c.Descriptor.IsOnline() && c.Resume != nil && c.Resume.Offset == 4096 {
			sawClone = true
		}
	}
	require.True(t, sawClone, "archived ProcessLog call should have received the cloned partial state")
}

func TestGapIsFatal(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.OnlineSequence = 50
	cat.ArchivedLogs = []catalog.Descriptor{
		{Path: "/arch/52.arc", Sequence: 52},
	}

	reader := readerfixture.New()
	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := o.Run(context.Background())
	require.Error(t, err)
	require.True(t, cat.Closed)
}

func TestResetlogsMismatchFailsStartup(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cp := filepath.Join(cfg.CheckpointDir, cfg.Database+".json")
	writeCheckpoint(t, cp, `{"database":"ORCL","sequence":10,"scn":500,"resetlogs":1}`)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.BootstrapInfo.Resetlogs = 2

	reader := readerfixture.New()
	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := o.Run(context.Background())
	require.Error(t, err)
}

func TestEmptyStartSeedsFromBootstrap(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.OnlineSequence = 17
	cat.BootstrapInfo.CurrentSCN = 9000

	reader := readerfixture.New()
	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := runUntilShutdown(t, o, 20*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, uint32(17), o.databaseSequence.Load())
	require.Equal(t, codec.SCN(9000), codec.SCN(o.databaseScn.Load()))
}

func TestConfigurationInvalidFailsStartup(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	cat := catalogfixture.New()
	cat.BootstrapInfo = testBootstrap()
	cat.BootstrapInfo.LogMode = "NOARCHIVELOG"

	reader := readerfixture.New()
	buf := &collectingBuffer{}
	o := New(cfg, cat, reader, buf)

	err := o.Run(context.Background())
	require.Error(t, err)
}

func touchFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	writeCheckpoint(t, path, "")
	return path
}

func writeCheckpoint(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}
