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

// Package redo is the redo-stream orchestrator: it owns the main Phase A
// (online logs) / Phase B (archived logs) loop, binds every other package
// together, and is the only goroutine that ever advances the durable read
// position.
package redo

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	"github.com/philipgreat/OpenLogReplicator/pkg/checkpoint"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	"github.com/philipgreat/OpenLogReplicator/pkg/config"
	cerror "github.com/philipgreat/OpenLogReplicator/pkg/errors"
	"github.com/philipgreat/OpenLogReplicator/pkg/logreader"
	"github.com/philipgreat/OpenLogReplicator/pkg/logset"
	"github.com/philipgreat/OpenLogReplicator/pkg/schema"
	"github.com/philipgreat/OpenLogReplicator/pkg/txn"
)

// Orchestrator binds every sub-component and drives the single-goroutine
// main loop. Nothing outside Run ever mutates databaseSequence/databaseScn;
// the shutdown flag is the only state another goroutine may touch.
type Orchestrator struct {
	cfg     config.Config
	catalog catalog.Client
	reader  logreader.Reader
	cp      *checkpoint.Store
	buf     logreader.CommandBuffer

	codec codec.Codec
	dict  *schema.Dictionary
	table *txn.Table
	arena *txn.Arena
	heap  *txn.Heap
	online *logset.OnlineSet

	resetlogs uint32

	databaseSequence atomic.Uint32
	databaseScn      atomic.Uint64
	shutdown         atomic.Bool

	lastCheckpoint time.Time
	// pendingOnline is the online descriptor a REDO_WRONG_SEQUENCE_SWITCHED
	// result was returned for, awaiting Clone onto its archived match in
	// the next Phase B pass.
	pendingOnline *catalog.Descriptor
}

// New builds an Orchestrator. The catalog client, log reader, and command
// buffer are supplied by the caller (cmd/oraredo wires the real ones;
// tests wire fixtures).
func New(cfg config.Config, cat catalog.Client, reader logreader.Reader, buf logreader.CommandBuffer) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		catalog: cat,
		reader:  reader,
		cp:      checkpoint.NewStore(cfg.CheckpointDir, cfg.Database),
		buf:     buf,
		table:   txn.NewTable(),
		heap:    txn.NewHeap(),
	}
}

// Shutdown requests the main loop stop at its next iteration boundary. It
// is the only method safe to call from another goroutine (spec.md §5).
func (o *Orchestrator) Shutdown() {
	o.shutdown.Store(true)
}

func (o *Orchestrator) shuttingDown() bool {
	return o.shutdown.Load()
}

// Run executes the startup sequence and then the Phase A / Phase B main
// loop until Shutdown is called or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.startup(ctx); err != nil {
		return multierr.Combine(err, o.catalog.Close())
	}

	for !o.shuttingDown() && ctx.Err() == nil {
		if o.cfg.Trace2&config.Trace2Redo != 0 {
			log.Info("checking online/archived redo logs", zap.Uint32("sequence", o.databaseSequence.Load()))
		}
		start := time.Now()
		advancedA, tryArchive, err := o.phaseA(ctx)
		if err != nil {
			return o.shutdownWithErr(err)
		}
		if o.shuttingDown() || ctx.Err() != nil {
			break
		}

		var advancedB bool
		if tryArchive {
			advancedB, err = o.phaseB(ctx)
			if err != nil {
				return o.shutdownWithErr(err)
			}
		}
		cycleDurationHistogram.WithLabelValues(o.cfg.Database).Observe(time.Since(start).Seconds())

		// The interval-based checkpoint trigger (spec.md §4.2) is
		// independent of the per-file trigger fired from phaseA/phaseB's
		// advance path: it fires once per outer-loop iteration regardless
		// of whether anything advanced this cycle.
		o.maybeCheckpoint(false)

		if !advancedA && !advancedB {
			select {
			case <-ctx.Done():
			case <-time.After(o.cfg.RedoReadSleepDuration()):
			}
		}
	}
	return o.shutdownWithErr(nil)
}

// startup loads any checkpoint, bootstraps the catalog (retried
// indefinitely until shutdown), enforces the two hard preconditions,
// binds the codec, seeds the read position, builds the online set, and
// seeds the schema dictionary — spec.md §4.4 "Initial state".
func (o *Orchestrator) startup(ctx context.Context) error {
	pos, hadCheckpoint := o.cp.Load()

	info, err := o.bootstrapWithRetry(ctx)
	if err != nil {
		return err
	}

	if !info.ArchivelogModeOK() {
		return cerror.ErrCatalogConfigInvalid.GenWithStackByArgs(
			"database must be in ARCHIVELOG mode with minimal supplemental logging enabled")
	}
	if hadCheckpoint && pos.Resetlogs != 0 && pos.Resetlogs != info.Resetlogs {
		return cerror.ErrResetlogsMismatch.GenWithStackByArgs(pos.Resetlogs, info.Resetlogs)
	}
	o.resetlogs = info.Resetlogs
	o.codec = codec.For(info.Endianness)

	if hadCheckpoint && !pos.IsZero() {
		o.databaseSequence.Store(pos.Sequence)
		o.databaseScn.Store(uint64(pos.SCN))
	} else {
		seq, err := o.catalog.CurrentOnlineSequence(ctx)
		if err != nil {
			return cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		o.databaseSequence.Store(seq)
		o.databaseScn.Store(uint64(info.CurrentSCN))
	}

	o.arena = txn.NewArena(o.cfg.RedoBuffers, o.cfg.RedoBufferSize)

	// The online-group listing and the schema seed query touch
	// independent catalog views; run them concurrently the way
	// cdc/processor.go fans out its startup queries with an errgroup.
	var members []catalog.LogfileMember
	var objects []catalog.Object
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = o.catalog.ListOnlineLogfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		objects, err = o.catalog.ListObjects(gctx, o.cfg.SchemaMask)
		return err
	})
	if err := g.Wait(); err != nil {
		return cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}

	online, err := logset.NewOnlineSet(members, o.reader.ReadSequence)
	if err != nil {
		return err
	}
	o.online = online

	o.dict = schema.NewDictionary()
	o.dict.Seed(objects)

	log.Info("orchestrator startup complete",
		zap.String("database", o.cfg.Database),
		zap.Uint32("sequence", o.databaseSequence.Load()),
		zap.Uint64("scn", o.databaseScn.Load()),
		zap.Uint32("resetlogs", o.resetlogs),
		zap.Int("schemaObjects", o.dict.Len()))
	return nil
}

// bootstrapWithRetry retries catalog.Bootstrap with a constant 5-second
// backoff until it succeeds or shutdown is requested, matching
// cdc/processor.go's globalResolvedWorker retry idiom.
func (o *Orchestrator) bootstrapWithRetry(ctx context.Context) (catalog.BootstrapInfo, error) {
	var info catalog.BootstrapInfo
	bo := backoff.WithContext(backoff.NewConstantBackOff(5*time.Second), ctx)
	err := backoff.Retry(func() error {
		if o.shuttingDown() {
			return backoff.Permanent(cerror.ErrCatalogUnavailable.GenWithStackByArgs("shutdown requested during bootstrap"))
		}
		var err error
		info, err = o.catalog.Bootstrap(ctx)
		if err != nil {
			log.Warn("bootstrap failed, retrying", zap.Error(err))
		}
		return err
	}, bo)
	if err != nil {
		return catalog.BootstrapInfo{}, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	return info, nil
}

// phaseA processes online logs: refresh, search for the wanted sequence,
// process on a match. Returns whether any log was fully processed this
// cycle, and whether Phase B should run this cycle at all: spec.md §4.4
// steps 3/4 treat "some online group has rotated past want" and "none
// has" as distinct outcomes — only the former falls through to Phase B,
// the latter retries Phase A (via the caller's idle sleep) without
// touching the archived-log catalog.
func (o *Orchestrator) phaseA(ctx context.Context) (advanced bool, tryArchive bool, err error) {
	if err := o.online.Reload(ctx); err != nil {
		log.Warn("online log refresh failed", zap.Error(err))
		return false, true, nil
	}

	want := o.databaseSequence.Load()
	d, found, higherExists := o.online.Find(want)
	if !found {
		// An empty online set (no configured groups at all) has nothing
		// for Phase A to ever wait on, so it always falls through.
		return false, higherExists || o.online.Len() == 0, nil
	}

	result, procErr := o.reader.ProcessLog(ctx, d, o.codec, o.dict, o.table, o.arena, o.heap, o.buf, nil)
	switch result {
	case logreader.ResultOK:
		if procErr != nil {
			return false, true, processLogFailedErr(want, result, procErr)
		}
		o.advance(d)
		logsProcessedCounter.WithLabelValues(o.cfg.Database, "online").Inc()
		// Every successful file completion writes its own checkpoint,
		// independent of the interval-based trigger in Run (spec.md §4.2).
		o.maybeCheckpoint(true)
		return true, true, nil
	case logreader.ResultWrongSequenceSwitched:
		o.pendingOnline = &d
		return false, true, nil
	default:
		return false, true, processLogFailedErr(want, result, procErr)
	}
}

// processLogFailedErr always returns a non-nil, normalized error for a
// non-OK terminal Result, whether or not the reader also returned one.
func processLogFailedErr(sequence uint32, result logreader.Result, cause error) error {
	if cause != nil {
		return cerror.WrapError(cerror.ErrProcessLogFailed, cause, sequence, result.String())
	}
	return cerror.ErrProcessLogFailed.GenWithStackByArgs(sequence, result.String())
}

// phaseB processes archived logs: list from the catalog, then drain the
// queue in sequence order. A gap between the wanted sequence and the
// lowest available archived sequence is fatal.
func (o *Orchestrator) phaseB(ctx context.Context) (bool, error) {
	want := o.databaseSequence.Load()
	descs, err := o.catalog.ListArchivedLogs(ctx, want, o.resetlogs)
	if err != nil {
		log.Warn("archived log listing failed", zap.Error(err))
		return false, nil
	}
	queue := logset.NewArchiveQueue(descs)

	advanced := false
	for {
		d, ok := queue.Peek()
		if !ok {
			return advanced, nil
		}
		want = o.databaseSequence.Load()
		switch {
		case d.Sequence < want:
			queue.Pop()
			continue
		case d.Sequence > want:
			return advanced, cerror.ErrRedoLogGap.GenWithStackByArgs(want, d.Sequence)
		}

		queue.Pop()
		var resume *logreader.PartialState
		if o.pendingOnline != nil {
			resume = o.reader.Clone(*o.pendingOnline, d)
			o.pendingOnline = nil
		}

		result, err := o.reader.ProcessLog(ctx, d, o.codec, o.dict, o.table, o.arena, o.heap, o.buf, resume)
		if result != logreader.ResultOK {
			return advanced, processLogFailedErr(want, result, err)
		}
		o.advance(d)
		logsProcessedCounter.WithLabelValues(o.cfg.Database, "archived").Inc()
		// Every successful file completion writes its own checkpoint,
		// independent of the interval-based trigger in Run (spec.md §4.2).
		o.maybeCheckpoint(true)
		advanced = true
	}
}

// advance bumps the read position to d's sequence+1 (and SCN to d's
// NextSCN when set) and refreshes the stream gauges. It does not touch
// open transactions; the log reader owns their lifecycle.
func (o *Orchestrator) advance(d catalog.Descriptor) {
	o.databaseSequence.Store(d.Sequence + 1)
	if d.NextSCN != 0 {
		o.databaseScn.Store(uint64(d.NextSCN))
	}
	currentSequenceGauge.WithLabelValues(o.cfg.Database).Set(float64(o.databaseSequence.Load()))
	currentSCNGauge.WithLabelValues(o.cfg.Database).Set(float64(o.databaseScn.Load()))
	openTransactionsGauge.WithLabelValues(o.cfg.Database).Set(float64(o.table.Len()))
	freeBuffersGauge.WithLabelValues(o.cfg.Database).Set(float64(o.arena.FreeBuffers()))
}

// checkpointFloor computes the sequence below which no open transaction
// still needs, per spec.md's checkpoint-floor invariant: the minimum of
// the current read position and the oldest open transaction's
// FirstSequence.
func (o *Orchestrator) checkpointFloor() uint32 {
	seq := o.databaseSequence.Load()
	if min, ok := o.heap.MinFirstSequence(); ok && min < seq {
		return min
	}
	return seq
}

// maybeCheckpoint writes a checkpoint if force is set or the configured
// interval has elapsed since the last write. The interval is checked by
// elapsed time each time Run's loop calls it, not by a ticker.
func (o *Orchestrator) maybeCheckpoint(force bool) {
	if !force && time.Since(o.lastCheckpoint) < o.cfg.CheckpointIntervalDuration() {
		return
	}
	pos := checkpoint.Position{
		Database:  o.cfg.Database,
		Sequence:  o.checkpointFloor(),
		SCN:       codec.SCN(o.databaseScn.Load()),
		Resetlogs: o.resetlogs,
	}
	if err := o.cp.Save(pos); err != nil {
		log.Warn("checkpoint write failed", zap.Error(err))
		return
	}
	o.lastCheckpoint = time.Now()
}

// shutdownWithErr writes a final checkpoint and a diagnostic dump, then
// closes the catalog connection, combining cause and the close error via
// multierr.Combine. A failed final checkpoint write is logged by
// maybeCheckpoint and is not part of the returned error.
func (o *Orchestrator) shutdownWithErr(cause error) error {
	o.maybeCheckpoint(true)
	o.dump()
	closeErr := o.catalog.Close()
	return multierr.Combine(cause, closeErr)
}

// dump logs a diagnostic snapshot on shutdown: open-transaction count,
// free-buffer count, and a run id for correlating the log with an
// operator's incident report.
func (o *Orchestrator) dump() {
	log.Info("orchestrator shutdown diagnostic dump",
		zap.String("runID", uuid.NewString()),
		zap.String("database", o.cfg.Database),
		zap.Uint32("sequence", o.databaseSequence.Load()),
		zap.Uint64("scn", o.databaseScn.Load()),
		zap.Int("openTransactions", o.table.Len()),
		zap.Int("freeBuffers", o.arena.FreeBuffers()),
		zap.Int("totalBuffers", o.arena.TotalBuffers()))
}
