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

// Package fixture is a scriptable pkg/logreader.Reader test double used to
// drive the orchestrator's own tests deterministically: forced sequences,
// forced ResultWrongSequenceSwitched, forced parse errors.
// Grounded on pkg/catalog/fixture's scriptable-client idiom.
package fixture

import (
	"context"
	"fmt"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	"github.com/philipgreat/OpenLogReplicator/pkg/logreader"
	"github.com/philipgreat/OpenLogReplicator/pkg/schema"
	"github.com/philipgreat/OpenLogReplicator/pkg/txn"
)

// Call records one ProcessLog invocation for assertions.
type Call struct {
	Descriptor catalog.Descriptor
	Resume     *logreader.PartialState
}

// Script is one scripted outcome for a given sequence. Online is part of
// the lookup key: a ResultWrongSequenceSwitched script only ever applies
// to the online descriptor at that sequence, never to the archived
// descriptor the orchestrator resumes onto afterwards, matching the
// real reader's behavior (only an online log can be recycled mid-read).
type Script struct {
	Sequence uint32
	Online   bool
	Result   logreader.Result
	Err      error
	// Events are emitted to the CommandBuffer before the Result is
	// returned, in order.
	Events []logreader.Event
	// Partial is the state handed back to a subsequent Clone call when
	// Result is ResultWrongSequenceSwitched.
	Partial *logreader.PartialState
}

type scriptKey struct {
	sequence uint32
	online   bool
}

// Reader is a scriptable logreader.Reader. Scripts are keyed by
// (sequence, online); a combination with no script returns ResultOK with
// no events, so tests need only script the calls they care about.
type Reader struct {
	scripts map[scriptKey]Script
	Calls   []Call
	cloned  map[uint32]*logreader.PartialState
	// Sequences maps an online descriptor's path to the sequence
	// ReadSequence should report for it, letting tests simulate a group
	// being recycled between refresh cycles by mutating this map.
	Sequences map[string]uint32
}

// New returns a Reader that will apply scripts, indexed by (Sequence, Online).
func New(scripts ...Script) *Reader {
	r := &Reader{
		scripts:   make(map[scriptKey]Script, len(scripts)),
		cloned:    make(map[uint32]*logreader.PartialState),
		Sequences: make(map[string]uint32),
	}
	for _, s := range scripts {
		r.scripts[scriptKey{s.Sequence, s.Online}] = s
	}
	return r
}

// ProcessLog implements logreader.Reader.
func (r *Reader) ProcessLog(ctx context.Context, d catalog.Descriptor, c codec.Codec,
	dict *schema.Dictionary, table *txn.Table, arena *txn.Arena, heap *txn.Heap,
	buf logreader.CommandBuffer, resume *logreader.PartialState) (logreader.Result, error) {
	r.Calls = append(r.Calls, Call{Descriptor: d, Resume: resume})

	s, ok := r.scripts[scriptKey{d.Sequence, d.IsOnline()}]
	if !ok {
		return logreader.ResultOK, nil
	}
	for _, ev := range s.Events {
		if err := buf.Emit(ctx, ev); err != nil {
			return logreader.ResultParseError, fmt.Errorf("fixture: emit sequence %d: %w", d.Sequence, err)
		}
	}
	if s.Result == logreader.ResultWrongSequenceSwitched {
		r.cloned[d.Sequence] = s.Partial
	}
	return s.Result, s.Err
}

// Clone implements logreader.Reader, returning whatever PartialState was
// scripted for from's sequence, or nil if none was.
func (r *Reader) Clone(from, to catalog.Descriptor) *logreader.PartialState {
	return r.cloned[from.Sequence]
}

// ReadSequence implements logreader.Reader, returning whatever sequence
// was scripted in r.Sequences for path, or 0 if none was set.
func (r *Reader) ReadSequence(ctx context.Context, path string) (uint32, error) {
	return r.Sequences[path], nil
}
