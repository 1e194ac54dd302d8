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

// Package logreader specifies the contract the per-file redo-record
// parser honors. The parser itself is an external collaborator out of
// scope for this design; this package defines only the interface the
// orchestrator drives it through, plus test doubles.
package logreader

import (
	"context"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	"github.com/philipgreat/OpenLogReplicator/pkg/schema"
	"github.com/philipgreat/OpenLogReplicator/pkg/txn"
)

// Result is the terminal status of one ProcessLog call.
type Result int

const (
	// ResultOK means the file was fully read and the orchestrator may
	// advance to the next sequence.
	ResultOK Result = iota
	// ResultWrongSequenceSwitched means an online log was overwritten
	// mid-read; the orchestrator must fall through to the archive phase
	// and resume via Clone.
	ResultWrongSequenceSwitched
	// ResultParseError means the file could not be parsed; fatal to the
	// orchestrator.
	ResultParseError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "REDO_OK"
	case ResultWrongSequenceSwitched:
		return "REDO_WRONG_SEQUENCE_SWITCHED"
	default:
		return "REDO_PARSE_ERROR"
	}
}

// Event is one committed row change, ready for the downstream command
// buffer. Its shape is intentionally minimal: decoding and interpreting
// column values is the log reader's job, not the orchestrator's.
type Event struct {
	Objn int64
	SCN  codec.SCN
	Op   string
	Data []byte
}

// CommandBuffer is the downstream collaborator that receives decoded row
// events, in SCN order. Out of scope beyond this contract (spec.md §1).
type CommandBuffer interface {
	Emit(ctx context.Context, ev Event) error
}

// PartialState is the byte offset plus any in-flight record scratch a
// ProcessLog call was part-way through when an online log was
// overwritten. It is a one-shot ownership move into the matching
// archived descriptor's Clone call, never aliased.
type PartialState struct {
	Offset  int64
	Scratch []byte
}

// Reader is the contract the per-file log reader honors. It mutates the
// transaction bookkeeping and emits committed events, but never advances
// the orchestrator's read position — that remains the orchestrator's
// exclusive responsibility.
type Reader interface {
	// ProcessLog reads d's header, verifies its sequence, streams
	// records, and returns a terminal Result.
	ProcessLog(ctx context.Context, d catalog.Descriptor, c codec.Codec,
		dict *schema.Dictionary, table *txn.Table, arena *txn.Arena, heap *txn.Heap,
		buf CommandBuffer, resume *PartialState) (Result, error)
	// Clone moves from's partial-read state (as returned alongside a
	// ResultWrongSequenceSwitched result) so processing of to can resume
	// at the exact byte offset already read. from is considered consumed
	// afterwards.
	Clone(from catalog.Descriptor, to catalog.Descriptor) *PartialState
	// ReadSequence re-reads the header of the file at path and returns
	// its in-header sequence, without otherwise processing the file.
	// Wired directly as the orchestrator's logset.HeaderReader for
	// refreshOnlineLogs (spec.md §4.4 Phase A step 1).
	ReadSequence(ctx context.Context, path string) (uint32, error)
}
