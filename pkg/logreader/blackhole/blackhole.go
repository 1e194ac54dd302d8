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

// Package blackhole implements pkg/logreader.Reader by discarding every
// file, grounded on the teacher's cdc/redo/writer/blackhole_writer.go and
// cdc/redo/reader/blackhole_reader.go no-op-double idiom. Useful for
// smoke-testing the orchestrator's control flow without a real parser.
package blackhole

import (
	"context"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	"github.com/philipgreat/OpenLogReplicator/pkg/logreader"
	"github.com/philipgreat/OpenLogReplicator/pkg/schema"
	"github.com/philipgreat/OpenLogReplicator/pkg/txn"
)

// Reader discards every record it is asked to process and always
// reports success.
type Reader struct{}

// New returns a blackhole Reader.
func New() *Reader { return &Reader{} }

// ProcessLog implements logreader.Reader.
func (*Reader) ProcessLog(ctx context.Context, d catalog.Descriptor, c codec.Codec,
	dict *schema.Dictionary, table *txn.Table, arena *txn.Arena, heap *txn.Heap,
	buf logreader.CommandBuffer, resume *logreader.PartialState) (logreader.Result, error) {
	return logreader.ResultOK, nil
}

// Clone implements logreader.Reader; blackhole has no state to move.
func (*Reader) Clone(from, to catalog.Descriptor) *logreader.PartialState {
	return nil
}

// ReadSequence implements logreader.Reader, always reporting sequence 0.
func (*Reader) ReadSequence(ctx context.Context, path string) (uint32, error) {
	return 0, nil
}
