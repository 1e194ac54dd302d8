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

// Transaction is an open multi-record change stream keyed by transaction
// id. It lives across log-file boundaries and is destroyed on commit or
// rollback, both emitted by the (external) log reader. The orchestrator
// never inspects its payload; it only ever reads FirstSequence, when
// computing the checkpoint floor.
type Transaction struct {
	ID            string
	FirstSequence uint32
	chunks        []*Chunk
	heapIndex     int
}

// AppendChunk appends a chunk to the transaction's payload. Called only
// by the log reader.
func (t *Transaction) AppendChunk(c *Chunk) {
	t.chunks = append(t.chunks, c)
}

// Chunks returns the transaction's accumulated chunks.
func (t *Transaction) Chunks() []*Chunk { return t.chunks }

// Table maps transaction id to the open Transaction. It does not enforce
// a capacity; Put always registers the transaction.
type Table struct {
	byID map[string]*Transaction
}

// NewTable returns an empty transaction table.
func NewTable() *Table {
	return &Table{byID: make(map[string]*Transaction)}
}

// Get looks up an open transaction by id.
func (t *Table) Get(id string) (*Transaction, bool) {
	tx, ok := t.byID[id]
	return tx, ok
}

// Put registers a newly begun transaction.
func (t *Table) Put(tx *Transaction) {
	t.byID[tx.ID] = tx
}

// Delete removes a transaction on commit or rollback.
func (t *Table) Delete(id string) {
	delete(t.byID, id)
}

// Len reports the number of open transactions.
func (t *Table) Len() int { return len(t.byID) }
