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

// Package checkpoint persists and restores the durable read position: the
// triple (sequence, scn, resetlogs) that lets the orchestrator resume
// exactly where it left off after a restart.
package checkpoint

import "github.com/philipgreat/OpenLogReplicator/pkg/codec"

// Position is the durable read position. Sequence is monotone
// non-decreasing across the system's lifetime; Resetlogs identifies the
// database incarnation; SCN is the last fully-processed system commit
// number.
type Position struct {
	Database  string    `json:"database"`
	Sequence  uint32    `json:"sequence"`
	SCN       codec.SCN `json:"scn"`
	Resetlogs uint32    `json:"resetlogs"`
}

// IsZero reports whether p is the empty position produced when no
// checkpoint file exists yet.
func (p Position) IsZero() bool {
	return p.Sequence == 0 && p.SCN == 0 && p.Resetlogs == 0
}
