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
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	cerror "github.com/philipgreat/OpenLogReplicator/pkg/errors"
)

const defaultFileMode = 0o644

// Store reads and writes the checkpoint file for a single database,
// <database>.json in Dir.
type Store struct {
	Dir      string
	Database string
}

// NewStore returns a Store rooted at dir for the named database.
func NewStore(dir, database string) *Store {
	return &Store{Dir: dir, Database: database}
}

func (s *Store) path() string {
	return filepath.Join(s.Dir, s.Database+".json")
}

// Load reads the checkpoint file. A missing file is not an error: it
// returns a zeroed Position and ok=false so the caller knows bootstrap
// must populate it. A parse error or a "database" field mismatch is
// logged and also treated as an empty position, matching the original's
// "abort read but not process" behavior.
func (s *Store) Load() (Position, bool) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return Position{Database: s.Database}, false
		}
		log.Warn("checkpoint read failed, starting from empty position",
			zap.String("database", s.Database), zap.Error(err))
		return Position{Database: s.Database}, false
	}

	var pos Position
	if len(data) == 0 {
		return Position{Database: s.Database}, false
	}
	if err := json.Unmarshal(data, &pos); err != nil {
		log.Warn("checkpoint parse failed, starting from empty position",
			zap.String("database", s.Database),
			zap.Error(cerror.WrapError(cerror.ErrCheckpointParse, err)))
		return Position{Database: s.Database}, false
	}
	if pos.Database != s.Database {
		log.Warn("checkpoint database mismatch, starting from empty position",
			zap.String("configured", s.Database), zap.String("file", pos.Database),
			zap.Error(cerror.ErrCheckpointDatabaseMismatch.GenWithStackByArgs(pos.Database, s.Database)))
		return Position{Database: s.Database}, false
	}

	return pos, true
}

// Save writes pos atomically: write to a temp file in the same
// directory, fsync, then rename over the previous checkpoint, so a crash
// mid-write never leaves a corrupt or partial checkpoint behind.
func (s *Store) Save(pos Position) error {
	pos.Database = s.Database

	data, err := json.MarshalIndent(pos, "", "  ")
	if err != nil {
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}

	tmpPath := s.path() + ".tmp"
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, defaultFileMode)
	if err != nil {
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}
	if err := tmpFile.Close(); err != nil {
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}

	if err := os.Rename(tmpPath, s.path()); err != nil {
		return cerror.WrapError(cerror.ErrCheckpointWrite, err)
	}
	return nil
}
