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

// Package errors defines the redo stream's error taxonomy as a set of
// normalized, RFC-coded sentinel errors, one per failure mode in the
// design's error handling section.
package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// ErrCatalogConfigInvalid is returned when the database is not in
	// ARCHIVELOG mode or minimal supplemental logging is disabled.
	ErrCatalogConfigInvalid = errors.Normalize(
		"catalog configuration invalid: %s",
		errors.RFCCodeText("REDO:ErrCatalogConfigInvalid"),
	)
	// ErrResetlogsMismatch is returned when the freshly bootstrapped
	// resetlogs id does not match the persisted checkpoint's.
	ErrResetlogsMismatch = errors.Normalize(
		"resetlogs mismatch: checkpoint has %d, database reports %d",
		errors.RFCCodeText("REDO:ErrResetlogsMismatch"),
	)
	// ErrCatalogUnavailable wraps a transient catalog connection or query
	// failure. In the main loop the orchestrator logs it and retries on the
	// next iteration; a failed query during startup (after bootstrap)
	// fails Run.
	ErrCatalogUnavailable = errors.Normalize(
		"catalog unavailable: %s",
		errors.RFCCodeText("REDO:ErrCatalogUnavailable"),
	)
	// ErrRedoLogGap is raised when the archived log for the required
	// sequence is absent while a higher sequence already exists.
	ErrRedoLogGap = errors.Normalize(
		"redo log gap: need sequence %d, found %d",
		errors.RFCCodeText("REDO:ErrRedoLogGap"),
	)
	// ErrNoReadableMember is raised when an online log group has no
	// member whose path stats successfully.
	ErrNoReadableMember = errors.Normalize(
		"online log group %d has no readable member",
		errors.RFCCodeText("REDO:ErrNoReadableMember"),
	)
	// ErrArenaExhausted is raised when the transaction chunk arena's free
	// list is empty on allocation.
	ErrArenaExhausted = errors.Normalize(
		"transaction chunk arena exhausted: %d/%d buffers in use",
		errors.RFCCodeText("REDO:ErrArenaExhausted"),
	)
	// ErrCheckpointWrite wraps a checkpoint file write failure; logged,
	// the loop continues and a later write supersedes it.
	ErrCheckpointWrite = errors.Normalize(
		"checkpoint write failed: %s",
		errors.RFCCodeText("REDO:ErrCheckpointWrite"),
	)
	// ErrCheckpointParse wraps a checkpoint JSON parse failure; logged,
	// the in-memory position is treated as empty.
	ErrCheckpointParse = errors.Normalize(
		"checkpoint parse failed: %s",
		errors.RFCCodeText("REDO:ErrCheckpointParse"),
	)
	// ErrCheckpointDatabaseMismatch is raised when a checkpoint file's
	// "database" field does not match the configured database name.
	ErrCheckpointDatabaseMismatch = errors.Normalize(
		"checkpoint database mismatch: file has %q, configured %q",
		errors.RFCCodeText("REDO:ErrCheckpointDatabaseMismatch"),
	)
	// ErrProcessLogFailed wraps any non-OK, non-switched terminal status
	// returned by the log reader contract.
	ErrProcessLogFailed = errors.Normalize(
		"process log failed for sequence %d: %s",
		errors.RFCCodeText("REDO:ErrProcessLogFailed"),
	)
	// ErrConfigInvalid is returned when a Config fails field-level
	// validation (missing required value, non-positive size, etc.),
	// before any database connection is attempted.
	ErrConfigInvalid = errors.Normalize(
		"configuration invalid: %s",
		errors.RFCCodeText("REDO:ErrConfigInvalid"),
	)
)

// WrapError wraps err with the normalized error rfc, matching the
// teacher's cerror.WrapError(cerror.ErrX, err) call-site idiom. Returns
// nil if err is nil.
func WrapError(rfc *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if len(args) == 0 {
		return rfc.Wrap(err).GenWithStackByArgs()
	}
	return rfc.Wrap(err).GenWithStackByArgs(args...)
}
