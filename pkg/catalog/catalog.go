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

// Package catalog defines the read-only queries the orchestrator issues
// against the target database's data dictionary. The SQL itself lives in
// pkg/catalog/oracle; this package specifies only the result shapes, so
// the orchestrator and its tests can depend on the interface alone.
package catalog

import (
	"context"

	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
)

// BootstrapInfo is the result of the one-time bootstrap query: operating
// mode, endianness, current SCN, incarnation id, and version banner.
type BootstrapInfo struct {
	LogMode            string
	SupplementalLogMin string
	Endianness         string
	CurrentSCN         codec.SCN
	Resetlogs          uint32
	VersionBanner      string
	DBName             string
}

// ArchivelogModeOK reports whether the bootstrapped database satisfies the
// two hard startup preconditions: archivelog mode and minimal
// supplemental logging.
func (b BootstrapInfo) ArchivelogModeOK() bool {
	return b.LogMode == "ARCHIVELOG" && b.SupplementalLogMin == "YES"
}

// Descriptor identifies one redo log file, online or archived.
// Group == 0 distinguishes an archived descriptor from an online one.
type Descriptor struct {
	Path     string
	Group    int64
	Sequence uint32
	FirstSCN codec.SCN
	NextSCN  codec.SCN
}

// IsOnline reports whether d describes a member of the online log group
// rather than an archived log file.
func (d Descriptor) IsOnline() bool { return d.Group != 0 }

// LogfileMember is one row of the online logfile membership query, before
// group deduplication (see ListOnlineLogfiles).
type LogfileMember struct {
	Group      int64
	MemberPath string
}

// Object is one row of the schema-seeding query: a table's identity and
// column layout. CluCols is always zero; see the comment in
// pkg/catalog/oracle's ListObjects for why.
type Object struct {
	Objn         int64
	Objd         int64
	Dependencies bool
	CluCols      int64
	Owner        string
	Name         string
	Columns      []Column
	TotalCols    int
	TotalPK      int
}

// Column is one column of a schema Object.
type Column struct {
	ColNo     int
	SegColNo  int
	Name      string
	TypeNo    int
	Length    int
	Precision int
	Scale     int
	Nullable  bool
	NumPK     int
}

// Client is the read-only catalog client the orchestrator depends on. An
// implementation issues exactly the four fixed queries named in the
// design plus the supplemented schema-seed query; it never writes to the
// target database.
type Client interface {
	// Bootstrap runs the startup query: mode, endian, SCN, resetlogs,
	// version, db name.
	Bootstrap(ctx context.Context) (BootstrapInfo, error)
	// CurrentOnlineSequence returns the sequence of the online log group
	// currently marked CURRENT. Used only to seed the read position when
	// no checkpoint exists.
	CurrentOnlineSequence(ctx context.Context) (uint32, error)
	// ContainerID returns the current container id on multitenant
	// databases (12c+); zero on versions in the 11g family.
	ContainerID(ctx context.Context, versionBanner string) (uint32, error)
	// ListOnlineLogfiles returns raw membership rows ordered by
	// (group ASC, is_recovery_dest_file DESC, member ASC); the caller
	// picks the first stat-able member per group.
	ListOnlineLogfiles(ctx context.Context) ([]LogfileMember, error)
	// ListArchivedLogs returns archived log rows with sequence >= floor
	// and matching resetlogs, ordered by (sequence, dest id).
	ListArchivedLogs(ctx context.Context, floor uint32, resetlogs uint32) ([]Descriptor, error)
	// ListObjects seeds the schema dictionary once at startup, matching
	// mask against "owner.table".
	ListObjects(ctx context.Context, mask string) ([]Object, error)
	// Close releases any connection held by the client.
	Close() error
}
