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

// Package oracle implements pkg/catalog.Client against a live Oracle
// database using database/sql and the godror driver. The SQL text is
// copied verbatim (modulo bind-variable syntax) from the original
// implementation this design was distilled from; it is part of the
// operational contract, not an implementation detail.
package oracle

import (
	"context"
	"database/sql"
	"strings"

	// registers the "godror" driver with database/sql.
	_ "github.com/godror/godror"
	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/philipgreat/OpenLogReplicator/pkg/catalog"
	"github.com/philipgreat/OpenLogReplicator/pkg/codec"
	cerror "github.com/philipgreat/OpenLogReplicator/pkg/errors"
)

const (
	bootstrapQuery = `SELECT D.LOG_MODE, D.SUPPLEMENTAL_LOG_DATA_MIN, TP.ENDIAN_FORMAT, D.CURRENT_SCN,
		DI.RESETLOGS_ID, VER.BANNER, SYS_CONTEXT('USERENV','DB_NAME') AS DB_NAME
		FROM SYS.V_$DATABASE D
		JOIN SYS.V_$TRANSPORTABLE_PLATFORM TP ON TP.PLATFORM_NAME = D.PLATFORM_NAME
		JOIN SYS.V_$VERSION VER ON VER.BANNER LIKE '%Oracle Database%'
		JOIN SYS.V_$DATABASE_INCARNATION DI ON DI.STATUS = 'CURRENT'`

	currentSequenceQuery = `SELECT SEQUENCE# FROM SYS.V_$LOG WHERE STATUS = 'CURRENT'`

	containerIDQuery = `SELECT SYS_CONTEXT('USERENV','CON_ID') CON_ID FROM DUAL`

	onlineLogfilesQuery = `SELECT LF.GROUP#, LF.MEMBER FROM SYS.V_$LOGFILE LF
		ORDER BY LF.GROUP# ASC, LF.IS_RECOVERY_DEST_FILE DESC, LF.MEMBER ASC`

	archivedLogsQuery = `SELECT NAME, SEQUENCE#, FIRST_CHANGE#, NEXT_CHANGE#
		FROM SYS.V_$ARCHIVED_LOG
		WHERE SEQUENCE# >= :1 AND RESETLOGS_ID = :2 AND NAME IS NOT NULL
		ORDER BY SEQUENCE#, DEST_ID`

	objectsQuery = `SELECT tab.DATAOBJ# AS objd, tab.OBJ# AS objn, tab.CLUCOLS AS clucols,
		usr.USERNAME AS owner, obj.NAME AS objectName,
		DECODE(BITAND(tab.FLAGS, 8388608), 8388608, 1, 0) AS dependencies
		FROM SYS.TAB$ tab, SYS.OBJ$ obj, ALL_USERS usr
		WHERE tab.OBJ# = obj.OBJ# AND obj.OWNER# = usr.USER_ID
		AND usr.USERNAME || '.' || obj.NAME LIKE :1`

	columnsQuery = `SELECT C.COL#, C.SEGCOL#, C.NAME, C.TYPE#, C.LENGTH, C.PRECISION#, C.SCALE, C.NULL$,
		(SELECT COUNT(*) FROM SYS.CCOL$ L JOIN SYS.CDEF$ D ON D.CON# = L.CON# AND D.TYPE# = 2
			WHERE L.INTCOL# = C.INTCOL# AND L.OBJ# = C.OBJ#) AS NUMPK
		FROM SYS.COL$ C WHERE C.OBJ# = :1 ORDER BY C.SEGCOL#`

	oracle11gBanner = "Oracle Database 11g"
)

// Client implements catalog.Client over a *sql.DB opened with the godror
// driver.
type Client struct {
	db *sql.DB
}

// Open connects to the target database using the godror driver.
// connectString is a full Oracle easy-connect string or TNS alias;
// user/passwd are passed through to godror unchanged.
func Open(user, passwd, connectString string) (*Client, error) {
	db, err := sql.Open("godror", user+"/"+passwd+"@"+connectString)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	return &Client{db: db}, nil
}

// Close implements catalog.Client.
func (c *Client) Close() error {
	return c.db.Close()
}

// Bootstrap implements catalog.Client.
func (c *Client) Bootstrap(ctx context.Context) (catalog.BootstrapInfo, error) {
	row := c.db.QueryRowContext(ctx, bootstrapQuery)

	var info catalog.BootstrapInfo
	var currentSCN, resetlogs uint64
	if err := row.Scan(&info.LogMode, &info.SupplementalLogMin, &info.Endianness,
		&currentSCN, &resetlogs, &info.VersionBanner, &info.DBName); err != nil {
		return catalog.BootstrapInfo{}, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	info.CurrentSCN = codec.SCN(currentSCN)
	info.Resetlogs = uint32(resetlogs)

	log.Info("bootstrap complete",
		zap.String("logMode", info.LogMode), zap.String("endian", info.Endianness),
		zap.String("version", info.VersionBanner), zap.Uint32("resetlogs", info.Resetlogs))
	return info, nil
}

// CurrentOnlineSequence implements catalog.Client.
func (c *Client) CurrentOnlineSequence(ctx context.Context) (uint32, error) {
	var seq uint32
	err := c.db.QueryRowContext(ctx, currentSequenceQuery).Scan(&seq)
	if err != nil {
		return 0, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	return seq, nil
}

// ContainerID implements catalog.Client. Databases whose banner names the
// 11g family have no CON_ID context and always report zero, matching the
// original's version-banner string match.
func (c *Client) ContainerID(ctx context.Context, versionBanner string) (uint32, error) {
	if strings.Contains(versionBanner, oracle11gBanner) {
		return 0, nil
	}
	var conID uint32
	if err := c.db.QueryRowContext(ctx, containerIDQuery).Scan(&conID); err != nil {
		return 0, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	return conID, nil
}

// ListOnlineLogfiles implements catalog.Client.
func (c *Client) ListOnlineLogfiles(ctx context.Context) ([]catalog.LogfileMember, error) {
	rows, err := c.db.QueryContext(ctx, onlineLogfilesQuery)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var members []catalog.LogfileMember
	for rows.Next() {
		var m catalog.LogfileMember
		if err := rows.Scan(&m.Group, &m.MemberPath); err != nil {
			return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListArchivedLogs implements catalog.Client.
func (c *Client) ListArchivedLogs(ctx context.Context, floor uint32, resetlogs uint32) ([]catalog.Descriptor, error) {
	rows, err := c.db.QueryContext(ctx, archivedLogsQuery, floor, resetlogs)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var descs []catalog.Descriptor
	for rows.Next() {
		var d catalog.Descriptor
		var firstSCN, nextSCN uint64
		if err := rows.Scan(&d.Path, &d.Sequence, &firstSCN, &nextSCN); err != nil {
			return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		d.FirstSCN = codec.SCN(firstSCN)
		d.NextSCN = codec.SCN(nextSCN)
		descs = append(descs, d)
	}
	return descs, rows.Err()
}

// ListObjects implements catalog.Client. It seeds the schema dictionary
// once at startup; column type interpretation is left to the (external,
// unspecified) log reader.
func (c *Client) ListObjects(ctx context.Context, mask string) ([]catalog.Object, error) {
	rows, err := c.db.QueryContext(ctx, objectsQuery, mask)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var objects []catalog.Object
	for rows.Next() {
		var obj catalog.Object
		var dependencies int
		var objd sql.NullInt64
		if err := rows.Scan(&objd, &obj.Objn, new(sql.NullInt64), &obj.Owner, &obj.Name, &dependencies); err != nil {
			return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		if !objd.Valid {
			// partitioned or index-organized table; skip, as the original does.
			continue
		}
		obj.Objd = objd.Int64
		obj.Dependencies = dependencies != 0
		// CluCols is deliberately left at zero: the underlying query
		// reads it but the original never assigns it either. See
		// DESIGN.md Open Question 1.

		cols, err := c.listColumns(ctx, obj.Objn)
		if err != nil {
			return nil, err
		}
		obj.Columns = cols
		obj.TotalCols = len(cols)
		for _, col := range cols {
			obj.TotalPK += col.NumPK
		}

		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (c *Client) listColumns(ctx context.Context, objn int64) ([]catalog.Column, error) {
	rows, err := c.db.QueryContext(ctx, columnsQuery, objn)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var cols []catalog.Column
	for rows.Next() {
		var col catalog.Column
		var precision, scale sql.NullInt64
		var nullable int
		if err := rows.Scan(&col.ColNo, &col.SegColNo, &col.Name, &col.TypeNo, &col.Length,
			&precision, &scale, &nullable, &col.NumPK); err != nil {
			return nil, cerror.WrapError(cerror.ErrCatalogUnavailable, err)
		}
		if precision.Valid {
			col.Precision = int(precision.Int64)
		} else {
			col.Precision = -1
		}
		if scale.Valid {
			col.Scale = int(scale.Int64)
		} else {
			col.Scale = -1
		}
		col.Nullable = nullable == 0
		cols = append(cols, col)
	}
	return cols, rows.Err()
}
