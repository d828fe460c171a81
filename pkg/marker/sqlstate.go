package marker

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// relationErrorKind is the subset of SQLSTATE classes the marker protocol
// absorbs: "the table is not there yet" on reads and "the table is already
// there" on creation. Everything else propagates to the caller.
type relationErrorKind int

const (
	relationErrNone relationErrorKind = iota
	relationErrMissing
	relationErrDuplicate
)

// sqlStateKinds enumerates the SQLSTATE codes recognized by
// classifyRelationError. The 42Pxx codes are standard PostgreSQL; 42V01 and
// 42710 are the states Vertica-lineage servers report for the same
// conditions.
var sqlStateKinds = map[string]relationErrorKind{
	"42P01": relationErrMissing,   // undefined_table
	"42V01": relationErrMissing,   // missing relation
	"42P07": relationErrDuplicate, // duplicate_table
	"42710": relationErrDuplicate, // duplicate_object
}

// classifyRelationError inspects a database error and reports whether it
// indicates a missing or a duplicate relation. The structured pgconn error is
// authoritative; when the driver did not surface one, the error text is
// scanned for the enumerated SQLSTATE codes. The substring fallback lives
// only here.
func classifyRelationError(err error) relationErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return sqlStateKinds[pgErr.Code]
	}
	msg := err.Error()
	for code, kind := range sqlStateKinds {
		if strings.Contains(msg, "SQLSTATE "+code) || strings.Contains(msg, "Sqlstate: "+code) {
			return kind
		}
	}
	return relationErrNone
}
