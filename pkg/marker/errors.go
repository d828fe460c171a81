package marker

import "errors"

// Sentinel errors classifying marker-store failures. Every error returned by
// this package wraps one of these together with the underlying driver error,
// so callers can branch with errors.Is while still seeing the database's own
// message text.
var (
	// ErrConfiguration reports a malformed host/port or marker table name at
	// construction time.
	ErrConfiguration = errors.New("marker: invalid configuration")

	// ErrConnection reports a transport or authentication failure while
	// opening a connection. It is never retried by this package.
	ErrConnection = errors.New("marker: connection failed")

	// ErrSchema reports a marker-table CREATE TABLE failure for any reason
	// other than the table already existing.
	ErrSchema = errors.New("marker: marker table creation failed")

	// ErrQuery reports a marker lookup failure for any reason other than the
	// marker table not existing yet.
	ErrQuery = errors.New("marker: marker lookup failed")

	// ErrWrite reports a failed marker insert. A missing marker table is not
	// suppressed here; EnsureMarkerTable runs immediately before the insert.
	ErrWrite = errors.New("marker: marker insert failed")

	// ErrInvariant reports that a marker was not visible immediately after a
	// successful insert. This indicates an internal bug or a concurrent
	// deletion, not a recoverable condition.
	ErrInvariant = errors.New("marker: marker not visible after touch")
)
