// Package marker records completion markers for pipeline tasks writing into
// a relational analytical database.
//
// A task constructs a Target for the table it writes and a caller-chosen
// update ID identifying the unit of work, asks Exists whether that unit has
// already completed, performs its real work if not, and calls Touch to record
// success. The marker table itself is created lazily on first use; a lookup
// against a database where it does not exist yet simply reports "not marked"
// rather than failing.
//
// The package performs no retries, no pooling, and no transaction management
// of its own. Exists and Touch open and close a connection per call;
// ExistsOn and TouchOn borrow a caller-held connection and never close it,
// so the ownership of every connection is visible at the call site.
package marker
