package marker

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// DefaultMarkerTable is the marker table used when Settings does not name
// one.
const DefaultMarkerTable = "experimental.table_updates"

// defaultPort is used when the host string carries no port.
const defaultPort = 5432

// Marker and target table names may be schema-qualified identifiers only;
// they are interpolated into SQL and must never come from untrusted input.
var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

const createMarkerTableSQL = `CREATE TABLE %s (
	id           BIGINT GENERATED BY DEFAULT AS IDENTITY,
	update_id    VARCHAR(4096) NOT NULL,
	target_table VARCHAR(128),
	inserted     TIMESTAMP DEFAULT NOW(),
	PRIMARY KEY (update_id, id)
)`

// Settings carries the process-wide marker configuration shared by every
// Target. It is an explicit value rather than package state so independent
// Targets can point at different marker tables.
type Settings struct {
	// MarkerTable is the qualified name of the marker table. Empty selects
	// DefaultMarkerTable.
	MarkerTable string
}

// Observer receives notifications about marker operations. The zero
// implementation is a no-op; internal/metrics provides a Prometheus-backed
// one.
type Observer interface {
	// MarkerLookup reports a completed existence check and its outcome.
	MarkerLookup(found bool)
	// MarkerInserted reports a successfully recorded marker row.
	MarkerInserted()
	// MarkerTableCreated reports that the marker table was actually created,
	// as opposed to already existing.
	MarkerTableCreated()
}

type nopObserver struct{}

func (nopObserver) MarkerLookup(bool)   {}
func (nopObserver) MarkerInserted()     {}
func (nopObserver) MarkerTableCreated() {}

// Option configures a Target.
type Option func(*Target)

// WithLogger attaches a zap logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Target) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithConnector replaces the production pgx connector, primarily for
// testing.
func WithConnector(connector Connector) Option {
	return func(t *Target) {
		if connector != nil {
			t.connector = connector
		}
	}
}

// WithObserver attaches an operation observer.
func WithObserver(observer Observer) Option {
	return func(t *Target) {
		if observer != nil {
			t.observer = observer
		}
	}
}

// Target tracks completion of one unit of work against one governed table.
// Construct one per task invocation; uniqueness of the update ID across
// invocations is the caller's responsibility.
type Target struct {
	table       string
	updateID    string
	markerTable string

	connector Connector
	logger    *zap.Logger
	observer  Observer
}

// New builds a Target for the given governed table and update ID. The host
// may be "hostname" or "hostname:port"; a malformed port fails with
// ErrConfiguration. Credentials are stored verbatim.
func New(settings Settings, host, database, user, password, table, updateID string, opts ...Option) (*Target, error) {
	hostname, port, err := splitHostPort(host)
	if err != nil {
		return nil, err
	}

	markerTable := settings.MarkerTable
	if markerTable == "" {
		markerTable = DefaultMarkerTable
	}
	if !validTableName.MatchString(markerTable) {
		return nil, fmt.Errorf("%w: invalid marker table name %q", ErrConfiguration, markerTable)
	}

	t := &Target{
		table:       table,
		updateID:    updateID,
		markerTable: markerTable,
		connector: dialConnector{
			host:     hostname,
			port:     port,
			database: database,
			user:     user,
			password: password,
		},
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// UpdateID returns the unit-of-work identifier this Target tracks.
func (t *Target) UpdateID() string { return t.updateID }

// MarkerTable returns the qualified marker table name in use.
func (t *Target) MarkerTable() string { return t.markerTable }

// Connect opens a new connection using the stored credentials. Failures wrap
// ErrConnection and are never retried here; retry policy belongs to the
// orchestrator.
func (t *Target) Connect(ctx context.Context, autocommit bool) (Conn, error) {
	conn, err := t.connector.Connect(ctx, autocommit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return conn, nil
}

// EnsureMarkerTable creates the marker table if it does not exist. It uses
// its own dedicated autocommit connection: a failed CREATE TABLE must not
// abort a transaction in flight on a caller-held connection. A "relation
// already exists" SQLSTATE is success; anything else wraps ErrSchema.
func (t *Target) EnsureMarkerTable(ctx context.Context) error {
	conn, err := t.Connect(ctx, true)
	if err != nil {
		return err
	}
	defer t.closeConn(ctx, conn)

	if _, err := conn.Exec(ctx, fmt.Sprintf(createMarkerTableSQL, t.markerTable)); err != nil {
		if classifyRelationError(err) == relationErrDuplicate {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	t.observer.MarkerTableCreated()
	t.logger.Info("marker table created", zap.String("marker_table", t.markerTable))
	return nil
}

// Exists reports whether this Target's update ID has been recorded. It opens
// an autocommit connection for the duration of the call and closes it before
// returning.
func (t *Target) Exists(ctx context.Context) (bool, error) {
	conn, err := t.Connect(ctx, true)
	if err != nil {
		return false, err
	}
	defer t.closeConn(ctx, conn)
	return t.ExistsOn(ctx, conn)
}

// ExistsOn is Exists over a borrowed connection, which is never closed here.
// A lookup failing because the marker table does not exist reports false:
// the table simply has no markers yet. Distinguishing that case from "table
// present but empty" is inferred from the SQLSTATE of the failed SELECT, so
// no separate existence probe (and no race against one) is needed. Any other
// lookup failure wraps ErrQuery.
func (t *Target) ExistsOn(ctx context.Context, conn Conn) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE update_id = $1 LIMIT 1", t.markerTable)
	var one int
	err := conn.QueryRow(ctx, query, t.updateID).Scan(&one)
	switch {
	case err == nil:
		t.observer.MarkerLookup(true)
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		t.observer.MarkerLookup(false)
		return false, nil
	case classifyRelationError(err) == relationErrMissing:
		t.observer.MarkerLookup(false)
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrQuery, err)
	}
}

// Touch records this Target's update ID as complete. It guarantees the
// marker table exists, inserts a marker row over a fresh autocommit
// connection, and self-verifies the marker is visible before returning. The
// connection is closed on all paths.
//
// Repeated Touch calls for the same update ID append additional rows rather
// than being rejected; Exists remains true throughout.
func (t *Target) Touch(ctx context.Context) error {
	if err := t.EnsureMarkerTable(ctx); err != nil {
		return err
	}
	conn, err := t.Connect(ctx, true)
	if err != nil {
		return err
	}
	defer t.closeConn(ctx, conn)
	return t.touch(ctx, conn)
}

// TouchOn is Touch over a borrowed connection, which is never closed here.
// The marker-table creation still runs on its own dedicated connection so it
// cannot disturb the borrowed connection's transaction state.
func (t *Target) TouchOn(ctx context.Context, conn Conn) error {
	if err := t.EnsureMarkerTable(ctx); err != nil {
		return err
	}
	return t.touch(ctx, conn)
}

func (t *Target) touch(ctx context.Context, conn Conn) error {
	query := fmt.Sprintf("INSERT INTO %s (update_id, target_table) VALUES ($1, $2)", t.markerTable)
	if _, err := conn.Exec(ctx, query, t.updateID, t.table); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	t.observer.MarkerInserted()

	// The marker must be visible on this connection before Touch may report
	// success.
	marked, err := t.ExistsOn(ctx, conn)
	if err != nil {
		return err
	}
	if !marked {
		return fmt.Errorf("%w: update_id %q", ErrInvariant, t.updateID)
	}

	t.logger.Debug("marker recorded",
		zap.String("update_id", t.updateID),
		zap.String("target_table", t.table),
	)
	return nil
}

func (t *Target) closeConn(ctx context.Context, conn Conn) {
	if err := conn.Close(ctx); err != nil {
		t.logger.Warn("close marker connection", zap.Error(err))
	}
}

// splitHostPort splits "hostname" or "hostname:port" forms. net.SplitHostPort
// is not used because the bare-hostname form must be accepted.
func splitHostPort(host string) (string, uint16, error) {
	name, portPart, found := strings.Cut(host, ":")
	if !found {
		return host, defaultPort, nil
	}
	port, err := strconv.ParseUint(portPart, 10, 16)
	if err != nil || port == 0 || name == "" {
		return "", 0, fmt.Errorf("%w: invalid host %q", ErrConfiguration, host)
	}
	return name, uint16(port), nil
}
