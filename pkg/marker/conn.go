package marker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the minimal connection surface the marker store needs. It is
// satisfied by *pgx.Conn and by pgxmock connections in tests.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close(ctx context.Context) error
}

// Connector opens database connections for a Target. The production
// implementation dials PostgreSQL with the target's stored credentials; tests
// substitute their own to count and script connections.
type Connector interface {
	// Connect opens a new connection. With autocommit set, every statement
	// commits immediately. Without it, the connection is returned inside an
	// explicit transaction that the caller must COMMIT (or close to roll
	// back).
	Connect(ctx context.Context, autocommit bool) (Conn, error)
}

// dialConnector dials PostgreSQL using pgx with fixed credentials.
type dialConnector struct {
	host     string
	port     uint16
	database string
	user     string
	password string
}

func (d dialConnector) Connect(ctx context.Context, autocommit bool) (Conn, error) {
	cfg, err := pgx.ParseConfig("")
	if err != nil {
		return nil, fmt.Errorf("parse connection config: %w", err)
	}
	cfg.Host = d.host
	cfg.Port = d.port
	cfg.Database = d.database
	cfg.User = d.user
	cfg.Password = d.password

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !autocommit {
		// pgx connections are autocommit by default; opening an explicit
		// transaction hands the commit decision to the caller.
		if _, err := conn.Exec(ctx, "BEGIN"); err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
	}
	return conn, nil
}
