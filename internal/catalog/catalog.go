// Package catalog queries a ClickHouse server's system tables for the
// set of views and base tables and for view definitions. It runs over
// database/sql so tests can substitute a mock driver.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2" // registers the clickhouse driver
)

// ErrDDLNotFound is returned when neither system.tables nor SHOW CREATE
// yields a definition for the requested relation.
var ErrDDLNotFound = errors.New("table definition not found")

// Databases that hold server internals rather than user relations.
var systemDatabases = []string{"system", "INFORMATION_SCHEMA", "information_schema"}

// Config holds the connection settings for a ClickHouse server.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Secure   bool
}

// DSN renders the configuration as a clickhouse:// connection string.
func (c Config) DSN() string {
	u := url.URL{
		Scheme: "clickhouse",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.Secure {
		q := u.Query()
		q.Set("secure", "true")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Relation is one row of the catalog listing.
type Relation struct {
	Database string
	Name     string
	Engine   string
}

// Qualified returns the database-qualified relation name.
func (r Relation) Qualified() string {
	return r.Database + "." + r.Name
}

// Client reads catalog information from one server connection.
type Client struct {
	DB            *sql.DB
	Logger        *slog.Logger
	IncludeSystem bool
}

// NewClient wraps an existing connection. A nil logger discards output.
func NewClient(db *sql.DB, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{DB: db, Logger: logger}
}

// Open connects to the server described by cfg.
func Open(cfg Config, logger *slog.Logger) (*Client, error) {
	db, err := sql.Open("clickhouse", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return NewClient(db, logger), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.DB != nil {
		c.Logger.Debug("closing catalog connection")
		return c.DB.Close()
	}
	return nil
}

// Ping verifies the connection is usable.
func (c *Client) Ping(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	return c.DB.PingContext(ctx)
}

// Views lists every view-like relation, ordered by database then name.
// The engine match is deliberately loose so MaterializedView, LiveView
// and future view engines are all picked up.
func (c *Client) Views(ctx context.Context) ([]Relation, error) {
	query := fmt.Sprintf(`
		SELECT database, name, engine
		FROM system.tables
		WHERE (engine IN ('View', 'MaterializedView', 'LiveView') OR engine LIKE '%%View%%')
		%s
		ORDER BY database, name
	`, c.systemFilter())
	return c.queryRelations(ctx, query)
}

// Tables lists every non-view relation, ordered by database then name.
func (c *Client) Tables(ctx context.Context) ([]Relation, error) {
	query := fmt.Sprintf(`
		SELECT database, name, engine
		FROM system.tables
		WHERE engine NOT LIKE '%%View%%'
		%s
		ORDER BY database, name
	`, c.systemFilter())
	return c.queryRelations(ctx, query)
}

func (c *Client) systemFilter() string {
	if c.IncludeSystem {
		return ""
	}
	quoted := make([]string, len(systemDatabases))
	for i, db := range systemDatabases {
		quoted[i] = "'" + db + "'"
	}
	return "AND database NOT IN (" + strings.Join(quoted, ", ") + ")"
}

func (c *Client) queryRelations(ctx context.Context, query string) ([]Relation, error) {
	if c.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query system.tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.Database, &r.Name, &r.Engine); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog rows: %w", err)
	}

	c.Logger.Debug("catalog query complete", "relations", len(out))
	return out, nil
}

// ViewDDL returns the CREATE statement for one relation. It reads
// system.tables first and falls back to SHOW CREATE TABLE when the
// create_table_query column is empty, which happens on older servers and
// for some engine types.
func (c *Client) ViewDDL(ctx context.Context, database, name string) (string, error) {
	if c.DB == nil {
		return "", fmt.Errorf("database connection not established")
	}

	var ddl sql.NullString
	err := c.DB.QueryRowContext(ctx,
		"SELECT create_table_query FROM system.tables WHERE database = ? AND name = ? LIMIT 1",
		database, name,
	).Scan(&ddl)
	switch {
	case err == nil:
		if ddl.Valid && strings.TrimSpace(ddl.String) != "" {
			return ddl.String, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		// Fall through to SHOW CREATE.
	default:
		return "", fmt.Errorf("failed to query table definition: %w", err)
	}

	c.Logger.Debug("falling back to SHOW CREATE", "database", database, "name", name)

	var stmt sql.NullString
	err = c.DB.QueryRowContext(ctx,
		fmt.Sprintf("SHOW CREATE TABLE `%s`.`%s`", database, name),
	).Scan(&stmt)
	switch {
	case err == nil:
		if stmt.Valid && strings.TrimSpace(stmt.String) != "" {
			return stmt.String, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		// Nothing to show either.
	default:
		return "", fmt.Errorf("SHOW CREATE failed: %w", err)
	}

	return "", fmt.Errorf("%w: %s.%s", ErrDDLNotFound, database, name)
}
