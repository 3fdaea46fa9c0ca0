package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/okian/prodboard/internal/domain/model"
)

// DefaultTable is the records table used when WithTable is not given.
const DefaultTable = "production_records"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PostgresStore reads records from a single table keyed by a machine column.
// Every field is selected as text so coercion stays in the normalizer.
type PostgresStore struct {
	db    *sql.DB
	table string
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{db: db, table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, s.table)
	}
	return s, nil
}

// OpenPostgres opens a pgx-backed handle for dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s, err := NewPostgresStore(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the records table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	machine TEXT NOT NULL,
	serial TEXT,
	duration TEXT,
	operator TEXT,
	date TEXT,
	time TEXT,
	status TEXT
)`, s.table))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Load selects the machine's rows in insertion order. A machine with no rows
// has no store and yields ErrNotFound.
func (s *PostgresStore) Load(ctx context.Context, machine string) ([]model.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
	COALESCE(serial::text, ''),
	COALESCE(duration::text, ''),
	COALESCE(operator::text, ''),
	COALESCE(date::text, ''),
	COALESCE(time::text, ''),
	COALESCE(status::text, '')
FROM %s WHERE machine = $1 ORDER BY id`, s.table), machine)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", machine, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.RawRecord, 0)
	for rows.Next() {
		var r model.RawRecord
		if err := rows.Scan(&r.Serial, &r.Duration, &r.Operator, &r.Date, &r.Time, &r.Status); err != nil {
			return nil, fmt.Errorf("scan %s: %w", machine, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", machine, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, machine)
	}
	return out, nil
}

// Machines lists the distinct machine values in the table.
func (s *PostgresStore) Machines(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT DISTINCT machine FROM %s ORDER BY machine`, s.table))
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]string, 0)
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Insert appends records for a machine in one transaction.
func (s *PostgresStore) Insert(ctx context.Context, machine string, records []model.RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (machine, serial, duration, operator, date, time, status) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, machine, r.Serial, r.Duration, r.Operator, r.Date, r.Time, r.Status); err != nil {
			return fmt.Errorf("insert %s: %w", machine, err)
		}
	}
	return tx.Commit()
}
