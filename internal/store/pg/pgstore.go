package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/moderation"
)

// Store implements the fund, moderation and user stores on PostgreSQL.
type Store struct {
	db *sql.DB
}

var (
	_ fund.Store       = (*Store)(nil)
	_ moderation.Store = (*Store)(nil)
	_ auth.UserStore   = (*Store)(nil)
)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Check pings the database; it backs the readiness probe.
func (s *Store) Check(ctx context.Context) error { return s.db.PingContext(ctx) }

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	numericOutOfRange   = "22003"
)

// mapErr translates driver errors into the domain taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fund.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", fund.ErrConflict, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", fund.ErrNotFound, pgErr.ConstraintName)
		case numericOutOfRange:
			return fmt.Errorf("%w: collected amount would overflow", fund.ErrInvalidAmount)
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
