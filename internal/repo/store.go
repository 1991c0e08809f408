// Package repo contains all database access logic for the Raahi travel API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping. Every read and write
// of a travel card is filtered by owning user, and every child row operation
// by its parent card, in the same statement.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner is a db that can open a transaction. pgx.Tx satisfies it too, in
// which case Begin creates a savepoint.
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users      UserRepo
	Cards      TravelCardRepo
	Hotels     HotelRepo
	Transports TransportRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db db) Repos {
	return Repos{
		Users:      NewUserRepo(db),
		Cards:      NewTravelCardRepo(db),
		Hotels:     NewHotelRepo(db),
		Transports: NewTransportRepo(db),
	}
}

// Store hands out repositories and runs multi-statement work in a transaction.
type Store struct {
	conn  beginner
	repos Repos
}

// NewStore constructs a Store. In production pass *pgxpool.Pool.
func NewStore(conn beginner) *Store {
	return &Store{conn: conn, repos: NewRepos(conn)}
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() Repos {
	return s.repos
}

// WithTx runs fn with repositories bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Store.WithTx: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan. It always closes rows.
func collect[T any](rows pgx.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
