package roles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catalog-bot/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore persists the identity-to-role table in Postgres.
//
// Schema:
//
//	CREATE TABLE roles (
//	    identity BIGINT PRIMARY KEY,
//	    role     TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database and verifies the connection
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// RoleOf retrieves the persisted role for an identity
func (ps *PostgresStore) RoleOf(ctx context.Context, identity int64) (models.Role, error) {
	var role string
	err := ps.db.GetContext(ctx, &role, "SELECT role FROM roles WHERE identity = $1", identity)
	if err == sql.ErrNoRows {
		return models.RoleNone, nil
	}
	if err != nil {
		return models.RoleNone, err
	}
	return models.Role(role), nil
}

// Grant upserts the identity's role; an identity holds at most one role
func (ps *PostgresStore) Grant(ctx context.Context, identity int64, role models.Role) error {
	_, err := ps.db.ExecContext(ctx,
		`INSERT INTO roles (identity, role) VALUES ($1, $2)
		 ON CONFLICT (identity) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`,
		identity, string(role))
	return err
}

// IdentitiesWith retrieves all identities holding the given role
func (ps *PostgresStore) IdentitiesWith(ctx context.Context, role models.Role) ([]int64, error) {
	var ids []int64
	err := ps.db.SelectContext(ctx, &ids,
		"SELECT identity FROM roles WHERE role = $1 ORDER BY identity", string(role))
	return ids, err
}
