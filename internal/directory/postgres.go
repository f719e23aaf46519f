package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stagelink/internal/auth"
)

// Postgres persists accounts to a Postgres table so gateway replicas share
// one directory.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres opens a Postgres-backed directory using the provided DSN and
// ensures the accounts table exists.
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres directory dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres directory config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres directory pool: %w", err)
	}
	store := &Postgres{pool: pool}
	if err := store.ensureSchema(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS gateway_users (
    id            SERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          INTEGER NOT NULL
)
`)
	if err != nil {
		return fmt.Errorf("ensure gateway_users table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Create registers a new account.
func (p *Postgres) Create(username, password string, role auth.Role) (User, error) {
	normalized := normalizeUsername(username)
	if normalized == "" {
		return User{}, errors.New("username is required")
	}
	if password == "" {
		return User{}, errors.New("password is required")
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return User{}, err
	}
	row := p.pool.QueryRow(context.Background(), `
INSERT INTO gateway_users (username, password_hash, role)
VALUES ($1, $2, $3)
ON CONFLICT (username) DO NOTHING
RETURNING id
`, normalized, hashed, int(role))
	user := User{Username: normalized, PasswordHash: hashed, Role: role}
	if err := row.Scan(&user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	return user, nil
}

// Authenticate verifies the credentials against the stored hash.
func (p *Postgres) Authenticate(username, credential string) (int, bool) {
	if credential == "" {
		return auth.UnknownUser, false
	}
	row := p.pool.QueryRow(context.Background(), `
SELECT id, password_hash FROM gateway_users WHERE username = $1
`, normalizeUsername(username))
	var id int
	var hash string
	if err := row.Scan(&id, &hash); err != nil {
		return auth.UnknownUser, false
	}
	if err := verifyPassword(hash, credential); err != nil {
		return auth.UnknownUser, false
	}
	return id, true
}

// Role resolves the user's current role.
func (p *Postgres) Role(userID int) (auth.Role, bool) {
	row := p.pool.QueryRow(context.Background(), `SELECT role FROM gateway_users WHERE id = $1`, userID)
	var role int
	if err := row.Scan(&role); err != nil {
		return auth.RoleGuest, false
	}
	return auth.Role(role), true
}

// SetRole replaces the user's role.
func (p *Postgres) SetRole(userID int, role auth.Role) error {
	tag, err := p.pool.Exec(context.Background(), `UPDATE gateway_users SET role = $2 WHERE id = $1`, userID, int(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Empty reports whether the directory holds no accounts.
func (p *Postgres) Empty() bool {
	row := p.pool.QueryRow(context.Background(), `SELECT EXISTS (SELECT 1 FROM gateway_users)`)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false
	}
	return !exists
}
