package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is a player identified by wallet address.
type User struct {
	ID        int64
	Wallet    string
	Username  string
	CreatedAt time.Time
}

// Label returns the display name: the username, or a shortened wallet.
func (u User) Label() string {
	return displayName(u.Username, u.Wallet)
}

func displayName(username, wallet string) string {
	if username != "" {
		return username
	}
	if len(wallet) <= 4 {
		return wallet
	}
	return wallet[:4] + "…"
}

// UpsertUser returns the user for wallet, creating it if needed.
func (s *Store) UpsertUser(ctx context.Context, wallet string) (User, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (wallet) VALUES (?) ON CONFLICT(wallet) DO NOTHING",
		wallet,
	)
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot upsert user: %w", err)
	}
	return s.UserByWallet(ctx, wallet)
}

// UserByWallet looks up a user by wallet address.
func (s *Store) UserByWallet(ctx context.Context, wallet string) (User, error) {
	var u User
	var username sql.NullString
	var createdAt any

	err := s.db.QueryRowContext(ctx,
		"SELECT id, wallet, username, created_at FROM users WHERE wallet = ?",
		wallet,
	).Scan(&u.ID, &u.Wallet, &username, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, wallet)
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: cannot query user: %w", err)
	}

	u.Username = username.String
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

// SetUsername sets the display name of the user owning wallet.
func (s *Store) SetUsername(ctx context.Context, wallet, username string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = NULLIF(?, '') WHERE wallet = ?",
		username, wallet,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot set username: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, wallet)
	}
	return nil
}
