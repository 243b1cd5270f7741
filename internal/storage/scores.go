package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Leaderboard page size bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	ID        int64
	SessionID string
	User      string // Display name
	Wallet    string
	Score     int
	CreatedAt time.Time
}

// LeaderboardPage is one page of the leaderboard.
// NextCursor is empty when there are no more entries to fetch.
type LeaderboardPage struct {
	Entries    []ScoreEntry
	NextCursor string
}

// Leaderboard returns up to take scores ordered by score descending.
// cursor is the NextCursor of the previous page, or empty for the first page.
func (s *Store) Leaderboard(ctx context.Context, take int, cursor string) (LeaderboardPage, error) {
	if take <= 0 {
		take = DefaultPageSize
	}
	if take > MaxPageSize {
		take = MaxPageSize
	}

	var (
		rows *sql.Rows
		err  error
	)

	const selectEntries = `
		SELECT s.id, s.session_id, s.score, s.created_at, u.wallet, u.username
		FROM scores s
		JOIN users u ON u.id = s.user_id`

	if cursor == "" {
		rows, err = s.db.QueryContext(ctx,
			selectEntries+` ORDER BY s.score DESC, s.id ASC LIMIT ?`,
			take,
		)
	} else {
		cursorID, cursorScore, cerr := s.resolveCursor(ctx, cursor)
		if cerr != nil {
			return LeaderboardPage{}, cerr
		}
		rows, err = s.db.QueryContext(ctx,
			selectEntries+`
			WHERE s.score < ? OR (s.score = ? AND s.id > ?)
			ORDER BY s.score DESC, s.id ASC LIMIT ?`,
			cursorScore, cursorScore, cursorID, take,
		)
	}
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var page LeaderboardPage
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		var username sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Score, &createdAt, &e.Wallet, &username); err != nil {
			return LeaderboardPage{}, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.User = displayName(username.String, e.Wallet)
		e.CreatedAt = parseTimestamp(createdAt)
		page.Entries = append(page.Entries, e)
	}

	if err := rows.Err(); err != nil {
		return LeaderboardPage{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	if len(page.Entries) == take {
		page.NextCursor = strconv.FormatInt(page.Entries[take-1].ID, 10)
	}

	return page, nil
}

// resolveCursor returns the score row a cursor points at.
func (s *Store) resolveCursor(ctx context.Context, cursor string) (int64, int, error) {
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}

	var score int
	err = s.db.QueryRowContext(ctx, "SELECT score FROM scores WHERE id = ?", id).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("storage: cannot resolve cursor: %w", err)
	}
	return id, score, nil
}

// HighScore returns the highest finished score.
// Returns 0 if no scores exist.
func (s *Store) HighScore(ctx context.Context) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT MAX(score) FROM scores").Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}
