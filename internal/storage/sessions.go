package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle status of a stored game session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionFinished   SessionStatus = "FINISHED"
)

// Session is a stored game session.
// State holds the serialized engine record; Score and Moves mirror it for queries.
type Session struct {
	ID        string
	UserID    int64
	Wallet    string
	State     []byte
	Score     int
	Moves     int
	Status    SessionStatus
	StartedAt time.Time
	EndedAt   time.Time // Zero while in progress
}

// Finished reports whether the session has been finished.
func (s Session) Finished() bool {
	return s.Status == SessionFinished
}

// Turn is the snapshot saved after a move.
type Turn struct {
	State []byte
	Score int
	Moves int
}

// CreateSession starts a new session for userID with the initial snapshot.
func (s *Store) CreateSession(ctx context.Context, userID int64, initial Turn) (Session, error) {
	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_sessions (id, user_id, state, score, moves, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, string(initial.State), initial.Score, initial.Moves, SessionInProgress,
	)
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot create session: %w", err)
	}

	return s.GetSession(ctx, id)
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	var state string
	var startedAt, endedAt any

	err := s.db.QueryRowContext(ctx,
		`SELECT g.id, g.user_id, u.wallet, g.state, g.score, g.moves, g.status, g.started_at, g.ended_at
		 FROM game_sessions g
		 JOIN users u ON u.id = g.user_id
		 WHERE g.id = ?`,
		id,
	).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Wallet,
		&state,
		&sess.Score,
		&sess.Moves,
		&sess.Status,
		&startedAt,
		&endedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot query session: %w", err)
	}

	sess.State = []byte(state)
	sess.StartedAt = parseTimestamp(startedAt)
	sess.EndedAt = parseTimestamp(endedAt)
	return sess, nil
}

// SaveTurn stores the latest snapshot of an in-progress session owned by userID.
func (s *Store) SaveTurn(ctx context.Context, id string, userID int64, turn Turn) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE game_sessions
		 SET state = ?, score = ?, moves = ?
		 WHERE id = ? AND user_id = ? AND status = ?`,
		string(turn.State), turn.Score, turn.Moves, id, userID, SessionInProgress,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save turn: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing updated: explain why.
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return fmt.Errorf("%w: session %s", ErrSessionFinished, id)
}

// FinishSession marks a session finished with finalScore and records its
// leaderboard entry. Only the first call finishes the session; the returned
// bool reports whether this call did.
func (s *Store) FinishSession(ctx context.Context, id string, finalScore int) (Session, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, false, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE game_sessions
		 SET score = ?, status = ?, ended_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		finalScore, SessionFinished, id, SessionInProgress,
	)
	if err != nil {
		tx.Rollback()
		return Session{}, false, fmt.Errorf("storage: cannot finish session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return Session{}, false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}

	if n == 0 {
		tx.Rollback()
		sess, err := s.GetSession(ctx, id)
		return sess, false, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scores (session_id, user_id, score)
		 SELECT id, user_id, score FROM game_sessions WHERE id = ?`,
		id,
	)
	if err != nil {
		tx.Rollback()
		return Session{}, false, fmt.Errorf("storage: cannot save score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Session{}, false, fmt.Errorf("storage: cannot commit finish: %w", err)
	}

	sess, err := s.GetSession(ctx, id)
	return sess, true, err
}

// UserSessions lists the sessions of a user, newest first.
func (s *Store) UserSessions(ctx context.Context, userID int64, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.user_id, u.wallet, g.score, g.moves, g.status, g.started_at, g.ended_at
		 FROM game_sessions g
		 JOIN users u ON u.id = g.user_id
		 WHERE g.user_id = ?
		 ORDER BY g.started_at DESC, g.rowid DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt, endedAt any
		if err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.Wallet,
			&sess.Score,
			&sess.Moves,
			&sess.Status,
			&startedAt,
			&endedAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.StartedAt = parseTimestamp(startedAt)
		sess.EndedAt = parseTimestamp(endedAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}
