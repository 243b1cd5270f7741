package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// TxTypeMint marks a reward mint.
const TxTypeMint = "MINT"

// TxStatus is the state of a reward claim.
type TxStatus string

const (
	TxPending   TxStatus = "PENDING"   // Claimed, mint not yet confirmed
	TxConfirmed TxStatus = "CONFIRMED" // Minted, TxHash set
)

// TokenTransaction records a reward paid for a finished session.
type TokenTransaction struct {
	ID        int64
	SessionID string
	UserID    int64
	TxHash    string // Empty while pending
	Amount    int64  // Whole tokens
	BaseUnits uint64 // Smallest token units actually minted
	Type      string
	Status    TxStatus
	CreatedAt time.Time
}

// Pending reports whether the reward is claimed but not yet minted.
func (tx TokenTransaction) Pending() bool {
	return tx.Status == TxPending
}

// ClaimReward reserves the reward of a session before it is minted.
// A session holds at most one claim: the caller that inserts it wins and
// gets true; every other caller gets the existing claim and false.
func (s *Store) ClaimReward(ctx context.Context, tx TokenTransaction) (TokenTransaction, bool, error) {
	if tx.Type == "" {
		tx.Type = TxTypeMint
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO token_transactions (session_id, user_id, amount, base_units, type, status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		tx.SessionID, tx.UserID, tx.Amount, int64(tx.BaseUnits), tx.Type, TxPending,
	)
	if err != nil {
		return TokenTransaction{}, false, fmt.Errorf("storage: cannot claim reward: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return TokenTransaction{}, false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}

	claim, err := s.SessionTokenTransaction(ctx, tx.SessionID)
	if err != nil {
		return TokenTransaction{}, false, err
	}
	return claim, n > 0, nil
}

// ConfirmReward records the mint signature of a pending claim.
func (s *Store) ConfirmReward(ctx context.Context, claimID int64, txHash string) (TokenTransaction, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE token_transactions
		 SET tx_hash = ?, status = ?
		 WHERE id = ? AND status = ?`,
		txHash, TxConfirmed, claimID, TxPending,
	)
	if err != nil {
		return TokenTransaction{}, fmt.Errorf("storage: cannot confirm reward: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return TokenTransaction{}, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return TokenTransaction{}, fmt.Errorf("%w: pending claim %d", ErrNotFound, claimID)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, tx_hash, amount, base_units, type, status, created_at
		 FROM token_transactions
		 WHERE id = ?`,
		claimID,
	)
	tx, err := scanTokenTransaction(row)
	if err != nil {
		return TokenTransaction{}, fmt.Errorf("storage: cannot query token transaction: %w", err)
	}
	return tx, nil
}

// ReleaseReward drops a pending claim whose mint failed, so the reward can
// be claimed again. Confirmed rewards are never released.
func (s *Store) ReleaseReward(ctx context.Context, claimID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM token_transactions WHERE id = ? AND status = ?",
		claimID, TxPending,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot release reward: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: pending claim %d", ErrNotFound, claimID)
	}
	return nil
}

// SessionTokenTransaction returns the transaction recorded for a session.
func (s *Store) SessionTokenTransaction(ctx context.Context, sessionID string) (TokenTransaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, user_id, tx_hash, amount, base_units, type, status, created_at
		 FROM token_transactions
		 WHERE session_id = ?`,
		sessionID,
	)

	tx, err := scanTokenTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TokenTransaction{}, fmt.Errorf("%w: token transaction for session %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return TokenTransaction{}, fmt.Errorf("storage: cannot query token transaction: %w", err)
	}
	return tx, nil
}

// TokenTransactions lists a user's transactions, newest first.
func (s *Store) TokenTransactions(ctx context.Context, userID int64) ([]TokenTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_id, tx_hash, amount, base_units, type, status, created_at
		 FROM token_transactions
		 WHERE user_id = ?
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query token transactions: %w", err)
	}
	defer rows.Close()

	var txs []TokenTransaction
	for rows.Next() {
		tx, err := scanTokenTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return txs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTokenTransaction(row scanner) (TokenTransaction, error) {
	var tx TokenTransaction
	var baseUnits int64
	var createdAt any

	if err := row.Scan(
		&tx.ID,
		&tx.SessionID,
		&tx.UserID,
		&tx.TxHash,
		&tx.Amount,
		&baseUnits,
		&tx.Type,
		&tx.Status,
		&createdAt,
	); err != nil {
		return TokenTransaction{}, err
	}

	tx.BaseUnits = uint64(baseUnits)
	tx.CreatedAt = parseTimestamp(createdAt)
	return tx, nil
}
