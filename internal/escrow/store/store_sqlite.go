package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "skillmint/pkg/domain"
	dErrors "skillmint/pkg/domain-errors"
	"skillmint/pkg/platform/sentinel"
)

// SQLiteStore persists escrow balances in sqlite. Transfer runs inside a SQL
// transaction so the debit and credit commit together.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed escrow store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Hold(ctx context.Context, challengeID id.ChallengeID, amount id.Amount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escrow_holds (challenge_id, held_amount) VALUES (?, ?)
		ON CONFLICT (challenge_id) DO UPDATE SET held_amount = held_amount + excluded.held_amount`,
		uint64(challengeID), uint64(amount),
	)
	if err != nil {
		return fmt.Errorf("hold escrow: %w", err)
	}
	return nil
}

func (s *SQLiteStore) HeldFor(ctx context.Context, challengeID id.ChallengeID) (id.Amount, error) {
	var held uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT held_amount FROM escrow_holds WHERE challenge_id = ?`,
		uint64(challengeID),
	).Scan(&held)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("held balance: %w", err)
	}
	return id.Amount(held), nil
}

func (s *SQLiteStore) Transfer(ctx context.Context, challengeID id.ChallengeID, recipient id.ParticipantID, amount id.Amount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transfer: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var held uint64
	err = tx.QueryRowContext(ctx,
		`SELECT held_amount FROM escrow_holds WHERE challenge_id = ?`,
		uint64(challengeID),
	).Scan(&held)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("transfer lookup: %w", err)
	}
	if id.Amount(held) < amount {
		return dErrors.New(dErrors.CodeInsufficientFunds, "held balance below reward amount")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE escrow_holds SET held_amount = held_amount - ? WHERE challenge_id = ?`,
		uint64(amount), uint64(challengeID),
	); err != nil {
		return fmt.Errorf("transfer debit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO escrow_balances (recipient_id, balance) VALUES (?, ?)
		ON CONFLICT (recipient_id) DO UPDATE SET balance = balance + excluded.balance`,
		string(recipient), uint64(amount),
	); err != nil {
		return fmt.Errorf("transfer credit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) BalanceOf(ctx context.Context, recipient id.ParticipantID) (id.Amount, error) {
	var balance uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM escrow_balances WHERE recipient_id = ?`,
		string(recipient),
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("balance lookup: %w", err)
	}
	return id.Amount(balance), nil
}
