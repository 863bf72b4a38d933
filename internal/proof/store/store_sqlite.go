package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skillmint/internal/proof/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

// SQLiteStore persists proofs in sqlite. The MarkVerified compare-and-set is
// expressed as a conditional UPDATE so the check and the flip are one
// statement.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed proof store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, proof *models.Proof) (id.ProofID, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO proofs
			(challenge_id, solver_id, completion_time_seconds, score, solution_digest, external_token, verified, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		uint64(proof.ChallengeID),
		string(proof.Solver),
		int64(proof.CompletionTime/time.Second),
		proof.Score,
		proof.SolutionDigest,
		proof.ExternalToken,
		proof.SubmittedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("create proof: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create proof id: %w", err)
	}
	return id.ProofID(lastID), nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, proofID id.ProofID) (*models.Proof, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, challenge_id, solver_id, completion_time_seconds, score, solution_digest, external_token, verified, submitted_at
		FROM proofs
		WHERE id = ?`,
		uint64(proofID),
	)
	proof, err := scanProof(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find proof: %w", err)
	}
	return proof, nil
}

func (s *SQLiteStore) MarkVerified(ctx context.Context, proofID id.ProofID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE proofs SET verified = 1 WHERE id = ? AND verified = 0`,
		uint64(proofID),
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if affected == 0 {
		// Either missing or already verified; disambiguate for the caller.
		if _, findErr := s.FindByID(ctx, proofID); findErr != nil {
			return findErr
		}
		return sentinel.ErrConflict
	}
	return nil
}

func (s *SQLiteStore) ClearVerified(ctx context.Context, proofID id.ProofID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE proofs SET verified = 0 WHERE id = ?`,
		uint64(proofID),
	)
	if err != nil {
		return fmt.Errorf("clear verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clear verified: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListBySolver(ctx context.Context, solver id.ParticipantID) ([]*models.Proof, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, challenge_id, solver_id, completion_time_seconds, score, solution_digest, external_token, verified, submitted_at
		FROM proofs
		WHERE solver_id = ?
		ORDER BY id`,
		string(solver),
	)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	defer rows.Close()

	var proofs []*models.Proof
	for rows.Next() {
		proof, err := scanProof(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proof: %w", err)
		}
		proofs = append(proofs, proof)
	}
	return proofs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProof(row rowScanner) (*models.Proof, error) {
	var proof models.Proof
	var proofID, challengeID uint64
	var solver string
	var completionSeconds int64
	if err := row.Scan(
		&proofID,
		&challengeID,
		&solver,
		&completionSeconds,
		&proof.Score,
		&proof.SolutionDigest,
		&proof.ExternalToken,
		&proof.Verified,
		&proof.SubmittedAt,
	); err != nil {
		return nil, err
	}
	proof.ID = id.ProofID(proofID)
	proof.ChallengeID = id.ChallengeID(challengeID)
	proof.Solver = id.ParticipantID(solver)
	proof.CompletionTime = time.Duration(completionSeconds) * time.Second
	return &proof, nil
}
