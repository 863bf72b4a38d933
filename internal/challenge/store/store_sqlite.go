package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"skillmint/internal/challenge/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

// SQLiteStore persists challenges in sqlite. Id allocation rides on the
// INTEGER PRIMARY KEY; sqlite assigns max(rowid)+1, matching the
// monotonically-increasing-from-1 contract under the single-writer
// connection.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed challenge store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Create(ctx context.Context, challenge *models.Challenge) (id.ChallengeID, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO challenges
			(skill_type, difficulty, time_limit_seconds, reward_amount, active, creator_id, content_digest, created_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		string(challenge.SkillType),
		challenge.Difficulty,
		int64(challenge.TimeLimit/time.Second),
		uint64(challenge.Reward),
		string(challenge.Creator),
		challenge.ContentDigest,
		challenge.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("create challenge: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create challenge id: %w", err)
	}
	return id.ChallengeID(lastID), nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, challengeID id.ChallengeID) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, skill_type, difficulty, time_limit_seconds, reward_amount, active, creator_id, content_digest, created_at
		FROM challenges
		WHERE id = ?`,
		uint64(challengeID),
	)
	challenge, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find challenge: %w", err)
	}
	return challenge, nil
}

func (s *SQLiteStore) Deactivate(ctx context.Context, challengeID id.ChallengeID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE challenges SET active = 0 WHERE id = ?`, uint64(challengeID))
	if err != nil {
		return fmt.Errorf("deactivate challenge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate challenge: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the challenge record. Only the creation path uses this, to
// compensate a create whose escrow hold failed.
func (s *SQLiteStore) Delete(ctx context.Context, challengeID id.ChallengeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, uint64(challengeID))
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// RewardFor resolves the reward amount for a challenge. The escrow layer
// reads this at release time instead of carrying its own copy.
func (s *SQLiteStore) RewardFor(ctx context.Context, challengeID id.ChallengeID) (id.Amount, error) {
	var reward uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT reward_amount FROM challenges WHERE id = ?`,
		uint64(challengeID),
	).Scan(&reward)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reward for challenge: %w", err)
	}
	return id.Amount(reward), nil
}

func (s *SQLiteStore) ListByCreator(ctx context.Context, creator id.ParticipantID) ([]*models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, skill_type, difficulty, time_limit_seconds, reward_amount, active, creator_id, content_digest, created_at
		FROM challenges
		WHERE creator_id = ?
		ORDER BY id`,
		string(creator),
	)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*models.Challenge
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, challenge)
	}
	return challenges, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var challenge models.Challenge
	var challengeID, reward uint64
	var skillType, creator string
	var timeLimitSeconds int64
	var active bool
	if err := row.Scan(
		&challengeID,
		&skillType,
		&challenge.Difficulty,
		&timeLimitSeconds,
		&reward,
		&active,
		&creator,
		&challenge.ContentDigest,
		&challenge.CreatedAt,
	); err != nil {
		return nil, err
	}
	challenge.ID = id.ChallengeID(challengeID)
	challenge.SkillType = id.SkillType(skillType)
	challenge.TimeLimit = time.Duration(timeLimitSeconds) * time.Second
	challenge.Reward = id.Amount(reward)
	challenge.Active = active
	challenge.Creator = id.ParticipantID(creator)
	return &challenge, nil
}
