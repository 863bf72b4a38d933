package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"skillmint/internal/credential/models"
	id "skillmint/pkg/domain"
	"skillmint/pkg/platform/sentinel"
)

// SQLiteStore persists credentials in sqlite. The UNIQUE(owner_id, skill_type)
// constraint backs the one-credential-per-pair invariant; token ids ride on
// the INTEGER PRIMARY KEY.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a sqlite-backed credential store.
func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Mint(ctx context.Context, credential *models.Credential) (id.TokenID, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin mint: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO credentials (owner_id, skill_type, proficiency_level, verification_count, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(credential.Owner),
		string(credential.SkillType),
		credential.ProficiencyLevel,
		credential.VerificationCount,
		credential.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, sentinel.ErrConflict
		}
		return 0, fmt.Errorf("mint credential: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mint credential id: %w", err)
	}
	tokenID := id.TokenID(lastID)

	for seq, digest := range credential.Digests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credential_digests (token_id, seq, digest) VALUES (?, ?, ?)`,
			uint64(tokenID), seq, digest,
		); err != nil {
			return 0, fmt.Errorf("mint digest: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit mint: %w", err)
	}
	return tokenID, nil
}

func (s *SQLiteStore) FindByOwnerAndSkill(ctx context.Context, owner id.ParticipantID, skill id.SkillType) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token_id, owner_id, skill_type, proficiency_level, verification_count, created_at
		FROM credentials
		WHERE owner_id = ? AND skill_type = ?`,
		string(owner), string(skill),
	)
	return s.scanWithDigests(ctx, row)
}

func (s *SQLiteStore) FindByToken(ctx context.Context, tokenID id.TokenID) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token_id, owner_id, skill_type, proficiency_level, verification_count, created_at
		FROM credentials
		WHERE token_id = ?`,
		uint64(tokenID),
	)
	return s.scanWithDigests(ctx, row)
}

func (s *SQLiteStore) Update(ctx context.Context, credential *models.Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE credentials SET proficiency_level = ?, verification_count = ? WHERE token_id = ?`,
		credential.ProficiencyLevel,
		credential.VerificationCount,
		uint64(credential.TokenID),
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	// Rewrite the digest list; updates append but rollbacks truncate.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM credential_digests WHERE token_id = ?`, uint64(credential.TokenID),
	); err != nil {
		return fmt.Errorf("update digests: %w", err)
	}
	for seq, digest := range credential.Digests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credential_digests (token_id, seq, digest) VALUES (?, ?, ?)`,
			uint64(credential.TokenID), seq, digest,
		); err != nil {
			return fmt.Errorf("update digest: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, tokenID id.TokenID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM credential_digests WHERE token_id = ?`, uint64(tokenID),
	); err != nil {
		return fmt.Errorf("delete digests: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE token_id = ?`, uint64(tokenID))
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, owner id.ParticipantID) ([]id.TokenID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token_id FROM credentials WHERE owner_id = ? ORDER BY token_id`,
		string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var tokenIDs []id.TokenID
	for rows.Next() {
		var tokenID uint64
		if err := rows.Scan(&tokenID); err != nil {
			return nil, fmt.Errorf("scan token id: %w", err)
		}
		tokenIDs = append(tokenIDs, id.TokenID(tokenID))
	}
	return tokenIDs, rows.Err()
}

func (s *SQLiteStore) scanWithDigests(ctx context.Context, row *sql.Row) (*models.Credential, error) {
	var credential models.Credential
	var tokenID uint64
	var owner, skill string
	if err := row.Scan(
		&tokenID,
		&owner,
		&skill,
		&credential.ProficiencyLevel,
		&credential.VerificationCount,
		&credential.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	credential.TokenID = id.TokenID(tokenID)
	credential.Owner = id.ParticipantID(owner)
	credential.SkillType = id.SkillType(skill)

	rows, err := s.db.QueryContext(ctx,
		`SELECT digest FROM credential_digests WHERE token_id = ? ORDER BY seq`,
		tokenID,
	)
	if err != nil {
		return nil, fmt.Errorf("load digests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var digest string
		if err := rows.Scan(&digest); err != nil {
			return nil, fmt.Errorf("scan digest: %w", err)
		}
		credential.Digests = append(credential.Digests, digest)
	}
	return &credential, rows.Err()
}
