package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "skillmint/pkg/domain"
)

// SQLiteStore persists audit events in sqlite.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(occurred_at, participant_id, action, challenge_id, proof_id, token_id, skill_type, digest, decision)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp,
		string(event.Participant),
		string(event.Action),
		uint64(event.ChallengeID),
		uint64(event.ProofID),
		uint64(event.TokenID),
		string(event.SkillType),
		event.Digest,
		event.Decision,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByParticipant(ctx context.Context, participant id.ParticipantID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, participant_id, action, challenge_id, proof_id, token_id, skill_type, digest, decision
		FROM audit_events
		WHERE participant_id = ?
		ORDER BY id`,
		string(participant),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var participantID, action, skillType, digest, decision string
		var challengeID, proofID, tokID uint64
		if err := rows.Scan(&e.Timestamp, &participantID, &action, &challengeID, &proofID, &tokID, &skillType, &digest, &decision); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Participant = id.ParticipantID(participantID)
		e.Action = Action(action)
		e.ChallengeID = id.ChallengeID(challengeID)
		e.ProofID = id.ProofID(proofID)
		e.TokenID = id.TokenID(tokID)
		e.SkillType = id.SkillType(skillType)
		e.Digest = digest
		e.Decision = decision
		events = append(events, e)
	}
	return events, rows.Err()
}
