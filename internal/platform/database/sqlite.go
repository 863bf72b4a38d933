// Package database owns the sqlite connection and the ledger schema so the
// per-domain stores only issue queries.
package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the sqlite database at path and applies the schema.
// A single writer connection keeps sqlite's locking model simple; throughput
// is human-paced.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the ledger schema. Statements are idempotent so startup can
// always run them.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Four logical tables (challenges, proofs, credentials, audit events) plus
// the rowid-ordered indexes creator->challenges, solver->proofs and
// owner->credentials, and the escrow balances.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS challenges (
		id INTEGER PRIMARY KEY,
		skill_type TEXT NOT NULL,
		difficulty INTEGER NOT NULL,
		time_limit_seconds INTEGER NOT NULL,
		reward_amount INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		creator_id TEXT NOT NULL,
		content_digest TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_challenges_creator ON challenges(creator_id, id)`,

	`CREATE TABLE IF NOT EXISTS proofs (
		id INTEGER PRIMARY KEY,
		challenge_id INTEGER NOT NULL REFERENCES challenges(id),
		solver_id TEXT NOT NULL,
		completion_time_seconds INTEGER NOT NULL,
		score INTEGER NOT NULL,
		solution_digest TEXT NOT NULL,
		external_token TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		submitted_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proofs_solver ON proofs(solver_id, id)`,

	`CREATE TABLE IF NOT EXISTS credentials (
		token_id INTEGER PRIMARY KEY,
		owner_id TEXT NOT NULL,
		skill_type TEXT NOT NULL,
		proficiency_level INTEGER NOT NULL,
		verification_count INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(owner_id, skill_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credentials_owner ON credentials(owner_id, token_id)`,

	`CREATE TABLE IF NOT EXISTS credential_digests (
		token_id INTEGER NOT NULL REFERENCES credentials(token_id),
		seq INTEGER NOT NULL,
		digest TEXT NOT NULL,
		PRIMARY KEY (token_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS escrow_holds (
		challenge_id INTEGER PRIMARY KEY,
		held_amount INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS escrow_balances (
		recipient_id TEXT PRIMARY KEY,
		balance INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		occurred_at TIMESTAMP NOT NULL,
		participant_id TEXT NOT NULL,
		action TEXT NOT NULL,
		challenge_id INTEGER,
		proof_id INTEGER,
		token_id INTEGER,
		skill_type TEXT,
		digest TEXT,
		decision TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_participant ON audit_events(participant_id, id)`,
}
