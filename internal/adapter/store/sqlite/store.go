// Package sqlite persists finished verification results as a bounded
// server-side history.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bkyoung/claim-verifier/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Record is one stored verification.
type Record struct {
	ID        string                    `json:"id"`
	ClaimText string                    `json:"claimText"`
	Result    domain.VerificationResult `json:"result"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// Store implements the verification history on SQLite. The table is pruned
// to historyLimit rows on every save, oldest first.
type Store struct {
	db           *sql.DB
	historyLimit int
}

// NewStore creates a store at the given path. Use ":memory:" for an
// in-memory database (useful for testing).
func NewStore(dbPath string, historyLimit int) (*Store, error) {
	if historyLimit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", historyLimit)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, historyLimit: historyLimit}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	-- Finished verification results, bounded to the configured history size
	CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		claim_text TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_verifications_created ON verifications(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveVerification stores a result and prunes history beyond the limit.
func (s *Store) SaveVerification(ctx context.Context, claimText string, result domain.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO verifications (id, claim_text, result_json, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		result.ID,
		claimText,
		string(payload),
		result.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save verification: %w", err)
	}

	return s.prune(ctx)
}

func (s *Store) prune(ctx context.Context) error {
	query := `
		DELETE FROM verifications
		WHERE id NOT IN (
			SELECT id FROM verifications
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`

	if _, err := s.db.ExecContext(ctx, query, s.historyLimit); err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// RecentVerifications retrieves the newest records, newest first. A limit
// of zero or above the history bound returns the whole history.
func (s *Store) RecentVerifications(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	query := `
		SELECT id, claim_text, result_json, created_at
		FROM verifications
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload string
		var createdAt int64

		if err := rows.Scan(&rec.ID, &rec.ClaimText, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verifications: %w", err)
	}
	return records, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
