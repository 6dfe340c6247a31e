package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wellmatch/internal/domain"
)

var _ domain.CredentialStore = (*CredentialStore)(nil)

// DefaultProfile names the row used when no profile is configured.
const DefaultProfile = "default"

// CredentialStore keeps one credential row per portal profile.
type CredentialStore struct {
	db      *DB
	profile string
	now     func() time.Time
}

// NewCredentialStore stores the credential under profile. An empty profile
// means DefaultProfile.
func NewCredentialStore(db *DB, profile string) *CredentialStore {
	if profile == "" {
		profile = DefaultProfile
	}
	return &CredentialStore{db: db, profile: profile, now: time.Now}
}

// Load returns the stored credential, or "" when the row does not exist.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	var credential string
	err := s.db.sql.QueryRowContext(ctx,
		"SELECT credential FROM portal_credentials WHERE profile = $1",
		s.profile,
	).Scan(&credential)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return credential, nil
}

// Save upserts the credential.
func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO portal_credentials (profile, credential, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (profile) DO UPDATE SET credential = EXCLUDED.credential, updated_at = EXCLUDED.updated_at`,
		s.profile, credential, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Clear deletes the row.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if _, err := s.db.sql.ExecContext(ctx, "DELETE FROM portal_credentials WHERE profile = $1", s.profile); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
