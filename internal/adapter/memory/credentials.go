package memory

import (
	"context"
	"sync"

	"wellmatch/internal/domain"
)

var _ domain.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps the portal credential for the life of the process.
type CredentialStore struct {
	mu    sync.Mutex
	value string
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Load returns the stored credential, or "" when none is stored.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// Save stores the credential.
func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = credential
	return nil
}

// Clear removes the credential.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	return nil
}
