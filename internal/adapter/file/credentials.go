// Package file stores the portal credential in a file readable only by the
// current user.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wellmatch/internal/domain"
)

var _ domain.CredentialStore = (*CredentialStore)(nil)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// CredentialStore keeps a single credential at path.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store at path. The file and its directory
// are created on the first Save.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the file the credential is stored in.
func (s *CredentialStore) Path() string { return s.path }

// Load returns the stored credential, or "" when no file exists.
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Save writes the credential atomically: a temp file in the same directory
// is renamed over the old one.
func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp credential: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod credential: %w", err)
	}
	if _, err := tmp.WriteString(credential); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// Clear removes the credential file. A missing file is not an error.
func (s *CredentialStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
