package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// Ensure CredentialStore implements store.CredentialStore
var _ store.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements store.CredentialStore using GORM
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Hash returns the stored hash for the record with the key
func (s *CredentialStore) Hash(ctx context.Context, d *resource.Descriptor, key string) (string, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		d.Credential.HashColumn, d.Name, d.Key.Column)

	var hash string
	tx := s.db.WithContext(ctx).Raw(query, key).Scan(&hash)
	if tx.Error != nil {
		return "", fmt.Errorf("credential lookup %s %q: %w", d.Name, key, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return "", store.ErrNotFound
	}
	return hash, nil
}

// SetHash overwrites the stored hash
func (s *CredentialStore) SetHash(ctx context.Context, d *resource.Descriptor, key string, hash string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		d.Name, d.Credential.HashColumn, d.Key.Column)

	tx := s.db.WithContext(ctx).Exec(query, hash, key)
	if tx.Error != nil {
		return fmt.Errorf("credential update %s %q: %w", d.Name, key, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
