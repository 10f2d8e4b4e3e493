package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/coursewarehq/courseware/pkg/model"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// Ensure CommentStore implements store.CommentStore
var _ store.CommentStore = (*CommentStore)(nil)

// CommentStore implements store.CommentStore using GORM
type CommentStore struct {
	db *gorm.DB
}

// NewCommentStore creates a new CommentStore
func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByParent returns the parent's comments, oldest first
func (s *CommentStore) ListByParent(ctx context.Context, family, parentID string) ([]model.Comment, error) {
	comments := []model.Comment{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, parent_kind, parent_id, author, text, created_at
		FROM comments WHERE parent_kind = ? AND parent_id = ?
		ORDER BY created_at ASC, id ASC
	`, family, parentID).Scan(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments for %s %q: %w", family, parentID, err)
	}
	return comments, nil
}

// Create inserts the comment and fills its generated ID and CreatedAt
func (s *CommentStore) Create(ctx context.Context, comment *model.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment for %s %q: %w", comment.ParentKind, comment.ParentID, err)
	}
	return nil
}

// Delete removes one comment by id
func (s *CommentStore) Delete(ctx context.Context, id int64) error {
	tx := s.db.WithContext(ctx).Exec("DELETE FROM comments WHERE id = ?", id)
	if tx.Error != nil {
		return fmt.Errorf("delete comment %d: %w", id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
