package store

import (
	"context"

	"github.com/coursewarehq/courseware/pkg/model"
)

// CommentStore abstracts the dependent comment collection shared by the
// resource families that own one.
type CommentStore interface {
	// ListByParent returns the parent's comments ordered by creation
	// time ascending. An empty slice, not an error, when none exist.
	ListByParent(ctx context.Context, family, parentID string) ([]model.Comment, error)

	// Create inserts the comment and fills its generated ID and
	// CreatedAt. Parent existence is the caller's check.
	Create(ctx context.Context, comment *model.Comment) error

	// Delete removes one comment by id, ErrNotFound when absent
	Delete(ctx context.Context, id int64) error
}
