package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/coursewarehq/courseware/pkg/model"
	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// MockEntityStore implements store.EntityStore for testing using testify/mock
type MockEntityStore struct {
	mock.Mock
}

func NewMockEntityStore() *MockEntityStore {
	return &MockEntityStore{}
}

func (m *MockEntityStore) List(ctx context.Context, d *resource.Descriptor, q store.ListQuery) ([]store.Record, error) {
	args := m.Called(d.Name, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Record), args.Error(1)
}

func (m *MockEntityStore) Get(ctx context.Context, d *resource.Descriptor, key string) (store.Record, error) {
	args := m.Called(d.Name, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *MockEntityStore) Exists(ctx context.Context, d *resource.Descriptor, key string) (bool, error) {
	args := m.Called(d.Name, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntityStore) DuplicateField(ctx context.Context, d *resource.Descriptor, values map[string]string, excludeKey string) (string, error) {
	args := m.Called(d.Name, values, excludeKey)
	return args.String(0), args.Error(1)
}

func (m *MockEntityStore) Create(ctx context.Context, d *resource.Descriptor, rec store.Record) (store.Record, error) {
	args := m.Called(d.Name, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *MockEntityStore) Update(ctx context.Context, d *resource.Descriptor, key string, changes store.Record) (int64, error) {
	args := m.Called(d.Name, key, changes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntityStore) Delete(ctx context.Context, d *resource.Descriptor, key string) error {
	args := m.Called(d.Name, key)
	return args.Error(0)
}

// MockCommentStore implements store.CommentStore for testing using testify/mock
type MockCommentStore struct {
	mock.Mock
}

func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{}
}

func (m *MockCommentStore) ListByParent(ctx context.Context, family, parentID string) ([]model.Comment, error) {
	args := m.Called(family, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *MockCommentStore) Create(ctx context.Context, comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockCommentStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCredentialStore implements store.CredentialStore for testing using testify/mock
type MockCredentialStore struct {
	mock.Mock
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) Hash(ctx context.Context, d *resource.Descriptor, key string) (string, error) {
	args := m.Called(d.Name, key)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialStore) SetHash(ctx context.Context, d *resource.Descriptor, key string, hash string) error {
	args := m.Called(d.Name, key, hash)
	return args.Error(0)
}
