package gorm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coursewarehq/courseware/pkg/model"
	"github.com/coursewarehq/courseware/pkg/resource"
	"github.com/coursewarehq/courseware/pkg/sanitize"
	"github.com/coursewarehq/courseware/pkg/server/store"
)

// Ensure EntityStore implements store.EntityStore
var _ store.EntityStore = (*EntityStore)(nil)

// EntityStore implements store.EntityStore using GORM. All SQL text is
// assembled from descriptor constants; caller input only ever travels
// through bound parameters.
type EntityStore struct {
	db *gorm.DB
}

// NewEntityStore creates a new EntityStore
func NewEntityStore(db *gorm.DB) *EntityStore {
	return &EntityStore{db: db}
}

// List returns records matching the query, filtered and sorted
func (s *EntityStore) List(ctx context.Context, d *resource.Descriptor, q store.ListQuery) ([]store.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(d.ListColumns(), ", "), d.Name)
	var args []interface{}

	if q.Search != "" {
		preds := make([]string, 0, len(d.SearchColumns()))
		for _, col := range d.SearchColumns() {
			preds = append(preds, col+" ILIKE ?")
			args = append(args, "%"+q.Search+"%")
		}
		query += " WHERE (" + strings.Join(preds, " OR ") + ")"
	}

	// Sort tokens resolve through the descriptor's constant allow-map;
	// the raw values never reach the SQL string.
	column, order := d.ResolveSort(q.Sort, q.Order)
	query += " ORDER BY " + column + " " + order.Keyword()

	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", d.Name, err)
	}

	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, decodeRecord(d, row))
	}
	return records, nil
}

// Get retrieves a single record by key
func (s *EntityStore) Get(ctx context.Context, d *resource.Descriptor, key string) (store.Record, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		strings.Join(d.ListColumns(), ", "), d.Name, d.Key.Column)

	var row map[string]interface{}
	tx := s.db.WithContext(ctx).Raw(query, key).Scan(&row)
	if tx.Error != nil {
		return nil, fmt.Errorf("get %s %q: %w", d.Name, key, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return decodeRecord(d, row), nil
}

// Exists reports whether a record with the key exists
func (s *EntityStore) Exists(ctx context.Context, d *resource.Descriptor, key string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", d.Name, d.Key.Column)

	var exists bool
	if err := s.db.WithContext(ctx).Raw(query, key).Scan(&exists).Error; err != nil {
		return false, fmt.Errorf("exists %s %q: %w", d.Name, key, err)
	}
	return exists, nil
}

// DuplicateField returns the first unique field whose value collides
// with another record, or ""
func (s *EntityStore) DuplicateField(ctx context.Context, d *resource.Descriptor, values map[string]string, excludeKey string) (string, error) {
	for _, f := range d.UniqueFields() {
		value, ok := values[f.Name]
		if !ok || value == "" {
			continue
		}

		query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?", d.Name, f.Name)
		args := []interface{}{value}
		if excludeKey != "" {
			query += fmt.Sprintf(" AND %s != ?", d.Key.Column)
			args = append(args, excludeKey)
		}
		query += ")"

		var exists bool
		if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&exists).Error; err != nil {
			return "", fmt.Errorf("duplicate check %s.%s: %w", d.Name, f.Name, err)
		}
		if exists {
			return f.Name, nil
		}
	}
	return "", nil
}

// Create inserts rec and returns the stored record
func (s *EntityStore) Create(ctx context.Context, d *resource.Descriptor, rec store.Record) (store.Record, error) {
	var cols []string
	var placeholders []string
	var args []interface{}

	add := func(col string, v interface{}) {
		cols = append(cols, col)
		placeholders = append(placeholders, "?")
		args = append(args, v)
	}

	// Generated string keys arrive in rec; serial keys are assigned by
	// the database below.
	if d.Key.Gen == resource.KeyUUID {
		add(d.Key.Column, rec[d.Key.Column])
	}
	for _, f := range d.Fields {
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		if f.Kind == resource.List {
			v = toStringList(v)
		}
		add(f.Name, v)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	key := fmt.Sprint(rec[d.Key.Column])
	if d.Key.Gen == resource.KeySerial {
		var id int64
		tx := s.db.WithContext(ctx).Raw(query+" RETURNING "+d.Key.Column, args...).Scan(&id)
		if tx.Error != nil {
			return nil, translateConflict(fmt.Sprintf("create %s", d.Name), tx.Error)
		}
		key = strconv.FormatInt(id, 10)
	} else {
		if err := s.db.WithContext(ctx).Exec(query, args...).Error; err != nil {
			return nil, translateConflict(fmt.Sprintf("create %s", d.Name), err)
		}
	}

	return s.Get(ctx, d, key)
}

// Update applies present-only changes to the record with the key
func (s *EntityStore) Update(ctx context.Context, d *resource.Descriptor, key string, changes store.Record) (int64, error) {
	var assignments []string
	var args []interface{}

	// Walk descriptor fields rather than the map for a stable clause order
	for _, f := range d.Fields {
		v, ok := changes[f.Name]
		if !ok || f.Name == d.Key.Column {
			continue
		}
		if f.Kind == resource.List {
			v = toStringList(v)
		}
		assignments = append(assignments, f.Name+" = ?")
		args = append(args, v)
	}
	if len(assignments) == 0 {
		return 0, store.ErrNoFields
	}
	if d.HasUpdatedAt {
		assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		d.Name, strings.Join(assignments, ", "), d.Key.Column)
	args = append(args, key)

	tx := s.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return 0, translateConflict(fmt.Sprintf("update %s %q", d.Name, key), tx.Error)
	}
	return tx.RowsAffected, nil
}

// Delete removes the record and its dependent comments in one transaction
func (s *EntityStore) Delete(ctx context.Context, d *resource.Descriptor, key string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if d.Comments != nil {
			err := tx.Exec("DELETE FROM comments WHERE parent_kind = ? AND parent_id = ?", d.Name, key).Error
			if err != nil {
				return fmt.Errorf("delete %s %q comments: %w", d.Name, key, err)
			}
		}

		res := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", d.Name, d.Key.Column), key)
		if res.Error != nil {
			return fmt.Errorf("delete %s %q: %w", d.Name, key, res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// decodeRecord converts a scanned row into its API shape: list columns
// decoded from their serialized text, date columns rendered as
// YYYY-MM-DD strings.
func decodeRecord(d *resource.Descriptor, row map[string]interface{}) store.Record {
	rec := store.Record{}
	for k, v := range row {
		rec[k] = v
	}

	for _, f := range d.Fields {
		switch f.Kind {
		case resource.List:
			var list model.StringList
			if err := list.Scan(rec[f.Name]); err != nil {
				list = model.StringList{}
			}
			rec[f.Name] = list
		case resource.Date:
			if t, ok := rec[f.Name].(time.Time); ok {
				rec[f.Name] = t.Format(sanitize.DateFormat)
			}
		}
	}
	return rec
}

// toStringList coerces handler-supplied list values to the Valuer type
// that serializes them.
func toStringList(v interface{}) model.StringList {
	switch val := v.(type) {
	case model.StringList:
		return val
	case []string:
		return model.StringList(val)
	case []interface{}:
		out := make(model.StringList, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return model.StringList{}
	}
}
