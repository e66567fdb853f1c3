package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// KVEntryModel is the Bun model for a single key-value record.
type KVEntryModel struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// KVStore is a durable key-value store backed by Bun.
type KVStore struct {
	db  *bun.DB
	now func() time.Time
}

// NewKVStore creates a new Bun key-value store.
func NewKVStore(db *bun.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

// EnsureSchema creates the kv_entries table when missing.
func (s *KVStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*KVEntryModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("kv store: create table: %w", err)
	}
	return nil
}

// Find returns the entry for key or a record not found error.
func (s *KVStore) Find(ctx context.Context, key string) (*KVEntryModel, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, repository.NewRecordNotFound()
	}

	var model KVEntryModel
	err := s.db.NewSelect().
		Model(&model).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().WithMetadata(map[string]any{
				"key": key,
			})
		}
		return nil, err
	}

	return &model, nil
}

// Get returns the value stored under key. A missing key is not an error.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	model, err := s.Find(ctx, key)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("kv store: key is required")
	}

	model := &KVEntryModel{
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	}

	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Delete removes key. Removing a missing key succeeds.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*KVEntryModel)(nil)).
		Where("key = ?", strings.TrimSpace(key)).
		Exec(ctx)
	return err
}
