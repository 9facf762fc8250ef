package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"brandstudio/internal/domain"
	"brandstudio/internal/infra"
	"brandstudio/internal/sqlinline"
)

// PostgresStore keeps the profile as a jsonb document.
type PostgresStore struct {
	sql infra.SQLExecutor
	key string
}

func NewPostgresStore(sql infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql, key: DefaultKey}
}

// Migrate creates the profile table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QCreateBrandProfilesTable)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (domain.BrandProfile, error) {
	var raw []byte
	if err := s.sql.QueryRow(ctx, sqlinline.QSelectBrandProfile, s.key).Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return domain.DefaultBrandProfile(), nil
		}
		return domain.BrandProfile{}, fmt.Errorf("load profile: %w", err)
	}
	var stored domain.BrandProfile
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.BrandProfile{}, fmt.Errorf("decode profile: %w", err)
	}
	return domain.MergeOverDefaults(stored), nil
}

func (s *PostgresStore) Save(ctx context.Context, p domain.BrandProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertBrandProfile, s.key, raw); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
