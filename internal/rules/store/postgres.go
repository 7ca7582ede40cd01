package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vaxledger/internal/rules/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
)

// PostgresStore keeps one row per area; the accepted set is a JSONB array.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rule *models.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}
	vaccines, err := json.Marshal(rule.VaccineList())
	if err != nil {
		return fmt.Errorf("marshal vaccines: %w", err)
	}
	query := `
		INSERT INTO acceptance_rules (area, max_age_seconds, vaccines, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (area) DO UPDATE SET
			max_age_seconds = EXCLUDED.max_age_seconds,
			vaccines = EXCLUDED.vaccines,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`
	_, err = txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		rule.Area.String(),
		int64(rule.MaxAge/time.Second),
		vaccines,
		rule.UpdatedBy.String(),
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save rule: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByArea(ctx context.Context, area id.Area) (*models.Rule, error) {
	query := `
		SELECT area, max_age_seconds, vaccines, updated_by, updated_at
		FROM acceptance_rules
		WHERE area = $1
	`
	var (
		rawArea   string
		maxAge    int64
		vaccines  []byte
		updatedBy string
		rule      models.Rule
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, area.String()).
		Scan(&rawArea, &maxAge, &vaccines, &updatedBy, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find rule by area: %w", err)
	}

	var list []models.Vaccine
	if err := json.Unmarshal(vaccines, &list); err != nil {
		return nil, fmt.Errorf("unmarshal vaccines: %w", err)
	}
	rule.Area = id.Area(rawArea)
	if rule.MaxAge, err = models.MaxAgeFromSeconds(maxAge); err != nil {
		return nil, fmt.Errorf("find rule by area: %w", err)
	}
	rule.Vaccines = vaccineSet(list)
	rule.UpdatedBy = id.Address(updatedBy)
	return &rule, nil
}
