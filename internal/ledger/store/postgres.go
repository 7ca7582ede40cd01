package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"vaxledger/internal/ledger/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Record) error {
	if r == nil {
		return fmt.Errorf("record is required")
	}
	query := `
		INSERT INTO vaccinations (
			proof_token, center_id, vaccination_time, vaccine_code_type,
			vaccine_code, person_id, certified_by, certified_at
		) VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		r.ProofToken.String(),
		r.CenterID.String(),
		r.VaccinationTime.Unix(),
		r.Vaccine.CodeType,
		r.Vaccine.Code,
		r.PersonID.String(),
		r.CertifiedBy.String(),
		r.CertifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("proof token %s: %w", r.ProofToken, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create vaccination record: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByToken(ctx context.Context, token id.ProofToken) (*models.Record, error) {
	query := `
		SELECT proof_token, center_id::text, vaccination_time, vaccine_code_type,
			vaccine_code, person_id, certified_by, certified_at
		FROM vaccinations
		WHERE proof_token = $1
	`
	var (
		rawToken    string
		rawCenterID string
		vaccinated  int64
		personID    string
		certifiedBy string
		r           models.Record
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, token.String()).Scan(
		&rawToken, &rawCenterID, &vaccinated, &r.Vaccine.CodeType,
		&r.Vaccine.Code, &personID, &certifiedBy, &r.CertifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find vaccination record: %w", err)
	}

	centerID, err := strconv.ParseUint(rawCenterID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode center id %q: %w", rawCenterID, err)
	}
	r.ProofToken = id.ProofToken(rawToken)
	r.Registered = true
	r.CenterID = id.CenterID(centerID)
	r.VaccinationTime = time.Unix(vaccinated, 0).UTC()
	r.PersonID = id.PersonID(personID)
	r.CertifiedBy = id.Address(certifiedBy)
	return &r, nil
}
