package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"vaxledger/internal/center/models"
	id "vaxledger/pkg/domain"
	"vaxledger/pkg/platform/sentinel"
	txcontext "vaxledger/pkg/platform/tx"
)

// PostgresStore persists centers in PostgreSQL. IDs are NUMERIC(20) so the
// full uint64 range fits; they cross the driver boundary as decimal text.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Center) error {
	if c == nil {
		return fmt.Errorf("center is required")
	}
	query := `
		INSERT INTO centers (id, name, address, registered_at)
		VALUES ($1::numeric, $2, $3, $4)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		c.ID.String(),
		c.Name,
		c.Address.String(),
		c.RegisteredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("center %d: %w", c.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create center: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, centerID id.CenterID) (*models.Center, error) {
	query := `
		SELECT id::text, name, address, registered_at
		FROM centers
		WHERE id = $1::numeric
	`
	c, err := scanCenter(txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, centerID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find center by id: %w", err)
	}
	return c, nil
}

func scanCenter(row *sql.Row) (*models.Center, error) {
	var (
		rawID   string
		address string
		c       models.Center
	)
	if err := row.Scan(&rawID, &c.Name, &address, &c.RegisteredAt); err != nil {
		return nil, err
	}
	parsed, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode center id %q: %w", rawID, err)
	}
	c.ID = id.CenterID(parsed)
	c.Address = id.Address(address)
	c.Registered = true
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
