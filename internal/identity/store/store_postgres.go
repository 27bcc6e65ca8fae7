package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// PostgresAccountStore persists accounts in PostgreSQL.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) Create(ctx context.Context, account *models.Account) error {
	const q = `
		INSERT INTO accounts (id, email, name, nik, category, domicile, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, q,
		account.ID.String(), account.Email, account.Name, account.NIK,
		account.Category.String(), account.Domicile, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
		SELECT id, email, name, nik, category, domicile, created_at
		FROM accounts WHERE email = lower($1)`
	return scanAccount(s.db.QueryRowContext(ctx, q, email))
}

func (s *PostgresAccountStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	const q = `
		SELECT id, email, name, nik, category, domicile, created_at
		FROM accounts WHERE id = $1`
	return scanAccount(s.db.QueryRowContext(ctx, q, accountID.String()))
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		account     models.Account
		rawID       string
		rawCategory string
	)
	err := row.Scan(&rawID, &account.Email, &account.Name, &account.NIK,
		&rawCategory, &account.Domicile, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	accountID, err := id.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored account id invalid: %w", err)
	}
	account.ID = accountID
	account.Category = id.MemberCategory(rawCategory)
	return &account, nil
}
