package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"tekfest/internal/event/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// PostgresEventStore persists events in PostgreSQL.
type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) CreateIfNameAvailable(ctx context.Context, event *models.Event) error {
	const q = `
		INSERT INTO events (id, name, slug, rubric_version, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, q,
		event.ID.String(), event.Name, event.Slug, event.RubricVersion,
		event.StartsAt, event.EndsAt, event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresEventStore) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	const q = `
		SELECT id, name, slug, rubric_version, starts_at, ends_at, created_at
		FROM events WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, eventID.String()))
}

func (s *PostgresEventStore) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	const q = `
		SELECT id, name, slug, rubric_version, starts_at, ends_at, created_at
		FROM events WHERE slug = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, slug))
}

func (s *PostgresEventStore) List(ctx context.Context) ([]*models.Event, error) {
	const q = `
		SELECT id, name, slug, rubric_version, starts_at, ends_at, created_at
		FROM events ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresEventStore) scanOne(row *sql.Row) (*models.Event, error) {
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event   models.Event
		rawID   string
	)
	if err := row.Scan(&rawID, &event.Name, &event.Slug, &event.RubricVersion,
		&event.StartsAt, &event.EndsAt, &event.CreatedAt); err != nil {
		return nil, err
	}
	eventID, err := id.ParseEventID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored event id invalid: %w", err)
	}
	event.ID = eventID
	return &event, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
