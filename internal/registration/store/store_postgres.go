package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"tekfest/internal/registration/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
	"tekfest/pkg/requestcontext"
)

// PostgresTeamStore persists teams across two tables: a teams row per
// aggregate and one team_members row per occupied slot. Event-wide NIK
// uniqueness is enforced by a unique index on (event_id, nik).
type PostgresTeamStore struct {
	db *sql.DB
}

func NewPostgresTeamStore(db *sql.DB) *PostgresTeamStore {
	return &PostgresTeamStore{db: db}
}

func (s *PostgresTeamStore) Submit(ctx context.Context, team *models.Team) (*models.Team, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin team submission: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	links, err := json.Marshal(team.TwibbonLinks)
	if err != nil {
		return nil, false, fmt.Errorf("encode twibbon links: %w", err)
	}

	submittedAt := team.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = requestcontext.Now(ctx).UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO teams (id, event_id, name, code, leader_account_id, status, twibbon_links, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id, leader_account_id) DO NOTHING`,
		team.ID.String(), team.EventID.String(), team.Name, team.Code,
		team.LeaderAccountID.String(), id.TeamSubmitted.String(), links,
		team.CreatedAt, submittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, false, sentinel.ErrAlreadyExists
		}
		return nil, false, fmt.Errorf("insert team: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("read insert result: %w", err)
	}
	if rows == 0 {
		// A team for this (event, leader) already exists: resubmission.
		existing, err := s.FindByLeader(ctx, team.EventID, team.LeaderAccountID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	for _, member := range team.AllMembers() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO team_members (team_id, event_id, slot, account_id, name, email, nik, category, domicile, payment_status, payment_initiated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			team.ID.String(), team.EventID.String(), member.Slot,
			member.AccountID.String(), member.Name, member.Email, member.NIK,
			member.Category.String(), member.Domicile,
			member.PaymentStatus.String(), member.PaymentInitiated,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, false, sentinel.ErrAlreadyExists
			}
			return nil, false, fmt.Errorf("insert team member %d: %w", member.Slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit team submission: %w", err)
	}

	stored := copyTeam(team)
	stored.Status = id.TeamSubmitted
	stored.SubmittedAt = submittedAt
	return stored, true, nil
}

func (s *PostgresTeamStore) FindByID(ctx context.Context, teamID id.TeamID) (*models.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, name, code, leader_account_id, status, twibbon_links, created_at, submitted_at
		FROM teams WHERE id = $1`,
		teamID.String(),
	)
	return s.scanTeam(ctx, row)
}

func (s *PostgresTeamStore) FindByLeader(ctx context.Context, eventID id.EventID, leaderID id.AccountID) (*models.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, name, code, leader_account_id, status, twibbon_links, created_at, submitted_at
		FROM teams WHERE event_id = $1 AND leader_account_id = $2`,
		eventID.String(), leaderID.String(),
	)
	return s.scanTeam(ctx, row)
}

func (s *PostgresTeamStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name, code, leader_account_id, status, twibbon_links, created_at, submitted_at
		FROM teams WHERE event_id = $1 ORDER BY submitted_at`,
		eventID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		team, err := s.scanTeamRows(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (s *PostgresTeamStore) IsMember(ctx context.Context, eventID id.EventID, accountID id.AccountID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM team_members
			WHERE event_id = $1 AND account_id = $2
		)`,
		eventID.String(), accountID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

func (s *PostgresTeamStore) NikInUse(ctx context.Context, eventID id.EventID, nik string, excludeTeamID id.TeamID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM team_members
			WHERE event_id = $1 AND nik = $2 AND team_id <> $3
		)`,
		eventID.String(), nik, excludeTeamID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check nik uniqueness: %w", err)
	}
	return exists, nil
}

func (s *PostgresTeamStore) UpdateMemberPayment(ctx context.Context, teamID id.TeamID, slot int, status id.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE team_members SET payment_status = $1
		WHERE team_id = $2 AND slot = $3`,
		status.String(), teamID.String(), slot,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update result: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresTeamStore) scanTeam(ctx context.Context, row *sql.Row) (*models.Team, error) {
	team, err := s.scanTeamRows(ctx, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return team, err
}

func (s *PostgresTeamStore) scanTeamRows(ctx context.Context, row rowScanner) (*models.Team, error) {
	var (
		team                                 models.Team
		teamID, eventID, leaderID, rawStatus string
		links                                []byte
	)
	err := row.Scan(&teamID, &eventID, &team.Name, &team.Code, &leaderID,
		&rawStatus, &links, &team.CreatedAt, &team.SubmittedAt)
	if err != nil {
		return nil, err
	}

	if team.ID, err = id.ParseTeamID(teamID); err != nil {
		return nil, fmt.Errorf("parse team id: %w", err)
	}
	if team.EventID, err = id.ParseEventID(eventID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if team.LeaderAccountID, err = id.ParseAccountID(leaderID); err != nil {
		return nil, fmt.Errorf("parse leader account id: %w", err)
	}
	if team.Status, err = id.ParseTeamStatus(rawStatus); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(links, &team.TwibbonLinks); err != nil {
		return nil, fmt.Errorf("decode twibbon links: %w", err)
	}

	if err := s.loadMembers(ctx, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *PostgresTeamStore) loadMembers(ctx context.Context, team *models.Team) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, account_id, name, email, nik, category, domicile, payment_status, payment_initiated
		FROM team_members WHERE team_id = $1 ORDER BY slot`,
		team.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("load team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			member                         models.Member
			accountID, rawCategory, rawPay string
		)
		err := rows.Scan(&member.Slot, &accountID, &member.Name, &member.Email,
			&member.NIK, &rawCategory, &member.Domicile, &rawPay, &member.PaymentInitiated)
		if err != nil {
			return fmt.Errorf("scan team member: %w", err)
		}
		if member.AccountID, err = id.ParseAccountID(accountID); err != nil {
			return fmt.Errorf("parse member account id: %w", err)
		}
		if member.Category, err = id.ParseMemberCategory(rawCategory); err != nil {
			return err
		}
		if member.PaymentStatus, err = id.ParsePaymentStatus(rawPay); err != nil {
			return err
		}

		target, err := team.MemberBySlot(member.Slot)
		if err != nil {
			return err
		}
		*target = member
	}
	return rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
