package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"tekfest/internal/judging/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// PostgresSubmissionStore persists submissions in PostgreSQL. Resource links
// and criterion scores are stored as JSONB.
type PostgresSubmissionStore struct {
	db *sql.DB
}

func NewPostgresSubmissionStore(db *sql.DB) *PostgresSubmissionStore {
	return &PostgresSubmissionStore{db: db}
}

func (s *PostgresSubmissionStore) Create(ctx context.Context, submission *models.Submission) error {
	links, err := json.Marshal(submission.ResourceLinks)
	if err != nil {
		return fmt.Errorf("marshal resource links: %w", err)
	}
	const q = `
		INSERT INTO submissions (id, team_id, event_id, team_name, title, description, resource_links, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.db.ExecContext(ctx, q,
		submission.ID.String(), submission.TeamID.String(), submission.EventID.String(),
		submission.TeamName, submission.Title, submission.Description, links, submission.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresSubmissionStore) FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	const q = `
		SELECT id, team_id, event_id, team_name, title, description, resource_links, created_at
		FROM submissions WHERE id = $1`
	submission, err := scanSubmission(s.db.QueryRowContext(ctx, q, submissionID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return submission, nil
}

func (s *PostgresSubmissionStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Submission, error) {
	const q = `
		SELECT id, team_id, event_id, team_name, title, description, resource_links, created_at
		FROM submissions WHERE event_id = $1 ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, eventID.String())
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, submission)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		submission models.Submission
		rawID      string
		rawTeam    string
		rawEvent   string
		rawLinks   []byte
	)
	if err := row.Scan(&rawID, &rawTeam, &rawEvent, &submission.TeamName,
		&submission.Title, &submission.Description, &rawLinks, &submission.CreatedAt); err != nil {
		return nil, err
	}
	submissionID, err := id.ParseSubmissionID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored submission id invalid: %w", err)
	}
	teamID, err := id.ParseTeamID(rawTeam)
	if err != nil {
		return nil, fmt.Errorf("stored team id invalid: %w", err)
	}
	eventID, err := id.ParseEventID(rawEvent)
	if err != nil {
		return nil, fmt.Errorf("stored event id invalid: %w", err)
	}
	if err := json.Unmarshal(rawLinks, &submission.ResourceLinks); err != nil {
		return nil, fmt.Errorf("unmarshal resource links: %w", err)
	}
	submission.ID = submissionID
	submission.TeamID = teamID
	submission.EventID = eventID
	return &submission, nil
}

// PostgresEvaluationStore persists evaluations, one per (submission, judge).
type PostgresEvaluationStore struct {
	db *sql.DB
}

func NewPostgresEvaluationStore(db *sql.DB) *PostgresEvaluationStore {
	return &PostgresEvaluationStore{db: db}
}

func (s *PostgresEvaluationStore) Append(ctx context.Context, evaluation *models.Evaluation) error {
	scores, err := json.Marshal(evaluation.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	const q = `
		INSERT INTO evaluations (id, submission_id, judge_id, scores, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.db.ExecContext(ctx, q,
		evaluation.ID.String(), evaluation.SubmissionID.String(), evaluation.JudgeID.String(),
		scores, evaluation.Comment, evaluation.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *PostgresEvaluationStore) ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]models.Evaluation, error) {
	const q = `
		SELECT id, submission_id, judge_id, scores, comment, created_at
		FROM evaluations WHERE submission_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q, submissionID.String())
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		var (
			evaluation models.Evaluation
			rawID      string
			rawSubm    string
			rawJudge   string
			rawScores  []byte
		)
		if err := rows.Scan(&rawID, &rawSubm, &rawJudge, &rawScores,
			&evaluation.Comment, &evaluation.CreatedAt); err != nil {
			return nil, err
		}
		evaluationID, err := id.ParseEvaluationID(rawID)
		if err != nil {
			return nil, fmt.Errorf("stored evaluation id invalid: %w", err)
		}
		submID, err := id.ParseSubmissionID(rawSubm)
		if err != nil {
			return nil, fmt.Errorf("stored submission id invalid: %w", err)
		}
		judgeID, err := id.ParseJudgeID(rawJudge)
		if err != nil {
			return nil, fmt.Errorf("stored judge id invalid: %w", err)
		}
		if err := json.Unmarshal(rawScores, &evaluation.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
		evaluation.ID = evaluationID
		evaluation.SubmissionID = submID
		evaluation.JudgeID = judgeID
		out = append(out, evaluation)
	}
	return out, rows.Err()
}

// PostgresWinnerStore persists winner assignments with a primary key on
// (event_id, category), which makes exclusivity a database invariant.
type PostgresWinnerStore struct {
	db *sql.DB
}

func NewPostgresWinnerStore(db *sql.DB) *PostgresWinnerStore {
	return &PostgresWinnerStore{db: db}
}

func (s *PostgresWinnerStore) Find(ctx context.Context, eventID id.EventID, category id.WinnerCategory) (*models.WinnerAssignment, error) {
	const q = `
		SELECT event_id, category, submission_id, assigned_by, assigned_at
		FROM winner_assignments WHERE event_id = $1 AND category = $2`
	assignment, err := scanWinner(s.db.QueryRowContext(ctx, q, eventID.String(), category.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *PostgresWinnerStore) ListByEvent(ctx context.Context, eventID id.EventID) ([]models.WinnerAssignment, error) {
	const q = `
		SELECT event_id, category, submission_id, assigned_by, assigned_at
		FROM winner_assignments WHERE event_id = $1 ORDER BY category`
	rows, err := s.db.QueryContext(ctx, q, eventID.String())
	if err != nil {
		return nil, fmt.Errorf("list winner assignments: %w", err)
	}
	defer rows.Close()

	var out []models.WinnerAssignment
	for rows.Next() {
		assignment, err := scanWinner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *assignment)
	}
	return out, rows.Err()
}

// CompareAndSwap runs as a single statement per branch so the exclusivity
// invariant holds without a read-then-write window.
func (s *PostgresWinnerStore) CompareAndSwap(ctx context.Context, expected *id.SubmissionID, assignment models.WinnerAssignment) error {
	var (
		res sql.Result
		err error
	)
	if expected == nil {
		const q = `
			INSERT INTO winner_assignments (event_id, category, submission_id, assigned_by, assigned_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id, category) DO NOTHING`
		res, err = s.db.ExecContext(ctx, q,
			assignment.EventID.String(), assignment.Category.String(),
			assignment.SubmissionID.String(), assignment.AssignedBy.String(), assignment.AssignedAt,
		)
	} else {
		const q = `
			UPDATE winner_assignments
			SET submission_id = $3, assigned_by = $4, assigned_at = $5
			WHERE event_id = $1 AND category = $2 AND submission_id = $6`
		res, err = s.db.ExecContext(ctx, q,
			assignment.EventID.String(), assignment.Category.String(),
			assignment.SubmissionID.String(), assignment.AssignedBy.String(), assignment.AssignedAt,
			expected.String(),
		)
	}
	if err != nil {
		return fmt.Errorf("swap winner assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("swap winner assignment: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresWinnerStore) Clear(ctx context.Context, eventID id.EventID, category id.WinnerCategory, submissionID id.SubmissionID) (bool, error) {
	const q = `
		DELETE FROM winner_assignments
		WHERE event_id = $1 AND category = $2 AND submission_id = $3`
	res, err := s.db.ExecContext(ctx, q, eventID.String(), category.String(), submissionID.String())
	if err != nil {
		return false, fmt.Errorf("clear winner assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear winner assignment: %w", err)
	}
	return affected > 0, nil
}

func scanWinner(row rowScanner) (*models.WinnerAssignment, error) {
	var (
		assignment  models.WinnerAssignment
		rawEvent    string
		rawCategory string
		rawSubm     string
		rawActor    string
	)
	if err := row.Scan(&rawEvent, &rawCategory, &rawSubm, &rawActor, &assignment.AssignedAt); err != nil {
		return nil, err
	}
	eventID, err := id.ParseEventID(rawEvent)
	if err != nil {
		return nil, fmt.Errorf("stored event id invalid: %w", err)
	}
	category, err := id.ParseWinnerCategory(rawCategory)
	if err != nil {
		return nil, fmt.Errorf("stored winner category invalid: %w", err)
	}
	submissionID, err := id.ParseSubmissionID(rawSubm)
	if err != nil {
		return nil, fmt.Errorf("stored submission id invalid: %w", err)
	}
	actorID, err := id.ParseAccountID(rawActor)
	if err != nil {
		return nil, fmt.Errorf("stored assigned_by invalid: %w", err)
	}
	assignment.EventID = eventID
	assignment.Category = category
	assignment.SubmissionID = submissionID
	assignment.AssignedBy = actorID
	return &assignment, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
