// internal/psychometric/repository.go

package psychometric

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Repository stores answers and analyses
type Repository interface {
	// ListAnswers returns answers whose question still exists, in questionnaire order,
	// and the number of answers dropped because their question is gone
	ListAnswers(ctx context.Context, userID int64) (answers []Answer, orphaned int, err error)
	CountAnswers(ctx context.Context, userID int64) (int, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetAnalysis(ctx context.Context, userID int64) (*Analysis, error)
	GetAnalyses(ctx context.Context, userIDs []int64) (map[int64]*Analysis, error)
	SaveAnalysis(ctx context.Context, a *Analysis) error
	MarkNeedsReanalysis(ctx context.Context, userID int64) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListAnswers(ctx context.Context, userID int64) ([]Answer, int, error) {
	var answers []Answer
	query := `
		SELECT a.question_id, q.dimension, q.prompt, a.answer
		FROM psych_answers a
		INNER JOIN psych_questions q ON q.id = a.question_id
		WHERE a.user_id = $1
		ORDER BY q.position, q.id`
	if err := r.db.SelectContext(ctx, &answers, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM psych_answers WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count answers: %w", err)
	}
	return answers, total - len(answers), nil
}

func (r *postgresRepository) CountAnswers(ctx context.Context, userID int64) (int, error) {
	var n int
	query := `
		SELECT COUNT(*)
		FROM psych_answers a
		INNER JOIN psych_questions q ON q.id = a.question_id
		WHERE a.user_id = $1`
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

type analysisRow struct {
	UserID          int64          `db:"user_id"`
	Document        types.JSONText `db:"document"`
	NeedsReanalysis bool           `db:"needs_reanalysis"`
}

func (row analysisRow) decode() (*Analysis, error) {
	a, err := unmarshalDocument(row.Document)
	if err != nil {
		return nil, err
	}
	a.UserID = row.UserID
	a.Metadata.NeedsReanalysis = row.NeedsReanalysis
	return a, nil
}

func (r *postgresRepository) GetAnalysis(ctx context.Context, userID int64) (*Analysis, error) {
	var row analysisRow
	err := r.db.GetContext(ctx, &row,
		`SELECT user_id, document, needs_reanalysis FROM psychometric_analyses WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return row.decode()
}

func (r *postgresRepository) GetAnalyses(ctx context.Context, userIDs []int64) (map[int64]*Analysis, error) {
	var rows []analysisRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, document, needs_reanalysis FROM psychometric_analyses WHERE user_id = ANY($1)`,
		pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}
	out := make(map[int64]*Analysis, len(rows))
	for _, row := range rows {
		a, err := row.decode()
		if err != nil {
			return nil, err
		}
		out[a.UserID] = a
	}
	return out, nil
}

func (r *postgresRepository) SaveAnalysis(ctx context.Context, a *Analysis) error {
	doc, err := marshalDocument(a)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO psychometric_analyses (user_id, document, questions_analyzed, needs_reanalysis, last_analyzed_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			document = EXCLUDED.document,
			questions_analyzed = EXCLUDED.questions_analyzed,
			needs_reanalysis = FALSE,
			last_analyzed_at = EXCLUDED.last_analyzed_at,
			updated_at = NOW()`
	_, err = r.db.ExecContext(ctx, query, a.UserID, types.JSONText(doc), a.Metadata.QuestionsAnalyzed, a.Metadata.LastAnalyzedAt)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (r *postgresRepository) MarkNeedsReanalysis(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE psychometric_analyses SET needs_reanalysis = TRUE, updated_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("mark needs reanalysis: %w", err)
	}
	return nil
}
