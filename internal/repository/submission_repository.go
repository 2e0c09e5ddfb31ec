package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edulegit-bridge/internal/models"
)

// ErrDuplicateSubmission signals that another request already created the
// record for the same submission_ref (UNIQUE constraint hit). Callers should
// re-read the winner row.
var ErrDuplicateSubmission = errors.New("submission record already exists")

const uniqueViolation = "23505"

const submissionColumns = `id, submission_ref, assignment_ref, title, content, document_id, task_id,
task_user_id, user_ref, user_key, base_url, view_url, auth_key, score, plagiarism_score,
ai_rate, ai_probability, status, error, created_at, updated_at`

// SubmissionRepository persists submission sync records.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// GetByID fetches a record by local primary key. Not-found yields (nil, nil).
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM edulegit_submissions WHERE id = $1`, submissionColumns)
	return r.getOne(ctx, query, id)
}

// GetBySubmissionRef fetches a record by host submission reference.
func (r *SubmissionRepository) GetBySubmissionRef(ctx context.Context, ref int64) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM edulegit_submissions WHERE submission_ref = $1`, submissionColumns)
	return r.getOne(ctx, query, ref)
}

// ListByAssignmentRef returns every record of an assignment ordered by id.
func (r *SubmissionRepository) ListByAssignmentRef(ctx context.Context, ref int64) ([]models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM edulegit_submissions WHERE assignment_ref = $1 ORDER BY id ASC`, submissionColumns)
	var records []models.Submission
	if err := r.db.SelectContext(ctx, &records, query, ref); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return records, nil
}

// Insert persists a new record, defaulting timestamps when unset, and
// returns the assigned id. A submission_ref collision yields
// ErrDuplicateSubmission.
func (r *SubmissionRepository) Insert(ctx context.Context, record *models.Submission) (int64, error) {
	now := time.Now().Unix()
	if record.CreatedAt == 0 {
		record.CreatedAt = now
	}
	if record.UpdatedAt == 0 {
		record.UpdatedAt = now
	}

	const query = `INSERT INTO edulegit_submissions (submission_ref, assignment_ref, title, content,
document_id, task_id, task_user_id, user_ref, user_key, base_url, view_url, auth_key,
score, plagiarism_score, ai_rate, ai_probability, status, error, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
RETURNING id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		record.SubmissionRef, record.AssignmentRef, record.Title, record.Content,
		record.DocumentID, record.TaskID, record.TaskUserID, record.UserRef, record.UserKey,
		record.BaseURL, record.ViewURL, record.AuthKey,
		record.Score, record.PlagiarismScore, record.AIRate, record.AIProbability,
		record.Status, record.Error, record.CreatedAt, record.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, ErrDuplicateSubmission
		}
		return 0, fmt.Errorf("insert submission: %w", err)
	}

	record.ID = id
	return id, nil
}

// Update persists every mutable field and refreshes updated_at.
func (r *SubmissionRepository) Update(ctx context.Context, record *models.Submission) error {
	record.UpdatedAt = time.Now().Unix()

	const query = `UPDATE edulegit_submissions SET title = $1, content = $2, document_id = $3,
task_id = $4, task_user_id = $5, user_ref = $6, user_key = $7, base_url = $8, view_url = $9,
auth_key = $10, score = $11, plagiarism_score = $12, ai_rate = $13, ai_probability = $14,
status = $15, error = $16, updated_at = $17
WHERE id = $18`

	result, err := r.db.ExecContext(ctx, query,
		record.Title, record.Content, record.DocumentID,
		record.TaskID, record.TaskUserID, record.UserRef, record.UserKey,
		record.BaseURL, record.ViewURL, record.AuthKey,
		record.Score, record.PlagiarismScore, record.AIRate, record.AIProbability,
		record.Status, record.Error, record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBySubmissionRef removes the record for a deleted host submission.
func (r *SubmissionRepository) DeleteBySubmissionRef(ctx context.Context, ref int64) (bool, error) {
	return r.delete(ctx, `DELETE FROM edulegit_submissions WHERE submission_ref = $1`, ref)
}

// DeleteByAssignmentRef removes every record of a deleted assignment.
func (r *SubmissionRepository) DeleteByAssignmentRef(ctx context.Context, ref int64) (bool, error) {
	return r.delete(ctx, `DELETE FROM edulegit_submissions WHERE assignment_ref = $1`, ref)
}

// GetAssignmentContext loads the assignment/course join used to build the
// registration payload. Not-found yields (nil, nil).
func (r *SubmissionRepository) GetAssignmentContext(ctx context.Context, assignmentRef int64) (*models.AssignmentContext, error) {
	const query = `SELECT a.id, a.course_ref, a.name, a.intro, a.activity,
a.allow_submissions_from, a.due_date, a.grading_due_date,
c.short_name AS course_short_name, c.full_name AS course_full_name, c.summary AS course_summary,
c.start_date AS course_start_date, c.end_date AS course_end_date
FROM assignments a
JOIN courses c ON c.id = a.course_ref
WHERE a.id = $1`

	var info models.AssignmentContext
	if err := r.db.GetContext(ctx, &info, query, assignmentRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get assignment context: %w", err)
	}
	return &info, nil
}

func (r *SubmissionRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Submission, error) {
	var record models.Submission
	if err := r.db.GetContext(ctx, &record, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &record, nil
}

func (r *SubmissionRepository) delete(ctx context.Context, query string, ref int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, ref)
	if err != nil {
		return false, fmt.Errorf("delete submissions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
