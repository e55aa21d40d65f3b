package qnarepo

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// PostgresQuestionRepository persists questions in Postgres.
type PostgresQuestionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresQuestionRepository constructs the repository.
func NewPostgresQuestionRepository(pool *pgxpool.Pool) *PostgresQuestionRepository {
	return &PostgresQuestionRepository{pool: pool}
}

func (r *PostgresQuestionRepository) Create(ctx context.Context, question qna.Question) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO questions (id, title, description, category, tags, asked_by, answer_ids, accepted_answer, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, question.ID, question.Title, question.Description, question.Category, question.Tags,
		question.AskedBy, question.Answers, question.AcceptedAnswer, question.Attachments, question.CreatedAt)
	return err
}

func (r *PostgresQuestionRepository) Find(ctx context.Context, filter qna.Filter) ([]qna.Question, error) {
	query := `
		SELECT id, title, description, category, tags, asked_by, answer_ids, accepted_answer, attachments, created_at
		FROM questions
		WHERE TRUE
	`
	args := []any{}
	argPos := 1
	if filter.Category != "" {
		query += ` AND category = $` + itoa(argPos)
		args = append(args, filter.Category)
		argPos++
	}
	if len(filter.Tags) > 0 {
		query += ` AND tags && $` + itoa(argPos)
		args = append(args, filter.Tags)
		argPos++
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []qna.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, question)
	}
	return out, rows.Err()
}

func (r *PostgresQuestionRepository) FindByID(ctx context.Context, id uuid.UUID) (qna.Question, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, description, category, tags, asked_by, answer_ids, accepted_answer, attachments, created_at
		FROM questions
		WHERE id = $1
		LIMIT 1
	`, id)
	question, err := scanQuestion(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return qna.Question{}, false, nil
		}
		return qna.Question{}, false, err
	}
	return question, true, nil
}

// AppendAnswer is a single-statement array append, so concurrent posts on
// the same question cannot lose entries.
func (r *PostgresQuestionRepository) AppendAnswer(ctx context.Context, questionID, answerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions
		SET answer_ids = array_append(answer_ids, $2)
		WHERE id = $1
	`, questionID, answerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return qna.ErrNotFound
	}
	return nil
}

func (r *PostgresQuestionRepository) AppendAttachment(ctx context.Context, questionID uuid.UUID, key string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions
		SET attachments = array_append(attachments, $2)
		WHERE id = $1
	`, questionID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return qna.ErrNotFound
	}
	return nil
}

// SetAcceptedAnswer is a compare-and-set: the guarded UPDATE only wins when
// no answer is accepted yet or the same answer is re-accepted.
func (r *PostgresQuestionRepository) SetAcceptedAnswer(ctx context.Context, questionID, answerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE questions
		SET accepted_answer = $2
		WHERE id = $1 AND (accepted_answer IS NULL OR accepted_answer = $2)
	`, questionID, answerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	_, found, err := r.FindByID(ctx, questionID)
	if err != nil {
		return err
	}
	if !found {
		return qna.ErrNotFound
	}
	return qna.ErrAnswerConflict
}

var _ qna.QuestionRepository = (*PostgresQuestionRepository)(nil)

// PostgresAnswerRepository persists answers in Postgres.
type PostgresAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAnswerRepository constructs the repository.
func NewPostgresAnswerRepository(pool *pgxpool.Pool) *PostgresAnswerRepository {
	return &PostgresAnswerRepository{pool: pool}
}

func (r *PostgresAnswerRepository) Create(ctx context.Context, answer qna.Answer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO answers (id, question_id, answer_text, answered_by, is_accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, answer.ID, answer.Question, answer.AnswerText, answer.AnsweredBy, answer.IsAccepted, answer.CreatedAt)
	return err
}

func (r *PostgresAnswerRepository) FindByID(ctx context.Context, id uuid.UUID) (qna.Answer, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, question_id, answer_text, answered_by, is_accepted, created_at
		FROM answers
		WHERE id = $1
		LIMIT 1
	`, id)
	answer, err := scanAnswer(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return qna.Answer{}, false, nil
		}
		return qna.Answer{}, false, err
	}
	return answer, true, nil
}

func (r *PostgresAnswerRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]qna.Answer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, question_id, answer_text, answered_by, is_accepted, created_at
		FROM answers
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]qna.Answer, len(ids))
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		byID[answer.ID] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// preserve the question's answer ordering
	out := make([]qna.Answer, 0, len(ids))
	for _, id := range ids {
		if answer, ok := byID[id]; ok {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (r *PostgresAnswerRepository) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE answers
		SET is_accepted = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return qna.ErrNotFound
	}
	return nil
}

var _ qna.AnswerRepository = (*PostgresAnswerRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (qna.Question, error) {
	var question qna.Question
	if err := row.Scan(&question.ID, &question.Title, &question.Description, &question.Category,
		&question.Tags, &question.AskedBy, &question.Answers, &question.AcceptedAnswer,
		&question.Attachments, &question.CreatedAt); err != nil {
		return qna.Question{}, err
	}
	return question, nil
}

func scanAnswer(row rowScanner) (qna.Answer, error) {
	var answer qna.Answer
	if err := row.Scan(&answer.ID, &answer.Question, &answer.AnswerText, &answer.AnsweredBy,
		&answer.IsAccepted, &answer.CreatedAt); err != nil {
		return qna.Answer{}, err
	}
	return answer, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
