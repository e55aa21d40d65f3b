package qna

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by store mutations that reference a missing record.
var ErrNotFound = errors.New("record not found")

// ErrAnswerConflict is returned by SetAcceptedAnswer when a different answer
// has already been accepted on the question.
var ErrAnswerConflict = errors.New("another answer is already accepted")

// QuestionRepository owns question records.
//
// AppendAnswer and AppendAttachment must be atomic per question so that
// concurrent appends cannot lose entries. SetAcceptedAnswer is a
// compare-and-set on the question's accepted state: it succeeds when no
// answer is accepted yet, succeeds as a no-op when answerID is already the
// accepted one, and fails with ErrAnswerConflict otherwise.
type QuestionRepository interface {
	Create(ctx context.Context, question Question) error
	Find(ctx context.Context, filter Filter) ([]Question, error)
	FindByID(ctx context.Context, id uuid.UUID) (Question, bool, error)
	AppendAnswer(ctx context.Context, questionID, answerID uuid.UUID) error
	AppendAttachment(ctx context.Context, questionID uuid.UUID, key string) error
	SetAcceptedAnswer(ctx context.Context, questionID, answerID uuid.UUID) error
}

// AnswerRepository owns answer records. MarkAccepted is idempotent at the
// storage layer; the once-per-question policy lives in the service.
type AnswerRepository interface {
	Create(ctx context.Context, answer Answer) error
	FindByID(ctx context.Context, id uuid.UUID) (Answer, bool, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Answer, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) error
}
