package qnarepo

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// MemoryQuestionRepository keeps questions in process memory for tests/dev.
type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions map[uuid.UUID]qna.Question
}

// NewMemoryQuestionRepository constructs the repository.
func NewMemoryQuestionRepository() *MemoryQuestionRepository {
	return &MemoryQuestionRepository{questions: make(map[uuid.UUID]qna.Question)}
}

func (r *MemoryQuestionRepository) Create(_ context.Context, question qna.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[question.ID] = cloneQuestion(question)
	return nil
}

func (r *MemoryQuestionRepository) Find(_ context.Context, filter qna.Filter) ([]qna.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []qna.Question
	for _, question := range r.questions {
		if !matches(question, filter) {
			continue
		}
		out = append(out, cloneQuestion(question))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryQuestionRepository) FindByID(_ context.Context, id uuid.UUID) (qna.Question, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	question, ok := r.questions[id]
	if !ok {
		return qna.Question{}, false, nil
	}
	return cloneQuestion(question), true, nil
}

func (r *MemoryQuestionRepository) AppendAnswer(_ context.Context, questionID, answerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[questionID]
	if !ok {
		return qna.ErrNotFound
	}
	question.Answers = append(question.Answers, answerID)
	r.questions[questionID] = question
	return nil
}

func (r *MemoryQuestionRepository) AppendAttachment(_ context.Context, questionID uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[questionID]
	if !ok {
		return qna.ErrNotFound
	}
	question.Attachments = append(question.Attachments, key)
	r.questions[questionID] = question
	return nil
}

func (r *MemoryQuestionRepository) SetAcceptedAnswer(_ context.Context, questionID, answerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[questionID]
	if !ok {
		return qna.ErrNotFound
	}
	if question.AcceptedAnswer != nil {
		if *question.AcceptedAnswer == answerID {
			return nil
		}
		return qna.ErrAnswerConflict
	}
	accepted := answerID
	question.AcceptedAnswer = &accepted
	r.questions[questionID] = question
	return nil
}

var _ qna.QuestionRepository = (*MemoryQuestionRepository)(nil)

// MemoryAnswerRepository keeps answers in process memory for tests/dev.
type MemoryAnswerRepository struct {
	mu      sync.RWMutex
	answers map[uuid.UUID]qna.Answer
}

// NewMemoryAnswerRepository constructs the repository.
func NewMemoryAnswerRepository() *MemoryAnswerRepository {
	return &MemoryAnswerRepository{answers: make(map[uuid.UUID]qna.Answer)}
}

func (r *MemoryAnswerRepository) Create(_ context.Context, answer qna.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers[answer.ID] = answer
	return nil
}

func (r *MemoryAnswerRepository) FindByID(_ context.Context, id uuid.UUID) (qna.Answer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	answer, ok := r.answers[id]
	return answer, ok, nil
}

func (r *MemoryAnswerRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]qna.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]qna.Answer, 0, len(ids))
	for _, id := range ids {
		if answer, ok := r.answers[id]; ok {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (r *MemoryAnswerRepository) MarkAccepted(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	answer, ok := r.answers[id]
	if !ok {
		return qna.ErrNotFound
	}
	answer.IsAccepted = true
	r.answers[id] = answer
	return nil
}

var _ qna.AnswerRepository = (*MemoryAnswerRepository)(nil)

func matches(question qna.Question, filter qna.Filter) bool {
	if filter.Category != "" && question.Category != filter.Category {
		return false
	}
	if len(filter.Tags) > 0 {
		found := false
		for _, tag := range question.Tags {
			for _, want := range filter.Tags {
				if tag == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cloneQuestion(question qna.Question) qna.Question {
	out := question
	out.Tags = append([]string(nil), question.Tags...)
	out.Answers = append([]uuid.UUID(nil), question.Answers...)
	out.Attachments = append([]string(nil), question.Attachments...)
	if question.AcceptedAnswer != nil {
		accepted := *question.AcceptedAnswer
		out.AcceptedAnswer = &accepted
	}
	return out
}
