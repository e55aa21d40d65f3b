package qnarepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

const (
	questionPrefix = "question:"
	answerPrefix   = "answer:"
)

// PebbleStore is the embedded document-store backend. Records are JSON
// documents keyed under type prefixes. A single writer mutex serializes
// the read-modify-write mutations (append, compare-and-set) so concurrent
// requests cannot lose updates.
type PebbleStore struct {
	db *pebble.DB
	mu sync.Mutex
}

// OpenPebble opens (or creates) the database at path.
func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close releases the database handle.
func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func (s *PebbleStore) getDoc(key string, out any) (bool, error) {
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	defer closer.Close()
	if err := json.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("decode document %s: %w", key, err)
	}
	return true, nil
}

func (s *PebbleStore) putDoc(key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", key, err)
	}
	return s.db.Set([]byte(key), data, pebble.Sync)
}

// PebbleQuestionRepository stores question documents under question:<id>.
type PebbleQuestionRepository struct {
	store *PebbleStore
}

// NewPebbleQuestionRepository constructs the repository.
func NewPebbleQuestionRepository(store *PebbleStore) *PebbleQuestionRepository {
	return &PebbleQuestionRepository{store: store}
}

func questionKey(id uuid.UUID) string { return questionPrefix + id.String() }
func answerKey(id uuid.UUID) string   { return answerPrefix + id.String() }

func (r *PebbleQuestionRepository) Create(_ context.Context, question qna.Question) error {
	return r.store.putDoc(questionKey(question.ID), question)
}

func (r *PebbleQuestionRepository) Find(_ context.Context, filter qna.Filter) ([]qna.Question, error) {
	iter, err := r.store.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	prefix := []byte(questionPrefix)
	var out []qna.Question
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var question qna.Question
		if err := json.Unmarshal(iter.Value(), &question); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", iter.Key(), err)
		}
		if matches(question, filter) {
			out = append(out, question)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PebbleQuestionRepository) FindByID(_ context.Context, id uuid.UUID) (qna.Question, bool, error) {
	var question qna.Question
	found, err := r.store.getDoc(questionKey(id), &question)
	if err != nil || !found {
		return qna.Question{}, false, err
	}
	return question, true, nil
}

func (r *PebbleQuestionRepository) AppendAnswer(_ context.Context, questionID, answerID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var question qna.Question
	found, err := r.store.getDoc(questionKey(questionID), &question)
	if err != nil {
		return err
	}
	if !found {
		return qna.ErrNotFound
	}
	question.Answers = append(question.Answers, answerID)
	return r.store.putDoc(questionKey(questionID), question)
}

func (r *PebbleQuestionRepository) AppendAttachment(_ context.Context, questionID uuid.UUID, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var question qna.Question
	found, err := r.store.getDoc(questionKey(questionID), &question)
	if err != nil {
		return err
	}
	if !found {
		return qna.ErrNotFound
	}
	question.Attachments = append(question.Attachments, key)
	return r.store.putDoc(questionKey(questionID), question)
}

func (r *PebbleQuestionRepository) SetAcceptedAnswer(_ context.Context, questionID, answerID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var question qna.Question
	found, err := r.store.getDoc(questionKey(questionID), &question)
	if err != nil {
		return err
	}
	if !found {
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
	return r.store.putDoc(questionKey(questionID), question)
}

var _ qna.QuestionRepository = (*PebbleQuestionRepository)(nil)

// PebbleAnswerRepository stores answer documents under answer:<id>.
type PebbleAnswerRepository struct {
	store *PebbleStore
}

// NewPebbleAnswerRepository constructs the repository.
func NewPebbleAnswerRepository(store *PebbleStore) *PebbleAnswerRepository {
	return &PebbleAnswerRepository{store: store}
}

func (r *PebbleAnswerRepository) Create(_ context.Context, answer qna.Answer) error {
	return r.store.putDoc(answerKey(answer.ID), answer)
}

func (r *PebbleAnswerRepository) FindByID(_ context.Context, id uuid.UUID) (qna.Answer, bool, error) {
	var answer qna.Answer
	found, err := r.store.getDoc(answerKey(id), &answer)
	if err != nil || !found {
		return qna.Answer{}, false, err
	}
	return answer, true, nil
}

func (r *PebbleAnswerRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]qna.Answer, error) {
	out := make([]qna.Answer, 0, len(ids))
	for _, id := range ids {
		var answer qna.Answer
		found, err := r.store.getDoc(answerKey(id), &answer)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, answer)
		}
	}
	return out, nil
}

func (r *PebbleAnswerRepository) MarkAccepted(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var answer qna.Answer
	found, err := r.store.getDoc(answerKey(id), &answer)
	if err != nil {
		return err
	}
	if !found {
		return qna.ErrNotFound
	}
	answer.IsAccepted = true
	return r.store.putDoc(answerKey(id), answer)
}

var _ qna.AnswerRepository = (*PebbleAnswerRepository)(nil)
