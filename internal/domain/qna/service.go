package qna

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/prepnest/prepnest/pkg/errors"
)

// Config drives service level limits.
type Config struct {
	RelatedLimit       int
	MaxAttachmentBytes int64
}

// Service exposes the question/answer workflows.
type Service interface {
	CreateQuestion(ctx context.Context, askerID int64, in CreateQuestionInput) (QuestionView, error)
	ListQuestions(ctx context.Context, filter Filter) ([]QuestionView, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (QuestionDetail, error)
	PostAnswer(ctx context.Context, questionID uuid.UUID, answererID int64, in PostAnswerInput) (AnswerView, error)
	AcceptAnswer(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (AnswerView, error)
	AttachFile(ctx context.Context, questionID uuid.UUID, callerID int64, upload AttachmentUpload) (Attachment, error)
	RelatedQuestions(ctx context.Context, questionID uuid.UUID) ([]QuestionView, error)
}

type service struct {
	cfg       Config
	questions QuestionRepository
	answers   AnswerRepository
	profiles  ProfileResolver
	storage   ObjectStorage
	embedder  Embedder
	related   RelatedIndex
	logger    *slog.Logger
}

// NewService wires up the Q&A domain.
func NewService(cfg Config, questions QuestionRepository, answers AnswerRepository, profiles ProfileResolver, storage ObjectStorage, embedder Embedder, related RelatedIndex, logger *slog.Logger) Service {
	if cfg.RelatedLimit <= 0 {
		cfg.RelatedLimit = 5
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = 8 << 20
	}
	return &service{
		cfg:       cfg,
		questions: questions,
		answers:   answers,
		profiles:  profiles,
		storage:   storage,
		embedder:  embedder,
		related:   related,
		logger:    logger.With("component", "qna.service"),
	}
}

func (s *service) CreateQuestion(ctx context.Context, askerID int64, in CreateQuestionInput) (QuestionView, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" || description == "" {
		return QuestionView{}, apperrors.Wrap("invalid_input", "title and description are required", nil)
	}

	question := Question{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Category:    strings.TrimSpace(in.Category),
		Tags:        normalizeTags(in.Tags),
		AskedBy:     askerID,
		Answers:     []uuid.UUID{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return QuestionView{}, apperrors.Wrap("qna_error", "failed to create question", err)
	}

	s.indexQuestion(ctx, question)

	memo := map[int64]*Profile{}
	return s.toView(ctx, question, memo), nil
}

func (s *service) ListQuestions(ctx context.Context, filter Filter) ([]QuestionView, error) {
	questions, err := s.questions.Find(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("qna_error", "failed to list questions", err)
	}
	memo := map[int64]*Profile{}
	views := make([]QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, s.toView(ctx, question, memo))
	}
	return views, nil
}

func (s *service) GetQuestion(ctx context.Context, id uuid.UUID) (QuestionDetail, error) {
	question, found, err := s.questions.FindByID(ctx, id)
	if err != nil {
		return QuestionDetail{}, apperrors.Wrap("qna_error", "failed to load question", err)
	}
	if !found {
		return QuestionDetail{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", id), nil)
	}

	answers, err := s.answers.ListByIDs(ctx, question.Answers)
	if err != nil {
		return QuestionDetail{}, apperrors.Wrap("qna_error", "failed to load answers", err)
	}

	memo := map[int64]*Profile{}
	detail := QuestionDetail{
		QuestionView:   s.toView(ctx, question, memo),
		Answers:        make([]AnswerView, 0, len(answers)),
		AcceptedAnswer: question.AcceptedAnswer,
		Attachments:    question.Attachments,
	}
	for _, answer := range answers {
		detail.Answers = append(detail.Answers, s.toAnswerView(ctx, answer, memo))
	}
	return detail, nil
}

func (s *service) PostAnswer(ctx context.Context, questionID uuid.UUID, answererID int64, in PostAnswerInput) (AnswerView, error) {
	text := strings.TrimSpace(in.AnswerText)
	if text == "" {
		return AnswerView{}, apperrors.Wrap("invalid_input", "answer text is required", nil)
	}

	_, found, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return AnswerView{}, apperrors.Wrap("qna_error", "failed to load question", err)
	}
	if !found {
		return AnswerView{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), nil)
	}

	answer := Answer{
		ID:         uuid.New(),
		Question:   questionID,
		AnswerText: text,
		AnsweredBy: answererID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return AnswerView{}, apperrors.Wrap("qna_error", "failed to create answer", err)
	}

	// The answer is durable at this point. A failed link leaves it orphaned,
	// which must surface to the caller rather than pass as success.
	if err := s.questions.AppendAnswer(ctx, questionID, answer.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return AnswerView{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), err)
		}
		s.logger.Error("answer created but not linked", "questionId", questionID, "answerId", answer.ID, "error", err)
		return AnswerView{}, apperrors.Wrap("qna_error", "answer stored but could not be linked to the question", err)
	}

	memo := map[int64]*Profile{}
	return s.toAnswerView(ctx, answer, memo), nil
}

func (s *service) AcceptAnswer(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (AnswerView, error) {
	question, found, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return AnswerView{}, apperrors.Wrap("qna_error", "failed to load question", err)
	}
	if !found {
		return AnswerView{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), nil)
	}

	answer, found, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return AnswerView{}, apperrors.Wrap("qna_error", "failed to load answer", err)
	}
	if !found || answer.Question != questionID {
		return AnswerView{}, apperrors.Wrap("not_found", fmt.Sprintf("no answer found with id %s on this question", answerID), nil)
	}

	if !CanAccept(question, callerID) {
		return AnswerView{}, apperrors.Wrap("forbidden", "only the question asker can accept an answer", nil)
	}

	if err := s.questions.SetAcceptedAnswer(ctx, questionID, answerID); err != nil {
		switch {
		case errors.Is(err, ErrAnswerConflict):
			return AnswerView{}, apperrors.Wrap("already_accepted", "another answer has already been accepted", err)
		case errors.Is(err, ErrNotFound):
			return AnswerView{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), err)
		default:
			return AnswerView{}, apperrors.Wrap("qna_error", "failed to accept answer", err)
		}
	}
	if err := s.answers.MarkAccepted(ctx, answerID); err != nil {
		return AnswerView{}, apperrors.Wrap("qna_error", "failed to mark answer as accepted", err)
	}

	answer.IsAccepted = true
	memo := map[int64]*Profile{}
	return s.toAnswerView(ctx, answer, memo), nil
}

func (s *service) AttachFile(ctx context.Context, questionID uuid.UUID, callerID int64, upload AttachmentUpload) (Attachment, error) {
	if len(upload.Data) == 0 {
		return Attachment{}, apperrors.Wrap("invalid_input", "attachment is empty", nil)
	}
	if int64(len(upload.Data)) > s.cfg.MaxAttachmentBytes {
		return Attachment{}, apperrors.Wrap("invalid_input", "attachment exceeds the size limit", nil)
	}

	question, found, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return Attachment{}, apperrors.Wrap("qna_error", "failed to load question", err)
	}
	if !found {
		return Attachment{}, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), nil)
	}
	if question.AskedBy != callerID {
		return Attachment{}, apperrors.Wrap("forbidden", "only the question asker can attach files", nil)
	}

	key := fmt.Sprintf("questions/%s/%s-%s", questionID, uuid.New(), sanitizeFilename(upload.Filename))
	stored, err := s.storage.Put(ctx, key, upload.Data, upload.MimeType)
	if err != nil {
		return Attachment{}, apperrors.Wrap("qna_error", "failed to store attachment", err)
	}
	if err := s.questions.AppendAttachment(ctx, questionID, stored.Key); err != nil {
		s.logger.Error("attachment stored but not linked", "questionId", questionID, "key", stored.Key, "error", err)
		return Attachment{}, apperrors.Wrap("qna_error", "attachment stored but could not be linked to the question", err)
	}
	return Attachment{Key: stored.Key, Size: stored.Size, MimeType: stored.MimeType}, nil
}

func (s *service) RelatedQuestions(ctx context.Context, questionID uuid.UUID) ([]QuestionView, error) {
	question, found, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, apperrors.Wrap("qna_error", "failed to load question", err)
	}
	if !found {
		return nil, apperrors.Wrap("not_found", fmt.Sprintf("no question found with id %s", questionID), nil)
	}

	embedding, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, apperrors.Wrap("qna_error", "failed to embed question", err)
	}
	// Fetch one extra slot since the question itself is usually the nearest hit.
	ids, err := s.related.Nearest(ctx, embedding, s.cfg.RelatedLimit+1)
	if err != nil {
		return nil, apperrors.Wrap("qna_error", "related lookup failed", err)
	}

	memo := map[int64]*Profile{}
	views := make([]QuestionView, 0, s.cfg.RelatedLimit)
	for _, id := range ids {
		if id == questionID || len(views) >= s.cfg.RelatedLimit {
			continue
		}
		candidate, found, err := s.questions.FindByID(ctx, id)
		if err != nil {
			return nil, apperrors.Wrap("qna_error", "failed to load related question", err)
		}
		if !found {
			continue
		}
		views = append(views, s.toView(ctx, candidate, memo))
	}
	return views, nil
}

// indexQuestion feeds the related-questions index. Indexing is best effort:
// a failure degrades the related lookup, never question creation.
func (s *service) indexQuestion(ctx context.Context, question Question) {
	embedding, err := s.embedQuestion(ctx, question)
	if err != nil {
		s.logger.Warn("question embedding failed", "questionId", question.ID, "error", err)
		return
	}
	if err := s.related.Index(ctx, question.ID, embedding); err != nil {
		s.logger.Warn("question indexing failed", "questionId", question.ID, "error", err)
	}
}

func (s *service) embedQuestion(ctx context.Context, question Question) ([]float32, error) {
	vectors, err := s.embedder.Embed(ctx, []string{question.Title + "\n" + question.Description})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, errors.New("embedding response empty")
	}
	return vectors[0], nil
}

func (s *service) toView(ctx context.Context, question Question, memo map[int64]*Profile) QuestionView {
	return QuestionView{
		ID:          question.ID,
		Title:       question.Title,
		Description: question.Description,
		Category:    question.Category,
		Tags:        question.Tags,
		AskedBy:     s.resolveProfile(ctx, question.AskedBy, memo),
		AnswerCount: len(question.Answers),
		CreatedAt:   question.CreatedAt,
	}
}

func (s *service) toAnswerView(ctx context.Context, answer Answer, memo map[int64]*Profile) AnswerView {
	return AnswerView{
		ID:         answer.ID,
		AnswerText: answer.AnswerText,
		AnsweredBy: s.resolveProfile(ctx, answer.AnsweredBy, memo),
		IsAccepted: answer.IsAccepted,
		CreatedAt:  answer.CreatedAt,
	}
}

// resolveProfile joins display data at read time. A directory failure logs
// and omits the profile instead of failing the operation.
func (s *service) resolveProfile(ctx context.Context, userID int64, memo map[int64]*Profile) *Profile {
	if profile, ok := memo[userID]; ok {
		return profile
	}
	profile, found, err := s.profiles.Resolve(ctx, userID)
	if err != nil {
		s.logger.Warn("profile resolution failed", "userId", userID, "error", err)
		memo[userID] = nil
		return nil
	}
	if !found {
		memo[userID] = nil
		return nil
	}
	resolved := profile
	memo[userID] = &resolved
	return &resolved
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
