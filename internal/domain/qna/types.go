package qna

import (
	"time"

	"github.com/google/uuid"
)

// Question is the persisted record owned by the question store. AskedBy is
// immutable after creation and carries the acceptance privilege.
type Question struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Category       string      `json:"category,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	AskedBy        int64       `json:"askedBy"`
	Answers        []uuid.UUID `json:"answers"`
	AcceptedAnswer *uuid.UUID  `json:"acceptedAnswer,omitempty"`
	Attachments    []string    `json:"attachments,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Answer belongs to exactly one question. IsAccepted transitions
// false to true at most once.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	Question   uuid.UUID `json:"question"`
	AnswerText string    `json:"answerText"`
	AnsweredBy int64     `json:"answeredBy"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Filter narrows question listings. Category matches exactly; Tags match
// when the question's tag set intersects the given set.
type Filter struct {
	Category string
	Tags     []string
}

// Profile is the display projection of a directory user. Never persisted
// alongside questions or answers, only joined at read time.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateQuestionInput is the createQuestion payload.
type CreateQuestionInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// PostAnswerInput is the postAnswer payload.
type PostAnswerInput struct {
	AnswerText string `json:"answerText"`
}

// AttachmentUpload carries one uploaded file.
type AttachmentUpload struct {
	Filename string
	MimeType string
	Data     []byte
}

// Attachment describes a stored upload.
type Attachment struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// QuestionView is a question expanded with its asker profile. AskedBy is
// nil when the directory could not resolve the user.
type QuestionView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	AskedBy     *Profile  `json:"askedBy,omitempty"`
	AnswerCount int       `json:"answerCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnswerView is an answer expanded with its answerer profile.
type AnswerView struct {
	ID         uuid.UUID `json:"id"`
	AnswerText string    `json:"answerText"`
	AnsweredBy *Profile  `json:"answeredBy,omitempty"`
	IsAccepted bool      `json:"isAccepted"`
	CreatedAt  time.Time `json:"createdAt"`
}

// QuestionDetail is the full read model: question, asker and every answer
// in posting order, each with its answerer profile.
type QuestionDetail struct {
	QuestionView
	Answers        []AnswerView `json:"answers"`
	AcceptedAnswer *uuid.UUID   `json:"acceptedAnswer,omitempty"`
	Attachments    []string     `json:"attachments,omitempty"`
}
