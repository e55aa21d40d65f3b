package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/prepnest/prepnest/internal/domain/qna"
	"github.com/prepnest/prepnest/internal/domain/users"
	"github.com/prepnest/prepnest/internal/infra/config"
	apperrors "github.com/prepnest/prepnest/pkg/errors"
)

const testToken = "valid-token"

func TestRouter_CreateQuestionSuccess(t *testing.T) {
	view := qna.QuestionView{ID: uuid.New(), Title: "How do I prepare for the physics final?", Description: "Looking for topic priorities."}
	svc := &stubQnA{
		createFn: func(ctx context.Context, askerID int64, in qna.CreateQuestionInput) (qna.QuestionView, error) {
			require.Equal(t, int64(7), askerID)
			require.Equal(t, "How do I prepare for the physics final?", in.Title)
			return view, nil
		},
	}

	rec := performRequest(http.MethodPost, "/api/v1/qna/questions",
		`{"title":"How do I prepare for the physics final?","description":"Looking for topic priorities."}`,
		testToken, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got qna.QuestionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, view.ID, got.ID)
}

func TestRouter_CreateQuestionMissingToken(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/qna/questions", `{"title":"x"}`, "", newRouterUnderTest(t, &stubQnA{}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "unauthorized", errBody["error"]["code"])
}

func TestRouter_CreateQuestionInvalidToken(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/qna/questions", `{"title":"x"}`, "garbage", newRouterUnderTest(t, &stubQnA{}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_token", errBody["error"]["code"])
}

func TestRouter_ReadsRequireNoIdentity(t *testing.T) {
	questionID := uuid.New()
	svc := &stubQnA{
		listFn: func(ctx context.Context, filter qna.Filter) ([]qna.QuestionView, error) {
			return []qna.QuestionView{{Title: "public listing"}}, nil
		},
		getFn: func(ctx context.Context, id uuid.UUID) (qna.QuestionDetail, error) {
			return qna.QuestionDetail{QuestionView: qna.QuestionView{ID: id}}, nil
		},
		relatedFn: func(ctx context.Context, id uuid.UUID) ([]qna.QuestionView, error) {
			return nil, nil
		},
	}
	server := newRouterUnderTest(t, svc)

	for _, path := range []string{
		"/api/v1/qna/questions",
		"/api/v1/qna/questions/" + questionID.String(),
		"/api/v1/qna/questions/" + questionID.String() + "/related",
	} {
		rec := performRequest(http.MethodGet, path, "", "", server)
		require.Equal(t, http.StatusOK, rec.Code, "GET %s must not require a token", path)
	}
}

func TestRouter_WritesRequireIdentity(t *testing.T) {
	questionID := uuid.New()
	server := newRouterUnderTest(t, &stubQnA{})

	for _, path := range []string{
		"/api/v1/qna/questions",
		"/api/v1/qna/questions/" + questionID.String() + "/answers",
		"/api/v1/qna/questions/" + questionID.String() + "/answers/" + uuid.NewString() + "/accept",
		"/api/v1/qna/questions/" + questionID.String() + "/attachments",
	} {
		rec := performRequest(http.MethodPost, path, `{}`, "", server)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "POST %s must require a token", path)
	}
}

func TestRouter_ListQuestionsFilter(t *testing.T) {
	svc := &stubQnA{
		listFn: func(ctx context.Context, filter qna.Filter) ([]qna.QuestionView, error) {
			require.Equal(t, "math", filter.Category)
			require.Equal(t, []string{"algebra", "calculus"}, filter.Tags)
			return []qna.QuestionView{{Title: "one"}, {Title: "two"}}, nil
		},
	}

	rec := performRequest(http.MethodGet, "/api/v1/qna/questions?category=math&tags=algebra,%20calculus", "", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []qna.QuestionView `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
}

func TestRouter_GetQuestionNotFound(t *testing.T) {
	svc := &stubQnA{
		getFn: func(ctx context.Context, id uuid.UUID) (qna.QuestionDetail, error) {
			return qna.QuestionDetail{}, apperrors.Wrap("not_found", "question not found", nil)
		},
	}

	rec := performRequest(http.MethodGet, "/api/v1/qna/questions/"+uuid.NewString(), "", "", newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusNotFound, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "not_found", errBody["error"]["code"])
}

func TestRouter_GetQuestionInvalidID(t *testing.T) {
	rec := performRequest(http.MethodGet, "/api/v1/qna/questions/not-a-uuid", "", "", newRouterUnderTest(t, &stubQnA{}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_AcceptAnswerForbidden(t *testing.T) {
	svc := &stubQnA{
		acceptFn: func(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (qna.AnswerView, error) {
			return qna.AnswerView{}, apperrors.Wrap("forbidden", "only the asker can accept an answer", nil)
		},
	}

	path := "/api/v1/qna/questions/" + uuid.NewString() + "/answers/" + uuid.NewString() + "/accept"
	rec := performRequest(http.MethodPost, path, "", testToken, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusForbidden, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "forbidden", errBody["error"]["code"])
}

func TestRouter_AcceptAnswerConflict(t *testing.T) {
	svc := &stubQnA{
		acceptFn: func(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (qna.AnswerView, error) {
			return qna.AnswerView{}, apperrors.Wrap("already_accepted", "another answer is already accepted", nil)
		},
	}

	path := "/api/v1/qna/questions/" + uuid.NewString() + "/answers/" + uuid.NewString() + "/accept"
	rec := performRequest(http.MethodPost, path, "", testToken, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusConflict, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "already_accepted", errBody["error"]["code"])
}

func TestRouter_PostAnswerSuccess(t *testing.T) {
	questionID := uuid.New()
	svc := &stubQnA{
		postFn: func(ctx context.Context, qID uuid.UUID, answererID int64, in qna.PostAnswerInput) (qna.AnswerView, error) {
			require.Equal(t, questionID, qID)
			require.Equal(t, int64(7), answererID)
			require.Equal(t, "Focus on thermodynamics.", in.AnswerText)
			return qna.AnswerView{ID: uuid.New(), AnswerText: in.AnswerText}, nil
		},
	}

	rec := performRequest(http.MethodPost, "/api/v1/qna/questions/"+questionID.String()+"/answers",
		`{"answerText":"Focus on thermodynamics."}`, testToken, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_AttachFileSuccess(t *testing.T) {
	questionID := uuid.New()
	svc := &stubQnA{
		attachFn: func(ctx context.Context, qID uuid.UUID, callerID int64, upload qna.AttachmentUpload) (qna.Attachment, error) {
			require.Equal(t, questionID, qID)
			require.Equal(t, "notes.pdf", upload.Filename)
			require.Equal(t, []byte("pdf bytes"), upload.Data)
			return qna.Attachment{Key: "attachments/" + qID.String() + "/notes.pdf", Size: int64(len(upload.Data))}, nil
		},
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/qna/questions/"+questionID.String()+"/attachments", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	newRouterUnderTest(t, svc).Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_RegisterEmailExists(t *testing.T) {
	userSvc := &stubUsers{
		registerFn: func(ctx context.Context, req users.RegisterRequest) (users.UserView, error) {
			return users.UserView{}, apperrors.Wrap("email_exists", "email already registered", nil)
		},
	}

	rec := performRequestWithUsers(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"a@b.kz","password":"secret123","name":"Aigerim"}`, userSvc)
	require.Equal(t, http.StatusConflict, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "email_exists", errBody["error"]["code"])
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	userSvc := &stubUsers{
		loginFn: func(ctx context.Context, req users.LoginRequest) (users.LoginResponse, error) {
			return users.LoginResponse{}, apperrors.Wrap("invalid_credentials", "wrong email or password", nil)
		},
	}

	rec := performRequestWithUsers(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"a@b.kz","password":"nope"}`, userSvc)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_credentials", errBody["error"]["code"])
}

func TestRouter_Healthz(t *testing.T) {
	rec := performRequest(http.MethodGet, "/healthz", "", "", newRouterUnderTest(t, &stubQnA{}))
	require.Equal(t, http.StatusOK, rec.Code)
}

func performRequest(method, path, body, token string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func performRequestWithUsers(t *testing.T, method, path, body string, userSvc users.Service) *httptest.ResponseRecorder {
	t.Helper()
	server := buildRouter(t, &stubQnA{}, userSvc)
	return performRequest(method, path, body, "", server)
}

func newRouterUnderTest(t *testing.T, svc qna.Service) *http.Server {
	t.Helper()
	return buildRouter(t, svc, &stubUsers{})
}

func buildRouter(t *testing.T, svc qna.Service, userSvc users.Service) *http.Server {
	t.Helper()
	logger := newTestLogger()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, NewQnAHandler(svc, logger), NewAuthHandler(userSvc, logger), userSvc, logger)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubQnA struct {
	createFn  func(ctx context.Context, askerID int64, in qna.CreateQuestionInput) (qna.QuestionView, error)
	listFn    func(ctx context.Context, filter qna.Filter) ([]qna.QuestionView, error)
	getFn     func(ctx context.Context, id uuid.UUID) (qna.QuestionDetail, error)
	postFn    func(ctx context.Context, questionID uuid.UUID, answererID int64, in qna.PostAnswerInput) (qna.AnswerView, error)
	acceptFn  func(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (qna.AnswerView, error)
	attachFn  func(ctx context.Context, questionID uuid.UUID, callerID int64, upload qna.AttachmentUpload) (qna.Attachment, error)
	relatedFn func(ctx context.Context, questionID uuid.UUID) ([]qna.QuestionView, error)
}

func (s *stubQnA) CreateQuestion(ctx context.Context, askerID int64, in qna.CreateQuestionInput) (qna.QuestionView, error) {
	if s.createFn != nil {
		return s.createFn(ctx, askerID, in)
	}
	return qna.QuestionView{}, nil
}

func (s *stubQnA) ListQuestions(ctx context.Context, filter qna.Filter) ([]qna.QuestionView, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubQnA) GetQuestion(ctx context.Context, id uuid.UUID) (qna.QuestionDetail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return qna.QuestionDetail{}, nil
}

func (s *stubQnA) PostAnswer(ctx context.Context, questionID uuid.UUID, answererID int64, in qna.PostAnswerInput) (qna.AnswerView, error) {
	if s.postFn != nil {
		return s.postFn(ctx, questionID, answererID, in)
	}
	return qna.AnswerView{}, nil
}

func (s *stubQnA) AcceptAnswer(ctx context.Context, questionID, answerID uuid.UUID, callerID int64) (qna.AnswerView, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, questionID, answerID, callerID)
	}
	return qna.AnswerView{}, nil
}

func (s *stubQnA) AttachFile(ctx context.Context, questionID uuid.UUID, callerID int64, upload qna.AttachmentUpload) (qna.Attachment, error) {
	if s.attachFn != nil {
		return s.attachFn(ctx, questionID, callerID, upload)
	}
	return qna.Attachment{}, nil
}

func (s *stubQnA) RelatedQuestions(ctx context.Context, questionID uuid.UUID) ([]qna.QuestionView, error) {
	if s.relatedFn != nil {
		return s.relatedFn(ctx, questionID)
	}
	return nil, nil
}

type stubUsers struct {
	registerFn func(ctx context.Context, req users.RegisterRequest) (users.UserView, error)
	loginFn    func(ctx context.Context, req users.LoginRequest) (users.LoginResponse, error)
}

func (s *stubUsers) Register(ctx context.Context, req users.RegisterRequest) (users.UserView, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return users.UserView{}, nil
}

func (s *stubUsers) Login(ctx context.Context, req users.LoginRequest) (users.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return users.LoginResponse{}, nil
}

func (s *stubUsers) Refresh(ctx context.Context, refreshToken string) (users.LoginResponse, error) {
	return users.LoginResponse{}, nil
}

func (s *stubUsers) ValidateToken(ctx context.Context, token string) (users.Claims, error) {
	if token != testToken {
		return users.Claims{}, apperrors.Wrap("invalid_token", "token is invalid or expired", nil)
	}
	return users.Claims{UserID: 7, Email: "aigerim@prepnest.kz", TokenType: "access", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubUsers) Profile(ctx context.Context, userID int64) (users.UserView, bool, error) {
	return users.UserView{}, false, nil
}
