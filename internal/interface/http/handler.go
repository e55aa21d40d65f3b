package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepnest/prepnest/internal/domain/qna"
)

// QnAHandler wires the HTTP transport to the question/answer service.
type QnAHandler struct {
	svc    qna.Service
	logger *slog.Logger
}

// NewQnAHandler constructs the Q&A HTTP handler.
func NewQnAHandler(svc qna.Service, logger *slog.Logger) *QnAHandler {
	return &QnAHandler{
		svc:    svc,
		logger: logger.With("component", "http.qna"),
	}
}

// CreateQuestion stores a new question asked by the authenticated user.
func (h *QnAHandler) CreateQuestion(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var input qna.CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.svc.CreateQuestion(c.Request.Context(), claims.UserID, input)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListQuestions returns questions matching the optional category and tags filters.
func (h *QnAHandler) ListQuestions(c *gin.Context) {
	filter := qna.Filter{
		Category: strings.TrimSpace(c.Query("category")),
		Tags:     parseTags(c.Query("tags")),
	}
	views, err := h.svc.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

// GetQuestion returns one question with its answers expanded.
func (h *QnAHandler) GetQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid question id", err))
		return
	}
	detail, err := h.svc.GetQuestion(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PostAnswer stores an answer authored by the authenticated user.
func (h *QnAHandler) PostAnswer(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid question id", err))
		return
	}
	var input qna.PostAnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	view, err := h.svc.PostAnswer(c.Request.Context(), questionID, claims.UserID, input)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusCreated, view)
}

// AcceptAnswer marks an answer as the accepted one. Only the asker may do this.
func (h *QnAHandler) AcceptAnswer(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid question id", err))
		return
	}
	answerID, err := uuid.Parse(c.Param("answerId"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid answer id", err))
		return
	}
	view, err := h.svc.AcceptAnswer(c.Request.Context(), questionID, answerID, claims.UserID)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// AttachFile stores a multipart upload against a question.
func (h *QnAHandler) AttachFile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid question id", err))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}
	upload := qna.AttachmentUpload{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Data:     data,
	}
	attachment, err := h.svc.AttachFile(c.Request.Context(), questionID, claims.UserID, upload)
	if err != nil {
		abortWithError(c, fromDomainError(err, "upload_failed"))
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

// RelatedQuestions returns questions close to the given one in embedding space.
func (h *QnAHandler) RelatedQuestions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid question id", err))
		return
	}
	views, err := h.svc.RelatedQuestions(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "qna_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
