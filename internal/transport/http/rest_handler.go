package http

import (
	"errors"
	"log"
	"net/http"

	"survey-service/internal/app"
	"survey-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// RESTHandler exposes the survey use cases as JSON endpoints.
type RESTHandler struct {
	service *app.SurveyService
}

func NewRESTHandler(service *app.SurveyService) *RESTHandler {
	return &RESTHandler{service: service}
}

type issueTokenRequest struct {
	UserName string `json:"user_name"`
}

// Pointers distinguish a missing field from a zero value.
type recordResponseRequest struct {
	QuestionIndex *int    `json:"question_index"`
	Response      *string `json:"response"`
}

func (h *RESTHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"version": Version,
		"endpoints": []string{
			"/api/health",
			"/api/get_auth_token",
			"/api/questions/<token>",
			"/api/responses/<token>",
			"/api/responses/<token>/<user_name>",
			"/api/progress/<token>",
			"/ws?token=<token>",
		},
	})
}

func (h *RESTHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "API is running"})
}

func (h *RESTHandler) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	token, err := h.service.IssueToken(c.Request.Context(), req.UserName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token.Value, "user_name": token.UserName})
}

func (h *RESTHandler) ListQuestions(c *gin.Context) {
	questions, err := h.service.ListQuestions(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	c.JSON(http.StatusOK, questions)
}

func (h *RESTHandler) RecordResponse(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	// Authenticate before looking at the body so a bad token is always 401.
	if _, err := h.service.Authenticate(ctx, token); err != nil {
		h.fail(c, err)
		return
	}

	var req recordResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionIndex == nil || req.Response == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	record, err := h.service.RecordResponse(ctx, token, *req.QuestionIndex, *req.Response)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *RESTHandler) ListResponses(c *gin.Context) {
	records, err := h.service.ListResponses(c.Request.Context(), c.Param("token"), c.Param("user_name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *RESTHandler) GetProgress(c *gin.Context) {
	progress, err := h.service.GetProgress(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// fail maps domain errors to status codes. Unknown and malformed tokens share one message.
func (h *RESTHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
