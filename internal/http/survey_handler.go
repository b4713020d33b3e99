package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blupr/internal/domain"
	"blupr/internal/engine"
	"blupr/internal/service"
)

// SurveyHandler expone la encuesta del encuestado autenticado.
type SurveyHandler struct {
	logger    *zap.Logger
	surveySvc *service.SurveyService
	questions []domain.Question
}

func NewSurveyHandler(logger *zap.Logger, surveySvc *service.SurveyService, questions []domain.Question) *SurveyHandler {
	return &SurveyHandler{
		logger:    logger,
		surveySvc: surveySvc,
		questions: questions,
	}
}

// Questions maneja GET /survey/questions.
func (h *SurveyHandler) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"questions": h.questions,
		"options":   domain.AnswerOptions,
	})
}

// State maneja GET /survey/state.
func (h *SurveyHandler) State(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	view, err := h.surveySvc.State(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not load survey", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": view})
}

// Answer maneja POST /survey/answers.
func (h *SurveyHandler) Answer(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	var req struct {
		QuestionID int `json:"question_id" binding:"required"`
		Score      int `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	view, err := h.surveySvc.Answer(c.Request.Context(), claims.UserID, req.QuestionID, req.Score)
	if err != nil {
		respondError(c, h.logger, "could not record answer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": view})
}

// Move maneja POST /survey/cursor.
func (h *SurveyHandler) Move(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	dir, ok := engine.ParseDirection(req.Direction)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be next or previous"})
		return
	}
	view, err := h.surveySvc.Move(c.Request.Context(), claims.UserID, dir)
	if err != nil {
		respondError(c, h.logger, "could not move cursor", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": view})
}

// Reset maneja DELETE /survey/session.
func (h *SurveyHandler) Reset(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	view, err := h.surveySvc.Reset(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not reset session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"survey": view})
}

// Complete maneja POST /survey/complete. Si el matching o el guardado fallan responde 503
// con el vector calculado.
func (h *SurveyHandler) Complete(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}
	name := req.DisplayName
	if name == "" {
		name = claims.DisplayName
	}

	done, err := h.surveySvc.Complete(c.Request.Context(), claims.UserID, name)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusServiceUnavailable && len(done.Profile.Vector) > 0 {
			h.logger.Error("complete survey failed", zap.Error(err))
			c.JSON(status, gin.H{"error": err.Error(), "result": done})
			return
		}
		respondError(c, h.logger, "could not complete survey", err)
		return
	}
	status := http.StatusOK
	if done.Inserted {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"result": done})
}
