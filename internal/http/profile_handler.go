package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blupr/internal/render"
	"blupr/internal/service"
)

const maxMatchLimit = 100

// ProfileHandler expone el blueprint y el matching del encuestado autenticado.
type ProfileHandler struct {
	logger    *zap.Logger
	surveySvc *service.SurveyService
	svg       render.Renderer
}

func NewProfileHandler(logger *zap.Logger, surveySvc *service.SurveyService, svg render.Renderer) *ProfileHandler {
	if svg == nil {
		svg = render.NewSVG()
	}
	return &ProfileHandler{
		logger:    logger,
		surveySvc: surveySvc,
		svg:       svg,
	}
}

// Profile maneja GET /profile: el perfil guardado y su clan.
func (h *ProfileHandler) Profile(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.surveySvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not load profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// Vector maneja GET /profile/vector.
func (h *ProfileHandler) Vector(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	bp, err := h.surveySvc.Blueprint(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not build blueprint", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vector": bp.Vector, "answered": bp.Answered})
}

// Barcode maneja GET /profile/barcode.
func (h *ProfileHandler) Barcode(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	bp, err := h.surveySvc.Blueprint(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not build blueprint", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patches": bp.Patches, "answered": bp.Answered})
}

// BarcodeSVG maneja GET /profile/barcode.svg.
func (h *ProfileHandler) BarcodeSVG(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	bp, err := h.surveySvc.Blueprint(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, "could not build blueprint", err)
		return
	}
	out, err := h.svg.Render(bp.Patches)
	if err != nil {
		respondError(c, h.logger, "could not render barcode", err)
		return
	}
	c.Header("Content-Type", "image/svg+xml")
	c.String(http.StatusOK, out)
}

// Matches maneja GET /matches?limit=.
func (h *ProfileHandler) Matches(c *gin.Context) {
	claims, ok := identity(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	if limit == 0 || limit > maxMatchLimit {
		limit = maxMatchLimit
	}
	report, err := h.surveySvc.Matches(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		respondError(c, h.logger, "could not rank matches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": report.Matches, "classification": report.Classification})
}
