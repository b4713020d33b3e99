package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blupr/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	surveyH *SurveyHandler,
	profileH *ProfileHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	auth := r.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.POST("/logout", authH.Logout)

	protected := r.Group("", JWTAuthMiddleware(jwtSvc))

	survey := protected.Group("/survey")
	survey.GET("/questions", surveyH.Questions)
	survey.GET("/state", surveyH.State)
	survey.POST("/answers", surveyH.Answer)
	survey.POST("/cursor", surveyH.Move)
	survey.POST("/complete", surveyH.Complete)
	survey.DELETE("/session", surveyH.Reset)

	protected.GET("/me", authH.Me)

	profile := protected.Group("/profile")
	profile.GET("", profileH.Profile)
	profile.GET("/vector", profileH.Vector)
	profile.GET("/barcode", profileH.Barcode)
	profile.GET("/barcode.svg", profileH.BarcodeSVG)

	protected.GET("/matches", profileH.Matches)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fija Content-Type: application/json por defecto.
// Los handlers que devuelven otro formato lo pisan con c.Header.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
