package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/metrics"
	"github.com/klinova/klinova-api/pkg/middleware"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(h *Handlers, cfg *config.Config, log *logger.Logger, reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	router.GET("/health", h.HealthCheck)
	if reg != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	}

	api := router.Group("/api")
	api.GET("/contact", h.ContactHealth)
	api.POST("/contact", h.HandleContact)
	api.GET("/cloudinary-signature", h.UploadSignatureStatus)
	api.POST("/cloudinary-signature", h.UploadSignature)
	api.POST("/notify-upload", h.NotifyUpload)
	api.GET("/test-env", h.TestEnv)
	api.GET("/cloudinary-selftest", h.UploadSelfTest)

	return router
}
