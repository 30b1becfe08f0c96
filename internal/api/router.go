package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/api/handlers"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/api/ws"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/auth"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/capture"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/queue"
	"github.com/Sharjeelbaig/DeepVision-AI/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Pipeline *capture.Pipeline
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	healthH := handlers.NewHealthHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", healthH.Healthz)
	r.GET("/readyz", healthH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Systems & roster
	systemsH := handlers.NewSystemsHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	v1.POST("/systems", systemsH.Create)
	v1.GET("/systems", systemsH.List)
	v1.GET("/systems/:id", systemsH.Get)
	v1.POST("/systems/:id/room-code", systemsH.SetRoomCode)
	v1.POST("/systems/alert", systemsH.Alert)
	v1.POST("/systems/faces", systemsH.AddFace)
	v1.POST("/systems/remove-face", systemsH.RemoveFace)

	// Captures
	capturesH := handlers.NewCapturesHandler(cfg.Pipeline)
	v1.POST("/systems/capture", capturesH.Capture)

	return r
}
