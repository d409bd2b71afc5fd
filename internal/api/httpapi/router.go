package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/park285/checkers-arena/internal/arena"
	"go.uber.org/zap"
)

// NewRouter mounts the REST surface and, when ws is non-nil, the WebSocket endpoint.
func NewRouter(svc *arena.Service, ws http.Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if ws != nil {
		r.GET("/ws", gin.WrapH(ws))
	}

	h := &handlers{svc: svc, logger: logger}
	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		rooms.POST("/create", h.createRoom)
		rooms.GET("", h.listRooms)
		rooms.GET("/:id", h.roomInfo)
		rooms.GET("/:id/exists", h.roomExists)
		rooms.GET("/:id/state", h.roomState)
		rooms.GET("/:id/board.png", h.boardImage)
		rooms.DELETE("/:id", h.deleteRoom)

		api.GET("/lobby", h.lobby)
		api.GET("/games/recent", h.recentGames)
	}
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/healthz" {
			return
		}
		logger.Debug("http_request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
