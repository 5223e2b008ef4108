package handlers

import (
	"net/http"

	"github.com/iwtcode/spiroBench/internal/config"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/internal/metrics"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"

	"github.com/gin-gonic/gin"
)

// Handler - структура для обработчиков HTTP-запросов
type Handler struct {
	usecase interfaces.Usecases
	live    interfaces.LiveFeed
	logger  *logging.Logger
}

// NewHandler создает новый экземпляр Handler. live обслуживает websocket-подписку.
func NewHandler(usecase interfaces.Usecases, live interfaces.LiveFeed, logger *logging.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		live:    live,
		logger:  logger.WithPrefix("HANDLER"),
	}
}

// ProvideRouter настраивает и возвращает HTTP-роутер
func ProvideRouter(h *Handler, cfg *config.AppConfig, m *metrics.Metrics) http.Handler {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// Logger Middleware
	router.Use(LoggingMiddleware(h.logger))

	router.GET("/metrics", gin.WrapH(m.Handler()))
	router.GET("/ws", h.Live)

	// Группа API v1
	v1 := router.Group("/api/v1")
	{
		plc := v1.Group("/plc")
		{
			plc.POST("/connect", h.Connect)
			plc.POST("/disconnect", h.Disconnect)
			plc.POST("/write", h.WriteRegister)
		}

		motion := v1.Group("/motion")
		{
			motion.POST("/start", h.StartMotion)
			motion.POST("/stop", h.StopMotion)
			motion.POST("/emergency", h.EmergencyStop)
			motion.POST("/rearm", h.Rearm)
			motion.POST("/calibrate/start", h.StartCalibration)
			motion.POST("/calibrate/stop", h.EndCalibration)
			motion.GET("/status", h.Status)
			motion.GET("/fault", h.Fault)
		}

		curves := v1.Group("/curves")
		{
			curves.GET("", h.ListCurves)
			curves.POST("", h.ImportCurve)
			curves.GET("/:name", h.GetCurve)
			curves.DELETE("/:name", h.DeleteCurve)
			curves.POST("/synthesize", h.Synthesize)
		}

		v1.POST("/traces/save", h.SaveTrace)
	}

	return router
}
