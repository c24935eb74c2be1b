package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/config"
	"github.com/najoro-git/CyberApp-manager/controllers"
	"github.com/najoro-git/CyberApp-manager/metrics"
	"github.com/najoro-git/CyberApp-manager/services"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// SetupRouter wires the middleware stack and the full API surface.
func SetupRouter(db *gorm.DB, cfg config.Config, logger zerolog.Logger, monitor *services.MonitorService, pinger *services.Pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(config.RequestID())
	r.Use(config.PerformanceLogger(logger))

	metrics.Register()
	r.Use(metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
	}))

	stations := &controllers.StationController{DB: db}
	clients := &controllers.ClientController{DB: db}
	catalog := &controllers.ServiceController{DB: db}
	sessions := &controllers.SessionController{DB: db}
	ping := &controllers.PingController{DB: db, Monitor: monitor, Pinger: pinger}
	reports := &controllers.ReportController{DB: db}
	authCtl := &controllers.AuthController{DB: db, Cfg: cfg}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)

		auth.Use(utils.AuthMiddleware(cfg.JWTSecret))
		auth.GET("/me", authCtl.Me)
	}

	api := r.Group("/api")
	api.GET("/health", controllers.Health)

	api.Use(utils.AuthMiddleware(cfg.JWTSecret))
	{
		stationGroup := api.Group("/stations")
		{
			stationGroup.GET("", stations.GetStations)
			stationGroup.POST("", stations.CreateStation)
			stationGroup.GET("/:id", stations.GetStation)
			stationGroup.PUT("/:id", stations.UpdateStation)
			stationGroup.DELETE("/:id", stations.DeleteStation)
			stationGroup.GET("/:id/stats", stations.GetStationStats)
		}

		pingGroup := api.Group("/ping")
		{
			pingGroup.POST("/station/:id", ping.PingStation)
			pingGroup.POST("/all", ping.PingAll)
			pingGroup.GET("/status", ping.PingStatus)
			pingGroup.POST("/scan", ping.ScanNetwork)
		}

		clientGroup := api.Group("/clients")
		{
			clientGroup.GET("", clients.GetClients)
			clientGroup.POST("", clients.CreateClient)
			clientGroup.GET("/search/autocomplete", clients.SearchClients)
			clientGroup.GET("/:id", clients.GetClient)
			clientGroup.PUT("/:id", clients.UpdateClient)
			clientGroup.DELETE("/:id", clients.DeleteClient)
			clientGroup.GET("/:id/stats", clients.GetClientStats)
		}

		serviceGroup := api.Group("/services")
		{
			serviceGroup.GET("", catalog.GetServices)
			serviceGroup.POST("", catalog.CreateService)
			serviceGroup.GET("/categories/list", catalog.GetCategories)
			serviceGroup.GET("/:id", catalog.GetService)
			serviceGroup.PUT("/:id", catalog.UpdateService)
			serviceGroup.DELETE("/:id", catalog.DeleteService)
		}

		sessionGroup := api.Group("/sessions")
		{
			sessionGroup.GET("", sessions.GetSessions)
			sessionGroup.POST("", sessions.CreateSession)
			sessionGroup.GET("/active/all", sessions.GetActiveSessions)
			sessionGroup.GET("/:id", sessions.GetSession)
			sessionGroup.PUT("/:id", sessions.UpdateSession)
			sessionGroup.POST("/:id/close", sessions.CloseSession)
			sessionGroup.POST("/:id/services", sessions.AddService)
			sessionGroup.DELETE("/:id/services/:service_id", sessions.RemoveService)
		}

		reportGroup := api.Group("/reports")
		{
			reportGroup.GET("/daily", reports.GetDailyReport)
			reportGroup.GET("/monthly", reports.GetMonthlyReport)
			reportGroup.GET("/stats", reports.GetGlobalStats)
			reportGroup.GET("/custom", reports.GetCustomReport)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.RespondWithError(c, 404, "Route not found")
	})

	return r
}
