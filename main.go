package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/najoro-git/CyberApp-manager/config"
	"github.com/najoro-git/CyberApp-manager/routes"
	"github.com/najoro-git/CyberApp-manager/services"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	logger.Info().Str("path", cfg.DBPath).Msg("database initialized")

	pinger := services.NewPinger()
	monitor := services.NewMonitorService(db, pinger, logger, cfg.PingInterval)
	monitor.StartScheduler()
	defer monitor.Stop()

	r := routes.SetupRouter(db, cfg, logger, monitor, pinger)

	logger.Info().Str("port", cfg.Port).Str("frontend", cfg.FrontendURL).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
