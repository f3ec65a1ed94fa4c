package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gridpulse/internal/api/handlers"
	"gridpulse/internal/api/middleware"
	"gridpulse/internal/config"
	"gridpulse/internal/data"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("API_ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// The registry is optional; without it series keep their input order
	// and the distance proxy uses that.
	var locations *data.LocationList
	if cfg.Market.LocationsFile != "" {
		locations, err = data.LoadLocations(cfg.Market.LocationsFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Market.LocationsFile).Msg("locations file not loaded")
		}
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	reconstructHandler := handlers.NewReconstructHandler(cfg)
	spikesHandler := handlers.NewSpikesHandler(cfg, locations)
	settleHandler := handlers.NewSettleHandler(cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/reconstruct", reconstructHandler.Reconstruct)
		api.POST("/spikes", spikesHandler.Detect)
		api.POST("/settle", settleHandler.Settle)
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting API server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
