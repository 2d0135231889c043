package main

import (
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"taskden/internal/config"
	"taskden/internal/logging"
	"taskden/internal/serverapp"
)

func main() {
	cfgPath := os.Getenv("TASKDEN_CONFIG")
	if cfgPath == "" {
		cfgPath = "taskden.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		println("load config:", err.Error())
		os.Exit(1)
	}

	logger := logging.New(cfg.Env)

	app, err := serverapp.New(serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}
	defer func() { _ = app.Close() }()

	logger.Info().Str("addr", cfg.Addr).Msg("taskden listening")
	if err := http.ListenAndServe(cfg.Addr, app.Handler); err != nil {
		logger.Fatal().Err(err).Msg("serve")
	}
}
