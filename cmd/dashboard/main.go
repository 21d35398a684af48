package main

import (
	"context"
	"log"
	"os"

	"github.com/glycorisk/riskdash/internal/app"
	"github.com/glycorisk/riskdash/internal/buildinfo"
	"github.com/glycorisk/riskdash/internal/config"
	"github.com/glycorisk/riskdash/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger, "riskdash-dashboard")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = a.Close(context.Background()) }()

	if err := a.RunServer(ctx); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
	}
}
