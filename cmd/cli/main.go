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

	// stdout belongs to the REPL
	logger := logging.New(os.Stderr, cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger, "riskdash-cli")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = a.Close(context.Background()) }()

	a.RunCLI(ctx, os.Stdin, os.Stdout)
}
