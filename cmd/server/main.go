package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"blockstead/server/internal/app"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the server config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{ConfigPath: configPath}); err != nil {
		log.Fatalf("%v", err)
	}
}
