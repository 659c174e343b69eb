package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/coffyapp/coffy-client/internal/client/cli"
	"github.com/coffyapp/coffy-client/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Run(ctx)
}
