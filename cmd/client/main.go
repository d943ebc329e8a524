package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/rosebudthorn/internal/client/cli"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		stop()
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		stop()
		os.Exit(1)
	}

}
