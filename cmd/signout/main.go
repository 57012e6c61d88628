package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/signout/internal/app"
	"github.com/dmitrijs2005/signout/internal/cli"
	"github.com/dmitrijs2005/signout/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		if !errors.Is(err, cli.ErrTooManyAttempts) {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}

}
