package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gochat/internal/client/cli"
	"github.com/dmitrijs2005/gochat/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(context.Background()); err != nil {
		log.Printf("%v", err)
	}

}
