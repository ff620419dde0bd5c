package main

import (
	"context"
	"log"

	"github.com/clientpro-app/clientpro/internal/relay"
	"github.com/clientpro-app/clientpro/internal/relay/config"
)

func main() {
	cfg := config.LoadConfig()
	app, err := relay.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(context.Background())
}
