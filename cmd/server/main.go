package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/audiovault/audiovault/internal/server"
	"github.com/audiovault/audiovault/internal/server/config"
)

func main() {

	// a missing .env file is fine, env vars may come from the environment
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
