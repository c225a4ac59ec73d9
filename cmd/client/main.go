package main

import (
	"context"
	"log"
	"os"

	"lifeweeks/internal/buildinfo"
	"lifeweeks/internal/client/cli"
	"lifeweeks/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
