package main

import (
	"context"
	"log"

	"github.com/adminkit/adminctl/internal/devserver"
)

func main() {

	ctx := context.Background()
	cfg := devserver.LoadConfig()
	app, err := devserver.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
