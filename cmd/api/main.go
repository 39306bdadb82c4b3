package main

import (
	"context"
	"log"

	"keystone/internal/app/bootstrap"
)

// @title Keystone API
// @version 1.0
// @description Authentication, identity and route authorization service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("keystone api failed to build: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("keystone api close: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("keystone api exited: %v", err)
	}
}
