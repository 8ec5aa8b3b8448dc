package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/deceroacien/backend/app/controllers"
	"github.com/deceroacien/backend/internal/pkg/cache"
	"github.com/deceroacien/backend/internal/pkg/database"
	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/deceroacien/backend/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "3001")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Find the project root so the pricing file and API docs resolve when
	// running from cmd/deceroacien during development.
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "assets/config/pricing.json"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}
	if basePath != "./" {
		if err := os.Chdir(basePath); err != nil {
			panic(fmt.Sprintf("Could not change into project root: %v", err))
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   "deceroacien-backend",
		BodyLimit: 1 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// Controller wiring fails fast on missing required configuration.
	verifier, err := controllers.Initialize(context.Background())
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	// ROUTER
	router.InstallRouter(app, verifier)

	return app
}
