package restapi

import (
	"github.com/andreyxaxa/Photo-Intake/config"
	// generated by swag init
	_ "github.com/andreyxaxa/Photo-Intake/docs"
	v1 "github.com/andreyxaxa/Photo-Intake/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// @title Photo intake
// @version 1.0.0
// @host localhost:8080
// @BasePath /
func NewRouter(app *fiber.App, cfg *config.Config, sub usecase.SubmissionUseCase, dash usecase.DashboardUseCase, l logger.Interface) {
	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path}\n",
	}))
	app.Use(cors.New())

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Probes
	v1.NewHealthRoutes(app, sub, l)

	// Routers
	apiGroup := app.Group("/api")
	{
		v1.NewSubmissionRoutes(apiGroup, sub, dash, l)
	}
}
