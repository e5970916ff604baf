package v1

import (
	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func NewSubmissionRoutes(apiGroup fiber.Router, sub usecase.SubmissionUseCase, dash usecase.DashboardUseCase, l logger.Interface) {
	r := &V1{sub: sub, dash: dash, logger: l}

	{
		apiGroup.Post("/upload", r.upload)
		apiGroup.Get("/submissions", r.listSubmissions)
		apiGroup.Delete("/submissions", r.deleteSubmission)
		apiGroup.Get("/cloudinary-users", r.listRemoteUsers)
	}
}

func NewHealthRoutes(app fiber.Router, sub usecase.SubmissionUseCase, l logger.Interface) {
	r := &V1{sub: sub, logger: l}

	app.Get("/healthz", r.health)
}
