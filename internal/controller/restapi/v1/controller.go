package v1

import (
	"github.com/andreyxaxa/Photo-Intake/internal/usecase"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
)

type V1 struct {
	sub    usecase.SubmissionUseCase
	dash   usecase.DashboardUseCase
	logger logger.Interface
}
