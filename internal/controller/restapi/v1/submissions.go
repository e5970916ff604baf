package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andreyxaxa/Photo-Intake/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	_defaultListLimit = 50
	_maxListLimit     = 500
)

// @Summary 	List submissions
// @Description Newest first, each enriched with the live listing of its remote folder
// @Tags 		submissions
// @Produce 	json
// @Param 		user 		 query string false "User identifier"
// @Param 		submissionId query string false "Submission ID"
// @Param 		limit 		 query int 	  false "Max results (default 50, max 500)"
// @Success 	200 {object} response.Submissions
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/submissions [get]
func (r *V1) listSubmissions(ctx *fiber.Ctx) error {
	user := ctx.Query("user")
	submissionID := ctx.Query("submissionId")
	limit := parseLimit(ctx.Query("limit"))

	subs, err := r.dash.ListSubmissions(ctx.UserContext(), dto.SubmissionQuery{
		User:         user,
		SubmissionID: submissionID,
		Limit:        limit,
	})
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listSubmissions")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve submissions")
	}

	return ctx.Status(http.StatusOK).JSON(response.Submissions{
		Success:     true,
		Submissions: subs,
		Total:       len(subs),
		Query: response.Query{
			UserIdentifier: optional(user),
			SubmissionID:   optional(submissionID),
			Limit:          limit,
		},
	})
}

// @Summary 	Delete submission
// @Description Removes the remote folder (best effort) and the stored record
// @Tags 		submissions
// @Produce 	json
// @Param		submissionId query string true "Submission ID"
// @Success		200 {object} response.Delete
// @Failure 	400 {object} response.Error "Missing submissionId"
// @Failure 	404 {object} response.Error "Submission not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/submissions [delete]
func (r *V1) deleteSubmission(ctx *fiber.Ctx) error {
	submissionID := ctx.Query("submissionId")
	if submissionID == "" {
		return errorResponse(ctx, http.StatusBadRequest, "submissionId is required")
	}

	res, err := r.sub.Delete(ctx.UserContext(), submissionID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errorResponse(ctx, http.StatusNotFound, "Submission not found")
		}
		r.logger.Error(err, "restapi - v1 - deleteSubmission")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to delete submission")
	}

	return ctx.Status(http.StatusOK).JSON(response.Delete{
		Success:          true,
		Message:          "Submission deleted successfully",
		SubmissionID:     res.SubmissionID,
		CloudinaryFolder: res.CloudinaryFolder,
	})
}

// @Summary 	List remote users
// @Description Walks the media host folders and totals every user's submissions
// @Tags 		users
// @Produce 	json
// @Param 		user query string false "Case-insensitive substring of the user identifier"
// @Success 	200 {object} response.Users
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/cloudinary-users [get]
func (r *V1) listRemoteUsers(ctx *fiber.Ctx) error {
	filter := ctx.Query("user")

	users, err := r.dash.ListRemoteUsers(ctx.UserContext(), filter)
	if err != nil {
		r.logger.Error(err, "restapi - v1 - listRemoteUsers")

		return errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve users from media host")
	}

	return ctx.Status(http.StatusOK).JSON(response.Users{
		Success:  true,
		Users:    users,
		Total:    len(users),
		Filtered: filter != "",
		Filter:   optional(filter),
	})
}

// @Summary 	Health
// @Tags 		health
// @Produce 	json
// @Success 	200 {object} response.Health
// @Failure 	503 {object} response.Error "Metadata store unreachable"
// @Router 		/healthz [get]
func (r *V1) health(ctx *fiber.Ctx) error {
	err := r.sub.Health(ctx.UserContext())
	if err != nil {
		r.logger.Error(err, "restapi - v1 - health")

		return errorResponse(ctx, http.StatusServiceUnavailable, "metadata store unavailable")
	}

	return ctx.Status(http.StatusOK).JSON(response.Health{Status: "ok"})
}

// parseLimit falls back to the default on anything that is not a positive
// number and clamps the rest to the maximum.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return _defaultListLimit
	}

	return min(limit, _maxListLimit)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
