package v1

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/andreyxaxa/Photo-Intake/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	imageFieldPrefix = "image_"
	userInfoField    = "userInfo"

	msgStoreAuth = "Database connection failed. Please check your database credentials."
)

// @Summary  	Upload a submission
// @Description Stores every image_N part under one remote folder and records the submission
// @Tags 		submissions
// @Accept 		mpfd
// @Produce 	json
// @Param 		userInfo formData string true "JSON {email, name, project}"
// @Param 		image_0  formData file   true "Image, repeat as image_1..image_32"
// @Success 	200 {object} response.Upload
// @Failure 	400 {object} response.Error "No images, too many images or bad userInfo"
// @Failure 	413 {object} response.Error "Total size over the limit"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/api/upload [post]
func (r *V1) upload(ctx *fiber.Ctx) error {
	// 1. parse the form, a non-multipart body simply has no images
	var (
		images   []dto.ImageFile
		userInfo *entity.UserInfo
	)

	form, err := ctx.MultipartForm()
	if err == nil {
		images = imageParts(form)
		userInfo = parseUserInfo(form)
	}

	// 2. validate and store
	res, err := r.sub.Ingest(ctx.UserContext(), dto.IngestRequest{
		UserInfo: userInfo,
		Images:   images,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNoImages):
			return errorResponse(ctx, http.StatusBadRequest, "No images provided")
		case errors.Is(err, errs.ErrPayloadTooLarge):
			return errorResponse(ctx, http.StatusRequestEntityTooLarge, "Total file size exceeds limit")
		case errors.Is(err, errs.ErrTooManyImages):
			return errorResponse(ctx, http.StatusBadRequest, "Too many images")
		case errors.Is(err, errs.ErrInvalidUserInfo):
			return errorResponse(ctx, http.StatusBadRequest, "Invalid user info")
		}

		r.logger.Error(err, "restapi - v1 - upload")

		if errors.Is(err, errs.ErrStoreAuth) {
			return errorResponse(ctx, http.StatusInternalServerError, msgStoreAuth)
		}

		return errorResponse(ctx, http.StatusInternalServerError, "Upload failed")
	}

	// 3. response
	return ctx.Status(http.StatusOK).JSON(response.Upload{
		Success:      true,
		SubmissionID: res.SubmissionID,
		ImageCount:   res.ImageCount,
	})
}

// imageParts collects image_N file parts ordered by N. Parts whose suffix is
// not a number are ignored.
func imageParts(form *multipart.Form) []dto.ImageFile {
	type part struct {
		index int
		fh    *multipart.FileHeader
	}

	var parts []part
	for field, headers := range form.File {
		if !strings.HasPrefix(field, imageFieldPrefix) || len(headers) == 0 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimPrefix(field, imageFieldPrefix))
		if err != nil || index < 0 {
			continue
		}

		parts = append(parts, part{index: index, fh: headers[0]})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })

	images := make([]dto.ImageFile, 0, len(parts))
	for _, p := range parts {
		fh := p.fh
		images = append(images, dto.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	return images
}

// parseUserInfo returns nil when the field is absent or not a JSON object.
func parseUserInfo(form *multipart.Form) *entity.UserInfo {
	values := form.Value[userInfoField]
	if len(values) == 0 {
		return nil
	}

	var info entity.UserInfo
	if err := json.Unmarshal([]byte(values[0]), &info); err != nil {
		return nil
	}

	return &info
}
