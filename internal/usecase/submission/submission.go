package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultMaxImages    = 33
	_defaultMaxTotalSize = 50 * 1024 * 1024
)

type Limits struct {
	MaxImages     int
	MaxTotalSize  int64
	UploadTimeout time.Duration
	// Concurrency caps parallel uploads of one batch, 0 means unbounded.
	Concurrency int
}

type UseCase struct {
	media       repo.MediaGateway
	submissions repo.SubmissionRepo
	intents     repo.UploadIntentRepo
	outbox      repo.OutboxRepo
	transactor  repo.Transactor

	limits Limits
	logger logger.Interface
}

func New(
	media repo.MediaGateway,
	submissions repo.SubmissionRepo,
	intents repo.UploadIntentRepo,
	outbox repo.OutboxRepo,
	transactor repo.Transactor,
	limits Limits,
	l logger.Interface,
) *UseCase {
	if limits.MaxImages <= 0 {
		limits.MaxImages = _defaultMaxImages
	}
	if limits.MaxTotalSize <= 0 {
		limits.MaxTotalSize = _defaultMaxTotalSize
	}

	return &UseCase{
		media:       media,
		submissions: submissions,
		intents:     intents,
		outbox:      outbox,
		transactor:  transactor,
		limits:      limits,
		logger:      l,
	}
}

func (uc *UseCase) validate(req dto.IngestRequest) error {
	if len(req.Images) == 0 {
		return errs.ErrNoImages
	}

	// the first file pushing the running total over the cap decides
	var total int64
	for _, img := range req.Images {
		total += img.Size
		if total > uc.limits.MaxTotalSize {
			return errs.ErrPayloadTooLarge
		}
	}

	if len(req.Images) > uc.limits.MaxImages {
		return errs.ErrTooManyImages
	}

	if req.UserInfo == nil || !req.UserInfo.Valid() {
		return errs.ErrInvalidUserInfo
	}

	return nil
}

func (uc *UseCase) Ingest(ctx context.Context, req dto.IngestRequest) (dto.IngestResult, error) {
	err := uc.validate(req)
	if err != nil {
		return dto.IngestResult{}, fmt.Errorf("SubmissionUseCase - Ingest - uc.validate: %w", err)
	}

	now := time.Now().UTC()

	submissionID, err := entity.NewSubmissionID(now)
	if err != nil {
		return dto.IngestResult{}, fmt.Errorf("SubmissionUseCase - Ingest: %w", err)
	}

	userIdentifier := req.UserInfo.Identifier()
	folder := entity.SubmissionFolder(userIdentifier, submissionID)

	// 1. intent first, so a crash mid-upload is visible to the reconciler
	err = uc.intents.Create(ctx, &entity.UploadIntent{
		SubmissionID: submissionID,
		Folder:       folder,
		ImageCount:   len(req.Images),
		Status:       entity.IntentPending,
		CreatedAt:    now,
	})
	if err != nil {
		return dto.IngestResult{}, fmt.Errorf("SubmissionUseCase - Ingest - uc.intents.Create: %w", err)
	}

	// 2. every image in parallel, all or nothing
	images, err := uc.uploadAll(ctx, folder, req.Images)
	if err != nil {
		uc.compensate(ctx, submissionID, folder)

		return dto.IngestResult{}, fmt.Errorf("SubmissionUseCase - Ingest - uc.uploadAll: %w: %w", errs.ErrUpstream, err)
	}

	// 3. one whole record
	sub := &entity.Submission{
		SubmissionID:     submissionID,
		UserInfo:         *req.UserInfo,
		UserIdentifier:   userIdentifier,
		Images:           images,
		Status:           entity.SubmissionPending,
		CreatedAt:        now,
		ProcessedAt:      nil,
		CloudinaryFolder: folder,
	}

	err = uc.submissions.Insert(ctx, sub)
	if err != nil {
		uc.compensate(ctx, submissionID, folder)

		return dto.IngestResult{}, fmt.Errorf("SubmissionUseCase - Ingest - uc.submissions.Insert: %w", err)
	}

	// 4. the record is durable; a failed commit only delays the event
	err = uc.commit(context.WithoutCancel(ctx), sub)
	if err != nil {
		uc.logger.Warn("SubmissionUseCase - Ingest - intent %s left pending: %v", submissionID, err)
	}

	return dto.IngestResult{
		SubmissionID: submissionID,
		ImageCount:   len(images),
		Folder:       folder,
	}, nil
}

func (uc *UseCase) uploadAll(ctx context.Context, folder string, files []dto.ImageFile) ([]entity.SubmissionImage, error) {
	if uc.limits.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.limits.UploadTimeout)
		defer cancel()
	}

	images := make([]entity.SubmissionImage, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if uc.limits.Concurrency > 0 {
		g.SetLimit(uc.limits.Concurrency)
	}
	for i, f := range files {
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Name, err)
			}
			defer rc.Close()

			obj, err := uc.media.Upload(gctx, folder, entity.ObjectName(i, imageExt(f)), rc, f.Size, imageContentType(f))
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}

			images[i] = entity.SubmissionImage{
				RemoteID:     obj.RemoteID,
				URL:          obj.URL,
				OriginalName: f.Name,
				Processed:    false,
				ProcessedURL: nil,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return images, nil
}

// compensate removes whatever reached the media host and aborts the intent.
// When the delete fails the intent stays pending and the reconciler retries.
func (uc *UseCase) compensate(ctx context.Context, submissionID, folder string) {
	ctx = context.WithoutCancel(ctx)

	n, err := uc.media.DeleteFolder(ctx, folder)
	if err != nil {
		uc.logger.Error(err, "SubmissionUseCase - compensate - uc.media.DeleteFolder")

		return
	}

	err = uc.intents.MarkAborted(ctx, submissionID)
	if err != nil {
		uc.logger.Error(err, "SubmissionUseCase - compensate - uc.intents.MarkAborted")

		return
	}

	uc.logger.Info("SubmissionUseCase - compensate - %s aborted, %d objects removed", submissionID, n)
}

// commit resolves the intent and queues the created event in one transaction.
func (uc *UseCase) commit(ctx context.Context, sub *entity.Submission) error {
	return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.intents.MarkCommitted(ctx, sub.SubmissionID); err != nil {
			return fmt.Errorf("SubmissionUseCase - commit - uc.intents.MarkCommitted: %w", err)
		}

		event, err := uc.createOutboxEvent(sub)
		if err != nil {
			return fmt.Errorf("SubmissionUseCase - commit: %w", err)
		}

		if err := uc.outbox.Create(ctx, event); err != nil {
			return fmt.Errorf("SubmissionUseCase - commit - uc.outbox.Create: %w", err)
		}

		return nil
	})
}

func (uc *UseCase) Delete(ctx context.Context, submissionID string) (dto.DeleteResult, error) {
	// 1. the record tells us which folder to drop
	sub, err := uc.submissions.FindOne(ctx, submissionID)
	if err != nil {
		return dto.DeleteResult{}, fmt.Errorf("SubmissionUseCase - Delete - uc.submissions.FindOne: %w", err)
	}

	// 2. remote cleanup is best effort
	if sub.CloudinaryFolder != "" {
		n, err := uc.media.DeleteFolder(ctx, sub.CloudinaryFolder)
		if err != nil {
			uc.logger.Warn("SubmissionUseCase - Delete - folder %s kept: %v", sub.CloudinaryFolder, err)
		} else {
			uc.logger.Debug("SubmissionUseCase - Delete - %d objects removed from %s", n, sub.CloudinaryFolder)
		}
	}

	// 3. the record itself
	deleted, err := uc.submissions.DeleteOne(ctx, submissionID)
	if err != nil {
		return dto.DeleteResult{}, fmt.Errorf("SubmissionUseCase - Delete - uc.submissions.DeleteOne: %w", err)
	}

	if deleted == 0 {
		return dto.DeleteResult{}, fmt.Errorf("SubmissionUseCase - Delete: %w", errs.ErrDeleteFailed)
	}

	return dto.DeleteResult{
		SubmissionID:     submissionID,
		CloudinaryFolder: sub.CloudinaryFolder,
	}, nil
}

func (uc *UseCase) MarkProcessed(ctx context.Context, ev dto.ProcessedEvent) error {
	if ev.SubmissionID == "" {
		return fmt.Errorf("SubmissionUseCase - MarkProcessed - empty submissionId: %w", errs.ErrInvalidEvent)
	}

	at := time.Now().UTC()
	if ev.ProcessedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ev.ProcessedAt)
		if err != nil {
			return fmt.Errorf("SubmissionUseCase - MarkProcessed - time.Parse: %w: %w", errs.ErrInvalidEvent, err)
		}
		at = parsed.UTC()
	}

	err := uc.submissions.MarkProcessed(ctx, ev.SubmissionID, at, ev.Images)
	if err != nil {
		return fmt.Errorf("SubmissionUseCase - MarkProcessed - uc.submissions.MarkProcessed: %w", err)
	}

	return nil
}

// ReconcileStale resolves intents still pending before olderThan and returns
// how many were settled.
func (uc *UseCase) ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	intents, err := uc.intents.GetStalePending(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("SubmissionUseCase - ReconcileStale - uc.intents.GetStalePending: %w", err)
	}

	resolved := 0
	for _, intent := range intents {
		if ctx.Err() != nil {
			break
		}

		err = uc.reconcile(ctx, intent)
		if err != nil {
			uc.logger.Error(err, "SubmissionUseCase - ReconcileStale - uc.reconcile")

			continue
		}
		resolved++
	}

	return resolved, nil
}

func (uc *UseCase) reconcile(ctx context.Context, intent *entity.UploadIntent) error {
	sub, err := uc.submissions.FindOne(ctx, intent.SubmissionID)
	switch {
	case err == nil:
		// inserted, but the commit never landed
		return uc.commit(ctx, sub)
	case errors.Is(err, errs.ErrRecordNotFound):
		_, err = uc.media.DeleteFolder(ctx, intent.Folder)
		if err != nil {
			return fmt.Errorf("SubmissionUseCase - reconcile - uc.media.DeleteFolder: %w", err)
		}

		err = uc.intents.MarkAborted(ctx, intent.SubmissionID)
		if err != nil {
			return fmt.Errorf("SubmissionUseCase - reconcile - uc.intents.MarkAborted: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("SubmissionUseCase - reconcile - uc.submissions.FindOne: %w", err)
	}
}

func (uc *UseCase) Health(ctx context.Context) error {
	err := uc.submissions.Ping(ctx)
	if err != nil {
		return fmt.Errorf("SubmissionUseCase - Health: %w", err)
	}

	return nil
}
