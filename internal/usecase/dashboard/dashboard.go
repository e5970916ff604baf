package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultFolderLimit = 100
	_defaultFanOut      = 8

	reasonNoFolder      = "no remote folder recorded"
	reasonListingFailed = "remote folder listing failed"
	errUserListing      = "failed to list user submissions"
)

// UseCase builds admin views by joining stored records with live
// media-host listings.
type UseCase struct {
	submissions repo.SubmissionRepo
	media       repo.MediaGateway

	folderLimit int
	fanOut      int

	logger logger.Interface
}

func New(submissions repo.SubmissionRepo, media repo.MediaGateway, fanOut int, l logger.Interface) *UseCase {
	if fanOut <= 0 {
		fanOut = _defaultFanOut
	}

	return &UseCase{
		submissions: submissions,
		media:       media,
		folderLimit: _defaultFolderLimit,
		fanOut:      fanOut,
		logger:      l,
	}
}

func (uc *UseCase) ListSubmissions(ctx context.Context, q dto.SubmissionQuery) ([]entity.EnrichedSubmission, error) {
	subs, err := uc.submissions.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("DashboardUseCase - ListSubmissions - uc.submissions.Find: %w", err)
	}

	out := make([]entity.EnrichedSubmission, len(subs))

	// enrichment never fails the listing, each item carries its own outcome
	var g errgroup.Group
	g.SetLimit(uc.fanOut)
	for i, sub := range subs {
		g.Go(func() error {
			out[i] = entity.EnrichedSubmission{
				Submission:     sub,
				CloudinaryInfo: uc.enrich(ctx, sub),
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

func (uc *UseCase) enrich(ctx context.Context, sub entity.Submission) entity.Enrichment {
	if sub.CloudinaryFolder == "" {
		return entity.Enrichment{Status: entity.EnrichmentFailed, Reason: reasonNoFolder, Resources: []entity.RemoteResource{}}
	}

	resources, err := uc.media.ListFolder(ctx, sub.CloudinaryFolder, uc.folderLimit)
	if err != nil {
		uc.logger.Warn("DashboardUseCase - enrich - %s: %v", sub.SubmissionID, err)

		return entity.Enrichment{Status: entity.EnrichmentFailed, Reason: reasonListingFailed, Resources: []entity.RemoteResource{}}
	}

	if resources == nil {
		resources = []entity.RemoteResource{}
	}

	return entity.Enrichment{
		Status:        entity.EnrichmentEnriched,
		ResourceCount: len(resources),
		Resources:     resources,
	}
}

// ListRemoteUsers walks users/*/submissions/* on the media host. filter is a
// case-insensitive substring match on the user folder name.
func (uc *UseCase) ListRemoteUsers(ctx context.Context, filter string) ([]entity.RemoteUser, error) {
	folders, err := uc.media.ListUserFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("DashboardUseCase - ListRemoteUsers - uc.media.ListUserFolders: %w", err)
	}

	needle := strings.ToLower(filter)
	var matched []entity.RemoteFolder
	for _, f := range folders {
		if f.Name == "" {
			continue
		}
		if needle == "" || strings.Contains(strings.ToLower(f.Name), needle) {
			matched = append(matched, f)
		}
	}

	users := make([]entity.RemoteUser, len(matched))

	var g errgroup.Group
	g.SetLimit(uc.fanOut)
	for i, f := range matched {
		g.Go(func() error {
			users[i] = uc.remoteUser(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	return users, nil
}

func (uc *UseCase) remoteUser(ctx context.Context, folder entity.RemoteFolder) entity.RemoteUser {
	user := entity.RemoteUser{
		UserIdentifier: folder.Name,
		FolderPath:     folder.Path,
		Submissions:    []entity.RemoteSubmission{},
	}

	subFolders, err := uc.media.ListSubmissionFolders(ctx, folder.Name)
	if err != nil {
		uc.logger.Warn("DashboardUseCase - remoteUser - %s: %v", folder.Name, err)
		user.Error = errUserListing

		return user
	}

	subs := make([]entity.RemoteSubmission, len(subFolders))

	var g errgroup.Group
	g.SetLimit(uc.fanOut)
	for i, sf := range subFolders {
		g.Go(func() error {
			subs[i] = uc.remoteSubmission(ctx, sf)
			return nil
		})
	}
	_ = g.Wait()

	var last time.Time
	for _, s := range subs {
		user.TotalImages += s.ImageCount
		user.TotalSize += s.TotalSize
		if s.CreatedAt.After(last) {
			last = s.CreatedAt
		}
	}

	user.Submissions = subs
	user.TotalSubmissions = len(subs)
	if !last.IsZero() {
		user.LastActivity = &last
	}

	return user
}

// remoteSubmission reports zero counts when the folder cannot be listed.
func (uc *UseCase) remoteSubmission(ctx context.Context, folder entity.RemoteFolder) entity.RemoteSubmission {
	sub := entity.RemoteSubmission{
		SubmissionID: folder.Name,
		FolderPath:   folder.Path,
		Resources:    []entity.RemoteResource{},
	}

	resources, err := uc.media.ListFolder(ctx, folder.Path, uc.folderLimit)
	if err != nil {
		uc.logger.Warn("DashboardUseCase - remoteSubmission - %s: %v", folder.Path, err)

		return sub
	}

	for _, r := range resources {
		sub.TotalSize += r.Bytes
		if sub.CreatedAt.IsZero() || r.CreatedAt.Before(sub.CreatedAt) {
			sub.CreatedAt = r.CreatedAt
		}
	}

	if resources != nil {
		sub.Resources = resources
	}
	sub.ImageCount = len(resources)

	return sub
}
