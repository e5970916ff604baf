package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo/mocks"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
)

func newUseCase(subs *mocks.Submissions, media *mocks.Media) *UseCase {
	return New(subs, media, 4, logger.NewWithWriter("error", io.Discard))
}

func seed(subs *mocks.Submissions, media *mocks.Media, id, user string, n int, at time.Time) string {
	folder := entity.SubmissionFolder(user, id)
	for i := 0; i < n; i++ {
		media.Objects[folder+"/"+entity.ObjectName(i, ".jpg")] = 100
	}
	subs.Records[id] = entity.Submission{
		SubmissionID:     id,
		UserIdentifier:   user,
		CloudinaryFolder: folder,
		Status:           entity.SubmissionPending,
		CreatedAt:        at,
	}

	return folder
}

func TestListSubmissions_EnrichesNewestFirst(t *testing.T) {
	subs, media := mocks.NewSubmissions(), mocks.NewMedia()
	now := time.Now()
	seed(subs, media, "sub_old", "jane", 2, now.Add(-time.Hour))
	seed(subs, media, "sub_new", "jane", 3, now)
	seed(subs, media, "sub_bob", "bob", 1, now.Add(-time.Minute))

	out, err := newUseCase(subs, media).ListSubmissions(context.Background(), dto.SubmissionQuery{User: "jane", Limit: 50})
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 || out[0].SubmissionID != "sub_new" || out[1].SubmissionID != "sub_old" {
		t.Fatalf("unexpected order %+v", out)
	}
	if out[0].CloudinaryInfo.Status != entity.EnrichmentEnriched || out[0].CloudinaryInfo.ResourceCount != 3 {
		t.Errorf("unexpected enrichment %+v", out[0].CloudinaryInfo)
	}
}

func TestListSubmissions_EnrichmentFailureIsTyped(t *testing.T) {
	subs, media := mocks.NewSubmissions(), mocks.NewMedia()
	bad := seed(subs, media, "sub_bad", "jane", 1, time.Now())
	seed(subs, media, "sub_ok", "jane", 1, time.Now().Add(-time.Second))
	media.FailList[bad] = true

	out, err := newUseCase(subs, media).ListSubmissions(context.Background(), dto.SubmissionQuery{Limit: 50})
	if err != nil {
		t.Fatalf("one failed listing must not fail the page: %v", err)
	}

	byID := map[string]entity.Enrichment{}
	for _, s := range out {
		byID[s.SubmissionID] = s.CloudinaryInfo
	}

	if e := byID["sub_bad"]; e.Status != entity.EnrichmentFailed || e.Reason == "" || e.Resources == nil {
		t.Errorf("sub_bad enrichment = %+v", e)
	}
	if e := byID["sub_ok"]; e.Status != entity.EnrichmentEnriched {
		t.Errorf("sub_ok enrichment = %+v", e)
	}
}

func TestListSubmissions_StoreFailure(t *testing.T) {
	subs := mocks.NewSubmissions()
	subs.FindErr = errors.New("boom")

	_, err := newUseCase(subs, mocks.NewMedia()).ListSubmissions(context.Background(), dto.SubmissionQuery{Limit: 50})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestListRemoteUsers(t *testing.T) {
	media := mocks.NewMedia()
	media.Objects["users/Jane_Doe/submissions/sub_1/image_0.jpg"] = 100
	media.Objects["users/Jane_Doe/submissions/sub_1/image_1.jpg"] = 50
	media.Objects["users/Jane_Doe/submissions/sub_2/image_0.jpg"] = 25
	media.Objects["users/bob/submissions/sub_3/image_0.jpg"] = 10
	uc := newUseCase(mocks.NewSubmissions(), media)

	users, err := uc.ListRemoteUsers(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}

	users, err = uc.ListRemoteUsers(context.Background(), "jane")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("case-insensitive filter matched %d users, want 1", len(users))
	}

	u := users[0]
	if u.UserIdentifier != "Jane_Doe" || u.FolderPath != "users/Jane_Doe" {
		t.Errorf("unexpected user %+v", u)
	}
	if u.TotalSubmissions != 2 || u.TotalImages != 3 || u.TotalSize != 175 {
		t.Errorf("totals = %d/%d/%d, want 2/3/175", u.TotalSubmissions, u.TotalImages, u.TotalSize)
	}
	if u.LastActivity == nil {
		t.Error("lastActivity must be set")
	}
}

func TestListRemoteUsers_PartialFailures(t *testing.T) {
	media := mocks.NewMedia()
	media.Objects["users/jane/submissions/sub_1/image_0.jpg"] = 100
	media.Objects["users/jane/submissions/sub_2/image_0.jpg"] = 100
	media.Objects["users/bob/submissions/sub_3/image_0.jpg"] = 10
	media.FailUser["bob"] = true
	media.FailList["users/jane/submissions/sub_2"] = true

	users, err := newUseCase(mocks.NewSubmissions(), media).ListRemoteUsers(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	for _, u := range users {
		switch u.UserIdentifier {
		case "bob":
			if u.Error == "" || u.TotalSubmissions != 0 || u.Submissions == nil {
				t.Errorf("bob = %+v, want error entry", u)
			}
		case "jane":
			if u.Error != "" || u.TotalSubmissions != 2 || u.TotalImages != 1 {
				t.Errorf("jane = %+v, want failed submission counted as zero", u)
			}
		}
	}
}

func TestListRemoteUsers_EnumerationFailure(t *testing.T) {
	media := mocks.NewMedia()
	media.FailUsers = true

	_, err := newUseCase(mocks.NewSubmissions(), media).ListRemoteUsers(context.Background(), "")
	if err == nil {
		t.Fatal("expected error")
	}
}
