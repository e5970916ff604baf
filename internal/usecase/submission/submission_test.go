package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/internal/repo/mocks"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
)

const mb = 1024 * 1024

type fixture struct {
	media       *mocks.Media
	submissions *mocks.Submissions
	intents     *mocks.Intents
	outbox      *mocks.Outbox
	tx          *mocks.Transactor
	uc          *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		media:       mocks.NewMedia(),
		submissions: mocks.NewSubmissions(),
		intents:     mocks.NewIntents(),
		outbox:      mocks.NewOutbox(),
		tx:          &mocks.Transactor{},
	}
	f.uc = New(f.media, f.submissions, f.intents, f.outbox, f.tx, Limits{UploadTimeout: time.Minute},
		logger.NewWithWriter("error", io.Discard))

	return f
}

// onlyIntent returns the single intent written during a test.
func (f *fixture) onlyIntent(t *testing.T) entity.UploadIntent {
	t.Helper()

	if len(f.intents.Records) != 1 {
		t.Fatalf("got %d intents, want 1", len(f.intents.Records))
	}
	for _, in := range f.intents.Records {
		return in
	}

	return entity.UploadIntent{}
}

func images(n int, declared int64) []dto.ImageFile {
	files := make([]dto.ImageFile, n)
	for i := range files {
		files[i] = dto.ImageFile{
			Name:        fmt.Sprintf("photo_%d.jpg", i),
			ContentType: "image/jpeg",
			Size:        declared,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(make([]byte, 2048))), nil
			},
		}
	}

	return files
}

func user() *entity.UserInfo {
	return &entity.UserInfo{Email: "jane@example.com", Name: "Jane", Project: "Harbor"}
}

func TestIngest_StoresPendingSubmission(t *testing.T) {
	f := newFixture()

	res, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(3, 2048)})
	if err != nil {
		t.Fatal(err)
	}

	if res.ImageCount != 3 || !strings.HasPrefix(res.SubmissionID, "sub_") {
		t.Fatalf("unexpected result %+v", res)
	}

	sub, ok := f.submissions.Records[res.SubmissionID]
	if !ok {
		t.Fatal("submission not stored")
	}
	if sub.Status != entity.SubmissionPending || sub.ProcessedAt != nil {
		t.Errorf("status = %q, processedAt = %v", sub.Status, sub.ProcessedAt)
	}
	if sub.UserIdentifier != "jane@example.com" {
		t.Errorf("userIdentifier = %q", sub.UserIdentifier)
	}
	if !entity.ValidateFolderPath(sub.CloudinaryFolder) {
		t.Errorf("folder %q fails validation", sub.CloudinaryFolder)
	}
	if len(sub.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(sub.Images))
	}
	for i, img := range sub.Images {
		want := fmt.Sprintf("%s/image_%d.jpg", sub.CloudinaryFolder, i)
		if img.RemoteID != want {
			t.Errorf("images[%d].RemoteID = %q, want %q", i, img.RemoteID, want)
		}
		if img.OriginalName != fmt.Sprintf("photo_%d.jpg", i) {
			t.Errorf("images[%d] out of order: %q", i, img.OriginalName)
		}
	}

	if st := f.intents.Status(res.SubmissionID); st != entity.IntentCommitted {
		t.Errorf("intent status = %q, want committed", st)
	}

	events := f.outbox.Snapshot()
	if len(events) != 1 || events[0].AggregateID != res.SubmissionID || events[0].EventType != entity.EventSubmissionCreated {
		t.Fatalf("unexpected outbox %+v", events)
	}
}

func TestIngest_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.IngestRequest
		want error
	}{
		{"no images", dto.IngestRequest{UserInfo: user()}, errs.ErrNoImages},
		{"no images beats bad user", dto.IngestRequest{}, errs.ErrNoImages},
		{"60MB declared", dto.IngestRequest{UserInfo: user(), Images: images(3, 20*mb)}, errs.ErrPayloadTooLarge},
		{"size beats count", dto.IngestRequest{UserInfo: user(), Images: images(40, 2*mb)}, errs.ErrPayloadTooLarge},
		{"34 images", dto.IngestRequest{UserInfo: user(), Images: images(34, 1024)}, errs.ErrTooManyImages},
		{"missing user", dto.IngestRequest{Images: images(1, 1024)}, errs.ErrInvalidUserInfo},
		{"blank project", dto.IngestRequest{UserInfo: &entity.UserInfo{Email: "a@b.c", Name: "A"}, Images: images(1, 1024)}, errs.ErrInvalidUserInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.uc.Ingest(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			if len(f.submissions.Records) != 0 || len(f.intents.Records) != 0 || f.media.Uploads != 0 {
				t.Fatal("rejected batch must leave no trace")
			}
		})
	}
}

func TestIngest_ExactlyFiftyMegabytesIsAccepted(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(2, 25*mb)})
	if err != nil {
		t.Fatalf("50MB total must pass, got %v", err)
	}
}

func TestIngest_UploadFailureCompensates(t *testing.T) {
	f := newFixture()
	f.media.FailUploadAt = "image_1.jpg"

	_, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(3, 2048)})
	if !errors.Is(err, errs.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}

	if len(f.submissions.Records) != 0 {
		t.Fatal("no record may be inserted when an upload fails")
	}

	intent := f.onlyIntent(t)
	if intent.Status != entity.IntentAborted {
		t.Errorf("intent status = %q, want aborted", intent.Status)
	}
	if n := f.media.Count(intent.Folder); n != 0 {
		t.Errorf("%d objects left in %s", n, intent.Folder)
	}
	if len(f.outbox.Snapshot()) != 0 {
		t.Error("no event for a failed ingestion")
	}
}

func TestIngest_FailedCompensationLeavesIntentPending(t *testing.T) {
	f := newFixture()
	f.media.FailUploadAt = "image_0.jpg"
	f.media.FailDelete = true

	_, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(2, 2048)})
	if err == nil {
		t.Fatal("expected error")
	}

	if st := f.onlyIntent(t).Status; st != entity.IntentPending {
		t.Fatalf("intent status = %q, want pending for the reconciler", st)
	}
}

func TestIngest_StoreAuthFailure(t *testing.T) {
	f := newFixture()
	f.submissions.InsertErr = fmt.Errorf("insert: %w", errs.ErrStoreAuth)

	_, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(2, 2048)})
	if !errors.Is(err, errs.ErrStoreAuth) {
		t.Fatalf("err = %v, want ErrStoreAuth", err)
	}

	intent := f.onlyIntent(t)
	if f.media.Count(intent.Folder) != 0 {
		t.Error("uploaded images must be removed when the insert fails")
	}
	if intent.Status != entity.IntentAborted {
		t.Errorf("intent status = %q, want aborted", intent.Status)
	}
}

func TestIngest_CommitFailureKeepsRecord(t *testing.T) {
	f := newFixture()
	f.tx.Err = errors.New("postgres down")

	res, err := f.uc.Ingest(context.Background(), dto.IngestRequest{UserInfo: user(), Images: images(1, 2048)})
	if err != nil {
		t.Fatalf("commit failure must not fail the request: %v", err)
	}

	if _, ok := f.submissions.Records[res.SubmissionID]; !ok {
		t.Fatal("record must be stored")
	}
	if st := f.intents.Status(res.SubmissionID); st != entity.IntentPending {
		t.Errorf("intent status = %q, want pending", st)
	}
}

func TestIngest_ThenFindBySubmissionID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.uc.Ingest(ctx, dto.IngestRequest{UserInfo: user(), Images: images(5, 2048)})
	if err != nil {
		t.Fatal(err)
	}

	found, err := f.submissions.Find(ctx, dto.SubmissionQuery{SubmissionID: res.SubmissionID, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || len(found[0].Images) != 5 {
		t.Fatalf("unexpected find result %+v", found)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Delete(ctx, "sub_unknown")
	if !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}

	res, err := f.uc.Ingest(ctx, dto.IngestRequest{UserInfo: user(), Images: images(2, 2048)})
	if err != nil {
		t.Fatal(err)
	}

	del, err := f.uc.Delete(ctx, res.SubmissionID)
	if err != nil {
		t.Fatal(err)
	}
	if del.CloudinaryFolder != res.Folder {
		t.Errorf("folder = %q, want %q", del.CloudinaryFolder, res.Folder)
	}
	if f.media.Count(res.Folder) != 0 {
		t.Error("remote folder must be removed")
	}

	_, err = f.uc.Delete(ctx, res.SubmissionID)
	if !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("second delete err = %v, want ErrRecordNotFound", err)
	}
}

func TestDelete_RemoteFailureIsBestEffort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.uc.Ingest(ctx, dto.IngestRequest{UserInfo: user(), Images: images(1, 2048)})
	if err != nil {
		t.Fatal(err)
	}

	f.media.FailDelete = true

	_, err = f.uc.Delete(ctx, res.SubmissionID)
	if err != nil {
		t.Fatalf("remote failure must not block the delete: %v", err)
	}
	if _, ok := f.submissions.Records[res.SubmissionID]; ok {
		t.Fatal("record must be gone")
	}
}

func TestDelete_ZeroDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.uc.Ingest(ctx, dto.IngestRequest{UserInfo: user(), Images: images(1, 2048)})
	if err != nil {
		t.Fatal(err)
	}

	f.submissions.DeleteNoop = true

	_, err = f.uc.Delete(ctx, res.SubmissionID)
	if !errors.Is(err, errs.ErrDeleteFailed) {
		t.Fatalf("err = %v, want ErrDeleteFailed", err)
	}
}

func TestMarkProcessed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.uc.Ingest(ctx, dto.IngestRequest{UserInfo: user(), Images: images(2, 2048)})
	if err != nil {
		t.Fatal(err)
	}
	first := f.submissions.Records[res.SubmissionID].Images[0].RemoteID

	err = f.uc.MarkProcessed(ctx, dto.ProcessedEvent{
		SubmissionID: res.SubmissionID,
		ProcessedAt:  "2025-08-14T09:30:00Z",
		Images:       []entity.ProcessedImage{{RemoteID: first, ProcessedURL: "https://media.test/p/0.jpg"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	sub := f.submissions.Records[res.SubmissionID]
	if sub.Status != entity.SubmissionProcessed || sub.ProcessedAt == nil || sub.ProcessedAt.Hour() != 9 {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if !sub.Images[0].Processed || sub.Images[1].Processed {
		t.Errorf("only the reported image may be marked processed")
	}

	err = f.uc.MarkProcessed(ctx, dto.ProcessedEvent{SubmissionID: res.SubmissionID, ProcessedAt: "yesterday"})
	if !errors.Is(err, errs.ErrInvalidEvent) {
		t.Fatalf("err = %v, want ErrInvalidEvent", err)
	}

	err = f.uc.MarkProcessed(ctx, dto.ProcessedEvent{SubmissionID: "sub_missing"})
	if !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestReconcileStale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old := time.Now().Add(-time.Hour)

	// inserted record whose commit was lost
	committed := entity.Submission{
		SubmissionID:     "sub_1_aaaaaaaaa",
		UserIdentifier:   "jane@example.com",
		CloudinaryFolder: "users/jane_example_com/submissions/sub_1_aaaaaaaaa",
		Status:           entity.SubmissionPending,
		CreatedAt:        old,
	}
	f.submissions.Records[committed.SubmissionID] = committed

	// uploads landed, record never did
	orphan := "users/bob/submissions/sub_2_bbbbbbbbb"
	f.media.Objects[orphan+"/image_0.jpg"] = 10

	for _, in := range []entity.UploadIntent{
		{SubmissionID: committed.SubmissionID, Folder: committed.CloudinaryFolder, Status: entity.IntentPending, CreatedAt: old},
		{SubmissionID: "sub_2_bbbbbbbbb", Folder: orphan, Status: entity.IntentPending, CreatedAt: old},
		{SubmissionID: "sub_3_ccccccccc", Folder: "users/bob/submissions/sub_3_ccccccccc", Status: entity.IntentPending, CreatedAt: time.Now()},
	} {
		f.intents.Records[in.SubmissionID] = in
	}

	n, err := f.uc.ReconcileStale(ctx, time.Now().Add(-15*time.Minute), 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("resolved %d, want 2", n)
	}

	if st := f.intents.Status(committed.SubmissionID); st != entity.IntentCommitted {
		t.Errorf("existing record: intent %q, want committed", st)
	}
	if len(f.outbox.Snapshot()) != 1 {
		t.Error("committing a recovered record must queue its event")
	}

	if st := f.intents.Status("sub_2_bbbbbbbbb"); st != entity.IntentAborted {
		t.Errorf("orphan: intent %q, want aborted", st)
	}
	if f.media.Count(orphan) != 0 {
		t.Error("orphan folder must be removed")
	}

	if st := f.intents.Status("sub_3_ccccccccc"); st != entity.IntentPending {
		t.Errorf("fresh intent touched: %q", st)
	}
}
