// Package mocks holds in-memory stand-ins for the repo contracts.
package mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"github.com/google/uuid"
)

var ErrInjected = errors.New("injected failure")

// Media is an in-memory MediaGateway keyed by folder/name.
type Media struct {
	mu sync.Mutex

	Objects map[string]int64

	// FailUploadAt fails the upload of the object with this name.
	FailUploadAt string
	FailList     map[string]bool
	FailDelete   bool
	FailUsers    bool
	FailUser     map[string]bool

	Uploads       int
	DeleteFolders []string
}

func NewMedia() *Media {
	return &Media{
		Objects:  make(map[string]int64),
		FailList: make(map[string]bool),
		FailUser: make(map[string]bool),
	}
}

func (m *Media) Upload(_ context.Context, folder, name string, data io.Reader, _ int64, _ string) (entity.RemoteObject, error) {
	n, err := io.Copy(io.Discard, data)
	if err != nil {
		return entity.RemoteObject{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Uploads++
	if name == m.FailUploadAt {
		return entity.RemoteObject{}, fmt.Errorf("upload %s: %w", name, ErrInjected)
	}

	key := folder + "/" + name
	m.Objects[key] = n

	return entity.RemoteObject{RemoteID: key, URL: "https://media.test/" + key}, nil
}

func (m *Media) ListFolder(_ context.Context, prefix string, maxResults int) ([]entity.RemoteResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailList[prefix] {
		return nil, fmt.Errorf("list %s: %w", prefix, ErrInjected)
	}

	var res []entity.RemoteResource
	for _, key := range m.keys(prefix + "/") {
		if len(res) == maxResults {
			break
		}
		res = append(res, entity.RemoteResource{
			RemoteID:  key,
			URL:       "https://media.test/" + key,
			Format:    strings.TrimPrefix(path.Ext(key), "."),
			Bytes:     m.Objects[key],
			CreatedAt: time.Date(2025, 8, 13, 12, 0, 0, 0, time.UTC),
		})
	}

	return res, nil
}

func (m *Media) DeleteFolder(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteFolders = append(m.DeleteFolders, prefix)
	if m.FailDelete {
		return 0, fmt.Errorf("delete %s: %w", prefix, ErrInjected)
	}
	if !entity.ValidateFolderPath(prefix) {
		return 0, errs.ErrInvalidFolder
	}

	keys := m.keys(prefix + "/")
	for _, k := range keys {
		delete(m.Objects, k)
	}

	return len(keys), nil
}

func (m *Media) ListUserFolders(_ context.Context) ([]entity.RemoteFolder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUsers {
		return nil, ErrInjected
	}

	return m.children(entity.UsersRoot), nil
}

func (m *Media) ListSubmissionFolders(_ context.Context, user string) ([]entity.RemoteFolder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUser[user] {
		return nil, fmt.Errorf("user %s: %w", user, ErrInjected)
	}

	return m.children(entity.UsersRoot + user + "/submissions/"), nil
}

func (m *Media) Count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.keys(prefix + "/"))
}

func (m *Media) keys(prefix string) []string {
	var keys []string
	for k := range m.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return keys
}

func (m *Media) children(prefix string) []entity.RemoteFolder {
	seen := make(map[string]bool)
	var folders []entity.RemoteFolder
	for _, k := range m.keys(prefix) {
		rest := strings.TrimPrefix(k, prefix)
		i := strings.Index(rest, "/")
		if i < 0 || seen[rest[:i]] {
			continue
		}
		seen[rest[:i]] = true
		folders = append(folders, entity.RemoteFolder{Name: rest[:i], Path: prefix + rest[:i]})
	}

	return folders
}

// Submissions is an in-memory SubmissionRepo.
type Submissions struct {
	mu sync.Mutex

	Records map[string]entity.Submission

	InsertErr error
	FindErr   error
	DeleteErr error
	// DeleteNoop makes DeleteOne report zero deleted documents.
	DeleteNoop bool
	PingErr    error
}

func NewSubmissions() *Submissions {
	return &Submissions{Records: make(map[string]entity.Submission)}
}

func (s *Submissions) Insert(_ context.Context, sub *entity.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertErr != nil {
		return s.InsertErr
	}
	if _, ok := s.Records[sub.SubmissionID]; ok {
		return fmt.Errorf("duplicate %s", sub.SubmissionID)
	}
	s.Records[sub.SubmissionID] = *sub

	return nil
}

func (s *Submissions) Find(_ context.Context, q dto.SubmissionQuery) ([]entity.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FindErr != nil {
		return nil, s.FindErr
	}

	var out []entity.Submission
	for _, sub := range s.Records {
		if q.User != "" && sub.UserIdentifier != q.User {
			continue
		}
		if q.SubmissionID != "" && sub.SubmissionID != q.SubmissionID {
			continue
		}
		out = append(out, sub)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

func (s *Submissions) FindOne(_ context.Context, id string) (*entity.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FindErr != nil {
		return nil, s.FindErr
	}

	sub, ok := s.Records[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return &sub, nil
}

func (s *Submissions) DeleteOne(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return 0, s.DeleteErr
	}
	if s.DeleteNoop {
		return 0, nil
	}
	if _, ok := s.Records[id]; !ok {
		return 0, nil
	}
	delete(s.Records, id)

	return 1, nil
}

func (s *Submissions) MarkProcessed(_ context.Context, id string, at time.Time, images []entity.ProcessedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.Records[id]
	if !ok {
		return errs.ErrRecordNotFound
	}

	sub.Status = entity.SubmissionProcessed
	sub.ProcessedAt = &at
	for _, p := range images {
		for i := range sub.Images {
			if sub.Images[i].RemoteID == p.RemoteID {
				url := p.ProcessedURL
				sub.Images[i].Processed = true
				sub.Images[i].ProcessedURL = &url
			}
		}
	}
	s.Records[id] = sub

	return nil
}

func (s *Submissions) Ping(_ context.Context) error {
	return s.PingErr
}

// Intents is an in-memory UploadIntentRepo.
type Intents struct {
	mu sync.Mutex

	Records map[string]entity.UploadIntent

	CreateErr error
	CommitErr error
}

func NewIntents() *Intents {
	return &Intents{Records: make(map[string]entity.UploadIntent)}
}

func (i *Intents) Create(_ context.Context, intent *entity.UploadIntent) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.CreateErr != nil {
		return i.CreateErr
	}
	i.Records[intent.SubmissionID] = *intent

	return nil
}

func (i *Intents) MarkCommitted(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.CommitErr != nil {
		return i.CommitErr
	}

	return i.resolve(id, entity.IntentCommitted)
}

func (i *Intents) MarkAborted(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.resolve(id, entity.IntentAborted)
}

func (i *Intents) resolve(id string, status entity.IntentStatus) error {
	intent, ok := i.Records[id]
	if !ok || intent.Status != entity.IntentPending {
		return errs.ErrRecordNotFound
	}

	now := time.Now()
	intent.Status = status
	intent.ResolvedAt = &now
	i.Records[id] = intent

	return nil
}

func (i *Intents) GetStalePending(_ context.Context, olderThan time.Time, limit int) ([]*entity.UploadIntent, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var out []*entity.UploadIntent
	for _, intent := range i.Records {
		if intent.Status == entity.IntentPending && intent.CreatedAt.Before(olderThan) {
			intent := intent
			out = append(out, &intent)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (i *Intents) Status(id string) entity.IntentStatus {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.Records[id].Status
}

// Outbox is an in-memory OutboxRepo.
type Outbox struct {
	mu sync.Mutex

	Events    []*entity.OutboxEvent
	CreateErr error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Create(_ context.Context, event *entity.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.CreateErr != nil {
		return o.CreateErr
	}
	e := *event
	o.Events = append(o.Events, &e)

	return nil
}

func (o *Outbox) GetPendingEvents(_ context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*entity.OutboxEvent
	for _, e := range o.Events {
		if e.Status == entity.Pending && e.RetryCount < maxRetries && len(out) < limit {
			c := *e
			out = append(out, &c)
		}
	}

	return out, nil
}

func (o *Outbox) setStatus(IDs uuid.UUIDs, f func(e *entity.OutboxEvent)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := 0
	for _, e := range o.Events {
		for _, id := range IDs {
			if e.ID == id {
				f(e)
				n++
			}
		}
	}
	if n == 0 {
		return errs.ErrRecordNotFound
	}

	return nil
}

func (o *Outbox) MarkAsProcessingBatch(_ context.Context, IDs uuid.UUIDs) error {
	return o.setStatus(IDs, func(e *entity.OutboxEvent) { e.Status = entity.Processing })
}

func (o *Outbox) MarkAsProcessedBatch(_ context.Context, IDs uuid.UUIDs) error {
	return o.setStatus(IDs, func(e *entity.OutboxEvent) {
		now := time.Now()
		e.Status = entity.Processed
		e.ProcessedAt = &now
	})
}

func (o *Outbox) IncrementRetryCountBatch(_ context.Context, IDs uuid.UUIDs) error {
	return o.setStatus(IDs, func(e *entity.OutboxEvent) {
		e.RetryCount++
		e.Status = entity.Pending
	})
}

func (o *Outbox) MarkMaxRetriesAsFailed(_ context.Context, maxRetries int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, e := range o.Events {
		if e.Status == entity.Pending && e.RetryCount >= maxRetries {
			e.Status = entity.Failed
		}
	}

	return nil
}

func (o *Outbox) DeleteOldProcessedAndFailed(_ context.Context, olderThan time.Time) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	kept := o.Events[:0]
	var n int64
	for _, e := range o.Events {
		if (e.Status == entity.Processed || e.Status == entity.Failed) && e.CreatedAt.Before(olderThan) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	o.Events = kept

	return n, nil
}

func (o *Outbox) Snapshot() []entity.OutboxEvent {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]entity.OutboxEvent, 0, len(o.Events))
	for _, e := range o.Events {
		out = append(out, *e)
	}

	return out
}

// Transactor runs f inline. Err, when set, is returned instead of calling f.
type Transactor struct {
	Err   error
	Calls int
}

func (t *Transactor) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	t.Calls++
	if t.Err != nil {
		return t.Err
	}

	return f(ctx)
}
