package persistent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/andreyxaxa/Photo-Intake/internal/dto"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/mongodb"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	// Collection
	submissionsCollection = "submissions"

	// Fields
	submissionIDField      = "submissionId"
	userIdentifierField    = "userIdentifier"
	statusField            = "status"
	createdAtField         = "createdAt"
	processedAtField       = "processedAt"
	imagesField            = "images"
	imageRemoteIDField     = "remoteId"
	imageProcessedField    = "processed"
	imageProcessedURLField = "processedUrl"
)

type SubmissionRepo struct {
	m    *mongodb.Mongo
	coll *mongo.Collection
}

func NewSubmissionRepo(m *mongodb.Mongo) *SubmissionRepo {
	return &SubmissionRepo{
		m:    m,
		coll: m.Collection(submissionsCollection),
	}
}

// EnsureIndexes creates the unique submissionId index and the per-user
// listing index. Safe to call on every start.
func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: submissionIDField, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("submissionId_unique"),
		},
		{
			Keys:    bson.D{{Key: userIdentifierField, Value: 1}, {Key: createdAtField, Value: -1}},
			Options: options.Index().SetName("userIdentifier_createdAt"),
		},
	})
	if err != nil {
		return fmt.Errorf("SubmissionRepo - EnsureIndexes - r.coll.Indexes.CreateMany: %w", mongodb.Classify(err))
	}

	return nil
}

func (r *SubmissionRepo) Insert(ctx context.Context, s *entity.Submission) error {
	_, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Insert - r.coll.InsertOne: %w", mongodb.Classify(err))
	}

	return nil
}

func (r *SubmissionRepo) Find(ctx context.Context, q dto.SubmissionQuery) ([]entity.Submission, error) {
	filter := bson.D{}
	if q.User != "" {
		filter = append(filter, bson.E{Key: userIdentifierField, Value: q.User})
	}
	if q.SubmissionID != "" {
		filter = append(filter, bson.E{Key: submissionIDField, Value: q.SubmissionID})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: createdAtField, Value: -1}}).
		SetLimit(int64(q.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("SubmissionRepo - Find - r.coll.Find: %w", mongodb.Classify(err))
	}

	submissions := make([]entity.Submission, 0, q.Limit)
	err = cursor.All(ctx, &submissions)
	if err != nil {
		return nil, fmt.Errorf("SubmissionRepo - Find - cursor.All: %w", mongodb.Classify(err))
	}

	return submissions, nil
}

func (r *SubmissionRepo) FindOne(ctx context.Context, submissionID string) (*entity.Submission, error) {
	var s entity.Submission

	err := r.coll.FindOne(ctx, bson.D{{Key: submissionIDField, Value: submissionID}}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("SubmissionRepo - FindOne: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("SubmissionRepo - FindOne - r.coll.FindOne: %w", mongodb.Classify(err))
	}

	return &s, nil
}

func (r *SubmissionRepo) DeleteOne(ctx context.Context, submissionID string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: submissionIDField, Value: submissionID}})
	if err != nil {
		return 0, fmt.Errorf("SubmissionRepo - DeleteOne - r.coll.DeleteOne: %w", mongodb.Classify(err))
	}

	return res.DeletedCount, nil
}

// MarkProcessed flips the submission to processed and records the processed
// URL of every reported image, matched by remoteId.
func (r *SubmissionRepo) MarkProcessed(ctx context.Context, submissionID string, at time.Time, images []entity.ProcessedImage) error {
	set := bson.D{
		{Key: statusField, Value: entity.SubmissionProcessed},
		{Key: processedAtField, Value: at},
	}

	arrayFilters := make([]any, 0, len(images))
	for i, img := range images {
		ident := "img" + strconv.Itoa(i)
		path := imagesField + ".$[" + ident + "]."

		set = append(set,
			bson.E{Key: path + imageProcessedField, Value: true},
			bson.E{Key: path + imageProcessedURLField, Value: img.ProcessedURL},
		)
		arrayFilters = append(arrayFilters, bson.D{{Key: ident + "." + imageRemoteIDField, Value: img.RemoteID}})
	}

	opts := options.UpdateOne()
	if len(arrayFilters) > 0 {
		opts.SetArrayFilters(arrayFilters)
	}

	res, err := r.coll.UpdateOne(
		ctx,
		bson.D{{Key: submissionIDField, Value: submissionID}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - MarkProcessed - r.coll.UpdateOne: %w", mongodb.Classify(err))
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("SubmissionRepo - MarkProcessed: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *SubmissionRepo) Ping(ctx context.Context) error {
	err := r.m.Client.Ping(ctx, readpref.Primary())
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Ping: %w", mongodb.Classify(err))
	}

	return nil
}
