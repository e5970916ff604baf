package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Photo-Intake/internal/entity"
	"github.com/andreyxaxa/Photo-Intake/pkg/postgres"
	"github.com/andreyxaxa/Photo-Intake/pkg/types/errs"
)

const (
	// Table
	intentsTable = "upload_intents"

	// Columns
	intentSubmissionIDColumn = "submission_id"
	intentFolderColumn       = "folder"
	intentImageCountColumn   = "image_count"
	intentStatusColumn       = "status"
	intentCreatedAtColumn    = "created_at"
	intentResolvedAtColumn   = "resolved_at"
)

type UploadIntentRepo struct {
	*postgres.Postgres
}

func NewUploadIntentRepo(pg *postgres.Postgres) *UploadIntentRepo {
	return &UploadIntentRepo{pg}
}

func (r *UploadIntentRepo) Create(ctx context.Context, intent *entity.UploadIntent) error {
	sql, args, err := r.Builder.
		Insert(intentsTable).
		Columns(
			intentSubmissionIDColumn,
			intentFolderColumn,
			intentImageCountColumn,
			intentStatusColumn,
			intentCreatedAtColumn,
		).
		Values(
			intent.SubmissionID,
			intent.Folder,
			intent.ImageCount,
			intent.Status,
			intent.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("UploadIntentRepo - Create - r.Builder.ToSql: %w", err)
	}

	_, err = r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("UploadIntentRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *UploadIntentRepo) MarkCommitted(ctx context.Context, submissionID string) error {
	err := r.resolve(ctx, submissionID, entity.IntentCommitted)
	if err != nil {
		return fmt.Errorf("UploadIntentRepo - MarkCommitted: %w", err)
	}

	return nil
}

func (r *UploadIntentRepo) MarkAborted(ctx context.Context, submissionID string) error {
	err := r.resolve(ctx, submissionID, entity.IntentAborted)
	if err != nil {
		return fmt.Errorf("UploadIntentRepo - MarkAborted: %w", err)
	}

	return nil
}

// resolve moves a pending intent to its final state. Resolved intents are
// never touched again.
func (r *UploadIntentRepo) resolve(ctx context.Context, submissionID string, status entity.IntentStatus) error {
	sql, args, err := r.Builder.
		Update(intentsTable).
		Set(intentStatusColumn, status).
		Set(intentResolvedAtColumn, time.Now()).
		Where(squirrel.And{
			squirrel.Eq{intentSubmissionIDColumn: submissionID},
			squirrel.Eq{intentStatusColumn: entity.IntentPending},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("r.Builder.ToSql: %w", err)
	}

	tag, err := r.GetExecutor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return errs.ErrRecordNotFound
	}

	return nil
}

func (r *UploadIntentRepo) GetStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entity.UploadIntent, error) {
	sql, args, err := r.Builder.
		Select(
			intentSubmissionIDColumn,
			intentFolderColumn,
			intentImageCountColumn,
			intentStatusColumn,
			intentCreatedAtColumn,
			intentResolvedAtColumn,
		).
		From(intentsTable).
		Where(squirrel.And{
			squirrel.Eq{intentStatusColumn: entity.IntentPending},
			squirrel.Lt{intentCreatedAtColumn: olderThan},
		}).
		OrderBy(intentCreatedAtColumn + " ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("UploadIntentRepo - GetStalePending - r.Builder.ToSql: %w", err)
	}

	rows, err := r.GetExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("UploadIntentRepo - GetStalePending - executor.Query: %w", err)
	}
	defer rows.Close()

	intents := make([]*entity.UploadIntent, 0, limit)
	for rows.Next() {
		var intent entity.UploadIntent
		err = rows.Scan(
			&intent.SubmissionID,
			&intent.Folder,
			&intent.ImageCount,
			&intent.Status,
			&intent.CreatedAt,
			&intent.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("UploadIntentRepo - GetStalePending - rows.Scan: %w", err)
		}
		intents = append(intents, &intent)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("UploadIntentRepo - GetStalePending - rows.Err: %w", err)
	}

	return intents, nil
}
