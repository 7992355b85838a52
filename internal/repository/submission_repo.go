package repository

import (
	"context"
	"fmt"

	"github.com/waygalih/suratdesa/internal/db"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/pkg/oxidb"
)

// SubmissionRepo stores submissions in one OxiDB collection; the owner id is
// a field, so a record path is matched on both owner and id.
type SubmissionRepo struct {
	pool *db.Pool
}

func NewSubmissionRepo(pool *db.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	c := r.pool.Get()
	if err := c.CreateIndex(ctx, models.SubmissionsCollection, models.FieldUserID); err != nil {
		return err
	}
	return c.CreateCompositeIndex(ctx, models.SubmissionsCollection,
		[]string{models.FieldUserID, models.FieldTanggalPengajuan})
}

func (r *SubmissionRepo) FindAll(ctx context.Context) ([]models.Submission, error) {
	c := r.pool.Get()
	docs, err := c.Find(ctx, models.SubmissionsCollection, map[string]any{}, &oxidb.FindOptions{
		Sort: map[string]any{models.FieldTanggalPengajuan: -1},
	})
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	subs := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		subs = append(subs, docToSubmission(d, oxidbID(d)))
	}
	return subs, nil
}

func (r *SubmissionRepo) FindByPath(ctx context.Context, path models.RecordPath) (*models.Submission, error) {
	c := r.pool.Get()
	doc, err := c.FindOne(ctx, models.SubmissionsCollection, pathQuery(path))
	if err != nil {
		return nil, fmt.Errorf("find submission %s: %w", path, err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	sub := docToSubmission(doc, oxidbID(doc))
	return &sub, nil
}

func (r *SubmissionRepo) UpdateStatus(ctx context.Context, path models.RecordPath, status models.Status) error {
	c := r.pool.Get()
	res, err := c.UpdateOne(ctx, models.SubmissionsCollection, pathQuery(path), map[string]any{
		"$set": map[string]any{models.FieldStatus: status.Legacy()},
	})
	if err != nil {
		return fmt.Errorf("update status %s: %w", path, err)
	}
	if res.Matched == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubmissionRepo) Create(ctx context.Context, sub *models.Submission) (string, error) {
	c := r.pool.Get()
	id, err := c.Insert(ctx, models.SubmissionsCollection, submissionToDoc(sub, rfc3339))
	if err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}
	return id, nil
}

// InsertMany bulk-loads submissions, used by the demo seeder.
func (r *SubmissionRepo) InsertMany(ctx context.Context, subs []models.Submission) ([]string, error) {
	docs := make([]map[string]any, len(subs))
	for i := range subs {
		docs[i] = submissionToDoc(&subs[i], rfc3339)
	}
	return r.pool.Get().InsertMany(ctx, models.SubmissionsCollection, docs)
}

// Drop removes the whole collection.
func (r *SubmissionRepo) Drop(ctx context.Context) error {
	return r.pool.Get().DropCollection(ctx, models.SubmissionsCollection)
}

func pathQuery(path models.RecordPath) map[string]any {
	return map[string]any{
		"_id":              toNumericID(path.RecordID),
		models.FieldUserID: path.OwnerID,
	}
}
