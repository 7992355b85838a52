package repository

import (
	"context"
	"time"

	"github.com/waygalih/suratdesa/internal/models"
)

// WithTimeout bounds every call on store by d. A zero d returns store as is.
func WithTimeout(store SubmissionStore, d time.Duration) SubmissionStore {
	if d <= 0 {
		return store
	}
	return &timeoutStore{next: store, d: d}
}

type timeoutStore struct {
	next SubmissionStore
	d    time.Duration
}

func (s *timeoutStore) FindAll(ctx context.Context) ([]models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.next.FindAll(ctx)
}

func (s *timeoutStore) FindByPath(ctx context.Context, path models.RecordPath) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.next.FindByPath(ctx, path)
}

func (s *timeoutStore) UpdateStatus(ctx context.Context, path models.RecordPath, status models.Status) error {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.next.UpdateStatus(ctx, path, status)
}

func (s *timeoutStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.d)
	defer cancel()
	return s.next.Create(ctx, sub)
}
