package repository

import (
	"context"
	"errors"

	"github.com/waygalih/suratdesa/internal/models"
)

//go:generate mockgen -destination=mock_repository/mock_store.go -package=mock_repository github.com/waygalih/suratdesa/internal/repository SubmissionStore,UserStore

var (
	ErrNotFound  = errors.New("submission not found")
	ErrDuplicate = errors.New("email already registered")
)

// SubmissionStore is the record store boundary for letter requests.
type SubmissionStore interface {
	// FindAll returns every submission across all owners.
	FindAll(ctx context.Context) ([]models.Submission, error)
	FindByPath(ctx context.Context, path models.RecordPath) (*models.Submission, error)
	// UpdateStatus overwrites only the status field at path.
	UpdateStatus(ctx context.Context, path models.RecordPath, status models.Status) error
	Create(ctx context.Context, sub *models.Submission) (string, error)
}

// UserStore keeps staff and resident accounts. Finders return (nil, nil)
// when nothing matches.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (string, error)
}

// Indexer is implemented by stores that need indexes created at startup.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}
