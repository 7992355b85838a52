package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/detail"
	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
)

// SubmissionService takes letter requests from residents and renders single
// records for staff.
type SubmissionService struct {
	subs    repository.SubmissionStore
	letters *letters.Registry
	loc     *time.Location
	log     *zap.Logger
	now     func() time.Time
}

func NewSubmissionService(subs repository.SubmissionStore, reg *letters.Registry, loc *time.Location, log *zap.Logger) *SubmissionService {
	return &SubmissionService{subs: subs, letters: reg, loc: loc, log: log, now: time.Now}
}

func (s *SubmissionService) Letters() []letters.Letter {
	return s.letters.All()
}

// Create validates in against the letter form and stores a pending request
// owned by userID.
func (s *SubmissionService) Create(ctx context.Context, slug, userID string, in letters.Input) (*models.Submission, error) {
	letter, ok := s.letters.Get(slug)
	if !ok {
		return nil, letters.ErrUnknownLetter
	}
	v, err := s.letters.Validate(letter, in)
	if err != nil {
		return nil, err
	}
	sub := &models.Submission{
		UserID:           userID,
		JenisSurat:       letter.Title,
		Status:           models.Pending(),
		TanggalPengajuan: models.NewTimestamp(s.now().UTC()),
		Fields:           v.Fields,
	}
	if len(v.Lampiran) > 0 {
		sub.Lampiran = v.Lampiran
	}
	id, err := s.subs.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	s.log.Info("submission created", zap.Stringer("path", sub.Path()), zap.String("letter", slug))
	return sub, nil
}

// Get renders the record at path.
func (s *SubmissionService) Get(ctx context.Context, path models.RecordPath) (*detail.Detail, error) {
	sub, err := s.subs.FindByPath(ctx, path)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d := detail.Render(sub, s.loc)
	return &d, nil
}
