package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository/mock_repository"
)

func TestRegistryEnterLoadsOncePerSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_repository.NewMockSubmissionStore(ctrl)
	store.EXPECT().FindAll(gomock.Any()).Return(threeRecords(), nil).Times(2)

	reg := NewRegistry(store, zap.NewNop(), time.UTC, Links{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	s := reg.Enter(context.Background(), "jti-a", now.Add(time.Hour))
	assert.Len(t, s.View().Items, 3)

	got, ok := reg.Get("jti-a")
	require.True(t, ok)
	assert.Same(t, s, got)
	got.View()

	again := reg.Enter(context.Background(), "jti-a", now.Add(time.Hour))
	assert.NotSame(t, s, again, "re-entering starts over")
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryExpiryAndDrop(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_repository.NewMockSubmissionStore(ctrl)
	store.EXPECT().FindAll(gomock.Any()).Return([]models.Submission{}, nil).AnyTimes()

	reg := NewRegistry(store, nil, time.UTC, Links{})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	reg.Enter(context.Background(), "old", now.Add(time.Minute))
	reg.Enter(context.Background(), "keep", now.Add(time.Hour))

	now = now.Add(2 * time.Minute)
	_, ok := reg.Get("old")
	assert.False(t, ok, "expired sessions are not served")

	reg.Enter(context.Background(), "new", now.Add(time.Hour))
	assert.Equal(t, 2, reg.Len(), "expired sessions are purged on enter")

	reg.Drop("keep")
	_, ok = reg.Get("keep")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryGetOrEnterSharesOneSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_repository.NewMockSubmissionStore(ctrl)
	store.EXPECT().FindAll(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]models.Submission, error) {
		time.Sleep(50 * time.Millisecond)
		return threeRecords(), nil
	}).Times(1)

	reg := NewRegistry(store, zap.NewNop(), time.UTC, Links{})
	expires := time.Now().Add(time.Hour)

	const callers = 8
	got := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = reg.GetOrEnter(context.Background(), "jti-a", expires)
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Len(t, got[0].View().Items, 3, "every caller sees the loaded set")
	assert.Equal(t, 1, reg.Len())
}
