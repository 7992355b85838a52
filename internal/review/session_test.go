package review

import (
	"context"
	"errors"
	"fmt"
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

func setupSession(t *testing.T, subs []models.Submission) (*Session, *mock_repository.MockSubmissionStore) {
	ctrl := gomock.NewController(t)
	t.Cleanup(func() { ctrl.Finish() })

	store := mock_repository.NewMockSubmissionStore(ctrl)
	store.EXPECT().FindAll(gomock.Any()).Return(subs, nil).Times(1)

	s := NewSession(store, zap.NewNop(), time.UTC, Links{Spreadsheet: "https://sheets.example/x"})
	s.Load(context.Background())
	return s, store
}

func statusOf(t *testing.T, s *Session, path models.RecordPath) models.Status {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(path)
	require.GreaterOrEqual(t, i, 0)
	return s.records[i].Status
}

func threeRecords() []models.Submission {
	return []models.Submission{
		rec("1", "Budi", "SKTM", "Menunggu Verifikasi"),
		rec("2", "Siti", "SKTM Sekolah", "Selesai"),
		rec("3", "Joko", "Domisili", ""),
	}
}

func TestLoadFailureLeavesEmptySetAndMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_repository.NewMockSubmissionStore(ctrl)
	store.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("connection refused"))

	s := NewSession(store, zap.NewNop(), nil, Links{})
	s.Load(context.Background())

	v := s.View()
	assert.False(t, v.Loading)
	assert.Equal(t, MsgLoadFailed, v.LoadError)
	assert.Empty(t, v.Items)
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, 0, v.Stats[0].Value)
}

func TestApproveWritesOnceWithCompletedStatus(t *testing.T) {
	s, store := setupSession(t, threeRecords())
	path := models.NewRecordPath("owner-1", "1")

	store.EXPECT().UpdateStatus(gomock.Any(), path, models.Completed()).Return(nil).Times(1)

	require.NoError(t, s.Approve(context.Background(), path))
	assert.Equal(t, models.StatusCompleted, statusOf(t, s, path).Kind)
	assert.Equal(t, "Selesai", statusOf(t, s, path).Legacy())
}

func TestApproveRejectsNonPendingAndUnknown(t *testing.T) {
	s, _ := setupSession(t, threeRecords())

	err := s.Approve(context.Background(), models.NewRecordPath("owner-2", "2"))
	assert.ErrorIs(t, err, ErrNotPending)

	err = s.Approve(context.Background(), models.NewRecordPath("owner-1", "99"))
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = s.Approve(context.Background(), models.NewRecordPath("someone-else", "1"))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestApproveRollsBackOnWriteFailure(t *testing.T) {
	s, store := setupSession(t, threeRecords())
	path := models.NewRecordPath("owner-1", "1")
	storeErr := errors.New("permission denied")

	store.EXPECT().UpdateStatus(gomock.Any(), path, models.Completed()).Return(storeErr)

	err := s.Approve(context.Background(), path)
	assert.ErrorIs(t, err, ErrPersistFailed)
	assert.ErrorIs(t, err, storeErr)
	assert.True(t, statusOf(t, s, path).IsPending())
}

func TestRejectEmptyReasonDoesNotWrite(t *testing.T) {
	s, _ := setupSession(t, threeRecords())
	path := models.NewRecordPath("owner-3", "3")

	require.NoError(t, s.OpenReject(path))
	require.NoError(t, s.SetReason("   \t"))

	err := s.ConfirmReject(context.Background())
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.True(t, statusOf(t, s, path).IsPending())

	v := s.View()
	require.NotNil(t, v.Reject)
	assert.Equal(t, MsgReasonRequired, v.Reject.Error)
	assert.Equal(t, "Joko", v.Reject.Nama)

	require.NoError(t, s.SetReason("x"))
	assert.Empty(t, s.View().Reject.Error, "typing clears the error")
}

func TestRejectWithReason(t *testing.T) {
	s, store := setupSession(t, threeRecords())
	path := models.NewRecordPath("owner-3", "3")

	store.EXPECT().UpdateStatus(gomock.Any(), path, models.Rejected("tidak lengkap")).Return(nil).Times(1)

	require.NoError(t, s.OpenReject(path))
	require.NoError(t, s.SetReason("  tidak lengkap "))
	require.NoError(t, s.ConfirmReject(context.Background()))

	st := statusOf(t, s, path)
	assert.Equal(t, models.StatusRejected, st.Kind)
	assert.Equal(t, "Ditolak - tidak lengkap", st.Legacy())
	assert.Nil(t, s.View().Reject, "dialog closes")
}

func TestRejectRollsBackOnWriteFailure(t *testing.T) {
	s, store := setupSession(t, threeRecords())
	path := models.NewRecordPath("owner-1", "1")

	store.EXPECT().UpdateStatus(gomock.Any(), path, gomock.Any()).Return(errors.New("boom"))

	require.NoError(t, s.OpenReject(path))
	require.NoError(t, s.SetReason("KTP buram"))
	err := s.ConfirmReject(context.Background())
	assert.ErrorIs(t, err, ErrPersistFailed)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, statusOf(t, s, path).IsPending())
}

func TestOpenRejectResetsAndCloseDiscards(t *testing.T) {
	s, _ := setupSession(t, threeRecords())
	p1 := models.NewRecordPath("owner-1", "1")
	p3 := models.NewRecordPath("owner-3", "3")

	require.NoError(t, s.OpenReject(p1))
	require.NoError(t, s.SetReason("lama"))
	_ = s.SetReason("")
	_ = s.ConfirmReject(context.Background())

	require.NoError(t, s.OpenReject(p3))
	v := s.View()
	require.NotNil(t, v.Reject)
	assert.Equal(t, "3", v.Reject.RecordID)
	assert.Empty(t, v.Reject.Reason)
	assert.Empty(t, v.Reject.Error)

	s.CloseReject()
	assert.Nil(t, s.View().Reject)
	assert.ErrorIs(t, s.ConfirmReject(context.Background()), ErrNoRejectDialog)
	assert.ErrorIs(t, s.SetReason("x"), ErrNoRejectDialog)

	assert.ErrorIs(t, s.OpenReject(models.NewRecordPath("owner-2", "2")), ErrNotPending)
}

func TestFilterChangesResetPage(t *testing.T) {
	subs := make([]models.Submission, 25)
	for i := range subs {
		subs[i] = rec(fmt.Sprint(i), "Budi", "SKTM", "")
	}
	s, _ := setupSession(t, subs)

	assert.Equal(t, 3, s.SetPage(3))
	s.SetSearch("budi")
	assert.Equal(t, 1, s.View().Page)

	s.SetPage(2)
	s.SetStatusFilter(FilterPending)
	assert.Equal(t, 1, s.View().Page)

	assert.Equal(t, 2, s.NextPage())
	assert.Equal(t, 3, s.NextPage())
	assert.Equal(t, 3, s.NextPage(), "clamped at the last page")
	v := s.View()
	assert.Len(t, v.Items, 5)
	assert.Equal(t, 25, v.FilteredCount)

	assert.Equal(t, 2, s.PrevPage())
	assert.Equal(t, 1, s.SetPage(-4))
	assert.Equal(t, 1, s.PrevPage())
	assert.Equal(t, 3, s.SetPage(40))
}

func TestViewItems(t *testing.T) {
	subs := threeRecords()
	subs[0].TanggalPengajuan = models.NewTimestamp(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	s, _ := setupSession(t, subs)

	v := s.View()
	require.Len(t, v.Items, 3)
	assert.Equal(t, "/api/v1/submissions/owner-1/1", v.Items[0].DetailPath)
	assert.Equal(t, "2 Januari 2026", v.Items[0].Tanggal)
	assert.True(t, v.Items[0].CanReview)
	assert.False(t, v.Items[1].CanReview)
	assert.Equal(t, "https://sheets.example/x", v.SpreadsheetURL)
	assert.Equal(t, FilterAll, v.StatusFilter)
	assert.Equal(t, []StatItem{
		{"Total Pengajuan", 3}, {"Selesai", 1}, {"Menunggu Verifikasi", 2}, {"Ditolak", 0},
	}, v.Stats)
}

func TestConcurrentTransitionsOnDifferentRecords(t *testing.T) {
	subs := make([]models.Submission, 20)
	for i := range subs {
		subs[i] = rec(fmt.Sprint(i), "x", "SKTM", "")
	}
	s, store := setupSession(t, subs)
	store.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), models.Completed()).Return(nil).Times(20)

	var wg sync.WaitGroup
	for i := range subs {
		wg.Add(1)
		go func(p models.RecordPath) {
			defer wg.Done()
			assert.NoError(t, s.Approve(context.Background(), p))
		}(subs[i].Path())
	}
	wg.Wait()
	assert.Equal(t, 20, s.Stats().Completed)
}
