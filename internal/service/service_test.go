package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/auth"
	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
	"github.com/waygalih/suratdesa/internal/repository/mock_repository"
)

const secret = "svc-secret"

type dropRecorder struct{ dropped []string }

func (d *dropRecorder) Drop(id string) { d.dropped = append(d.dropped, id) }

func setupAuth(t *testing.T) (*AuthService, *mock_repository.MockUserStore, *auth.MemoryRevoker, *dropRecorder) {
	ctrl := gomock.NewController(t)
	t.Cleanup(func() { ctrl.Finish() })
	users := mock_repository.NewMockUserStore(ctrl)
	revoker := auth.NewMemoryRevoker()
	drops := &dropRecorder{}
	return NewAuthService(users, revoker, drops, secret, time.Hour, zap.NewNop()), users, revoker, drops
}

func TestRegisterCreatesResident(t *testing.T) {
	svc, users, _, _ := setupAuth(t)
	ctx := context.Background()

	users.EXPECT().FindByEmail(ctx, "warga@desa.id").Return(nil, nil)
	users.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) (string, error) {
		assert.Equal(t, models.RoleWarga, u.Role)
		assert.True(t, auth.CheckPassword("rahasia1", u.PasswordHash))
		return "42", nil
	})

	res, err := svc.Register(ctx, " Warga@Desa.id ", "rahasia1", "Warga")
	require.NoError(t, err)
	assert.Equal(t, "42", res.User.ID)

	claims, err := auth.ValidateToken(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWarga, claims.Role)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, users, _, _ := setupAuth(t)
	ctx := context.Background()
	users.EXPECT().FindByEmail(ctx, "a@b.c").Return(&models.User{ID: "1"}, nil)

	_, err := svc.Register(ctx, "a@b.c", "x", "A")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, users, _, _ := setupAuth(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	admin := &models.User{ID: "7", Email: "admin@desa.id", PasswordHash: hash, Role: models.RoleAdmin}

	users.EXPECT().FindByEmail(ctx, "admin@desa.id").Return(admin, nil).Times(2)
	users.EXPECT().FindByEmail(ctx, "ghost@desa.id").Return(nil, nil)

	res, err := svc.Login(ctx, "admin@desa.id", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = svc.Login(ctx, "admin@desa.id", "salah")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ghost@desa.id", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMe(t *testing.T) {
	svc, users, _, _ := setupAuth(t)
	ctx := context.Background()
	users.EXPECT().FindByID(ctx, "7").Return(&models.User{ID: "7", Name: "Admin"}, nil)
	users.EXPECT().FindByID(ctx, "8").Return(nil, nil)

	me, err := svc.Me(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Admin", me.Name)

	_, err = svc.Me(ctx, "8")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutRevokesAndDropsSession(t *testing.T) {
	svc, _, revoker, drops := setupAuth(t)
	ctx := context.Background()
	_, claims, err := auth.GenerateToken(secret, "7", "a@b.c", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	revoked, _ := revoker.IsRevoked(ctx, claims.ID)
	assert.True(t, revoked)
	assert.Equal(t, []string{claims.ID}, drops.dropped)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	svc, users, _, _ := setupAuth(t)
	ctx := context.Background()

	gomock.InOrder(
		users.EXPECT().FindByEmail(ctx, "admin@desa.id").Return(nil, nil),
		users.EXPECT().Create(ctx, gomock.Any()).Return("1", nil),
		users.EXPECT().FindByEmail(ctx, "admin@desa.id").Return(&models.User{ID: "1"}, nil),
	)

	created, err := svc.SeedAdmin(ctx, "admin@desa.id", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(ctx, "admin@desa.id", "admin123")
	require.NoError(t, err)
	assert.False(t, created)
}

func newSubmissionService(t *testing.T) (*SubmissionService, *repository.MemorySubmissionStore) {
	reg, err := letters.Load()
	require.NoError(t, err)
	store := repository.NewMemorySubmissionStore()
	svc := NewSubmissionService(store, reg, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestCreateSubmission(t *testing.T) {
	svc, store := newSubmissionService(t)
	ctx := context.Background()

	in := letters.Input{
		Fields: map[string]string{
			"nama_lembaga": "Koperasi Tani", "bidang_kegiatan": "Pertanian", "tahun_berdiri": "2010",
			"alamat_lembaga": "Jl. Raya", "rt_rw": "001/001", "desa_lembaga": "Way Galih",
			"kecamatan_lembaga": "Tanjung Bintang", "kabupaten_lembaga": "Lampung Selatan",
			"nama_pendiri": "Pak Joko", "ponsel": "08123456789",
		},
		Files: map[string]string{"ktp_pendiri": "ktp.png"},
	}
	sub, err := svc.Create(ctx, "domisili-perusahaan", "u5", in)
	require.NoError(t, err)
	assert.Equal(t, "Surat Keterangan Domisili Perusahaan", sub.JenisSurat)
	assert.True(t, sub.Status.IsPending())

	stored, err := store.FindByPath(ctx, models.NewRecordPath("u5", sub.ID))
	require.NoError(t, err)
	assert.Equal(t, "Pak Joko", stored.Fields["nama_pendiri"])
	assert.Equal(t, map[string]string{"ktp_pendiri": "ktp.png"}, stored.Lampiran)

	d, err := svc.Get(ctx, stored.Path())
	require.NoError(t, err)
	assert.Equal(t, "Pak Joko", d.Nama)
	assert.Equal(t, "Jl. Raya", d.Alamat)
	assert.Equal(t, "2 Januari 2026", d.Tanggal)
	assert.Equal(t, "Menunggu Verifikasi", d.Status.Label())
}

func TestCreateSubmissionErrors(t *testing.T) {
	svc, _ := newSubmissionService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "surat-nikah", "u1", letters.Input{})
	assert.ErrorIs(t, err, letters.ErrUnknownLetter)

	_, err = svc.Create(ctx, "sktm", "u1", letters.Input{})
	var verr *letters.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.Get(ctx, models.NewRecordPath("u1", "404"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
