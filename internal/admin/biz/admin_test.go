package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/admin/models"
	usermodels "github.com/lk2023060901/ai-video-backend/internal/user/models"
	videomodels "github.com/lk2023060901/ai-video-backend/internal/video/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAdminRepo struct {
	admins    map[string]*models.Admin
	lastLogin map[int64]time.Time
}

func (r *fakeAdminRepo) GetByAdminID(_ context.Context, adminID string) (*models.Admin, error) {
	a, ok := r.admins[adminID]
	if !ok {
		return nil, ErrAdminNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAdminRepo) UpdateLastLogin(_ context.Context, adminNo int64, at time.Time) error {
	r.lastLogin[adminNo] = at
	return nil
}

type fakeDirectory struct {
	users []*usermodels.User
}

func (d *fakeDirectory) ListUsers(context.Context) ([]*usermodels.User, error) {
	return d.users, nil
}

func (d *fakeDirectory) FindByUserNos(_ context.Context, userNos []int64) (map[int64]*usermodels.User, error) {
	out := make(map[int64]*usermodels.User)
	for _, no := range userNos {
		for _, u := range d.users {
			if u.UserNo == no {
				out[no] = u
			}
		}
	}
	return out, nil
}

type fakeModerator struct {
	blocked   []*videomodels.Video
	unblocked []int64
	deleted   []int64
	err       error
}

func (m *fakeModerator) ListBlocked(context.Context) ([]*videomodels.Video, error) {
	return m.blocked, nil
}

func (m *fakeModerator) Unblock(_ context.Context, videoNo int64) error {
	m.unblocked = append(m.unblocked, videoNo)
	return m.err
}

func (m *fakeModerator) ForceDelete(_ context.Context, videoNo int64) error {
	m.deleted = append(m.deleted, videoNo)
	return m.err
}

type plainHasher struct{}

func (plainHasher) Matches(plain, hash string) bool { return "h:"+plain == hash }

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(subject, role string) (string, error) {
	return role + ":" + subject, nil
}

func strPtr(s string) *string { return &s }

func newFixture() (*AdminUseCase, *fakeAdminRepo, *fakeDirectory, *fakeModerator) {
	repo := &fakeAdminRepo{
		admins: map[string]*models.Admin{
			"root":    {AdminNo: 1, AdminID: "root", Password: "h:secret", AdminName: "관리자", AdminRole: strPtr("ROLE_ADMIN"), Status: models.StatusActive},
			"plain":   {AdminNo: 2, AdminID: "plain", Password: "h:secret", AdminName: "기본", Status: models.StatusActive},
			"blocked": {AdminNo: 3, AdminID: "blocked", Password: "h:secret", AdminName: "차단", Status: models.StatusBlock},
		},
		lastLogin: make(map[int64]time.Time),
	}
	dir := &fakeDirectory{users: []*usermodels.User{
		{UserNo: 10, UserID: "alice", Nickname: "앨리스"},
		{UserNo: 11, UserID: "bob", Nickname: "밥"},
	}}
	mod := &fakeModerator{}
	uc := NewAdminUseCase(repo, dir, mod, plainHasher{}, fakeTokens{}, zap.NewNop())
	uc.now = func() time.Time { return time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC) }
	return uc, repo, dir, mod
}

func TestAdminUseCase_Login(t *testing.T) {
	uc, repo, _, _ := newFixture()

	result, err := uc.Login(t.Context(), " root ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN:root", result.Token)
	assert.Equal(t, "ADMIN", result.Role)
	assert.Equal(t, "관리자", result.Admin.AdminName)
	require.NotNil(t, result.Admin.LastLoginAt)
	assert.Equal(t, uc.now(), repo.lastLogin[1])

	result, err = uc.Login(t.Context(), "plain", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", result.Role)
}

func TestAdminUseCase_LoginRejected(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"unknown admin", "ghost", "secret", ErrAdminNotFound},
		{"wrong password", "root", "nope", ErrInvalidCredentials},
		{"blocked admin", "blocked", "secret", ErrAdminBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo, _, _ := newFixture()
			_, err := uc.Login(t.Context(), tt.username, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.lastLogin)
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, "ADMIN", NormalizeRole(nil))
	assert.Equal(t, "ADMIN", NormalizeRole(strPtr("  ")))
	assert.Equal(t, "ADMIN", NormalizeRole(strPtr("ROLE_ADMIN")))
	assert.Equal(t, "SUPER", NormalizeRole(strPtr("SUPER")))
}

func TestAdminUseCase_ListBlockedVideos(t *testing.T) {
	uc, _, _, mod := newFixture()
	mod.blocked = []*videomodels.Video{
		{VideoNo: 1, UserNo: 10, Title: "a"},
		{VideoNo: 2, UserNo: 99, Title: "orphan"},
		{VideoNo: 3, UserNo: 10, Title: "b"},
	}

	items, err := uc.ListBlockedVideos(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "앨리스", items[0].Uploader.Nickname)
	assert.Nil(t, items[1].Uploader)
	assert.Equal(t, "alice", items[2].Uploader.UserID)
}

func TestAdminUseCase_Moderation(t *testing.T) {
	uc, _, _, mod := newFixture()

	require.NoError(t, uc.ApproveVideo(t.Context(), 5))
	require.NoError(t, uc.DeleteVideo(t.Context(), 6))
	assert.Equal(t, []int64{5}, mod.unblocked)
	assert.Equal(t, []int64{6}, mod.deleted)

	mod.err = errors.New("not found")
	assert.Error(t, uc.ApproveVideo(t.Context(), 7))

	users, err := uc.ListUsers(t.Context())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
