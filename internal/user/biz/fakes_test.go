package biz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lk2023060901/ai-video-backend/internal/user/models"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextNo int64
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextNo++
	u.UserNo = r.nextNo
	u.CreatedAt = time.Now()
	r.users[u.UserID] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.UserID] = u
	return nil
}

func (r *fakeUserRepo) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUserNo(_ context.Context, userNo int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserNo == userNo {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) ListByUserNos(_ context.Context, userNos []int64) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		for _, no := range userNos {
			if u.UserNo == no {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) exists(match func(*models.User) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	return r.exists(func(u *models.User) bool { return u.UserID == userID }), nil
}

func (r *fakeUserRepo) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	return r.exists(func(u *models.User) bool { return u.Nickname == nickname }), nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.exists(func(u *models.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

type fakeVerificationRepo struct {
	records []*models.EmailVerification
}

func (r *fakeVerificationRepo) Create(_ context.Context, v *models.EmailVerification) error {
	v.ID = int64(len(r.records) + 1)
	r.records = append(r.records, v)
	return nil
}

func (r *fakeVerificationRepo) Update(_ context.Context, _ *models.EmailVerification) error {
	return nil
}

func (r *fakeVerificationRepo) Latest(_ context.Context, email string) (*models.EmailVerification, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Email == email {
			return r.records[i], nil
		}
	}
	return nil, nil
}

type fakeSender struct {
	err  error
	sent map[string]string
}

func (s *fakeSender) SendVerificationCode(_ context.Context, to, code string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.sent == nil {
		s.sent = map[string]string{}
	}
	s.sent[to] = code
	return nil
}

// plainHasher 测试用，避免 bcrypt 开销
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }

func (plainHasher) Matches(plain, hash string) bool { return hash == "h:"+plain }

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(subject, role string) (string, error) {
	return role + ":" + subject, nil
}
