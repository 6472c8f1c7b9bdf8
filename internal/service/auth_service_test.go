package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mymoney/internal/dto"
	"mymoney/internal/models"
	"mymoney/pkg/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	deleted []uuid.UUID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, errors.New("no rows")
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, errors.New("no rows")
}

func (f *fakeUserStore) Update(ctx context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if user, ok := f.byID[id]; ok {
		delete(f.byEmail, user.Email)
		delete(f.byID, id)
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMailer struct {
	sent []int
	err  error
}

func (f *fakeMailer) SendVerificationCode(to, name, subject string, code int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, code)
	return nil
}

func newAuthService(store *fakeUserStore, mailer *fakeMailer) *AuthService {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(store, jwtManager, mailer, zap.NewNop())
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified user and mails a code", func(t *testing.T) {
		store := newFakeUserStore()
		mailer := &fakeMailer{}
		svc := newAuthService(store, mailer)

		resp, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Token)
		assert.False(t, resp.User.EmailVerified)

		user := store.byEmail["ada@example.com"]
		require.NotNil(t, user)
		assert.False(t, user.EmailVerified)
		assert.NotEqual(t, "hunter22", user.Password)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, user.VerificationCode, mailer.sent[0])
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthService(store, &fakeMailer{})

		_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "x"})
		require.NoError(t, err)

		_, err = svc.Signup(ctx, &dto.SignupRequest{Name: "Ada2", Email: "ada@example.com", Password: "y"})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("mail failure rolls the user back", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthService(store, &fakeMailer{err: errors.New("smtp down")})

		_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "x"})
		require.Error(t, err)
		assert.Empty(t, store.byEmail)
		assert.Len(t, store.deleted, 1)
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	signup := func(t *testing.T, store *fakeUserStore, svc *AuthService) *models.User {
		t.Helper()
		_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "x"})
		require.NoError(t, err)
		return store.byEmail["ada@example.com"]
	}

	t.Run("matching code marks verified", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthService(store, &fakeMailer{})
		user := signup(t, store, svc)

		require.NoError(t, svc.VerifyEmail(ctx, user.ID, user.VerificationCode))
		assert.True(t, store.byID[user.ID].EmailVerified)
	})

	t.Run("mismatched code deletes the pending user", func(t *testing.T) {
		store := newFakeUserStore()
		svc := newAuthService(store, &fakeMailer{})
		user := signup(t, store, svc)

		err := svc.VerifyEmail(ctx, user.ID, user.VerificationCode+1)
		assert.ErrorIs(t, err, ErrInvalidCode)
		assert.NotContains(t, store.byID, user.ID)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, verified bool) (*fakeUserStore, *AuthService) {
		t.Helper()
		store := newFakeUserStore()
		svc := newAuthService(store, &fakeMailer{})
		_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
		require.NoError(t, err)
		if verified {
			user := store.byEmail["ada@example.com"]
			require.NoError(t, svc.VerifyEmail(ctx, user.ID, user.VerificationCode))
		}
		return store, svc
	}

	t.Run("verified user logs in", func(t *testing.T) {
		_, svc := setup(t, true)
		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.True(t, resp.User.EmailVerified)
	})

	t.Run("unverified user rejected", func(t *testing.T) {
		_, svc := setup(t, false)
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, svc := setup(t, true)
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		_, svc := setup(t, true)
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := newAuthService(store, &fakeMailer{})

	_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "old-password"})
	require.NoError(t, err)
	user := store.byEmail["ada@example.com"]
	require.NoError(t, svc.VerifyEmail(ctx, user.ID, user.VerificationCode))

	require.NoError(t, svc.ResetPassword(ctx, user.ID, "new-password"))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "old-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, 100000)
		assert.LessOrEqual(t, code, 999999)
	}
}
