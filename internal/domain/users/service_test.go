package users

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/prepnest/prepnest/pkg/errors"
)

func TestService_RegisterLoginAndValidate(t *testing.T) {
	svc := newTestService()

	view, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "User@Example.com",
		Password: "pass1234",
		Name:     "Aigerim",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "Aigerim", view.Name)
	require.NotZero(t, view.ID)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	// refresh tokens are not valid as access tokens
	_, err = svc.ValidateToken(context.Background(), resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, "invalid_token"))

	refreshed, err := svc.Refresh(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.Token)

	profile, found, err := svc.Profile(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Aigerim", profile.Name)

	_, found, err = svc.Profile(context.Background(), 999)
	require.NoError(t, err)
	require.False(t, found)
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "not-an-email", Password: "pass1234", Name: "A"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", Password: "short", Name: "A"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", Password: "pass1234", Name: "  "})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_DuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "pass1234", Name: "One"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "pass12345", Name: "Two"})
	require.True(t, apperrors.IsCode(err, "email_exists"))
}

func TestService_InvalidCredentials(t *testing.T) {
	svc := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "user@example.com", Password: "pass1234", Name: "One"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrongpass"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, "invalid_credentials"))
}

func newTestService() Service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, newMemoryRepo(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type memoryRepo struct {
	mu    sync.Mutex
	users map[int64]User
	seq   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]User{}}
}

func (r *memoryRepo) Create(_ context.Context, email, name, passwordHash string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return User{}, ErrEmailExists
		}
	}
	r.seq++
	user := User{ID: r.seq, Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok, nil
}
