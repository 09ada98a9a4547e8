package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/receipt-extraction-service/internal/domain"
)

type memoryUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	nextID  int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

func (m *memoryUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return user, nil
}

func (m *memoryUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, ok := m.byID[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (m *memoryUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func newTestAuthService(repo *memoryUserRepository) AuthService {
	return NewAuthService(repo, "test-secret", time.Minute, time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	resp, err := svc.Register(ctx, "alice@example.com", "s3cret-pass", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "employee", resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, "s3cret-pass", resp.User.PasswordHash)

	login, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "password1", "Bob")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob@example.com", "password2", "Bob Again")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemoryUserRepository()
	svc := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", "correct-pass", "Carol")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "carol@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepository())

	tokens, err := svc.GenerateTokens("user-42", "dave@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "dave@example.com", claims.Email)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepository())

	tokens, err := svc.GenerateTokens("user-42", "dave@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccessToken(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepository())

	tokens, err := svc.GenerateTokens("user-42", "dave@example.com")
	require.NoError(t, err)

	refreshed, err := svc.RefreshAccessToken(tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)

	// An access token must not be usable for refresh
	_, err = svc.RefreshAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbageToken(t *testing.T) {
	svc := newTestAuthService(newMemoryUserRepository())

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewAuthService(newMemoryUserRepository(), "test-secret", -time.Minute, time.Hour)

	tokens, err := svc.GenerateTokens("user-42", "dave@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
