package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gmdqs/attendance-admin-api/internal/models"
	appErrors "github.com/gmdqs/attendance-admin-api/pkg/errors"
)

type authRepoStub struct {
	users        map[string]*models.User
	refreshByVal map[string]*models.RefreshToken
	resetByVal   map[string]*models.PasswordResetToken
	revokedIDs   []string
	revokedUsers []string
	passwords    map[string]string
	usedResets   []string
	audits       []models.AuditAction
}

func newAuthRepoStub(users ...*models.User) *authRepoStub {
	s := &authRepoStub{
		users:        make(map[string]*models.User),
		refreshByVal: make(map[string]*models.RefreshToken),
		resetByVal:   make(map[string]*models.PasswordResetToken),
		passwords:    make(map[string]string),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.passwords[id] = passwordHash
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.refreshByVal[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := s.refreshByVal[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revokedIDs = append(s.revokedIDs, id)
	for _, t := range s.refreshByVal {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

func (s *authRepoStub) CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	s.resetByVal[token.Token] = token
	return nil
}

func (s *authRepoStub) FindPasswordResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t, ok := s.resetByVal[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (s *authRepoStub) MarkPasswordResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	s.usedResets = append(s.usedResets, id)
	for _, t := range s.resetByVal {
		if t.ID == id {
			t.UsedAt = &usedAt
		}
	}
	return nil
}

func (s *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, log.Action)
	return nil
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "unit-test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "attendance-admin-api",
	}
}

func activeUser(t *testing.T) *models.User {
	return &models.User{
		ID:           "user-1",
		Email:        "admin@example.com",
		FullName:     "Admin User",
		PasswordHash: hashPassword(t, "secret123"),
		Active:       true,
	}
}

func TestLoginSuccessIssuesBothTokens(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Contains(t, repo.refreshByVal, resp.RefreshToken)
	assert.Contains(t, repo.audits, models.AuditActionLogin)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := NewAuthService(newAuthRepoStub(user), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token was revoked during rotation and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	repo.refreshByVal["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	repo.refreshByVal["other"] = &models.RefreshToken{
		ID:        "rt-2",
		UserID:    "someone-else",
		Token:     "other",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.Logout(context.Background(), "other", "user-1", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedIDs)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brandnew1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.passwords)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "brandnew1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwords["user-1"])
	assert.Contains(t, repo.revokedUsers, "user-1")
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc := NewAuthService(newAuthRepoStub(), nil, nil, testAuthConfig())

	token, err := svc.ForgotPassword(context.Background(), models.ResetPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestResetPasswordConsumesToken(t *testing.T) {
	repo := newAuthRepoStub(activeUser(t))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	token, err := svc.ForgotPassword(context.Background(), models.ResetPasswordRequest{Email: "admin@example.com"})
	require.NoError(t, err)
	require.NotNil(t, token)

	err = svc.ResetPassword(context.Background(), models.ConfirmResetPasswordRequest{
		Token:       token.Token,
		NewPassword: "afterreset1",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.usedResets, token.ID)
	assert.Contains(t, repo.revokedUsers, "user-1")

	// A consumed token cannot be replayed.
	err = svc.ResetPassword(context.Background(), models.ConfirmResetPasswordRequest{
		Token:       token.Token,
		NewPassword: "anotherone1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
