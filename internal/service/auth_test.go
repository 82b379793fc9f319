package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"docrepo/internal/config"
	"docrepo/internal/model"
	repoMocks "docrepo/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:           "test-secret",
	AccessTokenTTLMin:   15,
	RefreshTokenTTLDays: 7,
}

func activeUser(t *testing.T) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	assert.NoError(t, err)
	return &model.User{
		ID:           "user-1",
		Email:        "user@example.com",
		PasswordHash: string(hash),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         model.RoleMember,
		IsActive:     true,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path normalizes email and hashes password", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(mUsers, mTokens, testAuthConfig)

		mUsers.On("FindByEmail", ctx, "new@example.com").Return(nil, sql.ErrNoRows)
		mUsers.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" &&
				u.Role == model.RoleMember &&
				u.IsActive &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")) == nil
		})).Return(func(ctx context.Context, u *model.User) *model.User { return u }, nil)

		u, err := svc.Register(ctx, RegisterInput{Email: " New@Example.com ", Password: "s3cret", FirstName: "Ada"})
		assert.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		mUsers.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, nil, testAuthConfig)

		mUsers.On("FindByEmail", ctx, "taken@example.com").Return(activeUser(t), nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := NewAuthService(nil, nil, testAuthConfig)

		_, err := svc.Register(ctx, RegisterInput{Password: "x"})
		assert.ErrorIs(t, err, ErrEmailRequired)

		_, err = svc.Register(ctx, RegisterInput{Email: "a@b.c"})
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path issues both tokens", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(mUsers, mTokens, testAuthConfig)

		user := activeUser(t)
		mUsers.On("FindByEmail", ctx, "user@example.com").Return(user, nil)
		mTokens.On("Create", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == "user-1" && rt.Token != "" && rt.ExpiresAt.After(time.Now())
		})).Return(nil)

		pair, got, err := svc.Login(ctx, "User@Example.com", "s3cret")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)
		assert.Equal(t, 15*60, pair.ExpiresIn)
		mTokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, nil, testAuthConfig)

		mUsers.On("FindByEmail", ctx, "user@example.com").Return(activeUser(t), nil)

		_, _, err := svc.Login(ctx, "user@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, nil, testAuthConfig)

		mUsers.On("FindByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows)

		_, _, err := svc.Login(ctx, "ghost@example.com", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewAuthService(mUsers, nil, testAuthConfig)

		user := activeUser(t)
		user.IsActive = false
		mUsers.On("FindByEmail", ctx, "user@example.com").Return(user, nil)

		_, _, err := svc.Login(ctx, "user@example.com", "s3cret")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	valid := func() *model.RefreshToken {
		return &model.RefreshToken{
			ID:        "rt-1",
			UserID:    "user-1",
			Token:     "old-token",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
	}

	t.Run("rotates the presented token", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(mUsers, mTokens, testAuthConfig)

		mTokens.On("Find", ctx, "old-token").Return(valid(), nil)
		mUsers.On("FindByID", ctx, "user-1").Return(activeUser(t), nil)
		mTokens.On("Revoke", ctx, "old-token").Return(nil)
		mTokens.On("Create", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.Token != "old-token"
		})).Return(nil)

		pair, err := svc.Refresh(ctx, "old-token")
		assert.NoError(t, err)
		assert.NotEqual(t, "old-token", pair.RefreshToken)
		mTokens.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(nil, mTokens, testAuthConfig)

		rt := valid()
		rt.Revoked = true
		mTokens.On("Find", ctx, "old-token").Return(rt, nil)

		_, err := svc.Refresh(ctx, "old-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(nil, mTokens, testAuthConfig)

		rt := valid()
		rt.ExpiresAt = time.Now().Add(-time.Minute)
		mTokens.On("Find", ctx, "old-token").Return(rt, nil)

		_, err := svc.Refresh(ctx, "old-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(nil, mTokens, testAuthConfig)

		mTokens.On("Find", ctx, "nope").Return(nil, sql.ErrNoRows)

		_, err := svc.Refresh(ctx, "nope")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_ResolvePrincipal(t *testing.T) {
	ctx := context.Background()

	issue := func(t *testing.T, svc AuthService, mUsers *repoMocks.MockUserRepository, mTokens *repoMocks.MockRefreshTokenRepository) string {
		t.Helper()
		mUsers.On("FindByEmail", ctx, "user@example.com").Return(activeUser(t), nil).Once()
		mTokens.On("Create", ctx, mock.Anything).Return(nil).Once()
		pair, _, err := svc.Login(ctx, "user@example.com", "s3cret")
		assert.NoError(t, err)
		return pair.AccessToken
	}

	t.Run("round trip from a fresh login", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(mUsers, mTokens, testAuthConfig)

		token := issue(t, svc, mUsers, mTokens)
		mUsers.On("FindByID", ctx, "user-1").Return(activeUser(t), nil)

		p, user, err := svc.ResolvePrincipal(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, "user-1", p.ID)
		assert.Equal(t, model.RoleMember, p.Role)
		assert.Equal(t, "user@example.com", user.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(nil, nil, testAuthConfig)

		_, _, err := svc.ResolvePrincipal(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		otherCfg := testAuthConfig
		otherCfg.JWTSecret = "other-secret"
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		other := NewAuthService(mUsers, mTokens, otherCfg)
		token := issue(t, other, mUsers, mTokens)

		svc := NewAuthService(nil, nil, testAuthConfig)
		_, _, err := svc.ResolvePrincipal(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("deactivated account", func(t *testing.T) {
		mUsers := new(repoMocks.MockUserRepository)
		mTokens := new(repoMocks.MockRefreshTokenRepository)
		svc := NewAuthService(mUsers, mTokens, testAuthConfig)

		token := issue(t, svc, mUsers, mTokens)
		user := activeUser(t)
		user.IsActive = false
		mUsers.On("FindByID", ctx, "user-1").Return(user, nil)

		_, _, err := svc.ResolvePrincipal(ctx, token)
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}
