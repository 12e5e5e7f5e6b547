package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"fitcycle/backend/internal/domain"
)

const testJWTSecret = "test-secret"

func newAuthServiceForTest() (AuthService, *memStore) {
	store := newMemStore()
	return NewAuthService(newFakeUserRepo(store), testJWTSecret, time.Hour), store
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	name := gofakeit.Name()
	email := gofakeit.Email()

	token, user, err := svc.Register(ctx, name, email, "secret123", nil)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, user.ID.IsZero())
	require.Equal(t, name, user.Name)
	require.Equal(t, strings.ToLower(email), user.Email)
	require.Equal(t, domain.DefaultWeeklyGoalDays, user.WeeklyGoalDays)
	require.Equal(t, domain.GenderOther, user.Gender)
	require.Empty(t, user.PasswordHash)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Equal(t, user.ID.Hex(), claims.UserID)

	loginToken, loginUser, err := svc.Login(ctx, email, "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, loginToken)
	require.Equal(t, user.ID, loginUser.ID)
}

func TestRegisterCustomGoal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	goal := 6
	_, user, err := svc.Register(ctx, "Ana", gofakeit.Email(), "secret123", &goal)
	require.NoError(t, err)
	require.Equal(t, 6, user.WeeklyGoalDays)
}

func TestRegisterWeakPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	_, _, err := svc.Register(ctx, "Ana", gofakeit.Email(), "12345", nil)
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	_, _, err := svc.Register(ctx, "Ana", "Ana@Example.com", "secret123", nil)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Other Ana", "ana@example.com", "different1", nil)
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	email := gofakeit.Email()
	_, _, err := svc.Register(ctx, "Ana", email, "secret123", nil)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, email, "wrong-password")
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	// Unknown account maps to the same error as a bad password.
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthServiceForTest()

	email := gofakeit.Email()
	_, user, err := svc.Register(ctx, "Ana", email, "secret123", nil)
	require.NoError(t, err)

	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong", "brand-new-1"), ErrWrongPassword)
	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "secret123", "12345"), ErrWeakPassword)
	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "secret123", "secret123"), ErrSamePassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret123", "brand-new-1"))

	_, _, err = svc.Login(ctx, email, "secret123")
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, email, "brand-new-1")
	require.NoError(t, err)
}
