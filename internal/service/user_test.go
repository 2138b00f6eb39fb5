package service

import (
	"context"
	"testing"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/config"
	"payhere-integration-demo/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	db := newTestDB(t)
	return NewUserService(repository.NewUserRepository(db), config.JWT{
		Secret:        "test-secret",
		Algorithm:     "HS256",
		ExpireMinutes: 60,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "user@example.com", "hunter2hunter2"))

	token, err := svc.Login(ctx, "user@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "user@example.com", "hunter2hunter2"))
	assert.ErrorIs(t, svc.Register(ctx, "user@example.com", "other-password"), apperr.ErrEmailTaken)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "user@example.com", "hunter2hunter2"))

	_, err := svc.Login(ctx, "user@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrBadCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, apperr.ErrBadCredentials)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
