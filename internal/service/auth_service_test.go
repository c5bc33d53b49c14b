package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/seva-foundation/darshan-service/internal/config"
	"github.com/seva-foundation/darshan-service/internal/domain"
)

func newAuthService() (*AuthService, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[string]domain.User{}}
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewAuthService(cfg, users), users
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Lead One",
		UserName: " lead1 ",
		Role:     domain.RoleLead,
		Password: "changeme123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "lead1", user.UserName)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "changeme123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("changeme123")))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Role: domain.RoleUser, Password: "changeme123"}},
		{"unknown role", RegisterInput{UserName: "u1", Role: "superuser", Password: "changeme123"}},
		{"short password", RegisterInput{UserName: "u1", Role: domain.RoleUser, Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			assertDomainCode(t, err, "VALIDATION_FAILED")
		})
	}
}

func TestRegisterDuplicateUserName(t *testing.T) {
	svc, _ := newAuthService()

	input := RegisterInput{Name: "One", UserName: "dup", Role: domain.RoleUser, Password: "changeme123"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	assertDomainCode(t, err, "CONFLICT")
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService()
	registered, err := svc.Register(context.Background(), RegisterInput{
		Name: "PA One", UserName: "pa1", Role: domain.RolePA, Password: "changeme123",
	})
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "pa1", "changeme123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, domain.RolePA, claims.Role)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "PA One", UserName: "pa1", Role: domain.RolePA, Password: "changeme123",
	})
	require.NoError(t, err)

	_, _, _, wrongPassword := svc.Login(context.Background(), "pa1", "not-the-password")
	_, _, _, unknownUser := svc.Login(context.Background(), "nobody", "changeme123")

	assertDomainCode(t, wrongPassword, "UNAUTHORIZED")
	assertDomainCode(t, unknownUser, "UNAUTHORIZED")
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestListLeads(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Lead One", UserName: "lead1", Role: domain.RoleLead, Password: "changeme123",
	})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "PA One", UserName: "pa1", Role: domain.RolePA, Password: "changeme123",
	})
	require.NoError(t, err)

	leads, err := svc.ListLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Lead One", leads[0].Name)
}
