package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/pkg/jwt"
)

func newAuthFixture() (*memoryUsers, AuthService, UserService) {
	roles := newMemoryRoles()
	users := newMemoryUsers(roles)
	tokens := jwt.NewManager("test-secret", time.Hour)
	return users, NewAuthService(users, roles, tokens), NewUserService(users, roles)
}

func TestSignupCreatesUnapprovedCashier(t *testing.T) {
	users, auth, _ := newAuthFixture()

	resp, err := auth.Signup(context.Background(), &SignupRequest{Username: " ali ", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "ali", resp.Username)
	require.False(t, resp.IsAuthorized)
	require.Equal(t, model.RoleCashier, resp.Role.Code)

	stored, err := users.FindByUsername(context.Background(), "ali")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.Password)
	require.True(t, stored.CheckPassword("secret1"))
}

func TestSignupRejectsDuplicateAndShortPassword(t *testing.T) {
	_, auth, _ := newAuthFixture()
	ctx := context.Background()

	_, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)
	_, err = auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "another1"})
	require.ErrorIs(t, err, ErrUsernameExists)

	_, err = auth.Signup(ctx, &SignupRequest{Username: "bilal", Password: "123"})
	require.True(t, IsValidation(err))
}

func TestLoginSingleSession(t *testing.T) {
	_, auth, _ := newAuthFixture()
	ctx := context.Background()
	_, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.Login(ctx, "ali", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	first, err := auth.Login(ctx, "ali", "secret1")
	require.NoError(t, err)
	require.True(t, first.AwaitingApproval)
	require.NotEmpty(t, first.Token)

	_, err = auth.ValidateToken(ctx, first.Token)
	require.NoError(t, err)

	second, err := auth.Login(ctx, "ali", "secret1")
	require.NoError(t, err)
	_, err = auth.ValidateToken(ctx, first.Token)
	require.ErrorIs(t, err, ErrSessionReplaced)
	_, err = auth.ValidateToken(ctx, second.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, second.User.ID))
	_, err = auth.ValidateToken(ctx, second.Token)
	require.ErrorIs(t, err, ErrSessionReplaced)
}

func TestResetPassword(t *testing.T) {
	_, auth, _ := newAuthFixture()
	ctx := context.Background()
	_, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)

	require.ErrorIs(t, auth.ResetPassword(ctx, "ali", "nope", "secret2"), ErrWrongPassword)
	require.ErrorIs(t, auth.ResetPassword(ctx, "ghost", "secret1", "secret2"), ErrUserNotFound)
	require.NoError(t, auth.ResetPassword(ctx, "ali", "secret1", "secret2"))

	_, err = auth.Login(ctx, "ali", "secret2")
	require.NoError(t, err)
}

func TestToggleAuthorization(t *testing.T) {
	users, auth, svc := newAuthFixture()
	ctx := context.Background()
	created, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.ToggleAuthorization(ctx, created.ID, owner)
	require.NoError(t, err)
	require.True(t, resp.IsAuthorized)
	stored, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, stored.IsAuthorized)

	resp, err = svc.ToggleAuthorization(ctx, created.ID, owner)
	require.NoError(t, err)
	require.False(t, resp.IsAuthorized)

	_, err = svc.ToggleAuthorization(ctx, uuid.New(), owner)
	require.ErrorIs(t, err, ErrUserNotFound)

	self := Actor{ID: created.ID.String(), Username: "ali"}
	_, err = svc.ToggleAuthorization(ctx, created.ID, self)
	require.ErrorIs(t, err, ErrSelfModification)
}

func TestUpdateUserRoleResetsPrivileges(t *testing.T) {
	_, auth, svc := newAuthFixture()
	ctx := context.Background()
	created, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.UpdateUserRole(ctx, created.ID, 1, owner)
	require.NoError(t, err)
	require.Equal(t, model.RoleOwner, resp.Role.Code)
	require.Len(t, resp.Privileges, 3)

	_, err = svc.UpdateUserRole(ctx, created.ID, 42, owner)
	require.ErrorIs(t, err, ErrRoleNotFound)
}

func TestDeleteUser(t *testing.T) {
	users, auth, svc := newAuthFixture()
	ctx := context.Background()
	created, err := auth.Signup(ctx, &SignupRequest{Username: "ali", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID, owner))
	require.ErrorIs(t, svc.DeleteUser(ctx, created.ID, owner), ErrUserNotFound)

	list, err := users.FindAll(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
