package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

func setupTestDBUser(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "users")
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	db := setupTestDBUser(t, "testdb_user_service_register")
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "Menon", "Asha@Example.com", "sup3rsecret", models.RoleViewer)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.NotEqual(t, "sup3rsecret", user.PasswordHash)

	// Correct credentials, case-insensitive email
	authed, err := svc.Authenticate(ctx, "ASHA@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	// Wrong password and unknown email are indistinguishable
	_, err = svc.Authenticate(ctx, "asha@example.com", "wrongpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "sup3rsecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Register_Validation(t *testing.T) {
	db := setupTestDBUser(t, "testdb_user_service_validation")
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	var vErr *ErrValidation

	_, err := svc.Register(ctx, "Al", "Menon", "a@example.com", "sup3rsecret", models.RoleViewer)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Register(ctx, "Asha", "Me", "a@example.com", "sup3rsecret", models.RoleViewer)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Register(ctx, "Asha", "Menon", "not-an-email", "sup3rsecret", models.RoleViewer)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Register(ctx, "Asha", "Menon", "a@example.com", "short", models.RoleViewer)
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Register(ctx, "Asha", "Menon", "a@example.com", "sup3rsecret", models.Role("admin"))
	assert.ErrorAs(t, err, &vErr)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	db := setupTestDBUser(t, "testdb_user_service_duplicate")
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "Menon", "dup@example.com", "sup3rsecret", models.RoleViewer)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Ravi", "Menon", "dup@example.com", "0thersecret", models.RoleAdvertiser)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserService_ChangePassword(t *testing.T) {
	db := setupTestDBUser(t, "testdb_user_service_password")
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "Menon", "pw@example.com", "0riginalpw", models.RoleViewer)
	require.NoError(t, err)

	// Wrong old password
	err = svc.ChangePassword(ctx, user.ID, "wrongoldpw", "newpassword1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "0riginalpw", "newpassword1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "pw@example.com", "0riginalpw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "pw@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	db := setupTestDBUser(t, "testdb_user_service_profile")
	svc := NewUserService(db, &config.Config{})
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "Menon", "profile@example.com", "sup3rsecret", models.RoleAdvertiser)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, "Ashwini", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Ashwini", updated.FirstName)
	assert.Equal(t, "Menon", updated.LastName)
	assert.Equal(t, "profile@example.com", updated.Email)

	// Unknown user
	_, err = svc.UpdateProfile(ctx, utils.NewSixID(), "Ashwini", "", "")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}
