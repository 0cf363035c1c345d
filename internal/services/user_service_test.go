package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(email, username string) Registration {
	return Registration{
		Email:     email,
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct-horse",
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testStore(t))

	user, err := users.CreateUser(context.Background(), registration(" Ada@Example.com ", "ada"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct-horse", user.Password, "password must be hashed")
	assert.True(t, user.CheckPassword("correct-horse"))

	testCases := []struct {
		name        string
		reg         Registration
		expectedErr error
	}{
		{"duplicate email", registration("ada@example.com", "ada2"), ErrAlreadyExists},
		{"duplicate username", registration("other@example.com", "ada"), ErrAlreadyExists},
		{"short password", Registration{Email: "new@example.com", Username: "new", Password: "short"}, ErrInvalidCredentials},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := users.CreateUser(context.Background(), tc.reg)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testStore(t))
	created, err := users.CreateUser(context.Background(), registration("ada@example.com", "ada"))
	require.NoError(t, err)

	user, err := users.Authenticate(context.Background(), "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = users.Authenticate(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = users.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetPassword(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testStore(t))
	user, err := users.CreateUser(context.Background(), registration("ada@example.com", "ada"))
	require.NoError(t, err)

	err = users.SetPassword(context.Background(), user.ID, "wrong", "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = users.SetPassword(context.Background(), user.ID, "correct-horse", "tiny")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.SetPassword(context.Background(), user.ID, "correct-horse", "brand-new-pass"))

	_, err = users.Authenticate(context.Background(), "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(context.Background(), "ada@example.com", "brand-new-pass")
	assert.NoError(t, err)
}

func TestAvatar(t *testing.T) {
	db := setupTestDB(t)
	store := testStore(t)
	users := NewUserService(db, store)
	user := createUser(t, db, "painter")

	first, err := users.SetAvatar(context.Background(), user.ID, testImage())
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	firstKey := *first.Avatar

	second, err := users.SetAvatar(context.Background(), user.ID, testImage())
	require.NoError(t, err)
	require.NotNil(t, second.Avatar)
	assert.NotEqual(t, firstKey, *second.Avatar)

	_, err = os.Stat(filepath.Join(store.Root(), filepath.FromSlash(firstKey)))
	assert.True(t, os.IsNotExist(err), "replaced avatar should be deleted")

	require.NoError(t, users.DeleteAvatar(context.Background(), user.ID))
	reloaded, err := users.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Avatar)

	// deleting again is a no-op
	assert.NoError(t, users.DeleteAvatar(context.Background(), user.ID))
}

func TestListUsersAndSubscribedTo(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db, testStore(t))
	viewer := createUser(t, db, "viewer")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	_, err := NewSubscriptionService(db).Subscribe(context.Background(), viewer.ID, alice.ID, 0)
	require.NoError(t, err)

	page, total, err := users.ListUsers(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, alice.ID, page[0].ID)

	flags, err := users.SubscribedTo(context.Background(), viewer.ID, []uint{alice.ID, bob.ID})
	require.NoError(t, err)
	assert.True(t, flags[alice.ID])
	assert.False(t, flags[bob.ID])

	_, err = users.GetUserByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
