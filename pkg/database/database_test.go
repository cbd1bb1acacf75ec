package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"violence-detection/cmd/config"
	"violence-detection/pkg/models"
)

func TestSeed(t *testing.T) {
	require.NoError(t, Init(":memory:"))
	defer DB.Close()

	seed := []config.SeedUser{
		{Username: "user1", Password: "password123", Role: "user"},
		{Username: "admin", Password: "admin123", Role: "admin"},
	}
	require.NoError(t, Seed(seed))
	// Seeding twice leaves existing accounts alone.
	require.NoError(t, Seed(seed))

	var count int
	require.NoError(t, DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, 2, count)

	admin, err := FindUser("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.NotEqual(t, "admin123", admin.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))
}

func TestCreateUserDuplicate(t *testing.T) {
	require.NoError(t, Init(":memory:"))
	defer DB.Close()

	user, err := CreateUser("viewer", "pw", "")
	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)

	_, err = CreateUser("viewer", "other", "")
	assert.Error(t, err)
}
