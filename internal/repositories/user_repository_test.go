package repositories_test

import (
	"errors"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRepos(t *testing.T) map[string]repositories.UserRepository {
	return map[string]repositories.UserRepository{
		"memory": repositories.NewInMemoryUserRepository(),
		"gorm":   repositories.NewGORMUserRepository(openTestDB(t)),
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := &models.User{Username: "testuser", Email: "test@example.com", Password: "hash"}
			require.NoError(t, repo.Create(user))
			assert.NotEmpty(t, user.ID)

			byName, err := repo.GetByUsername("testuser")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byName.ID)

			byEmail, err := repo.GetByEmail("test@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			byID, err := repo.GetByID(user.ID)
			require.NoError(t, err)
			assert.Equal(t, "testuser", byID.Username)

			_, err = repo.GetByUsername("nobody")
			assert.True(t, errors.Is(err, repositories.ErrNotFound))
		})
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Create(&models.User{Username: "dup", Email: "a@example.com", Password: "x"}))
			assert.Error(t, repo.Create(&models.User{Username: "dup", Email: "b@example.com", Password: "x"}))
		})
	}
}

func TestUserRepository_UpdatePromotes(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := &models.User{Username: "admin", Email: "admin@example.com", Password: "x"}
			require.NoError(t, repo.Create(user))

			user.IsAdmin = true
			require.NoError(t, repo.Update(user))

			got, err := repo.GetByID(user.ID)
			require.NoError(t, err)
			assert.True(t, got.IsAdmin)
		})
	}
}
