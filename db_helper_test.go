package posts_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	posts "github.com/goliatone/go-posts"
)

const testPassword = "secret1"

var testPasswordHash = sync.OnceValue(func() string {
	h, err := posts.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
})

// newTestDB returns a migrated in-memory database private to the test
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := posts.OpenDB(posts.PersistenceOptions{
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, posts.Migrate(context.Background(), db, nopLogger{}))
	return db
}

func newTestRepo(t *testing.T) posts.RepositoryManager {
	t.Helper()
	repo := posts.NewRepositoryManager(newTestDB(t))
	require.NoError(t, repo.Validate())
	return repo
}

func createUser(t *testing.T, repo posts.RepositoryManager, name, email string) *posts.User {
	t.Helper()
	user, err := repo.Users().Create(context.Background(), &posts.User{
		Name:         name,
		Email:        email,
		PasswordHash: testPasswordHash(),
		Avatar:       "//avatar/" + name,
	})
	require.NoError(t, err)
	return user
}
