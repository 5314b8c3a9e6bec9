package posts_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	posts "github.com/goliatone/go-posts"
)

func createPost(t *testing.T, repo posts.RepositoryManager, author *posts.User, text string) *posts.Post {
	t.Helper()
	post, err := repo.Posts().Create(context.Background(), &posts.Post{
		UserID: author.ID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	})
	require.NoError(t, err)
	return post
}

func TestUsersRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", " A@B.com ")

	assert.NotEqual(t, uuid.Nil, alice.ID)
	assert.Equal(t, "a@b.com", alice.Email)

	byEmail, err := repo.Users().GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, testPasswordHash(), byEmail.PasswordHash)

	byID, err := repo.Users().GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)

	_, err = repo.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)

	_, err = repo.Users().GetByEmail(ctx, "nobody@b.com")
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)

	_, err = repo.Users().Create(ctx, &posts.User{Name: "Dup", Email: "a@b.com", PasswordHash: "x"})
	assert.Error(t, err)
}

func TestPostsRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")

	post := createPost(t, repo, alice, "hello")

	got, err := repo.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, alice.ID, got.UserID)
	assert.Empty(t, got.Likes)
	assert.Empty(t, got.Comments)

	_, err = repo.Posts().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)
}

func TestPostsRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")

	base := time.Now().UTC()
	for i, text := range []string{"first", "second", "third"} {
		_, err := repo.Posts().Create(ctx, &posts.Post{
			UserID:    alice.ID,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	records, err := repo.Posts().List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third", records[0].Text)
	assert.Equal(t, "first", records[2].Text)
}

func TestPostsRepository_Likes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")
	bob := createUser(t, repo, "Bob", "bob@b.com")
	post := createPost(t, repo, alice, "hello")

	inserted, err := repo.Posts().AddLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Posts().AddLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, inserted)

	time.Sleep(2 * time.Millisecond)
	inserted, err = repo.Posts().AddLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, inserted)

	likes, err := repo.Posts().ListLikes(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, bob.ID, likes[0].UserID)
	assert.Equal(t, alice.ID, likes[1].UserID)

	removed, err := repo.Posts().RemoveLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Posts().RemoveLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostsRepository_ConcurrentLikesInsertOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")
	post := createPost(t, repo, alice, "hello")

	const attempts = 8
	results := make(chan bool, attempts)

	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := repo.Posts().AddLike(ctx, post.ID, alice.ID)
			assert.NoError(t, err)
			results <- inserted
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for inserted := range results {
		if inserted {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	likes, err := repo.Posts().ListLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}

func TestPostsRepository_RemoveCommentByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")
	bob := createUser(t, repo, "Bob", "bob@b.com")
	post := createPost(t, repo, alice, "hello")

	first, err := repo.Posts().AddComment(ctx, &posts.Comment{PostID: post.ID, UserID: bob.ID, Text: "one"})
	require.NoError(t, err)
	second, err := repo.Posts().AddComment(ctx, &posts.Comment{PostID: post.ID, UserID: bob.ID, Text: "two"})
	require.NoError(t, err)

	removed, err := repo.Posts().RemoveComment(ctx, post.ID, second.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, removed, "only the author may remove a comment")

	removed, err = repo.Posts().RemoveComment(ctx, uuid.New(), second.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed, "comment must belong to the post")

	removed, err = repo.Posts().RemoveComment(ctx, post.ID, second.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	comments, err := repo.Posts().ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, first.ID, comments[0].ID)
}

func TestPostsRepository_DeleteRemovesChildren(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")
	post := createPost(t, repo, alice, "hello")

	_, err := repo.Posts().AddLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	_, err = repo.Posts().AddComment(ctx, &posts.Comment{PostID: post.ID, UserID: alice.ID, Text: "mine"})
	require.NoError(t, err)

	require.NoError(t, repo.Posts().Delete(ctx, post.ID))

	_, err = repo.Posts().GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)

	likes, err := repo.Posts().ListLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	comments, err := repo.Posts().ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, repo.Posts().Delete(ctx, post.ID), posts.ErrRecordNotFound)
}

func TestPostsRepository_MissingParentRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")
	post := createPost(t, repo, alice, "hello")
	require.NoError(t, repo.Posts().Delete(ctx, post.ID))

	_, err := repo.Posts().AddLike(ctx, post.ID, alice.ID)
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)

	_, err = repo.Posts().AddComment(ctx, &posts.Comment{PostID: post.ID, UserID: alice.ID, Text: "late"})
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)

	_, err = repo.Posts().Create(ctx, &posts.Post{UserID: uuid.New(), Text: "orphan"})
	assert.ErrorIs(t, err, posts.ErrRecordNotFound)
}

func TestUsersRepository_GetByIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	alice := createUser(t, repo, "Alice", "a@b.com")

	byEmail, err := repo.Users().GetByIdentifier(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	byID, err := repo.Users().GetByIdentifier(ctx, alice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", byID.Email)

	byMixedCase, err := repo.Users().GetByEmail(ctx, "  A@B.COM ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byMixedCase.ID)
}

func TestRepositoryManager_RunInTx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := newTestRepo(t)
	cancel()

	err := repo.RunInTx(ctx, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
