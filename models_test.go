package posts_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	posts "github.com/goliatone/go-posts"
)

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := &posts.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "a@b.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.NotContains(t, payload, "password_hash")
	assert.NotContains(t, payload, "PasswordHash")
	assert.NotContains(t, string(raw), "hash")
	assert.Equal(t, "a@b.com", payload["email"])
	assert.Contains(t, payload, "date")
}

func TestPostHelpers(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	commentID := uuid.New()

	post := &posts.Post{
		Likes:    []*posts.Like{{UserID: alice}},
		Comments: []*posts.Comment{{ID: commentID, UserID: bob}},
	}

	assert.True(t, post.HasLike(alice))
	assert.False(t, post.HasLike(bob))

	c, ok := post.FindComment(commentID)
	require.True(t, ok)
	assert.Equal(t, bob, c.UserID)

	_, ok = post.FindComment(uuid.New())
	assert.False(t, ok)
}

func TestNewIdentityFromUser(t *testing.T) {
	assert.Nil(t, posts.NewIdentityFromUser(nil))

	user := &posts.User{ID: uuid.New(), Name: "Alice", Email: "a@b.com"}
	identity := posts.NewIdentityFromUser(user)
	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, "Alice", identity.Name())
	assert.Equal(t, "a@b.com", identity.Email())

	var empty posts.UserIdentity
	assert.Empty(t, empty.ID())
	assert.Empty(t, empty.Name())
}
