package posts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the stored identity. The password hash never leaves the server.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Avatar        string    `bun:"avatar" json:"avatar,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"date"`
}

// Post is the aggregate root. Author name and avatar are copied from the
// user when the post is created.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user"`
	Text          string     `bun:"text,notnull" json:"text"`
	Name          string     `bun:"name" json:"name"`
	Avatar        string     `bun:"avatar" json:"avatar"`
	Likes         []*Like    `bun:"rel:has-many,join:id=post_id" json:"likes"`
	Comments      []*Comment `bun:"rel:has-many,join:id=post_id" json:"comments"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"date"`
}

// Like records that a user liked a post, at most once per pair
type Like struct {
	bun.BaseModel `bun:"table:post_likes,alias:lke"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	PostID        uuid.UUID `bun:"post_id,notnull,type:uuid" json:"-"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"-"`
}

// Comment lives inside a post and is only addressable through it
type Comment struct {
	bun.BaseModel `bun:"table:post_comments,alias:cmt"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	PostID        uuid.UUID `bun:"post_id,notnull,type:uuid" json:"-"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user"`
	Text          string    `bun:"text,notnull" json:"text"`
	Name          string    `bun:"name" json:"name"`
	Avatar        string    `bun:"avatar" json:"avatar"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"date"`
}

// HasLike reports whether userID is in the likes sequence
func (p *Post) HasLike(userID uuid.UUID) bool {
	for _, l := range p.Likes {
		if l != nil && l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id
func (p *Post) FindComment(id uuid.UUID) (*Comment, bool) {
	for _, c := range p.Comments {
		if c != nil && c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// ensureCollections makes sure likes and comments serialize as arrays
func (p *Post) ensureCollections() *Post {
	if p == nil {
		return p
	}
	if p.Likes == nil {
		p.Likes = []*Like{}
	}
	if p.Comments == nil {
		p.Comments = []*Comment{}
	}
	return p
}
