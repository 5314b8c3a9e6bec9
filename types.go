package posts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger is the structured logger used across the package. Messages are
// followed by key/value pairs, which glog.Logger from go-logger satisfies.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated user
type Identity interface {
	ID() string
	Name() string
	Email() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// Authenticator issues and resolves bearer tokens
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	SessionFromToken(token string) (AuthClaims, error)
	IdentityFromClaims(ctx context.Context, claims AuthClaims) (*User, error)
}

// IdentityProvider verifies credentials against stored identities
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByID(ctx context.Context, id string) (Identity, error)
}

// UserFinder is the slice of the user store the auth flow needs
type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// PostStore is the aggregate store consumed by PostService. Like and comment
// mutations are single conditional statements so concurrent requests cannot
// produce duplicate likes or remove the wrong comment.
type PostStore interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	ListLikes(ctx context.Context, postID uuid.UUID) ([]*Like, error)

	AddComment(ctx context.Context, comment *Comment) (*Comment, error)
	RemoveComment(ctx context.Context, postID, commentID, userID uuid.UUID) (bool, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print(logLine("DBG", msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print(logLine("INF", msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print(logLine("WRN", msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print(logLine("ERR", msg, args...))
}

func logLine(level, msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level)
	b.WriteString("] POSTS ")
	b.WriteString(msg)

	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}

	b.WriteString("\n")
	return b.String()
}

func resolveLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
