package posts

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeNoToken            = "NO_TOKEN"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodePostNotFound       = "POST_NOT_FOUND"
	TextCodeCommentNotFound    = "COMMENT_NOT_FOUND"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeNotAuthorized      = "NOT_AUTHORIZED"
	TextCodeAlreadyLiked       = "ALREADY_LIKED"
	TextCodeNotYetLiked        = "NOT_YET_LIKED"
	TextCodeServerError        = "SERVER_ERROR"
	TextCodeRecordNotFound     = "RECORD_NOT_FOUND"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrUnauthenticated is returned when a protected route gets no token
var ErrUnauthenticated = errors.New("No token: authorization denied!", errors.CategoryAuth).
	WithTextCode(TextCodeNoToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken covers bad signatures, expired tokens and garbage input
var ErrInvalidToken = errors.New("Invalid Token!", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = errors.New("Invalid Credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrPostNotFound is returned for absent and malformed post identifiers
var ErrPostNotFound = errors.New("Post not found", errors.CategoryNotFound).
	WithTextCode(TextCodePostNotFound).
	WithCode(errors.CodeNotFound)

// ErrCommentNotFound is returned when the comment is not part of the post
var ErrCommentNotFound = errors.New("Comment does not exist", errors.CategoryNotFound).
	WithTextCode(TextCodeCommentNotFound).
	WithCode(errors.CodeNotFound)

// ErrUserNotFound is returned when the caller identity no longer exists
var ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotAuthorized is returned when the caller does not own the resource.
// The public API reports it as 401.
var ErrNotAuthorized = errors.New("User not authorized", errors.CategoryAuthz).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(errors.CodeUnauthorized)

// ErrAlreadyLiked is returned on a second like by the same user
var ErrAlreadyLiked = errors.New("Post already liked", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyLiked).
	WithCode(errors.CodeBadRequest)

// ErrNotYetLiked is returned when unliking a post the user never liked
var ErrNotYetLiked = errors.New("Post has not yet been liked", errors.CategoryConflict).
	WithTextCode(TextCodeNotYetLiked).
	WithCode(errors.CodeBadRequest)

// ErrServerError is the only thing callers see of unexpected failures
var ErrServerError = errors.New("Server Error", errors.CategoryInternal).
	WithTextCode(TextCodeServerError).
	WithCode(errors.CodeInternal)

// ErrRecordNotFound is the store level not found error
var ErrRecordNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeRecordNotFound).
	WithCode(errors.CodeNotFound)

// FieldError is a single failed validation rule
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

// ValidationError carries the per field error list returned as
// {"errors": [...]}
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param == "" {
			msgs = append(msgs, f.Msg)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Param, f.Msg))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidationError reports whether err carries field errors
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
