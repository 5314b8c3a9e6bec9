package posts

import (
	"strings"

	"github.com/google/uuid"
)

// parseID maps malformed and nil identifiers to the given error so callers
// cannot tell them apart from absent records.
func parseID(raw string, invalid error) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, invalid
	}
	return id, nil
}

// HasUserUUID reports whether the claims carry a parsable user id.
func HasUserUUID(claims AuthClaims) bool {
	if claims == nil {
		return false
	}
	_, err := parseID(claims.UserID(), ErrInvalidToken)
	return err == nil
}
