package posts

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// UserProvider verifies identities against the users store
type UserProvider struct {
	store  UserFinder
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = resolveLogger(l)
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (u UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
		}
		// burn a comparison so unknown accounts take as long as wrong passwords
		_ = ComparePasswordAndHash(password, dummyHash())
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByID resolves the identity referenced by a token
func (u UserProvider) FindIdentityByID(ctx context.Context, id string) (Identity, error) {
	user, err := u.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUser(user), nil
}

func (u UserProvider) findUser(ctx context.Context, id string) (*User, error) {
	uid, err := parseID(id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}

	user, err := u.store.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
