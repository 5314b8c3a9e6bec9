package posts_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	posts "github.com/goliatone/go-posts"
)

// MockConfig implements posts.Config for testing
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetSigningMethod() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetTokenLookup() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

// MockIdentityProvider implements posts.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (posts.Identity, error) {
	args := m.Called(ctx, email, password)
	if v := args.Get(0); v != nil {
		return v.(posts.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id string) (posts.Identity, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(posts.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserFinder implements posts.UserFinder for testing
type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetByID(ctx context.Context, id uuid.UUID) (*posts.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*posts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserFinder) GetByEmail(ctx context.Context, email string) (*posts.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*posts.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// TestIdentity is a simple implementation of Identity interface for testing
type TestIdentity struct {
	id    string
	name  string
	email string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Name() string  { return t.name }
func (t TestIdentity) Email() string { return t.email }

// MockLogger implements posts.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetSigningMethod").Return("HS256").Maybe()
	mockConfig.On("GetContextKey").Return("user").Maybe()
	mockConfig.On("GetTokenExpiration").Return(100)
	mockConfig.On("GetTokenLookup").Return("header:x-auth-token").Maybe()
	mockConfig.On("GetAuthScheme").Return("").Maybe()
	mockConfig.On("GetIssuer").Return("")
	mockConfig.On("GetAudience").Return(nil)
	return mockConfig
}
