package config

import (
	"time"
)

type BaseConfig struct {
	App         App         `koanf:"app" json:"app"`
	Server      Server      `koanf:"server" json:"server"`
	Auth        Auth        `koanf:"auth" json:"auth"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
}

type App struct {
	Name     string `koanf:"name" json:"name"`
	Env      string `koanf:"env" json:"env"`
	LogLevel string `koanf:"log_level" json:"log_level"`
}

type Server struct {
	Address         string        `koanf:"address" json:"address"`
	APIPrefix       string        `koanf:"api_prefix" json:"api_prefix"`
	LoginRateLimit  int           `koanf:"login_rate_limit" json:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window" json:"login_rate_window"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

type Auth struct {
	SigningKey      string   `koanf:"signing_key" json:"-"`
	SigningMethod   string   `koanf:"signing_method" json:"signing_method"`
	ContextKey      string   `koanf:"context_key" json:"context_key"`
	TokenExpiration int      `koanf:"token_expiration" json:"token_expiration"`
	TokenLookup     string   `koanf:"token_lookup" json:"token_lookup"`
	AuthScheme      string   `koanf:"auth_scheme" json:"auth_scheme"`
	Issuer          string   `koanf:"issuer" json:"issuer"`
	Audience        []string `koanf:"audience" json:"audience"`
}

type Persistence struct {
	Driver       string        `koanf:"driver" json:"driver"`
	DSN          string        `koanf:"dsn" json:"dsn"`
	Debug        bool          `koanf:"debug" json:"debug"`
	StoreTimeout time.Duration `koanf:"store_timeout" json:"store_timeout"`
	MaxOpenConns int           `koanf:"max_open_conns" json:"max_open_conns"`
	Fixtures     []string      `koanf:"fixtures" json:"fixtures"`
}

// Defaults returns the configuration used before any source is loaded
func Defaults() BaseConfig {
	return BaseConfig{
		App: App{
			Name:     "postsd",
			Env:      "development",
			LogLevel: "info",
		},
		Server: Server{
			Address:         ":5000",
			APIPrefix:       "/api",
			LoginRateLimit:  10,
			LoginRateWindow: time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: Auth{
			SigningMethod:   "HS256",
			ContextKey:      "user",
			TokenExpiration: 100,
			TokenLookup:     "header:x-auth-token",
		},
		Persistence: Persistence{
			Driver:       "sqlite",
			DSN:          "file:posts.db?cache=shared",
			StoreTimeout: 5 * time.Second,
			MaxOpenConns: 1,
		},
	}
}

func (c BaseConfig) GetApp() App                 { return c.App }
func (c BaseConfig) GetServer() Server           { return c.Server }
func (c BaseConfig) GetAuth() Auth               { return c.Auth }
func (c BaseConfig) GetPersistence() Persistence { return c.Persistence }

func (s Server) GetAddress() string                  { return s.Address }
func (s Server) GetAPIPrefix() string                { return s.APIPrefix }
func (s Server) GetLoginRateLimit() int              { return s.LoginRateLimit }
func (s Server) GetLoginRateWindow() time.Duration   { return s.LoginRateWindow }
func (s Server) GetShutdownTimeout() time.Duration   { return s.ShutdownTimeout }
func (p Persistence) GetDriver() string              { return p.Driver }
func (p Persistence) GetDSN() string                 { return p.DSN }
func (p Persistence) GetDebug() bool                 { return p.Debug }
func (p Persistence) GetStoreTimeout() time.Duration { return p.StoreTimeout }
func (p Persistence) GetMaxOpenConns() int           { return p.MaxOpenConns }
func (p Persistence) GetFixtures() []string          { return p.Fixtures }

// Auth implements posts.Config
func (a Auth) GetSigningKey() string    { return a.SigningKey }
func (a Auth) GetSigningMethod() string { return a.SigningMethod }
func (a Auth) GetContextKey() string    { return a.ContextKey }
func (a Auth) GetTokenExpiration() int  { return a.TokenExpiration }
func (a Auth) GetTokenLookup() string   { return a.TokenLookup }
func (a Auth) GetAuthScheme() string    { return a.AuthScheme }
func (a Auth) GetIssuer() string        { return a.Issuer }
func (a Auth) GetAudience() []string    { return a.Audience }
