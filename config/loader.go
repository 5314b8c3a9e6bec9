package config

import (
	"context"
	"path/filepath"
	"strings"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "POSTS_"
	envDelim  = "__"
	delim     = "."
)

// source order, lower loads first
const (
	orderDefaults = 0
	orderFile     = 20
	orderEnv      = 25
	orderFlags    = 30
)

// RegisterFlags declares the command line overrides understood by Load
func RegisterFlags(fs *pflag.FlagSet) {
	def := Defaults()
	fs.String("config", "", "path to a JSON, YAML or TOML config file")
	fs.String("server.address", def.Server.Address, "listen address")
	fs.String("server.api_prefix", def.Server.APIPrefix, "prefix for API routes")
	fs.String("persistence.driver", def.Persistence.Driver, "database driver: sqlite or postgres")
	fs.String("persistence.dsn", def.Persistence.DSN, "database DSN")
	fs.Bool("persistence.debug", def.Persistence.Debug, "log SQL queries")
	fs.StringSlice("persistence.fixtures", nil, "fixture files to seed an empty database")
	fs.String("app.log_level", def.App.LogLevel, "trace, debug, info, warn or error")
}

// Load merges defaults, the optional config file, POSTS_ environment
// variables and flags, in that order. POSTS_AUTH__SIGNING_KEY maps to
// auth.signing_key.
func Load(path string, flags *pflag.FlagSet) (*BaseConfig, error) {
	if path == "" && flags != nil {
		if p, err := flags.GetString("config"); err == nil {
			path = p
		}
	}

	loaders := []gconfig.LoaderBuilder[*BaseConfig]{
		gconfig.StructProvider[*BaseConfig](Defaults(), orderDefaults),
		gconfig.EnvProvider[*BaseConfig](EnvPrefix, envDelim, orderEnv),
	}

	if path != "" {
		if err := checkExtension(path); err != nil {
			return nil, err
		}
		loaders = append(loaders, gconfig.FileProvider[*BaseConfig](path, orderFile))
	}

	if flags != nil {
		loaders = append(loaders, gconfig.FlagsProvider[*BaseConfig](flags, orderFlags))
	}

	container, err := gconfig.New(&BaseConfig{},
		gconfig.WithoutDefualtConfigPath[*BaseConfig](),
		gconfig.WithValidation[*BaseConfig](false),
		gconfig.WithLoader(loaders...),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build config container")
	}

	// files mix JSON numbers, YAML ints and duration strings for the same
	// keys, decoding sorts the types out
	container.K = koanf.New(delim)

	if err := container.Load(context.Background()); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load config").
			WithMetadata(map[string]any{"path": path})
	}

	cfg := container.Raw()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid configuration")
	}

	return cfg, nil
}

func checkExtension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yml", ".yaml", ".toml":
		return nil
	default:
		return errors.New("unsupported config file extension", errors.CategoryBadInput).
			WithMetadata(map[string]any{"path": path})
	}
}
