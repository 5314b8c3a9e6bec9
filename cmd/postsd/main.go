package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/spf13/pflag"
	"github.com/uptrace/bun"

	posts "github.com/goliatone/go-posts"
	"github.com/goliatone/go-posts/activitymap"
	"github.com/goliatone/go-posts/config"
)

type App struct {
	config *config.BaseConfig
	logger *glog.BaseLogger
	db     *bun.DB
	repo   posts.RepositoryManager
	srv    *fiber.App
}

func main() {
	flags := pflag.NewFlagSet("postsd", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load("", flags)
	if err != nil {
		newLogger(config.Defaults().App).GetLogger("config").Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: newLogger(cfg.App),
	}

	app.GetLogger("config").Debug("configuration loaded", "config", print.MaybePrettyJSON(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app); err != nil {
		app.logger.Error("postsd stopped", "error", err)
		os.Exit(1)
	}
}

// GetLogger returns the named component logger
func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func run(ctx context.Context, app *App) error {
	if err := WithPersistence(ctx, app); err != nil {
		return err
	}
	defer app.db.Close()

	WithHTTPServer(app)

	errc := make(chan error, 1)
	go func() {
		app.logger.Info("listening", "address", app.config.Server.Address, "prefix", app.config.Server.APIPrefix)
		errc <- app.srv.Listen(app.config.Server.Address)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down", "timeout", app.config.Server.ShutdownTimeout)
	return app.srv.ShutdownWithTimeout(app.config.Server.ShutdownTimeout)
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.config.GetPersistence()

	db, err := posts.OpenDB(posts.PersistenceOptions{
		Driver:       pcfg.GetDriver(),
		DSN:          pcfg.GetDSN(),
		MaxOpenConns: pcfg.GetMaxOpenConns(),
		Debug:        pcfg.GetDebug(),
	})
	if err != nil {
		return err
	}

	logger := app.GetLogger("persistence")

	if err := posts.Migrate(ctx, db, logger); err != nil {
		return err
	}

	if fixtures := pcfg.GetFixtures(); len(fixtures) > 0 {
		if err := posts.LoadFixtures(ctx, db, fixturesFS(), fixtures...); err != nil {
			return err
		}
		logger.Info("fixtures loaded", "files", print.MaybePrettyJSON(fixtures))
	}

	app.db = db
	app.repo = posts.NewRepositoryManager(db)
	app.repo.MustValidate()

	return nil
}

func WithHTTPServer(app *App) {
	cfg := app.config
	logger := app.GetLogger("http")

	activity := activityLogger(app.GetLogger("activity"))

	authCfg := cfg.GetAuth()
	auther := posts.NewAuthenticator(
		posts.NewUserProvider(app.repo.Users()).WithLogger(app.GetLogger("auth:prv")),
		app.repo.Users(),
		authCfg,
	).
		WithLogger(app.GetLogger("auth:authz")).
		WithStoreTimeout(cfg.Persistence.StoreTimeout).
		WithActivitySink(activity)

	gate := posts.NewHTTPAuthenticator(auther.TokenService(), authCfg).WithLogger(app.GetLogger("auth:http"))

	service := posts.NewPostService(app.repo.Users(), app.repo.Posts()).
		WithLogger(app.GetLogger("posts")).
		WithStoreTimeout(cfg.Persistence.StoreTimeout).
		WithActivitySink(activity)

	srv := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: posts.ErrorResponder(logger),
	})
	srv.Use(recover.New())
	srv.Use(requestid.New())

	posts.RegisterRoutes(
		srv,
		gate,
		posts.NewAuthController(auther,
			posts.WithAuthControllerLogger(app.GetLogger("auth:ctrl")),
			posts.WithAuthControllerContextKey(authCfg.GetContextKey()),
		),
		posts.NewPostsController(service, logger),
		posts.RoutesConfig{
			Prefix:          cfg.Server.APIPrefix,
			LoginRateLimit:  cfg.Server.LoginRateLimit,
			LoginRateWindow: cfg.Server.LoginRateWindow,
		},
	)

	app.srv = srv
}

func activityLogger(logger glog.Logger) posts.ActivitySink {
	return posts.ActivitySinkFunc(func(ctx context.Context, event posts.ActivityEvent) error {
		n := activitymap.Normalize(event)
		logger.WithContext(ctx).Info(n.Verb,
			"actor_id", n.ActorID,
			"object_type", n.ObjectType,
			"object_id", n.ObjectID,
			"channel", n.Channel,
			"metadata", n.Metadata,
		)
		return nil
	})
}

// fixturesFS serves fixture files from disk, falling back to the bundled seeds
func fixturesFS() fs.FS {
	return fallbackFS{primary: os.DirFS("."), fallback: posts.GetFixturesFS()}
}

type fallbackFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (f fallbackFS) Open(name string) (fs.File, error) {
	file, err := f.primary.Open(name)
	if err == nil {
		return file, nil
	}
	return f.fallback.Open(name)
}

func newLogger(cfg config.App) *glog.BaseLogger {
	opts := []glog.Option{
		glog.WithLoggerTypeJSON(),
		glog.WithLevel(cfg.LogLevel),
		glog.WithName(cfg.Name),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	}
	if cfg.Env == "development" {
		opts = append(opts, glog.WithLoggerTypePretty())
	}
	return glog.NewLogger(opts...)
}
