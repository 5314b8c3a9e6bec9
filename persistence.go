package posts

import (
	"context"
	"database/sql"
	"io/fs"
	"strings"

	"github.com/goliatone/go-errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dbfixture"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// PersistenceOptions configure the database connection
type PersistenceOptions struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	Debug        bool
}

// OpenDB opens a bun DB. SQLite is used unless Driver is "postgres", in
// which case the DSN is handed to pgx.
func OpenDB(opts PersistenceOptions) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		dia   schema.Dialect
		err   error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		sqldb, err = sql.Open(sqliteshim.ShimName, withForeignKeys(dsn))
		dia = sqlitedialect.New()
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres driver requires a dsn", errors.CategoryBadInput)
		}
		sqldb, err = sql.Open("pgx", opts.DSN)
		dia = pgdialect.New()
	default:
		return nil, errors.New("unsupported persistence driver", errors.CategoryBadInput).
			WithMetadata(map[string]any{"driver": opts.Driver})
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	if opts.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(opts.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, dia)
	db.RegisterModel((*User)(nil), (*Post)(nil), (*Like)(nil), (*Comment)(nil))

	if opts.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return db, nil
}

// withForeignKeys turns on foreign key enforcement for every pooled SQLite
// connection using the parameter understood by the driver sqliteshim picked
func withForeignKeys(dsn string) string {
	param := "_pragma=foreign_keys(1)"
	if sqliteshim.DriverName() == "sqlite3" {
		param = "_foreign_keys=1"
	}

	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// Migrate applies the embedded migrations
func Migrate(ctx context.Context, db *bun.DB, logger Logger) error {
	logger = resolveLogger(logger)

	sub, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(sub); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to discover migrations")
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to init migrator")
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to run migrations")
	}

	if group.IsZero() {
		logger.Debug("no new migrations to run")
		return nil
	}

	logger.Info("migrated", "group", group.String())
	return nil
}

// LoadFixtures seeds the database from YAML fixture files found in fsys.
// Seeding is skipped when users already exist.
func LoadFixtures(ctx context.Context, db *bun.DB, fsys fs.FS, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	count, err := db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to count users")
	}
	if count > 0 {
		return nil
	}

	fixture := dbfixture.New(db)
	if err := fixture.Load(ctx, fsys, names...); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to load fixtures")
	}
	return nil
}
