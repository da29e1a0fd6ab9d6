package main

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed views
var viewsFS embed.FS

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := LoadConfig()
	if err != nil {
		lgr.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	bunDB, err := openDatabase(ctx, cfg)
	if err != nil {
		lgr.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer bunDB.Close()

	repo := accounts.NewRepositoryManager(bunDB)
	if err := repo.Validate(); err != nil {
		lgr.Error("failed to validate repositories", "error", err)
		os.Exit(1)
	}

	tracker := accountTrackerAdapter{accounts: repo.Accounts()}

	provider := accounts.NewAccountProvider(tracker).
		WithLogger(lgr.GetLogger("accounts:prv"))

	authenticator := accounts.NewAuthenticator(provider, cfg).
		WithLogger(lgr.GetLogger("accounts:authn"))

	httpAuth, err := accounts.NewHTTPAuthenticator(authenticator, cfg)
	if err != nil {
		lgr.Error("failed to create http authenticator", "error", err)
		os.Exit(1)
	}
	httpAuth.Logger = lgr.GetLogger("accounts:http")

	var notifier accounts.ConfirmationNotifier
	if cfg.SMTPConfigured() {
		sender := accounts.NewSMTPNotifier(cfg.SMTP()).
			WithLogger(lgr.GetLogger("accounts:smtp"))
		notifier = accounts.NewEmailConfirmationNotifier(sender, cfg.BaseURL)
	} else {
		lgr.Warn("SMTP not configured, confirmation emails will not be delivered")
	}

	srv := newServer(viewsFS)
	srv.Router().WithLogger(lgr.GetLogger("router"))
	srv.Router().Use(mflash.New(mflash.ConfigDefault))

	accounts.RegisterAuthRoutes(srv.Router(),
		accounts.WithControllerRepo(repo),
		accounts.WithControllerAuther(httpAuth),
		accounts.WithControllerNotifier(notifier),
		accounts.WithControllerLogger(lgr.GetLogger("accounts:ctrl")),
		accounts.WithControllerDebug(cfg.Debug),
	)

	protected := httpAuth.ProtectedRoute(cfg, httpAuth.MakeClientRouteAuthErrorHandler(false))
	gate := accounts.NewAccountStatusGate(tracker, cfg).
		WithLogger(lgr.GetLogger("accounts:gate")).
		Middleware()

	accounts.RegisterAdminRoutes(srv.Router(),
		[]router.MiddlewareFunc{protected, gate},
		accounts.WithAdminRepo(repo),
		accounts.WithAdminLogger(lgr.GetLogger("accounts:admin")),
	)

	srv.Router().Get("/", home, protected, gate)

	lgr.Info("server listening", "address", cfg.Address)
	go func() {
		if err := srv.Serve(cfg.Address); err != nil {
			lgr.Error("server error", "error", err)
		}
	}()

	waitExitSignal()

	if err := srv.Shutdown(ctx); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
}

type accountTrackerAdapter struct {
	accounts accounts.Accounts
}

func (a accountTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*accounts.Account, error) {
	return a.accounts.GetByIdentifier(ctx, identifier)
}

func (a accountTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, account *accounts.Account) error {
	return a.accounts.TrackSuccessfulLogin(ctx, account)
}

func home(ctx router.Context) error {
	return ctx.Redirect("/admin/accounts", router.StatusSeeOther)
}

func newServer(views embed.FS) router.Server[*fiber.App] {
	templates, err := fs.Sub(views, "views")
	if err != nil {
		panic(err)
	}

	engine := django.NewFileSystem(http.FS(templates), ".html")

	return router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			StrictRouting:     false,
			PassLocalsToViews: true,
			Views:             engine,
		}))
	})
}

func openDatabase(ctx context.Context, cfg *Config) (*bun.DB, error) {
	var (
		sqlDB        *sql.DB
		err          error
		gooseDialect string
		bunDB        *bun.DB
	)

	switch cfg.DBDriver {
	case "postgres":
		sqlDB, err = sql.Open("pgx", cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		gooseDialect = "postgres"
		bunDB = bun.NewDB(sqlDB, pgdialect.New())
	default:
		sqlDB, err = sql.Open(sqliteshim.ShimName, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		gooseDialect = "sqlite3"
		bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	}

	migrations, err := fs.Sub(accounts.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return nil, err
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return nil, err
	}

	return bunDB, nil
}

func waitExitSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
