package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	blog "github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/activitymap"
	"github.com/goliatone/go-blog/config"
	"github.com/goliatone/go-blog/repository"
	"github.com/goliatone/go-blog/repository/mongostore"
)

type App struct {
	config *config.Config
	repo   blog.RepositoryManager
	close  func(context.Context) error
	srv    *fiber.App
	logger *glog.BaseLogger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) SetRepository(repo blog.RepositoryManager, closer func(context.Context) error) {
	a.repo = repo
	a.close = closer
}

func (a *App) SetLogger(lgr *glog.BaseLogger) *App {
	a.logger = lgr
	return a
}

func (a *App) GetLogger(name string) blog.Logger {
	return blog.NamedLogger(a.logger, name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.GetLogger("config").Error("config load failed", "error", err)
		os.Exit(1)
	}

	app := &App{config: cfg}
	app.SetLogger(lgr)
	log := app.GetLogger("app")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.openStore(ctx); err != nil {
		log.Error("store: %v", err)
		os.Exit(1)
	}

	app.srv = app.newServer()

	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("server running in %s mode on %s", cfg.AppEnv, addr)
		errc <- app.srv.Listen(addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Error("listen: %v", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown: %v", err)
	}
	if app.close != nil {
		if err := app.close(shutdownCtx); err != nil {
			log.Error("close store: %v", err)
		}
	}
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config()

	if cfg.StoreDriver == config.StoreMongo {
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
		if err != nil {
			return err
		}
		if err := store.Validate(); err != nil {
			_ = store.Close(ctx)
			return err
		}
		a.SetRepository(store, store.Close)
		return nil
	}

	db, err := repository.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	if err := db.PingContext(sctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := repository.CreateSchema(sctx, db); err != nil {
		_ = db.Close()
		return err
	}

	manager := repository.NewRepositoryManager(db)
	if err := manager.Validate(); err != nil {
		_ = db.Close()
		return err
	}
	a.SetRepository(manager, func(context.Context) error { return manager.Close() })
	return nil
}

func (a *App) newServer() *fiber.App {
	cfg := a.Config()
	sink := activitymap.NewLoggerSink(a.GetLogger("activity"))

	images := blog.NewDiskImageStore(cfg.UploadDir, cfg.UploadPublicPath, cfg.UploadMaxBytes).
		WithLogger(a.GetLogger("images"))

	auth := blog.NewAuthService(a.repo.Users(), cfg).
		WithLogger(a.GetLogger("auth")).
		WithActivitySink(sink)

	controller := blog.NewController(blog.Services{
		Auth: auth,
		Categories: blog.NewCategoryService(a.repo.Categories()).
			WithLogger(a.GetLogger("categories")).
			WithActivitySink(sink),
		Posts: blog.NewPostService(a.repo.Posts(), a.repo.Categories(), images).
			WithLogger(a.GetLogger("posts")).
			WithActivitySink(sink),
		Comments: blog.NewCommentService(a.repo.Comments(), a.repo.Posts()).
			WithLogger(a.GetLogger("comments")).
			WithActivitySink(sink),
		Likes: blog.NewLikeService(a.repo.Likes(), a.repo.Posts()).
			WithLogger(a.GetLogger("likes")).
			WithActivitySink(sink),
	}).WithLogger(a.GetLogger("http"))

	srv := fiber.New(fiber.Config{
		AppName:      "go-blog",
		ErrorHandler: blog.NewErrorHandler(a.GetLogger("http")),
		BodyLimit:    int(cfg.UploadMaxBytes) + 1<<20,
	})

	srv.Use(recover.New())
	srv.Use(requestid.New())
	srv.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	srv.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	srv.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	srv.Get("/health", blog.HealthHandler)
	srv.Static(cfg.UploadPublicPath, images.Dir())

	api := srv.Group(cfg.APIPrefix, limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return blog.ErrRateLimited
		},
	}))

	blog.RegisterRoutes(api, controller, blog.RequireAuth(auth, cfg))

	srv.Use(blog.NotFoundHandler)

	return srv
}
