package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"folio/blog"
	"folio/cache"
	"folio/config"
	"folio/media"
	"folio/store"
)

// app is everything a command needs once the backends are connected.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	db       *sql.DB
	posts    *store.Posts
	taxonomy *store.Taxonomy
	users    *store.Users
	blog     *blog.Service
	closers  []func() error
}

// openApp connects the database, migrates it and wires the cache and the
// image store the configuration asks for.
func openApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	db, err := store.Open(ctx, cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, db: db, closers: []func() error{db.Close}}

	if err := store.Migrate(db, cfg.DBDriver); err != nil {
		a.Close()
		return nil, fmt.Errorf("database schema migration: %w", err)
	}

	var svc cache.Service = cache.NewMemory()
	if cfg.RedisAddr != "" {
		r, err := cache.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		svc = r
	}

	var images media.Store
	if cfg.UseS3() {
		images, err = media.DialS3(ctx, cfg.S3)
	} else {
		images, err = media.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	}
	if err != nil {
		a.Close()
		return nil, err
	}

	a.posts = store.NewPosts(db)
	a.taxonomy = store.NewTaxonomy(db)
	a.users = store.NewUsers(db)
	a.blog = blog.NewService(a.posts, a.taxonomy, cache.NewRunner(svc, cfg.CacheTTL, logger),
		media.NewUploader(images, logger), logger)

	logger.Infoj(log.JSON{"msg": "backends ready", "db": cfg.DBDriver, "redis": cfg.RedisAddr != "", "s3": cfg.UseS3()})
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// loadApp reads the environment and opens the app for a command.
func loadApp(ctx context.Context, logger *log.Logger) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return openApp(ctx, cfg, logger)
}
