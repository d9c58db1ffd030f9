// Package main is the entry point for the BlogHub API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bloghub/internal/access"
	"bloghub/internal/auth"
	"bloghub/internal/cache"
	"bloghub/internal/config"
	"bloghub/internal/database"
	"bloghub/internal/handlers"
	"bloghub/internal/logging"
	"bloghub/internal/mail"
	"bloghub/internal/media"
	"bloghub/internal/router"
	"bloghub/internal/service"
	"bloghub/internal/storage"
	"bloghub/internal/store"
	"bloghub/internal/store/memstore"
)

// repositories is the persistence layer chosen by STORE_DRIVER.
type repositories struct {
	users    service.UserRepository
	posts    service.PostRepository
	comments service.CommentRepository
}

func main() {
	// Load configuration from .env and environment variables.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Structured logger: console in development, JSON elsewhere.
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	log.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("store", cfg.StoreDriver),
		zap.String("media", cfg.MediaBackend),
	)

	ctx := context.Background()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	creds := auth.NewCredentials(cfg.BcryptCost, cfg.ResetTokenTTL, time.Now)
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTIssuer, cfg.TokenTTL, time.Now)
	if err != nil {
		log.Fatal("failed to initialize token service", zap.Error(err))
	}

	// Seed the administrator account (no-op without SEED_ADMIN_PASSWORD or
	// when users already exist).
	if err := database.Seed(ctx, repos.users, creds, cfg.SeedAdminEmail, cfg.SeedAdminPassword, log); err != nil {
		log.Fatal("failed to seed store", zap.Error(err))
	}

	// Single-post read cache in Valkey (optional).
	var postCache service.PostCache
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			log.Fatal("failed to connect to valkey", zap.Error(err))
		}
		defer closeValkey(client, log)
		postCache = cache.NewPostCache(client, cache.DefaultPostTTL, log)
	} else {
		log.Warn("valkey not configured, post cache disabled")
	}

	backend, uploadsDir, closeBackend, err := openMediaBackend(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize media backend", zap.Error(err))
	}
	defer closeBackend()
	images := media.NewService(backend, log)

	var mailer service.Mailer = mail.Disabled{Log: log}
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	} else {
		log.Warn("smtp not configured, password reset emails disabled")
	}

	// Services and handler groups.
	authSvc := service.NewAuthService(repos.users, creds, tokens, images, mailer, cfg.MediaFolder, log)
	userSvc := service.NewUserService(repos.users, repos.posts, images, postCache, log)
	postSvc := service.NewPostService(repos.posts, images, postCache, cfg.MediaFolder, log)
	commentSvc := service.NewCommentService(repos.comments, repos.posts, postCache, log)

	r := router.New(log, access.NewAuthenticator(tokens, repos.users), router.Handlers{
		Auth:     handlers.NewAuth(authSvc, cfg.PublicURL, log),
		Posts:    handlers.NewPosts(postSvc, log),
		Comments: handlers.NewComments(commentSvc, log),
		Users:    handlers.NewUsers(userSvc, log),
	}, router.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		UploadsDir:     uploadsDir,
	})

	// Create the HTTP server. WriteTimeout must cover an image upload being
	// resized and pushed to the object store.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server stopped gracefully")
}

// openStore connects the configured persistence driver. PostgreSQL is
// migrated before use; the memory driver starts empty.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		db := memstore.New()
		return repositories{users: db.Users(), posts: db.Posts(), comments: db.Comments()}, func() {}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return repositories{}, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, nil, err
	}
	return repositories{
		users:    store.NewUserStore(db),
		posts:    store.NewPostStore(db),
		comments: store.NewCommentStore(db),
	}, closeDB(db, log), nil
}

func closeDB(db *sqlx.DB, log *zap.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}
}

func closeValkey(client *redis.Client, log *zap.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("close valkey", zap.Error(err))
	}
}

// openMediaBackend builds the object store for uploaded images. For the
// local backend it also returns the directory to serve under /uploads/.
func openMediaBackend(ctx context.Context, cfg *config.Config) (media.Backend, string, func(), error) {
	switch cfg.MediaBackend {
	case "s3":
		c, err := storage.NewS3(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", nil, err
		}
		return c, "", func() {}, nil
	case "gcs":
		c, err := storage.NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, "", nil, err
		}
		return c, "", func() { _ = c.Close() }, nil
	default:
		l, err := storage.NewLocal(cfg.LocalStoragePath, cfg.LocalStorageURL)
		if err != nil {
			return nil, "", nil, err
		}
		return l, l.Root(), func() {}, nil
	}
}
