package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kevinaaaquil/newsroom/config"
	"github.com/kevinaaaquil/newsroom/handlers"
	"github.com/kevinaaaquil/newsroom/logging"
	"github.com/kevinaaaquil/newsroom/memstore"
	"github.com/kevinaaaquil/newsroom/service"
	"github.com/kevinaaaquil/newsroom/sqlstore"
	"github.com/kevinaaaquil/newsroom/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config:", err)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	opts := service.Options{
		SiteURL:            cfg.SiteURL,
		SocialEnabled:      cfg.Social.Enabled,
		RevealUnknownEmail: cfg.ResetRevealUnknownEmail,
		Logger:             logger,
	}
	if cfg.SMTP.Configured() {
		opts.Mailer = service.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	if cfg.Social.Enabled {
		opts.Poster = service.NewHTTPPoster(cfg.Social.Endpoint, cfg.Social.BearerToken, time.Duration(cfg.Social.TimeoutSeconds)*time.Second)
	}
	// Media stays a nil interface unless a bucket is configured.
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			logger.Error("s3", "err", err)
			os.Exit(1)
		}
		opts.Media = s3Service
	}
	if cfg.RedisAddr != "" && cfg.ResetRequestsPerHour > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable; reset requests are not rate limited until it recovers", "addr", cfg.RedisAddr, "err", err)
		}
		opts.Limiter = service.NewRedisLimiter(rdb, "newsroom:reset:", cfg.ResetRequestsPerHour, time.Hour)
	}

	engine, err := service.New(repo, opts)
	if err != nil {
		logger.Error("engine", "err", err)
		os.Exit(1)
	}

	router := handlers.NewRouter(engine, repo, handlers.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       time.Duration(cfg.TokenTTLHours) * time.Hour,
		CORSOrigin:     cfg.CORSOrigin,
		MaxUploadBytes: cfg.MaxUploadMB * 1024 * 1024,
		AccessLog:      true,
		Logger:         logger,
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.Info("server listening", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			db.Disconnect(context.Background())
			return nil, nil, err
		}
		return db, func() {
			if err := db.Disconnect(context.Background()); err != nil {
				logger.Error("mongodb disconnect", "err", err)
			}
		}, nil
	case config.DriverSQL:
		s, err := sqlstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("database close", "err", err)
			}
		}, nil
	default:
		logger.Warn("using the in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	}
}
