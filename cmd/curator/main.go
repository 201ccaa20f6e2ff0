package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"curator-bot/internal/bot"
	"curator-bot/internal/config"
	"curator-bot/internal/identity"
	"curator-bot/internal/questionnaire"
	"curator-bot/internal/storage"
	"curator-bot/pkg/logger"
	"curator-bot/pkg/redis"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, storage.Config{
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB().DB, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	var images *storage.ImageStore
	if cfg.MinioEndpoint != "" {
		images, err = storage.NewImageStore(storage.ImageStoreConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			zapLogger.Fatal("Failed to init image store", zap.Error(err))
		}
	} else {
		zapLogger.Warn("Image archiving disabled - no MinIO endpoint configured")
	}

	pending := identity.NewPendingStore(redisClient, cfg.VerifierTTL)
	provider := identity.NewProvider(identity.Config{
		ClientID:     cfg.TwitterClientID,
		ClientSecret: cfg.TwitterClientSecret,
		CallbackURL:  cfg.TwitterCallbackURL,
		HTTPTimeout:  cfg.HTTPRequestTimeout,
	}, pending, zapLogger)

	callbackServer := identity.NewCallbackServer(
		cfg.CallbackListenAddr,
		cfg.BotUsername,
		provider,
		zapLogger,
	)

	engine := questionnaire.NewEngine(
		questionnaire.NewBorgPadSpec(),
		questionnaire.NewIdentityGate(questionnaire.ResetPolicy(cfg.VerificationResetPolicy)),
	)
	sessions := storage.NewSessionStore(redisClient, cfg.SessionTTL)

	tgBot, err := bot.New(engine, sessions, pgStorage, images, provider, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tgBot.Start(gctx)
	})
	g.Go(func() error {
		return callbackServer.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("Stopped with error", zap.Error(err))
	}

	zapLogger.Info("Shutdown gracefully")
}
