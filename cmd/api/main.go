package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-market-api/internal/application/notify"
	"github.com/go-market-api/internal/config"
	"github.com/go-market-api/internal/infrastructure/cache"
	"github.com/go-market-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-market-api/internal/infrastructure/jwt"
	"github.com/go-market-api/internal/infrastructure/line"
	"github.com/go-market-api/internal/infrastructure/push"
	s3infra "github.com/go-market-api/internal/infrastructure/s3"
	"github.com/go-market-api/internal/infrastructure/sns"
	transporthttp "github.com/go-market-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for listing images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)

	// Push sender, selected by PUSH_PROVIDER. Empty disables push entirely.
	var sender push.Sender
	switch cfg.PushProvider {
	case "line":
		sender = line.NewClient(cfg)
	case "sns":
		if s, err := sns.NewSender(cfg); err == nil {
			sender = s
		} else {
			log.Printf("WARN: SNS sender not available: %v", err)
		}
	}

	// Pending-notification store: Redis when configured (multi-instance),
	// otherwise the in-process map.
	var pending notify.PendingStore
	if cfg.RedisAddr != "" {
		pending = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	} else {
		mem := cache.NewMemory()
		defer mem.Close()
		pending = mem
	}
	engine := notify.NewEngine(pending, cfg.MergeWindow)

	var notifier notify.Notifier
	if sender != nil {
		notifier = notify.NewDispatcher(notify.DispatcherDeps{
			UserRepo: userRepo,
			Sender:   sender,
			Engine:   engine,
			BaseURL:  cfg.AppBaseURL,
			Merging:  cfg.EnableNotificationMerging,
			Logger:   logger,
		})
	} else {
		log.Println("push disabled, notifications will not be delivered")
		notifier = notify.Noop{}
	}

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ListingRepo:      dynamo.NewListingRepo(dynamoClient, cfg.DynamoTables.Listings),
		ConversationRepo: dynamo.NewConversationRepo(dynamoClient, cfg.DynamoTables.Conversations),
		MessageRepo:      dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages),
		ReviewRepo:       dynamo.NewReviewRepo(dynamoClient, cfg.DynamoTables.Reviews),
		CategoryRepo:     dynamo.NewCategoryRepo(dynamoClient, cfg.DynamoTables.Categories),
		ImageRepo:        dynamo.NewImageRepo(dynamoClient, cfg.DynamoTables.Images),
		S3Store:          s3Store,
		Notifier:         notifier,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if sender != nil {
		sweeper := notify.NewSweeper(notify.SweeperDeps{
			Engine:   engine,
			UserRepo: userRepo,
			Sender:   sender,
			BaseURL:  cfg.AppBaseURL,
			Merging:  cfg.EnableNotificationMerging,
			Logger:   logger,
		})
		go sweeper.Run(sweepCtx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
