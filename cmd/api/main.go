package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/auth"
	"github.com/azizikri/yeoubi-storefront/internal/cache"
	"github.com/azizikri/yeoubi-storefront/internal/cart"
	"github.com/azizikri/yeoubi-storefront/internal/checkout"
	"github.com/azizikri/yeoubi-storefront/internal/config"
	httphandler "github.com/azizikri/yeoubi-storefront/internal/delivery/http"
	"github.com/azizikri/yeoubi-storefront/internal/delivery/kafka"
	"github.com/azizikri/yeoubi-storefront/internal/payment"
	"github.com/azizikri/yeoubi-storefront/internal/repository"
	"github.com/azizikri/yeoubi-storefront/internal/storage"
	"github.com/azizikri/yeoubi-storefront/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repository.RunMigrations(cfg.DatabaseURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := initDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient, err := initRedis(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	store := repository.New(pool)
	appCache := cache.NewRedisCache(redisClient, "storefront")

	catalogService := usecase.NewCatalogService(store, appCache, cfg.CatalogTTLDuration())
	couponService := usecase.NewCouponService(store)
	bookingService := usecase.NewBookingService(store)
	backOfficeService := usecase.NewBackOfficeService(store, appCache, cfg.CatalogTTLDuration())

	feed := httphandler.NewFeedHub()
	reconciliation := usecase.NewReconciliationService(store, feed)

	var publisher usecase.EventPublisher
	var kafkaClient *kgo.Client

	if cfg.EventDriven() {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaClient, err = newConsumerClient(brokers, cfg.KafkaClientID, cfg.KafkaGroupID, kafka.Topics...)
		if err != nil {
			log.Fatalf("Failed to create kafka client: %v", err)
		}

		if err := kafka.EnsureTopics(ctx, kafkaClient, cfg); err != nil {
			log.Printf("Warning: failed to ensure topics: %v", err)
		}

		publisher = kafka.NewPublisher(kafkaClient)
		consumer := kafka.NewConsumer(kafkaClient, reconciliation)
		go consumer.Start(ctx)
		<-consumer.Ready()
	} else {
		publisher = kafka.NewDirectPublisher(reconciliation)
	}

	checkoutService := usecase.NewCheckoutService(store, couponService, publisher)

	sessions := cart.NewSessions(cart.NewRedisPersister(redisClient, cfg.CartTTLDuration()))
	flows := checkout.NewRegistry(sessions, checkout.Deps{
		Submitter: checkoutService,
		Validator: couponService,
		Notifier:  checkoutService,
		Payment: payment.Config{
			PayeeVPA:  cfg.UPIPayeeVPA,
			PayeeName: cfg.UPIPayeeName,
			Currency:  cfg.UPICurrency,
			QRBaseURL: cfg.QRBaseURL,
		},
	}, checkout.Options{CountdownSeconds: cfg.Countdown()})
	go flows.RunJanitor(ctx, cfg.SessionSweepInterval(), cfg.SessionIdleDuration())

	deps := httphandler.Deps{
		Catalog:    catalogService,
		Coupons:    couponService,
		Bookings:   bookingService,
		BackOffice: backOfficeService,
		Auth: auth.NewAuthenticator(auth.Config{
			AdminEmail:        cfg.AdminEmail,
			AdminPasswordHash: cfg.AdminPasswordHash,
			Secret:            cfg.JWTSecret,
			TTL:               cfg.JWTTTLDuration(),
		}),
		Carts:     sessions,
		Checkouts: flows,
		Feed:      feed,
	}

	objectStorage, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Printf("Warning: image uploads disabled: %v", err)
	} else {
		deps.Media = usecase.NewMediaService(objectStorage, cfg.MaxImageWidth())
	}

	handler := httphandler.NewHandler(deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler.Routes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	if kafkaClient != nil {
		kafkaClient.Close()
	}

	wg.Wait()
	log.Println("Shutdown complete")
}

func initDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDatabase(),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return client, nil
}

func newConsumerClient(brokers []string, clientID, groupID string, topics ...string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
}
