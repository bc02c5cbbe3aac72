package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-user-registration/internal/application/registration"
	"github.com/go-user-registration/internal/config"
	"github.com/go-user-registration/internal/infrastructure/dynamo"
	"github.com/go-user-registration/internal/infrastructure/memory"
	redisinfra "github.com/go-user-registration/internal/infrastructure/redis"
	"github.com/go-user-registration/internal/infrastructure/ses"
	"github.com/go-user-registration/internal/infrastructure/smtp"
	transporthttp "github.com/go-user-registration/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, closeStore, err := newUserStore(ctx, cfg)
	if err != nil {
		log.Fatalf("user store: %v", err)
	}
	sender, err := newEmailSender(ctx, cfg)
	if err != nil {
		log.Fatalf("email sender: %v", err)
	}

	svc := registration.NewService(store, sender)
	router, stopRouter := transporthttp.NewRouter(cfg, svc)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s, sender=%s)", cfg.AppPort, cfg.AppEnv, store.DatabaseName(), cfg.EmailSender)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	stopRouter()
	if err := closeStore(); err != nil {
		log.Printf("close user store: %v", err)
	}
	log.Println("Server stopped")
}

// newUserStore returns the configured store and a func releasing its client.
func newUserStore(ctx context.Context, cfg *config.Config) (registration.UserStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.UserStore {
	case "memory":
		return memory.NewUserStore(), noop, nil
	case "redis":
		rdb, err := redisinfra.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisinfra.NewUserStore(rdb, cfg.RedisUsersKey), rdb.Close, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Creates the table if it doesn't exist.
		if err := dynamo.Bootstrap(ctx, client, cfg.DynamoUsersTable); err != nil {
			return nil, nil, err
		}
		return dynamo.NewUserStore(client, cfg.DynamoUsersTable), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown USER_STORE %q", cfg.UserStore)
	}
}

func newEmailSender(ctx context.Context, cfg *config.Config) (registration.EmailSender, error) {
	switch cfg.EmailSender {
	case "smtp":
		return smtp.NewSender(cfg), nil
	case "ses":
		return ses.NewSender(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown EMAIL_SENDER %q", cfg.EmailSender)
	}
}
