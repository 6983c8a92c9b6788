package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/ljourdain/atelier-shop/internal/adapter/events"
	"github.com/ljourdain/atelier-shop/internal/adapter/handler"
	"github.com/ljourdain/atelier-shop/internal/adapter/payment"
	"github.com/ljourdain/atelier-shop/internal/adapter/storage"
	"github.com/ljourdain/atelier-shop/internal/config"
	"github.com/ljourdain/atelier-shop/internal/core/service"
	"github.com/ljourdain/atelier-shop/internal/metrics"
	"github.com/ljourdain/atelier-shop/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	mysqlAdapter := storage.NewMySQLAdapter(db)
	if err := mysqlAdapter.RunMigrations(cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("migrations applied")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	redisAdapter := storage.NewRedisAdapter(rdb)
	stripeAdapter := payment.NewStripeAdapter(cfg.StripeAPIKey, cfg.StripeWebhookSecret)

	// Kafka is optional: without brokers no lifecycle events are emitted.
	var publisher port.EventPublisher
	var kafkaPublisher *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = kafkaPublisher
		log.Printf("publishing order events to %s", cfg.KafkaTopic)
	}

	// Initialize services
	pricing := service.NewPricingCalculator(mysqlAdapter)
	orderService := service.NewOrderService(mysqlAdapter, mysqlAdapter, publisher)
	paymentService := service.NewPaymentService(mysqlAdapter, pricing, stripeAdapter, redisAdapter, publisher, cfg.Currency)

	// Initialize HTTP server
	serverMetrics := metrics.NewServerMetrics()
	httpHandler := handler.NewHTTPHandler(orderService, paymentService, pricing, mysqlAdapter, serverMetrics)

	router := httpHandler.Routes()
	router.Handle("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	if kafkaPublisher != nil {
		kafkaPublisher.Close()
	}
	rdb.Close()
	db.Close()
	log.Println("connections closed")
}
