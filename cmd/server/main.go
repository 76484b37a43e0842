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

	"catalog-bot/config"
	"catalog-bot/internal/api"
	"catalog-bot/internal/broker"
	"catalog-bot/internal/roles"
	"catalog-bot/internal/service"
	"catalog-bot/internal/store"
	"catalog-bot/internal/telegram"
	"catalog-bot/internal/util"
	"catalog-bot/internal/wizard"
	"catalog-bot/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting catalog bot")

	tp, err := util.InitTracer("catalog-bot", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	roleStore, err := roles.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer roleStore.Close()
	log.Println("Database connected")

	roleService := roles.NewService(roleStore, cfg.Telegram.OwnerChatID)

	catalogs, err := newCatalogStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize catalog store: %v", err)
	}
	log.Printf("Catalog store ready: backend=%s", cfg.Catalog.Backend)

	bot := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.ShopURL)

	engine := wizard.NewEngine(bot, roleService, catalogs, cfg.Catalog.Count)

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)
	orderService := service.NewOrderService(eventPublisher)
	notifier := service.NewNotifier(roleService, bot)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	orderWorker := worker.NewOrderWorker(orderConsumer, notifier)
	go func() {
		if err := orderWorker.Start(workerCtx); err != nil {
			log.Printf("Order worker error: %v", err)
		}
	}()

	poller := telegram.NewPoller(bot, engine)
	go func() {
		if err := poller.Run(workerCtx); err != nil {
			log.Printf("Update poller error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, catalogs, cfg.Catalog.Count, bot)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	orderWorker.Stop()

	log.Println("Server exited")
}

func newCatalogStore(cfg *config.Config) (store.CatalogStore, error) {
	switch cfg.Catalog.Backend {
	case "redis":
		return store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "file":
		return store.NewFileStore(cfg.Catalog.Dir)
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Catalog.Backend)
	}
}
