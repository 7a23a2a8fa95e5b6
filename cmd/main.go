package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relay-chat/chat-service/config"
	"github.com/relay-chat/chat-service/internal/badgerdb"
	"github.com/relay-chat/chat-service/internal/hub"
	"github.com/relay-chat/chat-service/internal/postgres"
	"github.com/relay-chat/chat-service/internal/service"
	grpcx "github.com/relay-chat/chat-service/internal/transport/grpc"
	httpx "github.com/relay-chat/chat-service/internal/transport/http"
	"github.com/relay-chat/chat-service/internal/transport/ws"
	"github.com/relay-chat/chat-service/pkg/logger"

	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "storage", cfg.Storage.Driver)

	// --- message store ---
	ctx := context.Background()
	var store service.MessageStore

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		store = postgres.NewMessageRepository(db.Pool)
	default:
		bdb, err := badgerdb.Open(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("badger: %v", err)
		}
		defer bdb.Close()
		store = badgerdb.NewMessageRepository(bdb)
	}
	defer store.Close()

	// --- registry & services ---
	h := hub.New()
	chatSvc := service.NewChatService(store, h)
	historySvc := service.NewHistoryService(store)

	// --- WS gateway ---
	wsServer := ws.NewServer(chatSvc)

	// --- HTTP ---
	handler := httpx.NewHandler(historySvc)
	router := httpx.NewRouter(handler, wsServer, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- gRPC (health) ---
	grpcServer, healthSrv := grpcx.NewServer()

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	healthSrv.SetServingStatus(grpcx.ServiceName, healthgrpc.HealthCheckResponse_NOT_SERVING)

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
