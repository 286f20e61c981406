package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/cache"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/docserver"
	eventadapter "github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/events"
	httpadapter "github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/http"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/security"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/adapters/trello"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/application"
	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping m82 document editor service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	store := cacheadapter.NewRedisDocumentKeyStore(redisClient)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	cards := trello.NewClient(cfg.CardAPIBaseURL, cfg.CardConsumerKey, cfg.CardConsumerSecret, httpClient)
	docs := docserver.NewClient(httpClient)

	var publisher ports.EventPublisher
	var closePublisher func() error
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, kafkaErr := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, nil)
		if kafkaErr != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", kafkaErr)
		}
		publisher = kafkaPublisher
		closePublisher = kafkaPublisher.Close
	} else {
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	registry := application.NewRegistry(logger)
	registry.Subscribe(application.NewSaveHandler(store, cards, docs, publisher, logger))

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServerBaseURL:  cfg.ServerBaseURL,
			CallbackPath:   "/onlyoffice/callback",
			ProxyAddress:   cfg.ProxyAddress,
			MaxFileSize:    cfg.MaxFileSizeBytes,
			ProxySecretTTL: cfg.ProxySecretTTL,
		},
		AppSealer:   security.NewAEADSealer(cfg.AppEncryptionKey),
		ProxySealer: security.NewAEADSealer(cfg.ProxyEncryptionKey),
		Signer:      security.NewJWTConfigSigner(),
		Cache:       store,
		Cards:       cards,
		Events:      publisher,
		Registry:    registry,
		Logger:      logger,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler, httpadapter.RouterConfig{
		CallbackRatePerSecond: cfg.CallbackRatePerSecond,
		CallbackBurst:         cfg.CallbackBurst,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		cleanupFn: func(ctx context.Context) {
			if closePublisher != nil {
				_ = closePublisher()
			}
			_ = redisClient.Close()
		},
	}, nil
}

func (r *Runtime) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
