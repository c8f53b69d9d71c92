package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gatepass-ng/gatepass/internal/bank"
	"github.com/gatepass-ng/gatepass/internal/config"
	"github.com/gatepass-ng/gatepass/internal/payment"
	"github.com/gatepass-ng/gatepass/internal/postgres"
	redisx "github.com/gatepass-ng/gatepass/internal/redis"
	postgresrepo "github.com/gatepass-ng/gatepass/internal/repository/postgres"
	redisrepo "github.com/gatepass-ng/gatepass/internal/repository/redis"
	"github.com/gatepass-ng/gatepass/internal/service"
	"github.com/gatepass-ng/gatepass/internal/service/resale"
	"github.com/gatepass-ng/gatepass/internal/service/verify"
	"github.com/gatepass-ng/gatepass/internal/token"
	httpgin "github.com/gatepass-ng/gatepass/internal/transport/http/gin"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewTicketsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, redisrepo.KeyRateLimit("buy"), 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)
	orderStore := redisrepo.NewOrderStore(rdb, 30*time.Minute)

	registry := bank.NewRegistry(bank.Config{URL: cfg.Bank.CodesURL}, cache)

	gateway := payment.NewGateway(payment.GatewayConfig{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.Secret,
	})

	var gen token.CodeGenerator = token.DisplayCodeGenerator{}
	if cfg.App.VerifySecret != "" {
		gen = token.NewHMACCodeGenerator([]byte(cfg.App.VerifySecret))
	}

	services := service.NewServices(store, cache, pubsub, orderStore, registry, gateway, gen, service.Config{
		Resale: resale.Config{
			MaxResalePrice: cfg.App.MaxResalePrice,
			Currency:       cfg.App.Currency,
			CallbackURL:    cfg.Payment.CallbackURL,
		},
		Verify: verify.Config{Origin: cfg.App.Origin},
	})

	router := httpgin.NewRouter(httpgin.Deps{
		Services:  services,
		Banks:     registry,
		Idem:      idempotencyStore,
		Limiter:   limiter,
		Logger:    logger,
		JWTSecret: []byte(cfg.App.JWTSecret),
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
