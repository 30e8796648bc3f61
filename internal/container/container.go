// Package container assembles the shop backend from configuration. Both the
// HTTP server and the terminal chat client are built from it.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/farm-shop/internal/api/http"
	"github.com/spec-kit/farm-shop/internal/api/http/handlers"
	"github.com/spec-kit/farm-shop/internal/auth"
	"github.com/spec-kit/farm-shop/internal/chat"
	"github.com/spec-kit/farm-shop/internal/chatstore"
	"github.com/spec-kit/farm-shop/internal/config"
	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/observability"
	"github.com/spec-kit/farm-shop/internal/persistence"
	"github.com/spec-kit/farm-shop/internal/repository"
	"github.com/spec-kit/farm-shop/internal/repository/memory"
	"github.com/spec-kit/farm-shop/internal/service"
	"github.com/spec-kit/farm-shop/internal/worker"
)

// Container holds the wired application.
type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Postgres *persistence.Postgres
	Redis    *persistence.Redis

	Accounts    *service.AccountService
	Catalog     *service.CatalogService
	Orders      *service.OrderService
	ChatBackend *service.ChatBackend
	ChatStore   chatstore.Store

	customers repository.CustomerRepository
	worker    *worker.NotificationWorker
}

// Option customizes New.
type Option func(*settings)

type settings struct {
	sms service.SMSSender
}

// WithSMSSender replaces the logging SMS sender.
func WithSMSSender(sms service.SMSSender) Option {
	return func(s *settings) { s.sms = sms }
}

type repositories struct {
	customers repository.CustomerRepository
	otps      repository.OTPRepository
	resets    repository.PasswordResetRepository
	products  repository.ProductRepository
	orders    repository.OrderRepository
}

// New connects the configured backends and builds every service. An empty
// POSTGRES_DSN selects in-memory repositories and an empty REDIS_ADDR an
// in-memory chat store.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.sms == nil {
		s.sms = service.LogSMSSender{Logger: observability.Named(logger, "sms"), Sender: cfg.Notification.SMSSender}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	rds := persistence.NewRedis(cfg.Redis, logger)

	repos := newRepositories(pg)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, observability.Named(logger, "notifications"), cfg.Notification, s.sms)
	w := worker.StartNotificationWorker(notifications, dispatcher, observability.Named(logger, "worker"), 0)

	accounts := service.NewAccountService(cfg, service.AccountDependencies{
		CustomerRepo:      repos.customers,
		OTPRepo:           repos.otps,
		PasswordResetRepo: repos.resets,
		Dispatcher:        w,
		Logger:            observability.Named(logger, "accounts"),
	})
	orders := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   repos.orders,
		ProductRepo: repos.products,
		Dispatcher:  w,
		Logger:      observability.Named(logger, "orders"),
	})

	var store chatstore.Store
	if rds.Enabled() {
		store = chatstore.NewRedisStore(rds.Client, cfg.Chat.SessionTTL())
	} else {
		store = chatstore.NewMemoryStore(cfg.Chat.SessionTTL())
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Metrics:     observability.NewMetrics(),
		Postgres:    pg,
		Redis:       rds,
		Accounts:    accounts,
		Catalog:     service.NewCatalogService(repos.products),
		Orders:      orders,
		ChatBackend: service.NewChatBackend(accounts),
		ChatStore:   store,
		customers:   repos.customers,
		worker:      w,
	}, nil
}

func newRepositories(pg *persistence.Postgres) repositories {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repositories{
			customers: repository.NewCustomerRepository(pool),
			otps:      repository.NewOTPRepository(pool),
			resets:    repository.NewPasswordResetRepository(pool),
			products:  repository.NewProductRepository(pool),
			orders:    repository.NewOrderRepository(pool),
		}
	}
	return repositories{
		customers: memory.NewCustomerRepository(),
		otps:      memory.NewOTPRepository(),
		resets:    memory.NewPasswordResetRepository(),
		products:  memory.NewProductRepository(),
		orders:    memory.NewOrderRepository(),
	}
}

// ChatOptions returns controller settings from the chat configuration.
func (c *Container) ChatOptions() handlers.ChatOptions {
	delay := c.Config.Chat.NavigationDelay()
	if delay == 0 {
		// chat.Options reads zero as "use the default".
		delay = -1
	}
	return handlers.ChatOptions{
		BackendTimeout:   c.Config.Chat.BackendTimeout(),
		NavigationDelay:  delay,
		MaxLoginAttempts: c.Config.Chat.MaxLoginAttempts,
	}
}

// ControllerOptions returns chat.Options for an in-process controller.
func (c *Container) ControllerOptions() chat.Options {
	o := c.ChatOptions()
	return chat.Options{
		Accounts:         c.ChatBackend,
		Logger:           observability.Named(c.Logger, "chat"),
		BackendTimeout:   o.BackendTimeout,
		NavigationDelay:  o.NavigationDelay,
		MaxLoginAttempts: o.MaxLoginAttempts,
	}
}

// Routes builds the HTTP handlers.
func (c *Container) Routes() httptransport.RouteConfig {
	return httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.Postgres, c.Redis, c.Metrics),
		Users:          handlers.NewUsersHandler(c.Accounts),
		Products:       handlers.NewProductsHandler(c.Catalog),
		Orders:         handlers.NewOrdersHandler(c.Orders),
		Chat:           handlers.NewChatHandler(c.ChatStore, c.ChatBackend, observability.Named(c.Logger, "chat"), c.Metrics, c.ChatOptions()),
		AuthMiddleware: auth.NewAuthMiddleware(c.Accounts.TokenManager(), c.customers),
	}
}

// Close drains pending notifications and releases connections.
func (c *Container) Close() {
	c.worker.Stop()
	c.Redis.Close()
	c.Postgres.Close()
}
