package container

import (
	"context"
	"fmt"
	"net/http"

	"go-photo-insight/internal/analyzer"
	"go-photo-insight/internal/config"
	"go-photo-insight/internal/factory"
	"go-photo-insight/internal/logger"
	"go-photo-insight/internal/observer"
	"go-photo-insight/internal/repository"
	"go-photo-insight/internal/service"
	"go-photo-insight/internal/storage"
	"go-photo-insight/internal/transport"
	"go-photo-insight/internal/vision"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	fetcher       storage.ImageFetcher
	gate          *vision.ReadinessGate
	repository    repository.RecordRepository
	metrics       *observer.MetricsObserver
	recordService service.RecordService
	handler       http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	factories := factory.NewComponentFactory(cfg)

	providers, err := factories.ProviderFactory.CreateProviderSet(ctx, factory.ProviderType(cfg.Provider))
	if err != nil {
		return nil, err
	}

	storageType := factory.HTTPStorage
	if cfg.AzureAccountName != "" && cfg.AzureAccountKey != "" {
		storageType = factory.AzureStorage
	}
	fetcher, err := factories.StorageFactory.CreateFetcher(storageType)
	if err != nil {
		return nil, err
	}

	adapters := vision.NewAdapters(providers, cfg.SignalTimeout)
	gate := vision.NewReadinessGate(providers)
	aggregator := analyzer.NewAggregator(adapters, cfg.MaxImageDimension)

	repo := repository.NewMemoryRecordRepository()
	pool := service.NewWorkerPool(0)

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	records := service.NewRecordService(
		repo,
		aggregator,
		gate,
		pool,
		publisher,
		analyzer.Language(cfg.Language),
		cfg.RequestTimeout,
	)

	handler := transport.NewHandler(records, fetcher, metrics, cfg)

	return &Container{
		config:        cfg,
		fetcher:       fetcher,
		gate:          gate,
		repository:    repo,
		metrics:       metrics,
		recordService: records,
		handler:       handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Gate returns the provider readiness gate
func (c *Container) Gate() *vision.ReadinessGate {
	return c.gate
}

// Close stops the record service and its background workers
func (c *Container) Close() {
	c.recordService.Close()
}
