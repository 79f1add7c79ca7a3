package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/handlers"
	"github.com/ternarybob/cadence/internal/interfaces"
	"github.com/ternarybob/cadence/internal/services/autopost"
	"github.com/ternarybob/cadence/internal/services/content"
	"github.com/ternarybob/cadence/internal/services/credentials"
	"github.com/ternarybob/cadence/internal/services/dispatch"
	"github.com/ternarybob/cadence/internal/services/generation"
	"github.com/ternarybob/cadence/internal/services/history"
	"github.com/ternarybob/cadence/internal/services/scheduler"
	"github.com/ternarybob/cadence/internal/storage"
	badgerstore "github.com/ternarybob/cadence/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Engine services
	Generator         interfaces.ContentGenerator
	ContentResolver   *content.Resolver
	CredentialService *credentials.Service
	Dispatcher        *dispatch.Dispatcher
	Recorder          *history.Recorder
	AutopostService   interfaces.AutopostRunner
	SchedulerService  interfaces.SchedulerService

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	AutopostHandler   *handlers.AutopostHandler
	SchedulerHandler  *handlers.SchedulerHandler
	CredentialHandler *handlers.CredentialHandler
}

// New wires storage, services, and handlers, seeds credentials, and starts
// the scheduler.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	if err := a.initServices(); err != nil {
		return nil, err
	}
	a.initHandlers()

	if config.Scheduler.Enabled {
		if err := a.SchedulerService.Start(); err != nil {
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		logger.Info().Msg("Scheduler disabled by configuration")
	}

	return a, nil
}

func (a *App) initStorage() error {
	manager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = manager

	if dir := a.Config.Credentials.SeedDir; dir != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := badgerstore.LoadCredentialsFromFiles(ctx, manager.CredentialStorage(), dir, a.Logger); err != nil {
			a.Logger.Warn().Err(err).Msg("Credential seed load failed")
		}
	}

	return nil
}

func (a *App) initServices() error {
	generator, err := generation.NewGenerator(a.Config, a.Logger)
	if err != nil {
		return err
	}
	a.Generator = generator
	a.ContentResolver = content.NewResolver(generator, &a.Config.Autopost, a.Logger, rand.New(rand.NewSource(time.Now().UnixNano())))

	credService, err := credentials.NewService(a.StorageManager.CredentialStorage(), &a.Config.Credentials, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize credential service: %w", err)
	}
	a.CredentialService = credService

	registry := dispatch.NewRegistry()
	if err := dispatch.RegisterBridgePublishers(registry, &a.Config.Publishers, a.Logger); err != nil {
		return fmt.Errorf("failed to register publishers: %w", err)
	}
	a.Dispatcher = dispatch.NewDispatcher(registry, a.Config.Autopost.FallbackVideoURLs, a.Logger)

	a.Recorder = history.NewRecorder(a.StorageManager.HistoryStore(), a.Logger)

	a.AutopostService = autopost.NewService(
		a.StorageManager.JobRepository(),
		a.ContentResolver,
		a.Dispatcher,
		a.CredentialService,
		a.Recorder,
		&a.Config.Autopost,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.AutopostService, &a.Config.Scheduler, a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.SchedulerService, a.Config)
	a.AutopostHandler = handlers.NewAutopostHandler(a.AutopostService, a.StorageManager.JobRepository(), a.Recorder)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.SchedulerService)
	a.CredentialHandler = handlers.NewCredentialHandler(a.CredentialService, a.StorageManager.CredentialStorage())
}

// Close stops the scheduler and releases storage.
func (a *App) Close() error {
	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
