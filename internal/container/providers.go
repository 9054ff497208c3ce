package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/dispatcher"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/port"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/service"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/application/workflow"
	infraLark "github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/external/lark"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/repository"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/persistence/sqlite"
	"github.com/Ultronjnr/oversightglobal-sub000/internal/infrastructure/storage"
	"github.com/Ultronjnr/oversightglobal-sub000/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// LarkBundle holds all Lark-related components.
type LarkBundle struct {
	Client    *infraLark.SDKClient
	Messenger port.Notifier
	Notifier  *infraLark.EventNotifier
}

// ProvideDatabase opens the database, applies the embedded migrations and
// wraps the connection in a transaction manager.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(database.Migrations()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Requisition:  repository.NewRequisitionRepository(sqlDB, logger),
		QuoteRequest: repository.NewQuoteRequestRepository(sqlDB, logger),
		Quote:        repository.NewQuoteRepository(sqlDB, logger),
		Invoice:      repository.NewInvoiceRepository(sqlDB, logger),
		Directory:    repository.NewDirectoryRepository(sqlDB, logger),
	}, nil
}

// ProvideDispatcher creates the in-process event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(&dispatcherLoggerAdapter{logger: logger}),
	), nil
}

// ProvideWorkflowEngine creates the approval-gate engine.
func ProvideWorkflowEngine() workflow.WorkflowEngine {
	return workflow.NewEngine()
}

// ProvideLarkClients creates the Lark client, messenger and event notifier, and
// subscribes the notifier to every workflow event. Returns nil when disabled.
func ProvideLarkClients(cfg *LarkConfig, disp dispatcher.Dispatcher, logger *zap.Logger) (*LarkBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lark config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if !cfg.Enabled {
		logger.Info("Lark notifications disabled")
		return nil, nil
	}
	if disp == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	client := infraLark.NewSDKClient(infraLark.Config{
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
		ChatID:    cfg.ChatID,
	}, logger)
	messenger := infraLark.NewMessenger(client, logger)

	notifier := infraLark.NewEventNotifier(messenger, logger)
	notifier.Register(disp)

	return &LarkBundle{
		Client:    client,
		Messenger: messenger,
		Notifier:  notifier,
	}, nil
}

// ProvideStorage creates the document store for the configured driver.
func ProvideStorage(ctx context.Context, cfg *StorageConfig, logger *zap.Logger) (port.DocumentStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	switch cfg.Driver {
	case "minio":
		store, err := storage.NewMinIODocumentStore(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local", "":
		return storage.NewLocalDocumentStore(cfg.LocalDir, cfg.BaseURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos       *RepositoryBundle
	TxManager   port.TransactionManager
	Engine      workflow.WorkflowEngine
	Dispatcher  dispatcher.Dispatcher
	WorkflowCfg *WorkflowConfig
	Logger      *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("workflow engine is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}

	var opts []service.Option
	if deps.WorkflowCfg != nil {
		opts = append(opts,
			service.WithSiblingAutoReject(deps.WorkflowCfg.AutoRejectSiblingQuotes),
			service.WithMaxPageSize(deps.WorkflowCfg.MaxPageSize),
		)
	}

	repos := deps.Repos
	quotes := service.NewQuoteService(
		repos.Requisition,
		repos.QuoteRequest,
		repos.Quote,
		repos.Directory,
		deps.TxManager,
		deps.Dispatcher,
		logger,
		opts...,
	)

	return &ServiceBundle{
		Requisition: service.NewRequisitionService(
			repos.Requisition,
			repos.Directory,
			deps.Engine,
			deps.Dispatcher,
			logger,
			opts...,
		),
		Split: service.NewSplitService(
			repos.Requisition,
			deps.Engine,
			deps.TxManager,
			deps.Dispatcher,
			logger,
			opts...,
		),
		Quote:     quotes,
		Invoice:   service.NewInvoiceService(repos.Invoice, quotes, deps.Dispatcher, logger, opts...),
		Directory: service.NewDirectoryService(repos.Directory, repos.Directory, logger, opts...),
	}, nil
}
