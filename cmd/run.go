package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"taixiu/application"
	"taixiu/config"
	"taixiu/database"
	"taixiu/domain/events"
	"taixiu/domain/services"
	"taixiu/domain/utils"
	"taixiu/infrastructure"
	"taixiu/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to the standard logger
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Engine bundles the engine with the resources it holds open
type Engine struct {
	*application.GameEngine

	db         *database.DB
	natsClient *infrastructure.NATSClient
	publisher  *infrastructure.NATSEventPublisher
}

// NewEngine connects the database and event transport and builds the game engine
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.DBPool)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	engine := &Engine{db: db}
	subjectMapper := infrastructure.NewEventSubjectMapper()

	if cfg.NATSServers == "" {
		log.Warn("NATS_SERVERS not set, domain events stay in-process")
		engine.publisher = infrastructure.NewNATSEventPublisher(nil, subjectMapper)
	} else {
		log.Infof("Connecting to NATS at %s...", cfg.NATSServers)
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := natsClient.EnsureStream(infrastructure.DomainEventStream, subjectMapper.GetAllSubjects()); err != nil {
			natsClient.Close()
			db.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		engine.natsClient = natsClient
		engine.publisher = infrastructure.NewNATSEventPublisher(natsClient, subjectMapper)
		log.Info("NATS connection established successfully")
	}

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, engine.publisher)
	engine.GameEngine = application.NewGameEngine(uowFactory, services.NewDiceRoller())
	return engine, nil
}

// Close releases the transport and the database pool
func (e *Engine) Close() {
	if e.natsClient != nil && e.natsClient.IsConnected() {
		if err := e.natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	log.Info("Closing database connection...")
	e.db.Close()
}

// Run initializes and starts the engine with its scheduler
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Infof("Starting taixiu engine in %s mode...", cfg.Environment)

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	engine, err := NewEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	notifier := application.NewLogAdminNotifier(cfg.AdminIDs)
	engine.publisher.RegisterLocalHandler(events.EventTypeApprovalRequest, func(ctx context.Context, event events.Event) error {
		requested, ok := event.(events.ApprovalRequestedEvent)
		if !ok {
			return nil
		}
		return notifier.NotifyAdmins(ctx, fmt.Sprintf("Pending %s request #%d: account %d, amount %s",
			requested.Kind, requested.RequestID, requested.AccountID, utils.FormatAmount(requested.Amount)))
	})

	// Open a round up front so bets are accepted before the first tick
	if view, err := engine.CurrentRound(ctx); err != nil {
		log.WithError(err).Error("Failed to open initial round")
	} else {
		log.WithField("roundID", view.Round.ID).Info("Round open for bets")
	}

	stopScheduler := application.NewRoundSchedulerWorker(engine).Start(ctx)
	stopWatcher, err := application.NewScheduleWatcher(engine, notifier).Start(ctx)
	if err != nil {
		stopScheduler()
		return err
	}

	log.Info("Engine is running")
	<-ctx.Done()

	log.Info("Shutting down engine...")
	stopWatcher()
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
