package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/config"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/events"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/repository"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/repository/storage"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/scheduler"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/service"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/telemetry"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/usecase"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/transport/rest"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	defaults, err := DefaultSettings(conf.Game)
	if err != nil {
		return fmt.Errorf("invalid game defaults: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, conf.Telemetry)
	if err != nil {
		return fmt.Errorf("could not init telemetry: %w", err)
	}

	defer func() {
		if err = shutdownTelemetry(context.WithoutCancel(ctx)); err != nil {
			log.Error("could not shutdown telemetry", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("could not create metrics: %w", err)
	}

	sessionRepo := repository.NewMemorySessionRepository()
	if conf.Redis.Enabled {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		sessionRepo = repository.NewSessionRepository(redisStorage, conf.Game.SessionTTL)
		log.Info("Sessions are stored in redis", "addr", conf.Redis.GetRedisAddr())
	}

	timer := scheduler.NewTimer()
	broker := events.NewBroker(logger)

	gameManager := usecase.NewGameManager(
		logger,
		sessionRepo,
		service.NewOpponent(nil),
		timer,
		broker,
		metrics,
		conf.Game.ComputerDelay,
	)

	eventStream := websocket.New(logger, broker, gameManager)

	server := rest.NewServer(logger, conf.HTTPPort, gameManager, defaults)
	server.Mount("/sessions/:id/events", eventStream.Stream)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- server.Start()
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	eventStream.Close()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error("could not shutdown HTTP server", "error", err)
	}

	// pending computer moves are dropped, running ones finish before the store closes
	timer.Stop()

	return nil
}

// DefaultSettings - settings of a new session when the client does not choose them.
func DefaultSettings(conf config.Game) (entity.Settings, error) {
	mode, err := entity.ParseMode(conf.DefaultMode)
	if err != nil {
		return entity.Settings{}, err
	}

	difficulty, err := entity.ParseDifficulty(conf.DefaultDifficulty)
	if err != nil {
		return entity.Settings{}, err
	}

	mark, err := entity.ParseMark(conf.DefaultSymbol)
	if err != nil {
		return entity.Settings{}, err
	}

	return entity.Settings{Mode: mode, Difficulty: difficulty, HumanMark: mark}, nil
}
