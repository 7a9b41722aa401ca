package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/XenomLight/canChat/internal/config"
	"github.com/XenomLight/canChat/internal/server/rest"
	"github.com/XenomLight/canChat/internal/service"
	"github.com/XenomLight/canChat/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Run wires the services together and runs the REST server alongside the
// background expiry sweeper until a termination signal arrives.
func Run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.SessionTimeoutMinutes) * time.Minute

	chatService := service.NewChatService(
		service.NewCodeService(cfg.RoomCodeLength, cfg.SessionIDLength),
		service.NewSessionRegistry(),
		service.NewRoomStore(timeout),
		service.WithTimeout(timeout),
	)

	server := rest.NewServer(
		chatService,
		rest.WithAddress(fmt.Sprintf("%s:%d", cfg.ServerAddress, cfg.ServerPort)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(fmt.Sprintf("Server listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return runSweeper(ctx, chatService, time.Duration(cfg.SweepIntervalSeconds)*time.Second)
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runSweeper deletes expired rooms and session records on a fixed interval,
// complementing the cooperative sweeps performed by mutating operations.
func runSweeper(ctx context.Context, chatService service.ChatService, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rooms, sessions := chatService.Sweep()
			if rooms > 0 || sessions > 0 {
				logger.Info(fmt.Sprintf("Sweep removed %d expired rooms and %d expired sessions", rooms, sessions))
			}
		}
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		logger.Info("No config file provided, using defaults")
		return config.Default(), nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	return cfg, nil
}
