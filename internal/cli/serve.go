package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"

	"github.com/vendo-machines/vendo/internal/api"
	"github.com/vendo-machines/vendo/internal/daemon"
	"github.com/vendo-machines/vendo/internal/infra/catalog"
	"github.com/vendo-machines/vendo/internal/infra/services"
	"github.com/vendo-machines/vendo/internal/infra/sqlite"
	"github.com/vendo-machines/vendo/internal/machine"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to vendo.toml (defaults apply when absent)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vending machine and its HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SeedDrinks(catalog.Drinks()); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	stock := services.NewStock(db)
	payments := services.NewPayments(db, log.With("component", "payments"), cfg.API.BaseURL)

	ctrl := machine.New(
		cfg.Machine.ControllerConfig(),
		clock.New(),
		log.With("component", "machine"),
		stock, payments, machine.NopPresenter{},
		cfg.Machine.Float(),
	)
	defer ctrl.Close()

	server := api.NewServer(db, payments, ctrl)
	if cfg.API.Metrics {
		server.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("vendo listening", "addr", cfg.API.Addr())
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stopCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
