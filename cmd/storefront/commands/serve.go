package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/pkg/factory"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply migrations and start the HTTP server",
	Long: `Apply pending migrations, then serve the API until SIGINT or SIGTERM.

In-flight requests get up to 30 seconds to finish; their sessions are
released before the connection pool is closed.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appFactory, err := factory.NewFactory(ctx, cfg)
	if err != nil {
		return err
	}
	log := appFactory.GetLogger()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := appFactory.Close(closeCtx); err != nil {
			log.Error("Kaynaklar kapatılamadı", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("Uygulama başlatılıyor", map[string]interface{}{"env": cfg.AppEnv})

	if err := appFactory.GetMigrationService().RunMigrations(ctx); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           appFactory.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP sunucusu başlatılıyor", map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP sunucusu başlatılamadı", map[string]interface{}{"error": err.Error()})
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Sunucu kapatılıyor...", map[string]interface{}{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Sunucu kapatılırken hata oluştu", map[string]interface{}{"error": err.Error()})
		return err
	}

	log.Info("Sunucu başarıyla kapatıldı", map[string]interface{}{})
	return nil
}
