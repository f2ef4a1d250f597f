package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/editor"
	"github.com/ziadkadry99/instasite/internal/server"
	"github.com/ziadkadry99/instasite/internal/session"
)

const (
	// requestTimeoutMargin is added to the generation timeout for the
	// synchronous section endpoint.
	requestTimeoutMargin = 30 * time.Second
	noGenerationTimeout  = 15 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
	pruneInterval        = 5 * time.Minute
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web editor",
	Long:  `Starts the InstaSite web editor: fill in the brief, watch the site being planned and built, preview each page in a sandbox, and run a simulated deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if cmd.Flags().Changed("allow-all-origins") {
			cfg.AllowAllOrigins = serveAllowAll
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		database, usage, err := openLedger(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		gen, err := createGeneratorFromConfig(cfg, usage)
		if err != nil {
			return err
		}

		sessions := session.NewManager(gen, session.Options{
			DeployDelay: cfg.DeployDelay,
			Logger:      logger,
		})

		ed, err := editor.New(sessions, usage, logger)
		if err != nil {
			return fmt.Errorf("creating editor: %w", err)
		}

		requestTimeout := cfg.GenerationTimeout + requestTimeoutMargin
		if cfg.GenerationTimeout == 0 {
			requestTimeout = noGenerationTimeout
		}
		srv := server.New(server.Config{
			Port:           cfg.Port,
			AllowAll:       cfg.AllowAllOrigins,
			RequestTimeout: requestTimeout,
		}, database, logger)
		ed.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go pruneSessions(ctx, sessions, logger)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "instasite %s editor on http://localhost:%d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Provider: %s (plan: %s, pages: %s)\n", cfg.Provider, cfg.BlueprintModel, cfg.PageModel)
		fmt.Fprintf(os.Stderr, "  Usage ledger: %s\n", database.Path())

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

// pruneSessions drops idle sessions until ctx is done.
func pruneSessions(ctx context.Context, sessions *session.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(sessionMaxIdle); n > 0 {
				logger.Info("pruned idle sessions", zap.Int("pruned", n), zap.Int("remaining", sessions.Len()))
			}
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
