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

	"github.com/FirasKoutari/RAG-multi-tenant/internal/db"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/querylog"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/server"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/tenants"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the multi-tenant search HTTP server",
	Long: `Starts the HTTP server. Tenants authenticate with their X-API-KEY
header; each tenant's index is built lazily on first query and can be
rebuilt with POST /reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(cfg.Tenants) == 0 {
			return fmt.Errorf("no tenants configured in %s", cfgFile)
		}

		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		llmProvider, err := createLLMFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating llm provider: %w", err)
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(cfg, reg, tenants.NewResolver(cfg.Tenants), llmProvider, querylog.NewStore(database))

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
