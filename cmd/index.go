package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/progress"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build every configured tenant's search index",
	Long: `Builds the search index for every tenant listed in the config file and
reports each tenant's chunk count and retrieval mode. Useful to warm
indexes before starting the server, or to check that documents parse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tenantIDs := cfg.TenantIDs()
		if len(tenantIDs) == 0 {
			return fmt.Errorf("no tenants configured in %s", cfgFile)
		}

		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		reporter := progress.NewReporter()
		reporter.Start(len(tenantIDs))

		var firstErr error
		for i, tenantID := range tenantIDs {
			reporter.Update(i+1, tenantID)
			if err := reg.Reload(ctx, tenantID); err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("tenant %s: %w", tenantID, err)
				}
				continue
			}
		}
		reporter.Finish()

		for _, tenantID := range tenantIDs {
			idx, err := reg.Get(ctx, tenantID)
			if err != nil {
				fmt.Printf("  %-20s error: %v\n", tenantID, err)
				continue
			}
			fmt.Printf("  %-20s %d docs, %d chunks, %s retrieval\n",
				tenantID, idx.DocCount(), idx.Len(), idx.Mode())
		}
		return firstErr
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
