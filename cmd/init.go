package cmd

import (
	"github.com/spf13/cobra"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ragsearch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure tenants and providers, then writes a .ragsearch.yml file with a generated API key per tenant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
