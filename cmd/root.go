package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragsearch",
	Short: "Multi-tenant retrieval-augmented search over plain-text documents",
	Long: `ragsearch indexes each tenant's plain-text documents into a private
search index and answers natural-language questions against it, citing
the document chunks the answer came from. Dense embeddings are used
when an embedding provider is reachable; otherwise retrieval falls back
to lexical TF-IDF scoring.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ragsearch.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
