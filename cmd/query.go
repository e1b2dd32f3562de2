package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/answer"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against one tenant's documents",
	Long: `Builds (or reuses) the tenant's index, retrieves the best-matching
chunks and prints the answer with its sources. Runs entirely locally
without the HTTP server.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("tenant", "", "tenant id to query (required)")
	queryCmd.Flags().Bool("json", false, "output the result as JSON")
	_ = queryCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	tenantID, _ := cmd.Flags().GetString("tenant")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	idx, err := reg.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("building index for %s: %w", tenantID, err)
	}

	hits := idx.Search(ctx, question, cfg.TopK)
	hits = answer.Gate(hits, cfg.MinScore)
	if len(hits) == 0 {
		fmt.Println("No relevant passage found in this tenant's documents.")
		return nil
	}

	llmProvider, err := createLLMFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating llm provider: %w", err)
	}
	answerText, llmUsed := answer.NewSynthesizer(llmProvider).Synthesize(ctx, hits, question)

	if jsonOutput {
		out := map[string]any{
			"tenant_id": tenantID,
			"answer":    answerText,
			"llm_used":  llmUsed,
			"sources":   hits,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(answerText)
	fmt.Println()
	fmt.Println("Sources:")
	for _, h := range hits {
		fmt.Printf("  %s (chunk %d, score %.3f)\n", h.Chunk.DocID, h.Chunk.ChunkID, h.Score)
	}
	return nil
}
