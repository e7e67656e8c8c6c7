package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"secbrief/internal/rag"
	"secbrief/internal/storage"
)

var (
	flagAskCompanies []string
	flagAskK         int
)

var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask a question over the indexed research corpus",
	Long: `Ask retrieves the most relevant indexed chunks for the question,
generates an answer with the chat model, and prints it with cited
sources.

Examples:
  secbrief ask "What phishing techniques were reported this quarter?"
  secbrief ask "Recent ransomware TTPs?" --company crowdstrike --company mandiant`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringSliceVar(&flagAskCompanies, "company", nil, "Restrict retrieval to this company (repeatable)")
	askCmd.Flags().IntVar(&flagAskK, "k", 0, "Number of chunks to retrieve (default 5, max 20)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := cfg.RequireAzure(); err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	store, err := newVectorStore(ctx, cfg)
	if err != nil {
		return err
	}

	engine := rag.NewEngine(
		newEmbedder(cfg),
		newChatClient(cfg),
		store,
		cfg.QdrantCollection,
		storage.NewChunkRepo(db),
	)

	resp, err := engine.Ask(ctx, rag.AskRequest{
		Question:  args[0],
		Companies: flagAskCompanies,
		K:         flagAskK,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	if len(resp.References) > 0 {
		fmt.Println("\nSources:")
		for i, ref := range resp.References {
			fmt.Printf("  [%d] %s - %s (%s)\n", i+1, ref.Title, ref.Company, ref.URL)
		}
	}
	return nil
}
