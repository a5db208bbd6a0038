package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchMode  string
	searchDebug bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search ingested document chunks",
	Long: `Ranks every stored chunk against the query and prints the best matches.
Lexical mode scores whole-word matches of the query words; vector mode uses
embedding similarity and needs embeddings enabled at ingestion time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results (max 10)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "ranking mode: lexical or vector")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "log ranking diagnostics")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := requireRuntime("search service", func(r *Runtime) bool { return r.Search != nil })
	if err != nil {
		return err
	}

	mode, err := parseMode(searchMode)
	if err != nil {
		return err
	}

	results, err := rt.Search.Search(commandContext(cmd), strings.Join(args, " "), domain.SearchOptions{
		Limit: searchLimit,
		Mode:  mode,
		Debug: searchDebug,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

type searchResultJSON struct {
	File  string  `json:"file"`
	Path  string  `json:"path"`
	Page  int     `json:"page"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i := range results {
		c := results[i].Chunk
		out[i] = searchResultJSON{
			File:  c.FileName,
			Path:  c.FilePath,
			Page:  c.Page,
			Index: c.Index,
			Score: results[i].Score,
			Text:  c.Text,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		c := results[i].Chunk
		cmd.Printf("  [%d] %s, page %d (%.2f)\n", i+1, c.FileName, c.Page, results[i].Score)
		cmd.Printf("      %s\n", snippet(c.Text, 160))
		cmd.Println()
	}
	return nil
}

// snippet returns the first n runes of text on one line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
