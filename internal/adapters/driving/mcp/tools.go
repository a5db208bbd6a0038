package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the words to look for in the documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 5, max 10)"`
	Mode  string `json:"mode,omitempty" jsonschema:"ranking strategy: lexical or vector"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single ranked chunk.
type SearchResultOutput struct {
	File  string  `json:"file"`
	Path  string  `json:"path"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks used as context (max 10)"`
	Mode     string `json:"mode,omitempty" jsonschema:"ranking strategy: lexical or vector"`
}

// SummarizeInput is the input schema for the summarize tool.
type SummarizeInput struct {
	File     string `json:"file" jsonschema:"display name of the document, for example report.pdf"`
	MaxPages int    `json:"max_pages,omitempty" jsonschema:"number of pages used as context (default 10)"`
}

// AnswerOutput is the output schema for the ask and summarize tools.
type AnswerOutput struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
	Outcome string   `json:"outcome"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Rank ingested document chunks against a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the ingested documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize",
		Description: "Summarise one ingested document by file name",
	}, s.handleSummarize)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Limit: input.Limit,
		Mode:  domain.SearchMode(input.Mode),
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			File:  results[i].Chunk.FileName,
			Path:  results[i].Chunk.FilePath,
			Page:  results[i].Chunk.Page,
			Score: results[i].Score,
			Text:  results[i].Chunk.Text,
		}
	}

	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Assistant.Ask(ctx, input.Question, domain.AskOptions{
		TopK: input.TopK,
		Mode: domain.SearchMode(input.Mode),
	})
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, AnswerOutput, error) {
	answer, err := s.ports.Assistant.Summarize(ctx, input.File, domain.SummarizeOptions{
		MaxPages: input.MaxPages,
	})
	if err != nil {
		return nil, AnswerOutput{}, err
	}
	return nil, toAnswerOutput(answer), nil
}

func toAnswerOutput(a domain.Answer) AnswerOutput {
	sources := a.Sources
	if sources == nil {
		sources = []string{}
	}
	return AnswerOutput{
		Text:    a.Text,
		Sources: sources,
		Outcome: string(a.Outcome),
	}
}
