package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	answer      domain.Answer
	err         error
	question    string
	askOpts     domain.AskOptions
	file        string
	summaryOpts domain.SummarizeOptions
}

func (m *mockAssistant) Ask(_ context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	m.question = question
	m.askOpts = opts
	return m.answer, m.err
}

func (m *mockAssistant) Summarize(
	_ context.Context,
	fileName string,
	opts domain.SummarizeOptions,
) (domain.Answer, error) {
	m.file = fileName
	m.summaryOpts = opts
	return m.answer, m.err
}

// mockLibrary is a mock implementation of driving.LibraryService.
type mockLibrary struct {
	files []domain.TrackedFile
	stats domain.Statistics
	err   error
}

func (m *mockLibrary) Statistics(_ context.Context) (domain.Statistics, error) {
	return m.stats, m.err
}

func (m *mockLibrary) RecentFiles(_ context.Context, _ time.Duration) ([]string, error) {
	return nil, m.err
}

func (m *mockLibrary) ListFiles(_ context.Context) ([]domain.TrackedFile, error) {
	return m.files, m.err
}

func (m *mockLibrary) LastScan(_ context.Context, _ string) (*domain.ScanRecord, error) {
	return nil, m.err
}

func validPorts() *Ports {
	return &Ports{Search: &mockSearchService{}, Assistant: &mockAssistant{}}
}
