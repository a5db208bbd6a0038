package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// --- Mock implementations ---

// stubSearch implements driving.SearchService and counts calls.
type stubSearch struct {
	mu      sync.Mutex
	results []domain.SearchResult
	err     error
	calls   int
	lastOpt domain.SearchOptions
}

func (s *stubSearch) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastOpt = opts
	return s.results, s.err
}

// stubLLM implements driven.LLMService and records prompts.
type stubLLM struct {
	mu        sync.Mutex
	fragments []string
	streamErr error // returned by Stream
	nextErr   error // returned by Next after all fragments
	onNext    func(i int)
	prompts   []string
	models    []string
}

func (l *stubLLM) Stream(_ context.Context, model, prompt string) (driven.FragmentStream, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	l.models = append(l.models, model)
	if l.streamErr != nil {
		return nil, l.streamErr
	}
	return &stubStream{llm: l}, nil
}

func (l *stubLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

func (l *stubLLM) ModelName() string { return "stub-model" }

func (l *stubLLM) Ping(_ context.Context) error { return nil }

func (l *stubLLM) Close() error { return nil }

type stubStream struct {
	llm    *stubLLM
	i      int
	closed bool
}

func (s *stubStream) Next() (string, error) {
	if s.llm.onNext != nil {
		s.llm.onNext(s.i)
	}
	if s.i < len(s.llm.fragments) {
		f := s.llm.fragments[s.i]
		s.i++
		return f, nil
	}
	if s.llm.nextErr != nil {
		return "", s.llm.nextErr
	}
	return "", io.EOF
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

// stubEmbedder implements driven.EmbeddingService.
type stubEmbedder struct {
	mu     sync.Mutex
	err    error
	vector []float32
	calls  int
}

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int { return len(e.vector) }

func (e *stubEmbedder) ModelName() string { return "stub-embed" }

func (e *stubEmbedder) Ping(_ context.Context) error { return nil }

func (e *stubEmbedder) Close() error { return nil }

// stubExtractor implements driven.Extractor.
type stubExtractor struct {
	exts      []string
	paginated bool
	pages     []domain.Page
	err       error
}

func (e *stubExtractor) Extensions() []string { return e.exts }

func (e *stubExtractor) Paginated() bool { return e.paginated }

func (e *stubExtractor) Extract(_ context.Context, _ string) ([]domain.Page, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.pages, nil
}

// stubPrompts implements driven.PromptStore.
type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) {
	if v, ok := p[name]; ok {
		return v, nil
	}
	return "", errors.New("unknown prompt")
}

func (p stubPrompts) Reload() {}

// failingStore wraps a ChunkStore and fails selected calls with ErrStorage.
type failingStore struct {
	driven.ChunkStore
	failGetFile   bool
	failAllChunks bool
	failForFile   bool
}

var errBackend = errors.New("disk on fire")

func (s *failingStore) GetFile(ctx context.Context, path string) (*domain.TrackedFile, error) {
	if s.failGetFile {
		return nil, errors.Join(domain.ErrStorage, errBackend)
	}
	return s.ChunkStore.GetFile(ctx, path)
}

func (s *failingStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	if s.failAllChunks {
		return nil, errors.Join(domain.ErrStorage, errBackend)
	}
	return s.ChunkStore.AllChunks(ctx)
}

func (s *failingStore) ChunksForFile(ctx context.Context, name string) ([]domain.Chunk, error) {
	if s.failForFile {
		return nil, errors.Join(domain.ErrStorage, errBackend)
	}
	return s.ChunkStore.ChunksForFile(ctx, name)
}
