package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
)

// Ensure AnswerService implements the interface.
var _ driving.Assistant = (*AnswerService)(nil)

// contextSeparator joins chunk texts and source groups in the prompt context.
const contextSeparator = "\n\n---\n\n"

// AnswerService turns questions into prompts over retrieved chunks.
type AnswerService struct {
	search   driving.SearchService
	store    driven.ChunkStore
	llm      driven.LLMService
	settings domain.AnswerSettings

	prompts driven.PromptStore
	hinter  LanguageHinter
	metrics *metrics.Metrics
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	search driving.SearchService,
	store driven.ChunkStore,
	llm driven.LLMService,
	settings domain.AnswerSettings,
) *AnswerService {
	if settings.MaxContextChars <= 0 {
		settings.MaxContextChars = domain.DefaultMaxContextChars
	}
	if settings.SummaryMaxPages <= 0 {
		settings.SummaryMaxPages = domain.DefaultSummaryMaxPages
	}
	return &AnswerService{
		search:   search,
		store:    store,
		llm:      llm,
		settings: settings,
		hinter:   DefaultLanguageHinter(),
	}
}

// SetPromptStore sets where system instructions are loaded from.
func (s *AnswerService) SetPromptStore(p driven.PromptStore) {
	s.prompts = p
}

// SetLanguageHinter replaces the language detection strategy.
func (s *AnswerService) SetLanguageHinter(h LanguageHinter) {
	s.hinter = h
}

// SetMetrics sets the metrics sink.
func (s *AnswerService) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Ask answers question from the stored documents.
func (s *AnswerService) Ask(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	logger.Section("Ask")
	logger.Debug("Question: %q", question)

	if reply, ok := GreetingReply(question); ok {
		return s.finish(domain.Answer{Text: reply, Outcome: domain.OutcomeGreeting}), nil
	}

	mode := opts.Mode
	if mode == "" {
		mode = s.settings.SearchMode
	}
	results, err := s.search.Search(ctx, question, domain.SearchOptions{
		Mode:           mode,
		QueryEmbedding: opts.QueryEmbedding,
		Limit:          domain.ClampTopK(opts.TopK, s.settings.TopK),
		Debug:          opts.Debug || s.settings.DebugSearch,
	})
	if err != nil {
		return domain.Answer{}, err
	}
	if len(results) == 0 {
		logger.Debug("No matching chunks")
		return s.finish(domain.Answer{Text: domain.NoContextAnswer, Outcome: domain.OutcomeFallback}), nil
	}

	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}

	system := s.loadPrompt(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt)
	prompt := BuildPrompt(system, languageInstruction(s.hinter, question),
		AssembleContext(chunks, s.settings.MaxContextChars), question)

	return s.generate(ctx, opts.Model, prompt, domain.EmptyAnswer, FormatSources(chunks))
}

// Summarize summarises the document with the given display name or path.
func (s *AnswerService) Summarize(
	ctx context.Context, fileName string, opts domain.SummarizeOptions,
) (domain.Answer, error) {
	logger.Section("Summarize")

	chunks, err := s.store.ChunksForFile(ctx, fileName)
	if err != nil {
		return domain.Answer{}, err
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = s.settings.SummaryMaxPages
	}
	chunks = firstPages(chunks, maxPages)
	if len(chunks) == 0 {
		return s.finish(domain.Answer{Text: domain.NoDocumentContent, Outcome: domain.OutcomeFallback}), nil
	}
	logger.Debug("Summarizing %s from %d chunks", fileName, len(chunks))

	system := s.loadPrompt(driven.PromptSummariseSystem, domain.DefaultSummariseSystemPrompt)
	prompt := BuildPrompt(system, "", AssembleContext(chunks, s.settings.MaxContextChars), "")

	return s.generate(ctx, opts.Model, prompt, domain.EmptySummary, FormatSources(chunks))
}

// generate streams the oracle's answer. Cancellation discards the partial
// answer and returns ctx.Err(). Oracle failures become an answer text.
func (s *AnswerService) generate(
	ctx context.Context, model, prompt, emptyText string, sources []string,
) (domain.Answer, error) {
	start := time.Now()
	text, err := s.collect(ctx, model, prompt)
	s.metrics.RecordGeneration(time.Since(start))

	switch {
	case ctx.Err() != nil:
		return domain.Answer{}, ctx.Err()
	case err != nil:
		s.metrics.RecordOracleError("generation")
		logger.Error(err, "Generation failed")
		return s.finish(domain.Answer{Text: "Error: " + oracleDetail(err), Outcome: domain.OutcomeFallback}), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return s.finish(domain.Answer{Text: emptyText, Sources: sources, Outcome: domain.OutcomeFallback}), nil
	}
	return s.finish(domain.Answer{Text: text, Sources: sources, Outcome: domain.OutcomeContext}), nil
}

func (s *AnswerService) collect(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = s.llm.ModelName()
	}
	stream, err := s.llm.Stream(ctx, model, prompt)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(fragment)
	}
}

func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	p, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		logger.Debug("Using built-in %s prompt: %v", name, err)
		return fallback
	}
	return p
}

func (s *AnswerService) finish(a domain.Answer) domain.Answer {
	if a.Sources == nil {
		a.Sources = []string{}
	}
	s.metrics.RecordAnswer(string(a.Outcome))
	return a
}

// oracleDetail strips sentinel prefixes so the user sees the cause.
func oracleDetail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrOracle, domain.ErrLLMUnavailable} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// ==================== Greeting detection ====================

var (
	greetingPattern   = phrasePattern("hi", "hello", "hey", "good morning", "good afternoon", "good evening")
	identityPattern   = phrasePattern("who are you", "your name", "what are you", "are you real", "are you assistant", "what is your job")
	capabilityPattern = phrasePattern("what can you do", "how do you work")
)

// Canned replies for greeting and meta questions.
const (
	GreetingText   = "Hello! How can I help you today?"
	IdentityText   = "I'm your AI assistant, here to help you search and summarize your documents."
	CapabilityText = "I can answer questions and summarize information from your PDF documents. " +
		"Just ask me about any topic covered in your files!"
)

// phrasePattern matches any phrase as whole words, case-insensitively.
func phrasePattern(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(p), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// GreetingReply returns a canned reply when question is a greeting or a
// question about the assistant itself.
func GreetingReply(question string) (string, bool) {
	switch {
	case greetingPattern.MatchString(question):
		return GreetingText, true
	case identityPattern.MatchString(question):
		return IdentityText, true
	case capabilityPattern.MatchString(question):
		return CapabilityText, true
	}
	return "", false
}

// ==================== Prompt assembly ====================

// AssembleContext groups chunk texts by file in order of first appearance,
// prefixes each group with a [Source: <file>] marker, and cuts the result
// to maxBytes. The cut is a plain byte-offset substring and may split a
// word or a multi-byte character.
func AssembleContext(chunks []domain.Chunk, maxBytes int) string {
	var order []string
	groups := make(map[string][]string)
	for _, c := range chunks {
		if _, ok := groups[c.FileName]; !ok {
			order = append(order, c.FileName)
		}
		groups[c.FileName] = append(groups[c.FileName], c.Text)
	}

	sections := make([]string, len(order))
	for i, name := range order {
		sections[i] = "[Source: " + name + "]\n" + strings.Join(groups[name], contextSeparator)
	}

	joined := strings.Join(sections, contextSeparator)
	if maxBytes > 0 && len(joined) > maxBytes {
		joined = joined[:maxBytes]
	}
	return joined
}

// BuildPrompt combines the prompt parts. Empty parts are left out.
func BuildPrompt(system, language, contextText, question string) string {
	var b strings.Builder
	b.WriteString(system)
	if language != "" {
		b.WriteString("\n")
		b.WriteString(language)
	}
	b.WriteString("\n\nContext:\n")
	b.WriteString(contextText)
	if question != "" {
		b.WriteString("\n\nQuestion: ")
		b.WriteString(question)
	}
	return b.String()
}

// FormatSources lists "file (pages: 1, 3)" once per file, in order of first
// appearance, with sorted distinct pages.
func FormatSources(chunks []domain.Chunk) []string {
	var order []string
	pages := make(map[string]map[int]bool)
	for _, c := range chunks {
		if _, ok := pages[c.FileName]; !ok {
			order = append(order, c.FileName)
			pages[c.FileName] = make(map[int]bool)
		}
		pages[c.FileName][c.Page] = true
	}

	sources := make([]string, len(order))
	for i, name := range order {
		nums := make([]int, 0, len(pages[name]))
		for p := range pages[name] {
			nums = append(nums, p)
		}
		sort.Ints(nums)

		strs := make([]string, len(nums))
		for j, n := range nums {
			strs[j] = strconv.Itoa(n)
		}
		sources[i] = fmt.Sprintf("%s (pages: %s)", name, strings.Join(strs, ", "))
	}
	return sources
}

// firstPages keeps chunks on the first n distinct pages. chunks must be
// ordered by page.
func firstPages(chunks []domain.Chunk, n int) []domain.Chunk {
	seen := 0
	last := 0
	for i, c := range chunks {
		if i == 0 || c.Page != last {
			seen++
			last = c.Page
		}
		if seen > n {
			return chunks[:i]
		}
	}
	return chunks
}
