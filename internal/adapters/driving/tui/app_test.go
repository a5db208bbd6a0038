package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docask/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docask/internal/core/domain"
)

// mockAssistant implements driving.Assistant for testing.
type mockAssistant struct {
	AskFunc       func(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error)
	SummarizeFunc func(ctx context.Context, file string, opts domain.SummarizeOptions) (domain.Answer, error)
}

func (m *mockAssistant) Ask(ctx context.Context, question string, opts domain.AskOptions) (domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, opts)
	}
	return domain.Answer{Text: "answer to " + question, Outcome: domain.OutcomeContext}, nil
}

func (m *mockAssistant) Summarize(
	ctx context.Context,
	file string,
	opts domain.SummarizeOptions,
) (domain.Answer, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, file, opts)
	}
	return domain.Answer{Text: "summary of " + file, Outcome: domain.OutcomeContext}, nil
}

// mockLibrary implements driving.LibraryService for testing.
type mockLibrary struct {
	stats domain.Statistics
}

func (m *mockLibrary) Statistics(_ context.Context) (domain.Statistics, error) {
	return m.stats, nil
}

func (m *mockLibrary) RecentFiles(_ context.Context, _ time.Duration) ([]string, error) {
	return nil, nil
}

func (m *mockLibrary) ListFiles(_ context.Context) ([]domain.TrackedFile, error) {
	return nil, nil
}

func (m *mockLibrary) LastScan(_ context.Context, _ string) (*domain.ScanRecord, error) {
	return nil, nil
}

func newTestApp(t *testing.T, assistant *mockAssistant) *App {
	t.Helper()
	app, err := NewApp(&Ports{Assistant: assistant})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// answerFrom runs the request commands in cmd and returns the answer message.
func answerFrom(t *testing.T, cmd tea.Cmd) messages.AnswerCompleted {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch of spinner and request")
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(messages.AnswerCompleted); ok {
			return msg
		}
	}
	t.Fatal("no answer in batch")
	return messages.AnswerCompleted{}
}

func TestNewApp_RequiresAssistant(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAssistant)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingAssistant)
}

func TestApp_ViewBeforeSize(t *testing.T) {
	app, err := NewApp(&Ports{Assistant: &mockAssistant{}})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_AskRoundTrip(t *testing.T) {
	var gotOpts domain.AskOptions
	assistant := &mockAssistant{AskFunc: func(_ context.Context, q string, opts domain.AskOptions) (domain.Answer, error) {
		gotOpts = opts
		return domain.Answer{Text: "Use the tool.", Sources: []string{"guide.pdf (pages: 2)"}}, nil
	}}
	app := newTestApp(t, assistant)
	app.WithAskOptions(domain.AskOptions{TopK: 3})

	typeText(app, "how do I migrate?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, app.Busy())
	assert.Equal(t, status.StateThinking, app.status.State())
	assert.Empty(t, app.input.Value())

	msg := answerFrom(t, cmd)
	app.Update(msg)

	assert.False(t, app.Busy())
	assert.Equal(t, 3, gotOpts.TopK)
	require.Len(t, app.Turns(), 2)
	assert.Equal(t, Turn{Role: RoleUser, Text: "how do I migrate?"}, app.Turns()[0])
	assert.Equal(t, "Use the tool.", app.Turns()[1].Text)
	assert.Contains(t, app.View(), "guide.pdf (pages: 2)")
}

func TestApp_EmptyInputIgnored(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	typeText(app, "   ")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, app.Busy())
	assert.Empty(t, app.Turns())
}

func TestApp_Summarize(t *testing.T) {
	var gotFile string
	assistant := &mockAssistant{SummarizeFunc: func(_ context.Context, file string, _ domain.SummarizeOptions) (domain.Answer, error) {
		gotFile = file
		return domain.Answer{Text: "It is about migrations."}, nil
	}}
	app := newTestApp(t, assistant)

	typeText(app, "/summarize annual report.pdf")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(answerFrom(t, cmd))

	assert.Equal(t, "annual report.pdf", gotFile)
	assert.Equal(t, "It is about migrations.", app.Turns()[1].Text)
}

func TestApp_SummarizeWithoutFile(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	typeText(app, "/summarize")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	require.Len(t, app.Turns(), 1)
	assert.Equal(t, RoleNotice, app.Turns()[0].Role)
}

func TestApp_EscCancelsInFlightAnswer(t *testing.T) {
	started := make(chan struct{})
	assistant := &mockAssistant{AskFunc: func(ctx context.Context, _ string, _ domain.AskOptions) (domain.Answer, error) {
		close(started)
		<-ctx.Done()
		return domain.Answer{}, ctx.Err()
	}}
	app := newTestApp(t, assistant)

	typeText(app, "long question")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	result := make(chan messages.AnswerCompleted, 1)
	go func() { result <- answerFrom(t, cmd) }()
	<-started

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, app.Busy())

	var msg messages.AnswerCompleted
	select {
	case msg = <-result:
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}
	assert.ErrorIs(t, msg.Err, context.Canceled)

	app.Update(msg)
	require.Len(t, app.Turns(), 2)
	assert.Equal(t, Turn{Role: RoleNotice, Text: "Cancelled."}, app.Turns()[1])
}

func TestApp_StaleAnswerDropped(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})

	typeText(app, "first")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	typeText(app, "second")
	app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	app.Update(messages.AnswerCompleted{Seq: 1, Answer: domain.Answer{Text: "old"}})
	assert.True(t, app.Busy())

	app.Update(messages.AnswerCompleted{Seq: 2, Answer: domain.Answer{Text: "new"}})
	assert.False(t, app.Busy())
	last := app.Turns()[len(app.Turns())-1]
	assert.Equal(t, "new", last.Text)
}

func TestApp_ErrorShownInStatus(t *testing.T) {
	assistant := &mockAssistant{AskFunc: func(context.Context, string, domain.AskOptions) (domain.Answer, error) {
		return domain.Answer{}, errors.New("storage error: disk full")
	}}
	app := newTestApp(t, assistant)

	typeText(app, "q")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(answerFrom(t, cmd))

	assert.Equal(t, status.StateError, app.status.State())
	assert.Contains(t, app.Turns()[1].Text, "disk full")
}

func TestApp_LibraryLoaded(t *testing.T) {
	app, err := NewApp(&Ports{
		Assistant: &mockAssistant{},
		Library:   &mockLibrary{stats: domain.Statistics{Files: 2, Chunks: 7}},
	})
	require.NoError(t, err)
	app.SetDimensions(120, 30)

	msg := app.loadLibrary()()
	app.Update(msg)

	assert.Contains(t, app.View(), "2 files, 7 chunks")
}

func TestApp_ClearAndQuit(t *testing.T) {
	app := newTestApp(t, &mockAssistant{})
	app.appendTurn(Turn{Role: RoleUser, Text: "hello"})

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, app.Turns())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestParseSummarize(t *testing.T) {
	tests := []struct {
		text   string
		file   string
		wantOK bool
	}{
		{"/summarize report.pdf", "report.pdf", true},
		{"/summarize   spaced name.docx ", "spaced name.docx", true},
		{"/summarize", "", false},
		{"/summarizereport.pdf", "", false},
		{"summarize report.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			file, ok := parseSummarize(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.file, file)
		})
	}
}
