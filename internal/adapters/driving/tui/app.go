package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docask/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docask/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docask/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docask/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docask/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docask/internal/core/domain"
)

// summarizeCommand prefixes a chat line that asks for a document summary.
const summarizeCommand = "/summarize"

// chromeHeight is the number of rows used by the title, input and status bar.
const chromeHeight = 7

// Role identifies who produced a turn.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleNotice
)

// Turn is one entry in the conversation.
type Turn struct {
	Role    Role
	Text    string
	Sources []string
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports *Ports
	ctx   context.Context
	opts  domain.AskOptions

	styles   *styles.Styles
	keymap   *keymap.KeyMap
	input    *input.QuestionInput
	status   *status.Bar
	spinner  spinner.Model
	viewport viewport.Model

	turns []Turn

	// seq numbers requests; only the answer to the latest one is shown.
	seq    int
	cancel context.CancelFunc
	busy   bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat application over the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		input:   input.NewQuestionInput(s),
		status:  status.NewBar(s, km),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Title)),
	}, nil
}

// WithContext sets the parent context for requests.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithAskOptions sets the options used for every question.
func (a *App) WithAskOptions(opts domain.AskOptions) *App {
	a.opts = opts
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docask"),
		a.input.Init(),
		a.loadLibrary(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		return a, a.handleAnswer(msg)

	case messages.LibraryLoaded:
		if msg.Err == nil {
			a.status.SetLibrary(msg.Stats.Files, msg.Stats.Chunks)
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		a.cancelRequest()
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Cancel):
		if a.busy {
			a.cancelRequest()
			a.busy = false
			a.status.Clear()
			a.appendTurn(Turn{Role: RoleNotice, Text: "Cancelled."})
		}
		return a, nil

	case keymap.Matches(k, a.keymap.Send):
		text := strings.TrimSpace(a.input.Value())
		if a.busy || text == "" {
			return a, nil
		}
		a.input.Reset()
		if text == summarizeCommand {
			a.appendTurn(Turn{Role: RoleNotice, Text: "Usage: /summarize <file name>"})
			return a, nil
		}
		return a, a.submit(text)

	case keymap.Matches(k, a.keymap.Clear):
		a.turns = nil
		a.refresh()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollUp):
		a.viewport.SetYOffset(a.viewport.YOffset - a.viewport.Height)
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollDown):
		a.viewport.SetYOffset(a.viewport.YOffset + a.viewport.Height)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts an ask or summarize request for text.
func (a *App) submit(text string) tea.Cmd {
	a.appendTurn(Turn{Role: RoleUser, Text: text})

	ctx, cancel := context.WithCancel(a.ctx)
	a.seq++
	a.cancel = cancel
	a.busy = true
	a.status.SetState(status.StateThinking)

	seq := a.seq
	assistant := a.ports.Assistant
	var request tea.Cmd

	if file, ok := parseSummarize(text); ok {
		opts := domain.SummarizeOptions{Model: a.opts.Model}
		request = func() tea.Msg {
			answer, err := assistant.Summarize(ctx, file, opts)
			return messages.AnswerCompleted{Seq: seq, Answer: answer, Err: err}
		}
	} else {
		opts := a.opts
		request = func() tea.Msg {
			answer, err := assistant.Ask(ctx, text, opts)
			return messages.AnswerCompleted{Seq: seq, Answer: answer, Err: err}
		}
	}

	return tea.Batch(a.spinner.Tick, request)
}

func (a *App) handleAnswer(msg messages.AnswerCompleted) tea.Cmd {
	if msg.Seq != a.seq || !a.busy {
		return nil
	}
	a.cancelRequest()
	a.busy = false

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			a.status.Clear()
			return nil
		}
		a.status.SetState(status.StateError)
		a.status.SetMessage(msg.Err.Error())
		a.appendTurn(Turn{Role: RoleNotice, Text: "Error: " + msg.Err.Error()})
		return nil
	}

	a.status.Clear()
	a.appendTurn(Turn{Role: RoleAssistant, Text: msg.Answer.Text, Sources: msg.Answer.Sources})
	return a.loadLibrary()
}

func (a *App) cancelRequest() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *App) loadLibrary() tea.Cmd {
	if a.ports.Library == nil {
		return nil
	}
	library := a.ports.Library
	ctx := a.ctx
	return func() tea.Msg {
		stats, err := library.Statistics(ctx)
		return messages.LibraryLoaded{Stats: stats, Err: err}
	}
}

func (a *App) appendTurn(t Turn) {
	a.turns = append(a.turns, t)
	a.refresh()
}

// refresh re-renders the conversation and scrolls to the bottom.
func (a *App) refresh() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderTurns())
	a.viewport.GotoBottom()
}

func (a *App) renderTurns() string {
	if len(a.turns) == 0 {
		return a.styles.Muted.Render("Ask a question about your documents.")
	}

	wrap := lipgloss.NewStyle().Width(a.width - 4)
	var b strings.Builder
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch t.Role {
		case RoleUser:
			b.WriteString(a.styles.Question.Render(wrap.Render("You: " + t.Text)))
		case RoleAssistant:
			b.WriteString(a.styles.Answer.Render(wrap.Render(t.Text)))
			for _, src := range t.Sources {
				b.WriteString("\n")
				b.WriteString(a.styles.Source.Render("- " + src))
			}
		case RoleNotice:
			b.WriteString(a.styles.Warning.Render(t.Text))
		}
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	busyLine := ""
	if a.busy {
		busyLine = a.spinner.View() + a.styles.Muted.Render(" generating answer")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("docask"),
		a.viewport.View(),
		busyLine,
		a.input.View(),
		a.status.View(),
	)
}

// Run starts the chat in the alternate screen.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.cancelRequest()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}

// Turns returns the conversation so far.
func (a *App) Turns() []Turn {
	return a.turns
}

// Busy reports whether an answer is being generated.
func (a *App) Busy() bool {
	return a.busy
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every component for a terminal of width by height.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height

	vh := height - chromeHeight
	if vh < 3 {
		vh = 3
	}
	if !a.ready {
		a.viewport = viewport.New(width, vh)
		a.ready = true
	} else {
		a.viewport.Width = width
		a.viewport.Height = vh
	}
	a.input.SetWidth(width)
	a.status.SetWidth(width)
	a.refresh()
}

// parseSummarize extracts the file name from "/summarize <file>".
func parseSummarize(text string) (string, bool) {
	if !strings.HasPrefix(text, summarizeCommand) {
		return "", false
	}
	rest := strings.TrimPrefix(text, summarizeCommand)
	if rest != "" && rest[0] != ' ' {
		return "", false
	}
	file := strings.TrimSpace(rest)
	return file, file != ""
}
