// Package tui is the terminal study client built on bubbletea.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/flashgen/internal/study"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Store *study.Store
}

// generateDoneMsg reports the end of the generation started as seq.
type generateDoneMsg struct {
	seq int
	err error
}

type model struct {
	store *study.Store
	state study.State

	input    textarea.Model
	spinner  spinner.Model
	progress progress.Model
	focus    focus

	// generating is set from ctrl+g until the matching generateDoneMsg.
	generating bool
	seq        int
	flipped    bool

	width  int
	height int
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	input := textarea.New()
	input.Placeholder = inputPlaceholder
	input.CharLimit = inputCharLimit
	input.ShowLineNumbers = false
	input.SetWidth(80)
	input.SetHeight(8)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 60

	m := &model{
		store:    config.Store,
		input:    input,
		spinner:  spin,
		progress: bar,
		focus:    focusInput,
		width:    80,
	}
	m.refresh()
	m.input.SetValue(m.state.InputText)
	return m
}

func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case generateDoneMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.generating = false
		m.refresh()
		m.input.SetValue(m.state.InputText)
		if msg.err == nil {
			m.setFocus(focusDeck)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m.seq++
		m.generating = false
		m.flipped = false
		m.store.Reset(ctx)
		m.refresh()
		m.input.Reset()
		m.setFocus(focusInput)
		return m, nil
	}

	if m.generating {
		return m, nil
	}

	if m.state.StudyMode.IsOpen {
		return m.handleStudyKey(ctx, msg)
	}

	switch msg.String() {
	case "ctrl+g":
		return m, m.startGenerate(ctx)
	case "tab":
		if m.focus == focusInput {
			m.setFocus(focusDeck)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil
	}

	if m.focus == focusInput {
		if msg.String() == "esc" {
			m.setFocus(focusDeck)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "s", "enter":
		m.store.OpenStudy(ctx)
		m.flipped = false
		m.refresh()
	case "i":
		m.setFocus(focusInput)
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleStudyKey(ctx context.Context, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "enter":
		m.flipped = !m.flipped
	case "right", "l", "n":
		m.store.NextCard(ctx)
		m.flipped = false
	case "left", "h", "p":
		m.store.PrevCard(ctx)
		m.flipped = false
	case "esc", "q":
		m.store.CloseStudy(ctx)
		m.flipped = false
	}
	m.refresh()
	return m, nil
}

// startGenerate copies the input into the store and runs Generate in a
// command. The returned command delivers a generateDoneMsg.
func (m *model) startGenerate(ctx context.Context) tea.Cmd {
	m.store.SetInputText(ctx, m.input.Value())
	m.seq++
	m.generating = true
	m.flipped = false
	m.refresh()

	seq := m.seq
	store := m.store
	run := func() tea.Msg {
		err := store.Generate(context.Background())
		return generateDoneMsg{seq: seq, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *model) loading() bool {
	return m.generating || m.state.IsLoading
}

func (m *model) refresh() {
	m.state = m.store.Snapshot()
}

func (m *model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}

func (m *model) resize(width, height int) {
	m.width = max(width, minContentWidth)
	m.height = height
	m.input.SetWidth(m.width - 2)
	m.progress.Width = max(m.width-10, 10)
}
