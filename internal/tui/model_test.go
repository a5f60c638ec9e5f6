package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/mocks"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capitalsResponse = `[{"term":"Paris","definition":"Capital of France"},{"term":"Rome","definition":"Capital of Italy"}]`

func newTestModel(t *testing.T, client generation.Client) *model {
	t.Helper()

	store, err := study.NewStore(client, logger.Discard())
	require.NoError(t, err)
	teaModel, ok := New(Config{Store: store}).(*model)
	require.True(t, ok, "expected *model, got %T", teaModel)
	return teaModel
}

func key(name string) tea.KeyMsg {
	switch name {
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func (m *model) press(t *testing.T, name string) tea.Cmd {
	t.Helper()

	_, cmd := m.Update(key(name))
	return cmd
}

// runCmd executes cmd, expanding batches, and returns the produced messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func doneMsg(t *testing.T, msgs []tea.Msg) generateDoneMsg {
	t.Helper()

	for _, msg := range msgs {
		if done, ok := msg.(generateDoneMsg); ok {
			return done
		}
	}
	t.Fatalf("no generateDoneMsg among %d messages", len(msgs))
	return generateDoneMsg{}
}

// generate types text, presses ctrl+g and feeds the result back.
func (m *model) generate(t *testing.T, text string) {
	t.Helper()

	m.input.SetValue(text)
	msgs := runCmd(m.press(t, "ctrl+g"))
	m.Update(doneMsg(t, msgs))
}

func TestGenerateFromInput(t *testing.T) {
	client := mocks.NewMockClientWithResponse(capitalsResponse)
	m := newTestModel(t, client)

	m.input.SetValue("European capitals")
	cmd := m.press(t, "ctrl+g")
	require.NotNil(t, cmd)
	assert.True(t, m.generating)
	assert.Equal(t, "European capitals", m.store.Snapshot().InputText)
	assert.Contains(t, m.View(), "Generating flashcards")

	m.Update(doneMsg(t, runCmd(cmd)))

	assert.False(t, m.generating)
	assert.Len(t, m.state.Flashcards, 2)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, focusDeck, m.focus)
	assert.Contains(t, client.LastPrompt(), "European capitals")

	view := m.View()
	assert.Contains(t, view, "Your Flashcards (2)")
	assert.Contains(t, view, "Paris")
	assert.Contains(t, view, "Rome")
	assert.NotContains(t, view, "Capital of Italy")
	assert.NotContains(t, view, "Generating flashcards")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("blank input", func(t *testing.T) {
		client := mocks.NewMockClientWithResponse(capitalsResponse)
		m := newTestModel(t, client)

		m.generate(t, "   ")

		assert.Equal(t, 0, client.CallCount())
		assert.Equal(t, study.MsgEmptyInput, m.state.Error)
		assert.Contains(t, m.View(), "Please enter some text")
		assert.Equal(t, focusInput, m.focus)
	})

	t.Run("unusable response keeps the input", func(t *testing.T) {
		m := newTestModel(t, mocks.NewMockClientWithResponse("no cards today"))

		m.generate(t, "my notes")

		assert.Equal(t, study.MsgGenerationFailed, m.state.Error)
		assert.Equal(t, "my notes", m.input.Value())
		assert.Empty(t, m.state.Flashcards)
	})
}

func TestStudyNavigation(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))
	m.generate(t, "capitals")

	m.press(t, "s")
	require.True(t, m.state.StudyMode.IsOpen)
	view := m.View()
	assert.Contains(t, view, "Card 1 of 2 (term)")
	assert.Contains(t, view, "Paris")

	m.press(t, " ")
	assert.True(t, m.flipped)
	assert.Contains(t, m.View(), "Capital of France")

	m.press(t, "left")
	assert.Equal(t, 0, m.state.StudyMode.CurrentIndex)
	assert.False(t, m.flipped)

	m.press(t, "right")
	m.press(t, "right")
	assert.Equal(t, 1, m.state.StudyMode.CurrentIndex)
	assert.Contains(t, m.View(), "Card 2 of 2")

	m.press(t, "esc")
	assert.False(t, m.state.StudyMode.IsOpen)
	assert.Equal(t, 1, m.state.StudyMode.CurrentIndex)
	assert.Contains(t, m.View(), "Your Flashcards (2)")
}

func TestStudyRequiresCards(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))
	m.press(t, "tab")
	require.Equal(t, focusDeck, m.focus)

	m.press(t, "s")

	assert.False(t, m.state.StudyMode.IsOpen)
}

func TestTypingGoesToInput(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))

	m.press(t, "s")
	m.press(t, "q")

	assert.Equal(t, "sq", m.input.Value())
	assert.False(t, m.state.StudyMode.IsOpen)
}

func TestResetDiscardsInFlightGeneration(t *testing.T) {
	started := make(chan struct{})
	client := &mocks.MockClient{
		SendPromptFn: func(ctx context.Context, _, _ string, _ generation.ChunkHandler) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	m := newTestModel(t, client)
	m.input.SetValue("notes")
	cmd := m.press(t, "ctrl+g")

	msgs := make(chan []tea.Msg, 1)
	go func() { msgs <- runCmd(cmd) }()
	<-started

	m.press(t, "ctrl+r")
	assert.False(t, m.generating)
	assert.Equal(t, study.InitialState(), m.state)

	var done generateDoneMsg
	select {
	case got := <-msgs:
		done = doneMsg(t, got)
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not stop after reset")
	}
	assert.ErrorIs(t, done.err, study.ErrSuperseded)

	m.Update(done)
	assert.Equal(t, study.InitialState(), m.state)
	assert.Empty(t, m.input.Value())
}

func TestKeysIgnoredWhileGenerating(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))
	m.input.SetValue("notes")
	cmd := m.press(t, "ctrl+g")
	require.NotNil(t, cmd)

	assert.Nil(t, m.press(t, "ctrl+g"))
	m.press(t, "x")
	assert.Equal(t, "notes", m.input.Value())
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))

	cmd := m.press(t, "ctrl+c")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, mocks.NewMockClientWithResponse(capitalsResponse))
	m.generate(t, "capitals")

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	assert.Equal(t, minContentWidth, m.width)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.width)
	lines := strings.Split(m.deckGrid(), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[1], "Paris")
	assert.Contains(t, lines[1], "Rome")
}
