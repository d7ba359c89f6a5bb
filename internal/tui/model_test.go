package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum/internal/postprocess"
)

type stubPort struct {
	err   error
	calls []postprocess.Operation
}

func (s *stubPort) Process(_ context.Context, text string, op postprocess.Operation) (string, error) {
	s.calls = append(s.calls, op)
	if s.err != nil {
		return "", s.err
	}
	return strings.ToUpper(op.String()) + ": " + text, nil
}

func key(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// runProcess executes the batched command and returns the post-processing result.
func runProcess(t *testing.T, cmd tea.Cmd) processedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "expected a batch, got %T", msg)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if pm, ok := c().(processedMsg); ok {
			return pm
		}
	}
	t.Fatal("no processing command in batch")
	return processedMsg{}
}

func newSized(port ProcessPort, summary string) Model {
	m := New(context.Background(), port, "Summary", summary)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func TestModel(t *testing.T) {
	t.Run("Should rewrite only the selected paragraph", func(t *testing.T) {
		port := &stubPort{}
		m := newSized(port, "first part\n\nsecond part")

		next, _ := m.Update(key("j"))
		m = next.(Model)
		next, cmd := m.Update(key("h"))
		m = next.(Model)
		assert.True(t, m.busy)

		next, _ = m.Update(runProcess(t, cmd))
		m = next.(Model)
		assert.False(t, m.busy)
		assert.Equal(t, "first part\n\nSHORTEN: second part", m.Text())
		assert.Equal(t, []postprocess.Operation{postprocess.Shorten}, port.calls)
	})

	t.Run("Should undo the last rewrite", func(t *testing.T) {
		m := newSized(&stubPort{}, "only")
		next, cmd := m.Update(key("s"))
		m = next.(Model)
		next, _ = m.Update(runProcess(t, cmd))
		m = next.(Model)
		assert.Equal(t, "SIMPLIFY: only", m.Text())

		next, _ = m.Update(key("u"))
		m = next.(Model)
		assert.Equal(t, "only", m.Text())

		next, _ = m.Update(key("u"))
		assert.Equal(t, "Nothing to undo", next.(Model).status)
	})

	t.Run("Should keep the text and report failures", func(t *testing.T) {
		m := newSized(&stubPort{err: errors.New("quota exceeded")}, "keep me")
		next, cmd := m.Update(key("r"))
		m = next.(Model)
		next, _ = m.Update(runProcess(t, cmd))
		m = next.(Model)
		assert.Equal(t, "keep me", m.Text())
		assert.Contains(t, m.status, "quota exceeded")
		assert.Contains(t, m.View(), "quota exceeded")
	})

	t.Run("Should ignore operations while busy", func(t *testing.T) {
		m := newSized(&stubPort{}, "text")
		next, _ := m.Update(key("e"))
		m = next.(Model)
		_, cmd := m.Update(key("s"))
		assert.Nil(t, cmd)
	})

	t.Run("Should wrap the cursor", func(t *testing.T) {
		m := newSized(&stubPort{}, "a\n\nb\n\nc")
		next, _ := m.Update(key("k"))
		assert.Equal(t, 2, next.(Model).cursor)
	})

	t.Run("Should quit", func(t *testing.T) {
		m := newSized(&stubPort{}, "text")
		_, cmd := m.Update(key("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("Should render word counts", func(t *testing.T) {
		m := newSized(&stubPort{}, "one two three")
		view := m.View()
		assert.Contains(t, view, "1 paragraphs")
		assert.Contains(t, view, "3 words (was 3)")
	})
}
