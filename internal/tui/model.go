package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docsum/internal/document"
	"docsum/internal/postprocess"
	"docsum/internal/summarizer"
)

// ProcessPort is the TUI-facing subset of the summary service.
type ProcessPort interface {
	Process(ctx context.Context, text string, op postprocess.Operation) (string, error)
}

var opKeys = map[string]postprocess.Operation{
	"s": postprocess.Simplify,
	"h": postprocess.Shorten,
	"r": postprocess.Rephrase,
	"e": postprocess.Expand,
}

type processedMsg struct {
	index int
	op    postprocess.Operation
	text  string
	err   error
}

// Model is the Bubble Tea model for the paragraph editor.
type Model struct {
	ctx        context.Context
	service    ProcessPort
	title      string
	paragraphs []string
	history    [][]string
	cursor     int
	busy       bool
	status     string
	original   document.Metrics
	viewport   viewport.Model
	spinner    spinner.Model
	ready      bool
}

// New creates an editor over the paragraphs of summary.
func New(ctx context.Context, service ProcessPort, title, summary string) Model {
	paragraphs := summarizer.SplitParagraphs(summary)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:        ctx,
		service:    service,
		title:      title,
		paragraphs: paragraphs,
		history:    make([][]string, len(paragraphs)),
		original:   document.Measure(summary),
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		status:     "s simplify · h shorten · r rephrase · e expand · u undo · q quit",
	}
}

// Text returns the current summary with paragraphs rejoined.
func (m Model) Text() string { return strings.Join(m.paragraphs, "\n\n") }

func (m Model) Init() tea.Cmd { return nil }

// Update handles key and window events and the results of post-processing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := boxStyle.GetFrameSize()
		reserved := 2 + 1 + fh // header, status
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved)
		m.refresh()
		return m, nil
	case processedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		if msg.index < len(m.paragraphs) {
			m.history[msg.index] = append(m.history[msg.index], m.paragraphs[msg.index])
			m.paragraphs[msg.index] = msg.text
			m.status = fmt.Sprintf("Paragraph %d: %s done", msg.index+1, msg.op)
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		key := msg.String()
		if key == "q" {
			return m, tea.Quit
		}
		if len(m.paragraphs) == 0 {
			return m, nil
		}
		switch key {
		case "down", "j":
			m.cursor = (m.cursor + 1) % len(m.paragraphs)
			m.refresh()
			return m, nil
		case "up", "k":
			m.cursor = (m.cursor - 1 + len(m.paragraphs)) % len(m.paragraphs)
			m.refresh()
			return m, nil
		case "u":
			h := m.history[m.cursor]
			if len(h) == 0 {
				m.status = "Nothing to undo"
				return m, nil
			}
			m.paragraphs[m.cursor] = h[len(h)-1]
			m.history[m.cursor] = h[:len(h)-1]
			m.status = fmt.Sprintf("Paragraph %d restored", m.cursor+1)
			m.refresh()
			return m, nil
		}
		if op, ok := opKeys[key]; ok {
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = fmt.Sprintf("Running %s on paragraph %d", op, m.cursor+1)
			return m, tea.Batch(m.spinner.Tick, m.process(m.cursor, op))
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) process(index int, op postprocess.Operation) tea.Cmd {
	text := m.paragraphs[index]
	return func() tea.Msg {
		out, err := m.service.Process(m.ctx, text, op)
		return processedMsg{index: index, op: op, text: out, err: err}
	}
}

// View renders the editor layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render(m.title)
	current := document.Measure(m.Text())
	counts := dimStyle.Render(fmt.Sprintf("%d paragraphs · %d words (was %d)", len(m.paragraphs), current.Words, m.original.Words))
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + counts + "\n" + boxStyle.Render(m.viewport.View()) + "\n" + statusStyle.Render(status)
}

func (m *Model) refresh() {
	if len(m.paragraphs) == 0 {
		m.viewport.SetContent("Empty summary.")
		return
	}
	width := max(10, m.viewport.Width-4)
	blocks := make([]string, len(m.paragraphs))
	for i, p := range m.paragraphs {
		style := paragraphStyle
		if i == m.cursor {
			style = selectedStyle
		}
		blocks[i] = style.Width(width).Render(p)
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

var (
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	paragraphStyle = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle  = lipgloss.NewStyle().PaddingLeft(1).BorderLeft(true).BorderStyle(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("11"))
)
