package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragpipe/internal/domain"
	"ragpipe/internal/relevance"
)

// Searcher is the TUI-facing subset of the retrieval pipeline.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) ([]domain.QueryResult, error)
}

// Model is the Bubble Tea model for the interactive query client. Each
// submitted query is embedded, matched against the index and shown one
// passage at a time together with the retrieval confidence.
type Model struct {
	searcher   Searcher
	topK       int
	confidence float64 // minimum average score considered trustworthy

	input    textinput.Model
	viewport viewport.Model
	results  []domain.QueryResult
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model. topK bounds each query; confidenceFloor
// marks retrievals whose average score falls below it.
func New(searcher Searcher, topK int, confidenceFloor float64) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		searcher:   searcher,
		topK:       topK,
		confidence: confidenceFloor,
		input:      ti,
		viewport:   vp,
		status:     "Index ready. Type to search.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.runQuery(q)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runQuery(q string) {
	res, err := m.searcher.Retrieve(context.Background(), q, m.topK)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
		return
	}
	m.results = res
	m.cursor = 0
	avg := relevance.AverageScore(res)
	if avg < m.confidence {
		m.status = fmt.Sprintf("Low confidence %.3f for %q, treat results with care", avg, q)
	} else {
		m.status = fmt.Sprintf("Confidence %.3f for %q", avg, q)
	}
}

// View renders the layout and current passage.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Retrieval Console")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := scoreStyle.Render(fmt.Sprintf("Passage %d/%d  score=%.3f", m.cursor+1, len(m.results), r.Score))
	return title + "\n\n" + r.Text
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
