package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-audit/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserModel struct {
	filename string
	tabs     []string
	contents []string
	active   int
	viewport viewport.Model
	ready    bool
}

// runInteractive opens a tabbed viewer over the full analysis report.
func runInteractive(filename string, a *analysis.Analysis) error {
	m := browserModel{
		filename: filename,
		tabs:     []string{"Sections", "Functions", "Operators"},
		contents: []string{
			a.SectionsReport(),
			a.FunctionsReport(),
			a.OperatorsReport(),
		},
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.setTab((m.active + 1) % len(m.tabs))
			return m, nil
		case "shift+tab", "left", "h":
			m.setTab((m.active + len(m.tabs) - 1) % len(m.tabs))
			return m, nil
		}

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.contents[m.active])
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *browserModel) setTab(i int) {
	m.active = i
	if m.ready {
		m.viewport.SetContent(m.contents[i])
		m.viewport.GotoTop()
	}
}

func (m browserModel) View() string {
	if !m.ready {
		return "loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m browserModel) headerView() string {
	rendered := make([]string, 0, len(m.tabs)+1)
	rendered = append(rendered, titleStyle.Render(m.filename))
	for i, tab := range m.tabs {
		if i == m.active {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, tabStyle.Render(tab))
		}
	}
	return strings.Join(rendered, " ")
}

func (m browserModel) footerView() string {
	return helpStyle.Render(fmt.Sprintf(
		"tab/←/→ switch • ↑/↓ scroll • q quit • %3.f%%", m.viewport.ScrollPercent()*100))
}
