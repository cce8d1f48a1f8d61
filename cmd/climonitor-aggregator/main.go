// Command climonitor-aggregator listens for launcher connections and
// renders a live multi-session dashboard of their reported state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kizaaku/climonitor/aggregator"
	"github.com/kizaaku/climonitor/config"
	"github.com/kizaaku/climonitor/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a climonitor config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("climonitor-aggregator: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	allowlist, err := transport.NewAllowlist(cfg.Connection.Allowlist)
	if err != nil {
		log.Fatalf("climonitor-aggregator: %v", err)
	}

	tcfg := transport.Config{
		Kind:       cfg.Connection.Type,
		SocketPath: cfg.Connection.SocketPath,
		Addr:       cfg.Connection.NetworkAddr,
	}

	lipgloss.SetColorProfile(termenv.ANSI256)

	var program *tea.Program
	registry := aggregator.NewRegistry(func() {
		if program != nil {
			program.Send(refreshMsg{})
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := aggregator.ListenAndServe(ctx, tcfg, allowlist, registry, logger); err != nil {
			logger.Error("aggregator server stopped", "error", err)
		}
	}()

	program = tea.NewProgram(newModel(registry), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "climonitor-aggregator: %v\n", err)
		os.Exit(1)
	}
}

type refreshMsg struct{}

type model struct {
	registry *aggregator.Registry
	table    table.Model
	rows     []sessionRow
}

type sessionRow struct {
	project string
	tool    string
	state   string
	context string
}

func newModel(registry *aggregator.Registry) model {
	columns := []table.Column{
		{Title: "PROJECT", Width: 22},
		{Title: "TOOL", Width: 10},
		{Title: "STATE", Width: 14},
		{Title: "CONTEXT", Width: 40},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(16),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.NoColor{}).
		Background(lipgloss.NoColor{})
	t.SetStyles(styles)

	m := model{registry: registry, table: t}
	m.refresh()
	return m
}

func (m *model) refresh() {
	snapshot := m.registry.Snapshot()
	rows := make([]sessionRow, 0, len(snapshot))
	for _, lv := range snapshot {
		for _, sv := range lv.Sessions {
			rows = append(rows, sessionRow{
				project: lv.Identity.ProjectName,
				tool:    lv.Identity.ToolKind,
				state:   sv.State,
				context: sv.Context,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].project < rows[j].project })
	m.rows = rows

	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, table.Row{r.project, r.tool, stateLabel(r.state), r.context})
	}
	m.table.SetRows(tableRows)
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case refreshMsg:
		m.refresh()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

var stateStyles = map[string]lipgloss.Style{
	"idle":          lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60")),
	"busy":          lipgloss.NewStyle().Foreground(lipgloss.Color("#f1c40f")),
	"waiting_input": lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")).Bold(true),
	"error":         lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true),
	"connected":     lipgloss.NewStyle().Foreground(lipgloss.Color("#95a5a6")),
}

var stateIcons = map[string]string{
	"idle":          "●",
	"busy":          "◐",
	"waiting_input": "◆",
	"error":         "✗",
	"connected":     "○",
}

// stateLabel renders a colored icon alongside the raw state name so the
// table column stays legible even when the terminal downgrades colors.
func stateLabel(state string) string {
	style, ok := stateStyles[state]
	if !ok {
		style, state = stateStyles["connected"], "connected"
	}
	icon := stateIcons[state]
	return style.Render(icon) + " " + state
}

func (m model) View() string {
	if len(m.rows) == 0 {
		return "no connected sessions\n\npress q to quit\n"
	}
	return m.table.View() + "\n\npress q to quit\n"
}
