// Package dashboard provides the Bubble Tea live monitoring interface.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davrk/keypulse/internal/model"
	"github.com/davrk/keypulse/internal/monitor"
	"github.com/davrk/keypulse/internal/stats"
)

const (
	pollInterval  = time.Second
	maxRecent     = 120
	trendWidth    = 40
	narrowCutoff  = 80
	recentColumns = 6
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))

	levelStyles = map[model.FatigueLevel]lipgloss.Style{
		model.FatigueMinimal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true),
		model.FatigueMild:     lipgloss.NewStyle().Foreground(lipgloss.Color("#A0D911")).Bold(true),
		model.FatigueModerate: lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		model.FatigueHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FA8C16")).Bold(true),
		model.FatigueSevere:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true),
	}
)

type tickMsg time.Time

// Model implements the Bubble Tea live dashboard.
type Model struct {
	mon *monitor.Monitor

	recent      []model.Snapshot
	recentTable table.Model
	paused      bool

	width  int
	height int
}

// NewModel constructs a dashboard model polling the given monitor.
func NewModel(mon *monitor.Monitor) *Model {
	m := &Model{mon: mon}
	m.recentTable = buildRecentTable(nil, 0, 8)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return pollTick()
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		if !m.paused {
			if snap, ok := m.mon.Current(); ok {
				m.pushSnapshot(snap)
			}
		}
		return m, pollTick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "p", " ":
			m.paused = !m.paused
			return m, nil
		case "g", "home":
			m.recentTable.GotoTop()
			return m, nil
		case "G", "end":
			m.recentTable.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.recentTable, cmd = m.recentTable.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	sections := []string{
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	}
	return fitLines(strings.Join(sections, "\n"), m.width, m.height)
}

func (m *Model) pushSnapshot(snap model.Snapshot) {
	if len(m.recent) > 0 && m.recent[len(m.recent)-1].Timestamp.Equal(snap.Timestamp) {
		return
	}
	m.recent = append(m.recent, snap)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
	m.recentTable.SetRows(recentRows(m.recent))
	m.recentTable.GotoBottom()
}

func (m *Model) updateLayout() {
	tableHeight := m.height - 14
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.recentTable.SetWidth(m.width)
	m.recentTable.SetHeight(tableHeight)
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("keypulse")
	status := "live"
	if m.paused {
		status = "paused"
	}
	var session string
	if snap, ok := m.current(); ok {
		session = fmt.Sprintf("session %s  schema v%d  %s",
			formatDuration(snap.SessionDuration), snap.SchemaVersion, status)
	} else {
		session = "waiting for first analysis pass  " + status
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", headerStyle.Render(session))
}

func (m *Model) renderBody() string {
	snap, ok := m.current()
	if !ok {
		return "No metrics yet."
	}
	cards := m.renderCards(snap)
	trend := m.renderTrend()
	recent := tableMutedStyle.Render(m.recentTable.View())
	return strings.Join([]string{cards, trend, recent}, "\n")
}

func (m *Model) renderCards(snap model.Snapshot) string {
	levelStyle, okStyle := levelStyles[snap.Fatigue.Level]
	levelValue := string(snap.Fatigue.Level)
	if okStyle {
		levelValue = levelStyle.Render(levelValue)
	}
	activity := fmt.Sprintf("%.0f%%", snap.Mouse.ActiveTimePercentage)
	if snap.IsInactive {
		activity = errorStyle.Render("inactive")
	}
	cards := []string{
		metricCard("WPM", fmt.Sprintf("%.1f", snap.Typing.WPM)),
		metricCard("Rhythm", fmt.Sprintf("%.0f", snap.Typing.RhythmConsistency)),
		metricCard("Health", fmt.Sprintf("%.0f", snap.Typing.HealthScore)),
		metricCard("Fatigue", fmt.Sprintf("%.0f %s", snap.Fatigue.OverallFatigue, levelValue)),
		metricCard("Mouse Smooth", fmt.Sprintf("%.0f", snap.Mouse.MovementSmoothness)),
		metricCard("Active", activity),
	}
	if m.width < narrowCutoff {
		rows := make([]string, 0, 3)
		for i := 0; i+1 < len(cards); i += 2 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i], cards[i+1]))
		}
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderTrend() string {
	if len(m.recent) < 2 {
		return headerStyle.Render("WPM trend: collecting...")
	}
	wpms := make([]float64, 0, trendWidth)
	start := 0
	if len(m.recent) > trendWidth {
		start = len(m.recent) - trendWidth
	}
	for _, snap := range m.recent[start:] {
		wpms = append(wpms, snap.Typing.WPM)
	}
	return headerStyle.Render("WPM trend: ") + stats.Sparkline(wpms)
}

func (m *Model) renderFooter() string {
	help := "Pause: p  Scroll: up/down  Top/Bottom: g/G  Quit: q"
	return headerStyle.Render(help)
}

func (m *Model) current() (model.Snapshot, bool) {
	if len(m.recent) > 0 {
		return m.recent[len(m.recent)-1], true
	}
	return m.mon.Current()
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildRecentTable(rows []table.Row, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 8},
		{Title: "WPM", Width: 6},
		{Title: "Health", Width: 6},
		{Title: "Fatigue", Width: 7},
		{Title: "Level", Width: 8},
		{Title: "Active", Width: 6},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(recentTableStyles())
	t.Focus()
	return t
}

func recentRows(snapshots []model.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(snapshots))
	for _, snap := range snapshots {
		rows = append(rows, table.Row{
			snap.Timestamp.Local().Format("15:04:05"),
			fmt.Sprintf("%.1f", snap.Typing.WPM),
			fmt.Sprintf("%.0f", snap.Typing.HealthScore),
			fmt.Sprintf("%.0f", snap.Fatigue.OverallFatigue),
			string(snap.Fatigue.Level),
			fmt.Sprintf("%.0f%%", snap.Mouse.ActiveTimePercentage),
		})
	}
	return rows
}

func recentTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
