package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/compose"
	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/nav"
)

// dashboardCard is one section summary tile.
type dashboardCard struct {
	name    string
	label   string
	section nav.Section
}

// cards drive both the count fan-out and the rendered order.
var cards = []dashboardCard{
	{"audiences", "Audiences", nav.SectionAudiences},
	{"copy", "Copy Blocks", nav.SectionCopy},
	{"playbooks", "Playbooks", nav.SectionPlaybooks},
	{"boards", "Boards", nav.SectionBoards},
	{"links", "Tracking Links", nav.SectionLinks},
}

type summaryLoadedMsg struct {
	wsID   string
	counts map[string]int
	err    error
}

type dashboardModel struct {
	composer *compose.Composer
	log      zerolog.Logger
	wsID     string
	counts   map[string]int
	cursor   int
	loading  bool
	failed   bool
	width    int
	height   int
}

func newDashboardModel(comp *compose.Composer, log zerolog.Logger) dashboardModel {
	return dashboardModel{composer: comp, log: log}
}

func (m dashboardModel) enter(wsID string) (dashboardModel, tea.Cmd) {
	m.wsID = wsID
	m.loading = true
	m.failed = false
	m.counts = nil
	m.cursor = 0
	return m, m.load(wsID)
}

func (m dashboardModel) load(wsID string) tea.Cmd {
	comp := m.composer
	return func() tea.Msg {
		specs := []compose.CountSpec{
			{Name: "audiences", Collection: "audiences", FilterKey: "workspace_id"},
			{Name: "copy", Collection: "copy_blocks", FilterKey: "workspace_id"},
			{Name: "playbooks", Collection: "playbooks", FilterKey: "workspace_id"},
			{Name: "boards", Collection: "boards", FilterKey: "workspace_id",
				Extra: []gateway.Filter{gateway.Eq("is_deleted", "false")}},
			{Name: "links", Collection: "utm_links", FilterKey: "workspace_id"},
			{Name: "assets", Collection: "storage_assets", FilterKey: "workspace_id",
				Extra: []gateway.Filter{gateway.IsNull("archived_at")}},
		}
		counts, err := comp.SummaryCounts(context.Background(), wsID, specs)
		return summaryLoadedMsg{wsID: wsID, counts: counts, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case summaryLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.failed = true
			m.counts = nil
			return m, nil
		}
		m.counts = msg.counts
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(cards)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			section := cards[m.cursor].section
			return m, func() tea.Msg {
				return openViewMsg{view: nav.List(section)}
			}
		case "g":
			return m, func() tea.Msg {
				return openViewMsg{view: nav.Gallery("", "")}
			}
		case "r":
			m.loading = true
			return m, m.load(m.wsID)
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("OVERVIEW") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	for i, card := range cards {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		count := "—"
		if m.counts != nil {
			count = fmt.Sprintf("%d", m.counts[card.name])
		}
		line := fmt.Sprintf(" %s%s %s",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-16s", card.label)),
			countStyle.Render(fmt.Sprintf("%6s", count)))
		if i == m.cursor {
			line += "  " + metaStyle.Render("enter to open")
		}
		b.WriteString(line + "\n")
	}

	if m.counts != nil {
		b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("%d creative assets in storage", m.counts["assets"])) +
			"  " + dimStyle.Render("g to browse") + "\n")
	}
	if m.failed {
		b.WriteString("\n " + dimStyle.Render("counts unavailable") + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
