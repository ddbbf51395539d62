package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/compose"
	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/nav"
	"github.com/nmorane/flowdeck/pkg/domain"
)

type playbooksLoadedMsg struct {
	wsID string
	rows []domain.Playbook
	err  error
}

type playbookPagesMsg struct {
	playbookID string
	playbook   domain.Playbook
	pages      []domain.PlaybookPage
	err        error
}

// pageSectionsMsg carries the active sections of one page plus all their
// variants, fetched as a batch.
type pageSectionsMsg struct {
	pageID   string
	sections []domain.PlaybookSection
	variants map[string][]domain.SectionVariant
	selected map[uuid.UUID]uuid.UUID
	err      error
}

type pbMode int

const (
	pbModeList pbMode = iota
	pbModeDetail
)

type playbooksModel struct {
	client   *gateway.Client
	composer *compose.Composer
	log      zerolog.Logger

	mode    pbMode
	wsID    string
	rows    []domain.Playbook
	cursor  int
	loading bool
	failed  bool

	// detail state
	detailID string
	playbook domain.Playbook
	pages    []domain.PlaybookPage
	pageIdx  int
	sections []domain.PlaybookSection
	variants map[string][]domain.SectionVariant
	selected map[uuid.UUID]uuid.UUID
	secIdx   int
	pageBusy bool
	marker   copyMarker

	width  int
	height int
}

func newPlaybooksModel(c *gateway.Client, comp *compose.Composer, log zerolog.Logger) playbooksModel {
	return playbooksModel{client: c, composer: comp, log: log}
}

func (m playbooksModel) enterList(wsID string) (playbooksModel, tea.Cmd) {
	m.mode = pbModeList
	m.wsID = wsID
	m.loading = true
	m.failed = false
	m.cursor = 0
	return m, m.loadList(wsID)
}

func (m playbooksModel) loadList(wsID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		raw, err := c.Query(context.Background(), "playbooks", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("workspace_id", wsID)},
			Order:   []gateway.Order{{Column: "created_at", Desc: true}},
			Limit:   pageSize,
		})
		if err != nil {
			return playbooksLoadedMsg{wsID: wsID, err: err}
		}
		rows, err := decodeRows[domain.Playbook](raw)
		return playbooksLoadedMsg{wsID: wsID, rows: rows, err: err}
	}
}

func (m playbooksModel) enterDetail(wsID, playbookID string) (playbooksModel, tea.Cmd) {
	m.mode = pbModeDetail
	m.wsID = wsID
	m.detailID = playbookID
	m.loading = true
	m.failed = false
	m.pages = nil
	m.sections = nil
	m.variants = nil
	m.selected = nil
	m.pageIdx = 0
	m.secIdx = 0
	m.marker = copyMarker{}
	return m, m.loadPages(playbookID)
}

func (m playbooksModel) loadPages(playbookID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		raw, err := c.GetByID(ctx, "playbooks", playbookID)
		if err != nil {
			return playbookPagesMsg{playbookID: playbookID, err: err}
		}
		var playbook domain.Playbook
		if err := json.Unmarshal(raw, &playbook); err != nil {
			return playbookPagesMsg{playbookID: playbookID, err: err}
		}
		rows, err := c.Query(ctx, "playbook_pages", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("playbook_id", playbookID)},
			Order:   []gateway.Order{{Column: "order_index"}},
		})
		if err != nil {
			return playbookPagesMsg{playbookID: playbookID, err: err}
		}
		pages, err := decodeRows[domain.PlaybookPage](rows)
		return playbookPagesMsg{playbookID: playbookID, playbook: playbook, pages: pages, err: err}
	}
}

// loadPage fetches a page's active sections, then all their variants in one
// batched In query, primaries first.
func (m playbooksModel) loadPage(pageID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		rows, err := c.Query(ctx, "playbook_sections", gateway.QueryOptions{
			Filters: []gateway.Filter{
				gateway.Eq("page_id", pageID),
				gateway.Eq("is_active", "true"),
			},
			Order: []gateway.Order{{Column: "order_index"}},
		})
		if err != nil {
			return pageSectionsMsg{pageID: pageID, err: err}
		}
		sections, err := decodeRows[domain.PlaybookSection](rows)
		if err != nil {
			return pageSectionsMsg{pageID: pageID, err: err}
		}

		var variants []domain.SectionVariant
		if len(sections) > 0 {
			ids := make([]string, len(sections))
			for i, s := range sections {
				ids[i] = s.ID.String()
			}
			vrows, err := c.Query(ctx, "section_variants", gateway.QueryOptions{
				Filters: []gateway.Filter{gateway.In("section_id", ids)},
				Order:   []gateway.Order{{Column: "is_primary", Desc: true}},
			})
			if err != nil {
				return pageSectionsMsg{pageID: pageID, err: err}
			}
			if variants, err = decodeRows[domain.SectionVariant](vrows); err != nil {
				return pageSectionsMsg{pageID: pageID, err: err}
			}
		}

		return pageSectionsMsg{
			pageID:   pageID,
			sections: sections,
			variants: compose.GroupBy(variants, func(v domain.SectionVariant) string { return v.SectionID.String() }),
			selected: compose.DefaultVariants(sections, variants),
		}
	}
}

func (m playbooksModel) Update(msg tea.Msg) (playbooksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case playbooksLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		m.rows = msg.rows
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load playbooks")
			m.rows = nil
		}
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case playbookPagesMsg:
		if msg.playbookID != m.detailID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("playbook_id", msg.playbookID).Msg("load playbook")
			m.failed = true
			return m, nil
		}
		m.playbook = msg.playbook
		m.pages = msg.pages
		if len(m.pages) > 0 {
			m.pageBusy = true
			return m, m.loadPage(m.pages[0].ID.String())
		}
		return m, nil

	case pageSectionsMsg:
		if len(m.pages) == 0 || m.pageIdx >= len(m.pages) || msg.pageID != m.pages[m.pageIdx].ID.String() {
			return m, nil
		}
		m.pageBusy = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("page_id", msg.pageID).Msg("load playbook page")
			m.sections = nil
			m.variants = nil
			m.selected = nil
			return m, nil
		}
		m.sections = msg.sections
		m.variants = msg.variants
		m.selected = msg.selected
		m.secIdx = 0
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("clipboard write")
			return m, nil
		}
		return m, m.marker.set(msg.id, "copied!")

	case markerClearMsg:
		m.marker.clear(msg.gen)
		return m, nil

	case tea.KeyMsg:
		if m.mode == pbModeDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m playbooksModel) updateList(msg tea.KeyMsg) (playbooksModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.rows) {
			id := m.rows[m.cursor].ID.String()
			return m, func() tea.Msg {
				return openViewMsg{view: nav.Detail(nav.SectionPlaybooks, id)}
			}
		}
	case "r":
		m.loading = true
		return m, m.loadList(m.wsID)
	}
	return m, nil
}

func (m playbooksModel) updateDetail(msg tea.KeyMsg) (playbooksModel, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		if m.pageIdx > 0 {
			m.pageIdx--
			m.pageBusy = true
			m.sections = nil
			return m, m.loadPage(m.pages[m.pageIdx].ID.String())
		}
	case "l", "right":
		if m.pageIdx < len(m.pages)-1 {
			m.pageIdx++
			m.pageBusy = true
			m.sections = nil
			return m, m.loadPage(m.pages[m.pageIdx].ID.String())
		}
	case "j", "down":
		if m.secIdx < len(m.sections)-1 {
			m.secIdx++
		}
	case "k", "up":
		if m.secIdx > 0 {
			m.secIdx--
		}
	case "v":
		m.cycleVariant()
	case "c":
		if v := m.currentVariant(); v != nil {
			return m, copyCmd(v.ID.String(), v.Content)
		}
	case "r":
		if len(m.pages) > 0 {
			m.pageBusy = true
			return m, m.loadPage(m.pages[m.pageIdx].ID.String())
		}
	}
	return m, nil
}

// currentVariant resolves the selected variant of the cursor section.
func (m playbooksModel) currentVariant() *domain.SectionVariant {
	if m.secIdx >= len(m.sections) {
		return nil
	}
	sec := m.sections[m.secIdx]
	vs := m.variants[sec.ID.String()]
	sel, ok := m.selected[sec.ID]
	if !ok {
		return nil
	}
	for i := range vs {
		if vs[i].ID == sel {
			return &vs[i]
		}
	}
	return nil
}

// cycleVariant advances the cursor section to its next variant, wrapping.
func (m *playbooksModel) cycleVariant() {
	if m.secIdx >= len(m.sections) {
		return
	}
	sec := m.sections[m.secIdx]
	vs := m.variants[sec.ID.String()]
	if len(vs) < 2 {
		return
	}
	sel := m.selected[sec.ID]
	for i := range vs {
		if vs[i].ID == sel {
			m.selected[sec.ID] = vs[(i+1)%len(vs)].ID
			return
		}
	}
	m.selected[sec.ID] = vs[0].ID
}

func (m playbooksModel) View() string {
	if m.mode == pbModeDetail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("PLAYBOOKS") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if len(m.rows) == 0 {
		b.WriteString(" " + dimStyle.Render("no playbooks"))
		return b.String()
	}

	for i, p := range m.rows {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		nameWidth := m.width - 20
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(p.Name, nameWidth)))
		line += " " + metaStyle.Render(formatTime(p.CreatedAt))
		b.WriteString(line + "\n")
	}

	if m.cursor < len(m.rows) && m.rows[m.cursor].Description != "" {
		b.WriteString("\n " + metaStyle.Render(truncStr(oneLine(m.rows[m.cursor].Description), m.width-4)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m playbooksModel) viewDetail() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(m.playbook.Name) + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.failed {
		b.WriteString(" " + dimStyle.Render("could not load playbook"))
		return b.String()
	}
	if len(m.pages) == 0 {
		b.WriteString(" " + dimStyle.Render("no pages"))
		return b.String()
	}

	// Page chips
	b.WriteString(" ")
	for i, p := range m.pages {
		if i > 0 {
			b.WriteString(" ")
		}
		if i == m.pageIdx {
			b.WriteString(searchStyle.Render("[" + p.Name + "]"))
		} else {
			b.WriteString(dimStyle.Render("[" + p.Name + "]"))
		}
	}
	b.WriteString("\n\n")

	if m.pageBusy {
		b.WriteString(" " + dimStyle.Render("loading page..."))
		return b.String()
	}
	if len(m.sections) == 0 {
		b.WriteString(" " + dimStyle.Render("no sections on this page"))
		return b.String()
	}

	for i, sec := range m.sections {
		cursor := "  "
		nameStyle := normalStyle
		if i == m.secIdx {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		vs := m.variants[sec.ID.String()]
		line := " " + cursor + nameStyle.Render(truncStr(sec.Name, m.width-24))
		if len(vs) > 1 {
			line += " " + metaStyle.Render(fmt.Sprintf("(%d variants)", len(vs)))
		}
		b.WriteString(line + "\n")

		sel, ok := m.selected[sec.ID]
		if !ok {
			b.WriteString("   " + metaStyle.Render("no variants") + "\n")
			continue
		}
		for j := range vs {
			if vs[j].ID != sel {
				continue
			}
			label := vs[j].VariantLabel
			if vs[j].IsPrimary {
				label += " " + favoriteStyle.Render("★")
			}
			b.WriteString("   " + countStyle.Render(label))
			if mark := m.marker.render(vs[j].ID.String()); mark != "" {
				b.WriteString("  " + mark)
			}
			b.WriteString("\n")
			if i == m.secIdx && vs[j].Content != "" {
				wrapped := lipgloss.NewStyle().Width(m.width - 6).Render(vs[j].Content)
				lines := strings.Split(wrapped, "\n")
				if len(lines) > 6 {
					lines = lines[:6]
				}
				for _, line := range lines {
					b.WriteString("   " + normalStyle.Render(line) + "\n")
				}
			}
		}
	}

	return truncateToHeight(b.String(), m.height)
}
