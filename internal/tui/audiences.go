package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/compose"
	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/nav"
	"github.com/nmorane/flowdeck/pkg/domain"
)

type audiencesLoadedMsg struct {
	wsID string
	rows []domain.Audience
	err  error
}

// audienceDetailMsg carries the audience header row plus all four child
// collections, composed in one step.
type audienceDetailMsg struct {
	audienceID string
	audience   domain.Audience
	pains      []domain.PainPoint
	pillars    []domain.ContentPillar
	blocks     map[string][]domain.ContentBlock
	layers     []domain.TargetingLayer
	err        error
}

type audMode int

const (
	audModeList audMode = iota
	audModeDetail
)

// detailRow is one line of the flattened detail body: pillar headers,
// their blocks when expanded, then targeting layers.
type detailRow struct {
	pillar *domain.ContentPillar
	block  *domain.ContentBlock
	layer  *domain.TargetingLayer
}

type audiencesModel struct {
	client   *gateway.Client
	composer *compose.Composer
	log      zerolog.Logger

	mode    audMode
	wsID    string
	rows    []domain.Audience
	cursor  int
	search  string
	editing bool
	loading bool
	failed  bool

	// detail state
	detailID string
	audience domain.Audience
	pains    []domain.PainPoint
	pillars  []domain.ContentPillar
	blocks   map[string][]domain.ContentBlock
	layers   []domain.TargetingLayer
	expanded toggleSet
	dcursor  int
	marker   copyMarker

	width  int
	height int
}

func newAudiencesModel(c *gateway.Client, comp *compose.Composer, log zerolog.Logger) audiencesModel {
	return audiencesModel{client: c, composer: comp, log: log, expanded: toggleSet{}}
}

func (m audiencesModel) enterList(wsID string) (audiencesModel, tea.Cmd) {
	m.mode = audModeList
	m.wsID = wsID
	m.loading = true
	m.failed = false
	m.cursor = 0
	m.search = ""
	m.editing = false
	return m, m.loadList(wsID)
}

func (m audiencesModel) loadList(wsID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		raw, err := c.Query(context.Background(), "audiences", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("workspace_id", wsID)},
			Order:   []gateway.Order{{Column: "created_at", Desc: true}},
			Limit:   pageSize,
		})
		if err != nil {
			return audiencesLoadedMsg{wsID: wsID, err: err}
		}
		rows, err := decodeRows[domain.Audience](raw)
		return audiencesLoadedMsg{wsID: wsID, rows: rows, err: err}
	}
}

func (m audiencesModel) enterDetail(wsID, audienceID string) (audiencesModel, tea.Cmd) {
	m.mode = audModeDetail
	m.wsID = wsID
	m.detailID = audienceID
	m.loading = true
	m.failed = false
	m.dcursor = 0
	m.expanded = toggleSet{}
	m.marker = copyMarker{}
	return m, m.loadDetail(audienceID)
}

func (m audiencesModel) loadDetail(audienceID string) tea.Cmd {
	c := m.client
	comp := m.composer
	return func() tea.Msg {
		ctx := context.Background()
		raw, err := c.GetByID(ctx, "audiences", audienceID)
		if err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}
		var audience domain.Audience
		if err := json.Unmarshal(raw, &audience); err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}

		result, err := comp.Children(ctx, audienceID, []compose.Spec{
			{Name: "pains", Collection: "audience_pain_points", FilterKey: "audience_id", OrderKey: "sort_order"},
			{Name: "pillars", Collection: "content_pillars", FilterKey: "audience_id", OrderKey: "sort_order"},
			{Name: "blocks", Collection: "audience_content_blocks", FilterKey: "audience_id", OrderKey: "position"},
			{Name: "layers", Collection: "targeting_layers", FilterKey: "audience_id", OrderKey: "sort_order"},
		})
		if err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}

		msg := audienceDetailMsg{audienceID: audienceID, audience: audience}
		if msg.pains, err = compose.Decode[domain.PainPoint](result, "pains"); err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}
		if msg.pillars, err = compose.Decode[domain.ContentPillar](result, "pillars"); err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}
		blocks, err := compose.Decode[domain.ContentBlock](result, "blocks")
		if err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}
		msg.blocks = compose.GroupBy(blocks, func(b domain.ContentBlock) string {
			if b.ContentPillarID == nil {
				return ""
			}
			return b.ContentPillarID.String()
		})
		if msg.layers, err = compose.Decode[domain.TargetingLayer](result, "layers"); err != nil {
			return audienceDetailMsg{audienceID: audienceID, err: err}
		}
		return msg
	}
}

func (m audiencesModel) Update(msg tea.Msg) (audiencesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case audiencesLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		m.failed = msg.err != nil
		m.rows = msg.rows
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load audiences")
			m.rows = nil
		}
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case audienceDetailMsg:
		if msg.audienceID != m.detailID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("audience_id", msg.audienceID).Msg("load audience detail")
			m.failed = true
			m.pains, m.pillars, m.blocks, m.layers = nil, nil, nil, nil
			return m, nil
		}
		m.audience = msg.audience
		m.pains = msg.pains
		m.pillars = msg.pillars
		m.blocks = msg.blocks
		m.layers = msg.layers
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
		if m.mode == audModeDetail {
			return m.updateDetail(msg)
		}
		if m.editing {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m audiencesModel) updateSearch(msg tea.KeyMsg) (audiencesModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
	case "esc":
		m.editing = false
		m.search = ""
	default:
		m.search = editRune(m.search, msg.String())
		m.cursor = 0
	}
	return m, nil
}

func (m audiencesModel) updateList(msg tea.KeyMsg) (audiencesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.editing = true
		m.search = ""
		m.cursor = 0
	case "enter":
		visible := m.visible()
		if m.cursor < len(visible) {
			id := visible[m.cursor].ID.String()
			return m, func() tea.Msg {
				return openViewMsg{view: nav.Detail(nav.SectionAudiences, id)}
			}
		}
	case "r":
		m.loading = true
		return m, m.loadList(m.wsID)
	}
	return m, nil
}

func (m audiencesModel) updateDetail(msg tea.KeyMsg) (audiencesModel, tea.Cmd) {
	rows := m.detailRows()
	switch msg.String() {
	case "j", "down":
		if m.dcursor < len(rows)-1 {
			m.dcursor++
		}
	case "k", "up":
		if m.dcursor > 0 {
			m.dcursor--
		}
	case "enter", " ":
		if m.dcursor < len(rows) {
			row := rows[m.dcursor]
			if row.pillar != nil {
				m.expanded.toggle(row.pillar.ID.String())
			}
			if row.layer != nil {
				m.expanded.toggle(row.layer.ID.String())
			}
		}
	case "c":
		if m.dcursor < len(rows) {
			if b := rows[m.dcursor].block; b != nil && b.Messaging != "" {
				return m, copyCmd(b.ID.String(), b.Messaging)
			}
		}
	case "r":
		m.loading = true
		return m, m.loadDetail(m.detailID)
	}
	return m, nil
}

// visible applies the search filter to the fetched list. Filtering is local;
// the query never changes what was fetched.
func (m audiencesModel) visible() []domain.Audience {
	if m.search == "" {
		return m.rows
	}
	var out []domain.Audience
	for _, a := range m.rows {
		fields := []string{a.Name, a.Notes, a.Goal}
		fields = append(fields, a.Tags...)
		if matchQuery(m.search, fields...) {
			out = append(out, a)
		}
	}
	return out
}

// detailRows flattens pillars, their expanded blocks, and targeting layers
// into the cursor-addressable row list.
func (m audiencesModel) detailRows() []detailRow {
	var rows []detailRow
	for i := range m.pillars {
		p := &m.pillars[i]
		rows = append(rows, detailRow{pillar: p})
		if m.expanded.has(p.ID.String()) {
			blocks := m.blocks[p.ID.String()]
			for j := range blocks {
				rows = append(rows, detailRow{block: &blocks[j]})
			}
		}
	}
	for i := range m.layers {
		rows = append(rows, detailRow{layer: &m.layers[i]})
	}
	return rows
}

func (m audiencesModel) View() string {
	if m.mode == audModeDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m audiencesModel) viewList() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("AUDIENCES") + "\n")

	if m.editing {
		b.WriteString(" " + searchStyle.Render("/ "+m.search+"█") + "\n")
	} else if m.search != "" {
		b.WriteString(" " + searchStyle.Render("/ "+m.search) + "\n")
	} else {
		b.WriteString(" " + inputPlaceholderStyle.Render("/ search...") + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(" " + dimStyle.Render("no audiences"))
		return b.String()
	}

	for i, a := range visible {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		nameWidth := m.width - 30
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(a.Name, nameWidth)))
		if a.FunnelStage != "" {
			line += " " + FunnelStyle(a.FunnelStage).Render(a.FunnelStage)
		}
		line += " " + metaStyle.Render(formatTime(a.CreatedAt))
		b.WriteString(line + "\n")
	}

	// Preview of the selected audience
	if m.cursor < len(visible) {
		a := visible[m.cursor]
		b.WriteString("\n")
		if a.Goal != "" {
			b.WriteString(" " + metaStyle.Render("goal: ") + normalStyle.Render(truncStr(oneLine(a.Goal), m.width-10)) + "\n")
		}
		if len(a.Platforms) > 0 {
			b.WriteString(" " + metaStyle.Render("platforms: "+strings.Join(a.Platforms, ", ")) + "\n")
		}
		if a.EstimatedReachMin != nil && a.EstimatedReachMax != nil {
			b.WriteString(" " + metaStyle.Render(fmt.Sprintf("reach: %d - %d", *a.EstimatedReachMin, *a.EstimatedReachMax)) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m audiencesModel) viewDetail() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(m.audience.Name))
	if m.audience.FunnelStage != "" {
		b.WriteString("  " + FunnelStyle(m.audience.FunnelStage).Render(m.audience.FunnelStage))
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.failed {
		b.WriteString(" " + dimStyle.Render("could not load audience"))
		return b.String()
	}

	if len(m.pains) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("PAIN POINTS (%d)", len(m.pains))) + "\n")
		for _, p := range m.pains {
			b.WriteString("   " + warnStyle.Render("•") + " " + normalStyle.Render(truncStr(p.Title, m.width-8)) + "\n")
		}
	}

	rows := m.detailRows()
	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("CONTENT PILLARS (%d)", len(m.pillars))) + "\n")
	layerHeader := false
	for i, row := range rows {
		cursor := "  "
		if i == m.dcursor {
			cursor = accentStyle.Render("▸") + " "
		}
		switch {
		case row.pillar != nil:
			p := row.pillar
			arrow := "▸"
			if m.expanded.has(p.ID.String()) {
				arrow = "▾"
			}
			line := " " + cursor + searchStyle.Render(arrow+" "+truncStr(p.Name, m.width-20))
			if n := len(m.blocks[p.ID.String()]); n > 0 {
				line += " " + metaStyle.Render(fmt.Sprintf("(%d)", n))
			}
			b.WriteString(line + "\n")
			if m.expanded.has(p.ID.String()) && p.CorePromise != "" {
				b.WriteString("     " + metaStyle.Render(truncStr(oneLine(p.CorePromise), m.width-8)) + "\n")
			}
		case row.block != nil:
			blk := row.block
			text := blk.Messaging
			if text == "" {
				text = blk.Intent
			}
			line := "   " + cursor + normalStyle.Render(truncStr(oneLine(text), m.width-16))
			if mark := m.marker.render(blk.ID.String()); mark != "" {
				line += "  " + mark
			}
			b.WriteString(line + "\n")
		case row.layer != nil:
			if !layerHeader {
				b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("TARGETING (%d)", len(m.layers))) + "\n")
				layerHeader = true
			}
			l := row.layer
			arrow := "▸"
			if m.expanded.has(l.ID.String()) {
				arrow = "▾"
			}
			line := " " + cursor + normalStyle.Render(arrow+" "+truncStr(l.Name, m.width-20))
			if l.Platform != "" {
				line += " " + countStyle.Render(l.Platform)
			}
			b.WriteString(line + "\n")
			if m.expanded.has(l.ID.String()) {
				if len(l.AITargetingReport) > 0 {
					b.WriteString("     " + metaStyle.Render("targeting report attached") + "\n")
				} else {
					b.WriteString("     " + metaStyle.Render("no report") + "\n")
				}
			}
		}
	}
	if len(rows) == 0 {
		b.WriteString(" " + dimStyle.Render("no content yet") + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
