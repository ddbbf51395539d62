package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/nav"
	"github.com/nmorane/flowdeck/pkg/domain"
)

type copyBlocksLoadedMsg struct {
	wsID string
	rows []domain.CopyBlock
	err  error
}

type copyDetailMsg struct {
	blockID string
	block   domain.CopyBlock
	err     error
}

type copyMode int

const (
	copyModeList copyMode = iota
	copyModeDetail
)

// copyModel is the copy-block library: a flat newest-first list searched
// locally, and a detail view showing one block's full body.
type copyModel struct {
	client *gateway.Client
	log    zerolog.Logger

	mode    copyMode
	wsID    string
	rows    []domain.CopyBlock
	cursor  int
	search  string
	editing bool
	loading bool
	marker  copyMarker

	// detail state
	detailID string
	block    domain.CopyBlock
	failed   bool

	width  int
	height int
}

func newCopyModel(c *gateway.Client, log zerolog.Logger) copyModel {
	return copyModel{client: c, log: log}
}

func (m copyModel) enterList(wsID string) (copyModel, tea.Cmd) {
	m.mode = copyModeList
	m.wsID = wsID
	m.loading = true
	m.cursor = 0
	m.search = ""
	m.editing = false
	m.marker = copyMarker{}
	return m, m.loadList(wsID)
}

func (m copyModel) loadList(wsID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		raw, err := c.Query(context.Background(), "copy_blocks", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("workspace_id", wsID)},
			Order:   []gateway.Order{{Column: "created_at", Desc: true}},
			Limit:   pageSize,
		})
		if err != nil {
			return copyBlocksLoadedMsg{wsID: wsID, err: err}
		}
		rows, err := decodeRows[domain.CopyBlock](raw)
		return copyBlocksLoadedMsg{wsID: wsID, rows: rows, err: err}
	}
}

func (m copyModel) enterDetail(wsID, blockID string) (copyModel, tea.Cmd) {
	m.mode = copyModeDetail
	m.wsID = wsID
	m.detailID = blockID
	m.loading = true
	m.failed = false
	m.marker = copyMarker{}
	return m, m.loadDetail(blockID)
}

func (m copyModel) loadDetail(blockID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		raw, err := c.GetByID(context.Background(), "copy_blocks", blockID)
		if err != nil {
			return copyDetailMsg{blockID: blockID, err: err}
		}
		var block domain.CopyBlock
		if err := json.Unmarshal(raw, &block); err != nil {
			return copyDetailMsg{blockID: blockID, err: err}
		}
		return copyDetailMsg{blockID: blockID, block: block}
	}
}

// blockBody is what a copy action places on the clipboard.
func blockBody(blk domain.CopyBlock) string {
	if blk.Notes != "" {
		return blk.Notes
	}
	return blk.Name
}

func (m copyModel) Update(msg tea.Msg) (copyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case copyBlocksLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		m.rows = msg.rows
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load copy blocks")
			m.rows = nil
		}
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case copyDetailMsg:
		if msg.blockID != m.detailID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("block_id", msg.blockID).Msg("load copy block")
			m.failed = true
			return m, nil
		}
		m.block = msg.block
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
		if m.mode == copyModeDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m copyModel) updateList(msg tea.KeyMsg) (copyModel, tea.Cmd) {
	if m.editing {
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
				return openViewMsg{view: nav.Detail(nav.SectionCopy, id)}
			}
		}
	case "c":
		visible := m.visible()
		if m.cursor < len(visible) {
			blk := visible[m.cursor]
			return m, copyCmd(blk.ID.String(), blockBody(blk))
		}
	case "r":
		m.loading = true
		return m, m.loadList(m.wsID)
	}
	return m, nil
}

func (m copyModel) updateDetail(msg tea.KeyMsg) (copyModel, tea.Cmd) {
	switch msg.String() {
	case "c":
		return m, copyCmd(m.block.ID.String(), blockBody(m.block))
	case "r":
		m.loading = true
		return m, m.loadDetail(m.detailID)
	}
	return m, nil
}

func (m copyModel) visible() []domain.CopyBlock {
	if m.search == "" {
		return m.rows
	}
	var out []domain.CopyBlock
	for _, blk := range m.rows {
		if matchQuery(m.search, blk.Name, blk.Category, blk.Type, blk.Intent, blk.Tone, blk.Notes) {
			out = append(out, blk)
		}
	}
	return out
}

func (m copyModel) View() string {
	if m.mode == copyModeDetail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("COPY BLOCKS") + "\n")

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
		b.WriteString(" " + dimStyle.Render("no copy blocks"))
		return b.String()
	}

	for i, blk := range visible {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		nameWidth := m.width - 34
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(blk.Name, nameWidth)))
		if blk.Category != "" {
			line += " " + CategoryStyle(blk.Category).Render(fmt.Sprintf("%-9s", truncStr(blk.Category, 9)))
		}
		if blk.Tone != "" {
			line += " " + metaStyle.Render(truncStr(blk.Tone, 10))
		}
		if mark := m.marker.render(blk.ID.String()); mark != "" {
			line += "  " + mark
		}
		b.WriteString(line + "\n")
	}

	// Body preview of the selected block
	if m.cursor < len(visible) {
		blk := visible[m.cursor]
		if blk.Notes != "" {
			b.WriteString("\n " + normalStyle.Render(truncStr(oneLine(blk.Notes), (m.width-4)*2)) + "\n")
		}
		meta := []string{}
		if blk.Intent != "" {
			meta = append(meta, "intent: "+blk.Intent)
		}
		if blk.Status != "" {
			meta = append(meta, "status: "+blk.Status)
		}
		if len(meta) > 0 {
			b.WriteString(" " + metaStyle.Render(strings.Join(meta, "  ")) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m copyModel) viewDetail() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(m.block.Name))
	if mark := m.marker.render(m.block.ID.String()); mark != "" {
		b.WriteString("  " + mark)
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.failed {
		b.WriteString(" " + dimStyle.Render("could not load copy block"))
		return b.String()
	}

	badges := []string{}
	if m.block.Category != "" {
		badges = append(badges, CategoryStyle(m.block.Category).Render(m.block.Category))
	}
	if m.block.Type != "" {
		badges = append(badges, metaStyle.Render(m.block.Type))
	}
	if m.block.Intent != "" {
		badges = append(badges, metaStyle.Render("intent: "+m.block.Intent))
	}
	if m.block.Tone != "" {
		badges = append(badges, metaStyle.Render("tone: "+m.block.Tone))
	}
	if m.block.Status != "" {
		badges = append(badges, countStyle.Render(m.block.Status))
	}
	if len(badges) > 0 {
		b.WriteString(" " + strings.Join(badges, "  ") + "\n")
	}
	b.WriteString(" " + metaStyle.Render("created "+formatTime(m.block.CreatedAt)) + "\n\n")

	body := blockBody(m.block)
	if body == "" {
		b.WriteString(" " + dimStyle.Render("no content yet"))
		return b.String()
	}
	wrapWidth := m.width - 4
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	wrapped := lipgloss.NewStyle().Width(wrapWidth).Render(body)
	for _, line := range strings.Split(wrapped, "\n") {
		b.WriteString("  " + normalStyle.Render(line) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
