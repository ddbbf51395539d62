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

// assetCountFilter excludes soft-deleted assets from every count.
func assetCountFilter() []gateway.Filter {
	return []gateway.Filter{gateway.IsNull("archived_at")}
}

type boardsLoadedMsg struct {
	wsID   string
	rows   []domain.Board
	counts map[string]int
	err    error
}

type boardDetailMsg struct {
	boardID   string
	board     domain.Board
	subBoards []domain.SubBoard
	counts    map[string]int
	total     int
	err       error
}

type boardMode int

const (
	boardModeList boardMode = iota
	boardModeDetail
)

type boardsModel struct {
	client   *gateway.Client
	composer *compose.Composer
	log      zerolog.Logger

	mode    boardMode
	wsID    string
	rows    []domain.Board
	counts  map[string]int
	cursor  int
	loading bool
	failed  bool

	// detail state
	detailID  string
	board     domain.Board
	subBoards []domain.SubBoard
	subCounts map[string]int
	total     int
	subCursor int

	width  int
	height int
}

func newBoardsModel(c *gateway.Client, comp *compose.Composer, log zerolog.Logger) boardsModel {
	return boardsModel{client: c, composer: comp, log: log}
}

func (m boardsModel) enterList(wsID string) (boardsModel, tea.Cmd) {
	m.mode = boardModeList
	m.wsID = wsID
	m.loading = true
	m.failed = false
	m.cursor = 0
	return m, m.loadList(wsID)
}

// loadList fetches live boards, favorites first, then fans out one asset
// count per board.
func (m boardsModel) loadList(wsID string) tea.Cmd {
	c := m.client
	comp := m.composer
	return func() tea.Msg {
		ctx := context.Background()
		raw, err := c.Query(ctx, "boards", gateway.QueryOptions{
			Filters: []gateway.Filter{
				gateway.Eq("workspace_id", wsID),
				gateway.Eq("is_deleted", "false"),
			},
			Order: []gateway.Order{
				{Column: "is_favorite", Desc: true},
				{Column: "created_at", Desc: true},
			},
			Limit: pageSize,
		})
		if err != nil {
			return boardsLoadedMsg{wsID: wsID, err: err}
		}
		rows, err := decodeRows[domain.Board](raw)
		if err != nil {
			return boardsLoadedMsg{wsID: wsID, err: err}
		}

		ids := make([]string, len(rows))
		for i, b := range rows {
			ids[i] = b.ID.String()
		}
		counts, err := comp.Counts(ctx, ids, compose.CountSpec{
			Name:       "assets",
			Collection: "storage_assets",
			FilterKey:  "board_id",
			Extra:      assetCountFilter(),
		})
		if err != nil {
			// Boards still render without badges.
			counts = nil
		}
		return boardsLoadedMsg{wsID: wsID, rows: rows, counts: counts}
	}
}

func (m boardsModel) enterDetail(wsID, boardID string) (boardsModel, tea.Cmd) {
	m.mode = boardModeDetail
	m.wsID = wsID
	m.detailID = boardID
	m.loading = true
	m.failed = false
	m.subCursor = 0
	return m, m.loadDetail(boardID)
}

func (m boardsModel) loadDetail(boardID string) tea.Cmd {
	c := m.client
	comp := m.composer
	return func() tea.Msg {
		ctx := context.Background()
		raw, err := c.GetByID(ctx, "boards", boardID)
		if err != nil {
			return boardDetailMsg{boardID: boardID, err: err}
		}
		var board domain.Board
		if err := json.Unmarshal(raw, &board); err != nil {
			return boardDetailMsg{boardID: boardID, err: err}
		}

		rows, err := c.Query(ctx, "sub_boards", gateway.QueryOptions{
			Filters: []gateway.Filter{
				gateway.Eq("board_id", boardID),
				gateway.Eq("is_deleted", "false"),
			},
			Order: []gateway.Order{{Column: "position"}},
		})
		if err != nil {
			return boardDetailMsg{boardID: boardID, err: err}
		}
		subBoards, err := decodeRows[domain.SubBoard](rows)
		if err != nil {
			return boardDetailMsg{boardID: boardID, err: err}
		}

		total, err := c.CountOnly(ctx, "storage_assets",
			append([]gateway.Filter{gateway.Eq("board_id", boardID)}, assetCountFilter()...))
		if err != nil {
			return boardDetailMsg{boardID: boardID, err: err}
		}

		ids := make([]string, len(subBoards))
		for i, sb := range subBoards {
			ids[i] = sb.ID.String()
		}
		counts, err := comp.Counts(ctx, ids, compose.CountSpec{
			Name:       "assets",
			Collection: "storage_assets",
			FilterKey:  "sub_board_id",
			Extra:      assetCountFilter(),
		})
		if err != nil {
			counts = nil
		}
		return boardDetailMsg{boardID: boardID, board: board, subBoards: subBoards, counts: counts, total: total}
	}
}

func (m boardsModel) Update(msg tea.Msg) (boardsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardsLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		m.rows = msg.rows
		m.counts = msg.counts
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load boards")
			m.rows = nil
		}
		if m.cursor >= len(m.rows) {
			m.cursor = 0
		}
		return m, nil

	case boardDetailMsg:
		if msg.boardID != m.detailID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("board_id", msg.boardID).Msg("load board detail")
			m.failed = true
			return m, nil
		}
		m.board = msg.board
		m.subBoards = msg.subBoards
		m.subCounts = msg.counts
		m.total = msg.total
		return m, nil

	case tea.KeyMsg:
		if m.mode == boardModeDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m boardsModel) updateList(msg tea.KeyMsg) (boardsModel, tea.Cmd) {
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
				return openViewMsg{view: nav.Detail(nav.SectionBoards, id)}
			}
		}
	case "g":
		if m.cursor < len(m.rows) {
			id := m.rows[m.cursor].ID.String()
			return m, func() tea.Msg {
				return openViewMsg{view: nav.Gallery(id, "")}
			}
		}
	case "r":
		m.loading = true
		return m, m.loadList(m.wsID)
	}
	return m, nil
}

func (m boardsModel) updateDetail(msg tea.KeyMsg) (boardsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.subCursor < len(m.subBoards)-1 {
			m.subCursor++
		}
	case "k", "up":
		if m.subCursor > 0 {
			m.subCursor--
		}
	case "enter":
		if m.subCursor < len(m.subBoards) {
			boardID := m.detailID
			subID := m.subBoards[m.subCursor].ID.String()
			return m, func() tea.Msg {
				return openViewMsg{view: nav.Gallery(boardID, subID)}
			}
		}
	case "g":
		boardID := m.detailID
		return m, func() tea.Msg {
			return openViewMsg{view: nav.Gallery(boardID, "")}
		}
	case "r":
		m.loading = true
		return m, m.loadDetail(m.detailID)
	}
	return m, nil
}

func (m boardsModel) View() string {
	if m.mode == boardModeDetail {
		return m.viewDetail()
	}

	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("BOARDS") + "\n\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if len(m.rows) == 0 {
		b.WriteString(" " + dimStyle.Render("no boards"))
		return b.String()
	}

	for i, board := range m.rows {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		star := "  "
		if board.IsFavorite {
			star = favoriteStyle.Render("★") + " "
		}
		nameWidth := m.width - 24
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + star + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(board.Name, nameWidth)))
		if m.counts != nil {
			line += " " + countStyle.Render(fmt.Sprintf("%4d", m.counts[board.ID.String()])) + metaStyle.Render(" assets")
		}
		b.WriteString(line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func (m boardsModel) viewDetail() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render(m.board.Name))
	if m.board.IsFavorite {
		b.WriteString(" " + favoriteStyle.Render("★"))
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.failed {
		b.WriteString(" " + dimStyle.Render("could not load board"))
		return b.String()
	}

	if m.board.Description != "" {
		b.WriteString(" " + metaStyle.Render(truncStr(oneLine(m.board.Description), m.width-4)) + "\n")
	}
	b.WriteString(" " + countStyle.Render(fmt.Sprintf("%d", m.total)) + metaStyle.Render(" assets total  ") + dimStyle.Render("g to browse") + "\n")

	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("SUB-BOARDS (%d)", len(m.subBoards))) + "\n")
	if len(m.subBoards) == 0 {
		b.WriteString(" " + dimStyle.Render("none") + "\n")
	}
	for i, sb := range m.subBoards {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.subCursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		nameWidth := m.width - 24
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(sb.Name, nameWidth)))
		if m.subCounts != nil {
			line += " " + countStyle.Render(fmt.Sprintf("%4d", m.subCounts[sb.ID.String()])) + metaStyle.Render(" assets")
		}
		b.WriteString(line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
