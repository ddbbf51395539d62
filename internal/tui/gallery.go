package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/pkg/domain"
)

type assetsLoadedMsg struct {
	scope  string
	assets []domain.StorageAsset
	err    error
}

// galleryModel lists creative assets for a workspace, a board, or a
// sub-board. Archived assets never appear.
type galleryModel struct {
	client      *gateway.Client
	objects     *gateway.ObjectStore
	downloadDir string
	log         zerolog.Logger

	wsID       string
	boardID    string
	subBoardID string
	assets     []domain.StorageAsset
	cursor     int
	search     string
	editing    bool
	loading    bool
	marker     copyMarker

	width  int
	height int
}

func newGalleryModel(c *gateway.Client, objects *gateway.ObjectStore, downloadDir string, log zerolog.Logger) galleryModel {
	return galleryModel{client: c, objects: objects, downloadDir: downloadDir, log: log}
}

// scope keys the loaded message so a fetch for a board the user has since
// left gets dropped.
func (m galleryModel) scope() string {
	return m.wsID + "/" + m.boardID + "/" + m.subBoardID
}

func (m galleryModel) enter(wsID, boardID, subBoardID string) (galleryModel, tea.Cmd) {
	m.wsID = wsID
	m.boardID = boardID
	m.subBoardID = subBoardID
	m.loading = true
	m.cursor = 0
	m.search = ""
	m.editing = false
	m.marker = copyMarker{}
	return m, m.load()
}

func (m galleryModel) load() tea.Cmd {
	c := m.client
	scope := m.scope()
	filters := []gateway.Filter{
		gateway.Eq("workspace_id", m.wsID),
		gateway.IsNull("archived_at"),
	}
	if m.subBoardID != "" {
		filters = append(filters, gateway.Eq("sub_board_id", m.subBoardID))
	} else if m.boardID != "" {
		filters = append(filters, gateway.Eq("board_id", m.boardID))
	}
	return func() tea.Msg {
		raw, err := c.Query(context.Background(), "storage_assets", gateway.QueryOptions{
			Filters: filters,
			Order:   []gateway.Order{{Column: "created_at", Desc: true}},
			Limit:   pageSize,
		})
		if err != nil {
			return assetsLoadedMsg{scope: scope, err: err}
		}
		assets, err := decodeRows[domain.StorageAsset](raw)
		return assetsLoadedMsg{scope: scope, assets: assets, err: err}
	}
}

func (m galleryModel) download(asset domain.StorageAsset) tea.Cmd {
	objects := m.objects
	dir := m.downloadDir
	return func() tea.Msg {
		if objects == nil {
			return downloadDoneMsg{id: asset.ID.String(), err: fmt.Errorf("no storage endpoint configured")}
		}
		path, err := objects.SaveTo(context.Background(), asset.FilePath, dir, asset.Name)
		return downloadDoneMsg{id: asset.ID.String(), path: path, err: err}
	}
}

func (m galleryModel) Update(msg tea.Msg) (galleryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case assetsLoadedMsg:
		if msg.scope != m.scope() {
			return m, nil
		}
		m.loading = false
		m.assets = msg.assets
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load assets")
			m.assets = nil
		}
		if m.cursor >= len(m.assets) {
			m.cursor = 0
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("clipboard write")
			return m, nil
		}
		return m, m.marker.set(msg.id, "copied!")

	case downloadDoneMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("asset_id", msg.id).Msg("download asset")
			return m, nil
		}
		return m, m.marker.set(msg.id, "saved!")

	case markerClearMsg:
		m.marker.clear(msg.gen)
		return m, nil

	case tea.KeyMsg:
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
		case "c":
			visible := m.visible()
			if m.cursor < len(visible) && visible[m.cursor].FileURL != "" {
				a := visible[m.cursor]
				return m, copyCmd(a.ID.String(), a.FileURL)
			}
		case "d":
			visible := m.visible()
			if m.cursor < len(visible) {
				return m, m.download(visible[m.cursor])
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m galleryModel) visible() []domain.StorageAsset {
	if m.search == "" {
		return m.assets
	}
	var out []domain.StorageAsset
	for _, a := range m.assets {
		if matchQuery(m.search, a.Name, a.MimeType) {
			out = append(out, a)
		}
	}
	return out
}

func (m galleryModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("CREATIVE GALLERY") + "\n")

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
		b.WriteString(" " + dimStyle.Render("no assets"))
		return b.String()
	}

	for i, a := range visible {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		star := "  "
		if a.IsFavorite {
			star = favoriteStyle.Render("★") + " "
		}
		nameWidth := m.width - 40
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + star + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(a.Name, nameWidth)))
		line += " " + metaStyle.Render(fmt.Sprintf("%-12s", truncStr(a.MimeType, 12)))
		if a.ThumbnailPath != nil && *a.ThumbnailPath != "" {
			line += " " + dimStyle.Render("▣")
		}
		if a.Size != nil {
			line += " " + metaStyle.Render(fmt.Sprintf("%8s", formatSize(*a.Size)))
		}
		if mark := m.marker.render(a.ID.String()); mark != "" {
			line += "  " + mark
		}
		b.WriteString(line + "\n")
	}

	if m.objects == nil {
		b.WriteString("\n " + dimStyle.Render("downloads disabled: no storage endpoint configured") + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
