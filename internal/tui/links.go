package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/pkg/domain"
)

type linksLoadedMsg struct {
	wsID    string
	links   []domain.UTMLink
	folders []domain.UTMFolder
	err     error
}

type linksModel struct {
	client *gateway.Client
	log    zerolog.Logger

	wsID     string
	links    []domain.UTMLink
	folders  map[string]domain.UTMFolder
	campaign string
	cursor   int
	search   string
	editing  bool
	loading  bool
	marker   copyMarker

	width  int
	height int
}

func newLinksModel(c *gateway.Client, log zerolog.Logger) linksModel {
	return linksModel{client: c, log: log}
}

func (m linksModel) enter(wsID string) (linksModel, tea.Cmd) {
	m.wsID = wsID
	m.loading = true
	m.cursor = 0
	m.search = ""
	m.campaign = ""
	m.editing = false
	m.marker = copyMarker{}
	return m, m.load(wsID)
}

func (m linksModel) load(wsID string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx := context.Background()
		raw, err := c.Query(ctx, "utm_links", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("workspace_id", wsID)},
			Order:   []gateway.Order{{Column: "created_at", Desc: true}},
			Limit:   pageSize,
		})
		if err != nil {
			return linksLoadedMsg{wsID: wsID, err: err}
		}
		links, err := decodeRows[domain.UTMLink](raw)
		if err != nil {
			return linksLoadedMsg{wsID: wsID, err: err}
		}

		fraw, err := c.Query(ctx, "utm_folders", gateway.QueryOptions{
			Filters: []gateway.Filter{gateway.Eq("workspace_id", wsID)},
		})
		if err != nil {
			return linksLoadedMsg{wsID: wsID, err: err}
		}
		folders, err := decodeRows[domain.UTMFolder](fraw)
		return linksLoadedMsg{wsID: wsID, links: links, folders: folders, err: err}
	}
}

func (m linksModel) Update(msg tea.Msg) (linksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case linksLoadedMsg:
		if msg.wsID != m.wsID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("load tracking links")
			m.links = nil
			m.folders = nil
			return m, nil
		}
		m.links = msg.links
		m.folders = make(map[string]domain.UTMFolder, len(msg.folders))
		for _, f := range msg.folders {
			m.folders[f.ID.String()] = f
		}
		if m.cursor >= len(m.links) {
			m.cursor = 0
		}
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
		case "f":
			m.cycleCampaign()
			m.cursor = 0
		case "c", "enter":
			visible := m.visible()
			if m.cursor < len(visible) {
				l := visible[m.cursor]
				return m, copyCmd(l.ID.String(), l.CopyURL())
			}
		case "r":
			m.loading = true
			return m, m.load(m.wsID)
		}
	}
	return m, nil
}

// campaigns returns the distinct campaign names present in the fetched
// links, sorted for a stable cycle order.
func (m linksModel) campaigns() []string {
	seen := map[string]bool{}
	for _, l := range m.links {
		if l.CampaignName != "" {
			seen[l.CampaignName] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// cycleCampaign steps the filter: all -> first campaign -> ... -> all.
func (m *linksModel) cycleCampaign() {
	campaigns := m.campaigns()
	if len(campaigns) == 0 {
		m.campaign = ""
		return
	}
	if m.campaign == "" {
		m.campaign = campaigns[0]
		return
	}
	for i, c := range campaigns {
		if c == m.campaign {
			if i+1 < len(campaigns) {
				m.campaign = campaigns[i+1]
			} else {
				m.campaign = ""
			}
			return
		}
	}
	m.campaign = ""
}

func (m linksModel) visible() []domain.UTMLink {
	var out []domain.UTMLink
	for _, l := range m.links {
		if m.campaign != "" && l.CampaignName != m.campaign {
			continue
		}
		if !matchQuery(m.search, l.Name, l.OriginalURL, l.CampaignName, l.Source, l.Medium) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (m linksModel) folderName(l domain.UTMLink) string {
	if l.FolderID == nil {
		return ""
	}
	if f, ok := m.folders[l.FolderID.String()]; ok {
		return f.Name
	}
	return ""
}

func (m linksModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("TRACKING LINKS") + "\n")

	if m.editing {
		b.WriteString(" " + searchStyle.Render("/ "+m.search+"█"))
	} else if m.search != "" {
		b.WriteString(" " + searchStyle.Render("/ "+m.search))
	} else {
		b.WriteString(" " + inputPlaceholderStyle.Render("/ search..."))
	}

	// Campaign chips
	campaigns := m.campaigns()
	if len(campaigns) > 0 {
		b.WriteString("   ")
		if m.campaign == "" {
			b.WriteString(searchStyle.Render("[all]"))
		} else {
			b.WriteString(dimStyle.Render("[all]"))
		}
		used := 20
		for _, c := range campaigns {
			chip := "[" + truncStr(c, 14) + "]"
			if used+len(chip)+1 > m.width {
				break
			}
			b.WriteString(" ")
			if c == m.campaign {
				b.WriteString(searchStyle.Render(chip))
			} else {
				b.WriteString(dimStyle.Render(chip))
			}
			used += len(chip) + 1
		}
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(" " + dimStyle.Render("no links"))
		return b.String()
	}

	for i, l := range visible {
		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}
		nameWidth := m.width - 40
		if nameWidth < 16 {
			nameWidth = 16
		}
		line := " " + cursor + nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncStr(l.Name, nameWidth)))
		if l.Source != "" {
			line += " " + countStyle.Render(fmt.Sprintf("%-10s", truncStr(l.Source, 10)))
		}
		if folder := m.folderName(l); folder != "" {
			line += " " + metaStyle.Render(truncStr(folder, 12))
		}
		if l.ShortenedURL != nil && *l.ShortenedURL != "" {
			line += " " + okStyle.Render("short")
		}
		if mark := m.marker.render(l.ID.String()); mark != "" {
			line += "  " + mark
		}
		b.WriteString(line + "\n")
	}

	// URL preview for the selected link
	if m.cursor < len(visible) {
		l := visible[m.cursor]
		b.WriteString("\n " + metaStyle.Render(truncStr(l.CopyURL(), m.width-4)) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
