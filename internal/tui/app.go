// Package tui is the terminal front end: one root model that owns the
// navigator and routes updates to per-section sub-models. Remote failures
// never crash a view; the affected section renders empty and the cause goes
// to the log file.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/compose"
	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/nav"
	"github.com/nmorane/flowdeck/pkg/domain"
)

// membershipsLoadedMsg carries the signed-in user's workspace memberships.
type membershipsLoadedMsg struct {
	memberships []domain.Membership
	err         error
}

// restoredMsg reports whether the persisted view still resolves remotely.
type restoredMsg struct {
	view nav.View
	ok   bool
}

// openViewMsg asks the root model to push a view onto the navigator.
type openViewMsg struct {
	view nav.View
}

// App is the root Bubbletea model.
type App struct {
	client   *gateway.Client
	composer *compose.Composer
	navr     *nav.Navigator
	store    nav.Store
	log      zerolog.Logger

	memberships []domain.Membership
	wsOpen      bool
	wsCursor    int

	dashboard dashboardModel
	audiences audiencesModel
	copy      copyModel
	playbooks playbooksModel
	boards    boardsModel
	gallery   galleryModel
	links     linksModel

	width  int
	height int
	frame  int
	errMsg string
}

// NewApp creates the TUI application. objects may be nil when no download
// endpoint is configured.
func NewApp(c *gateway.Client, objects *gateway.ObjectStore, comp *compose.Composer, store nav.Store, downloadDir string, log zerolog.Logger) App {
	return App{
		client:    c,
		composer:  comp,
		store:     store,
		log:       log,
		dashboard: newDashboardModel(comp, log),
		audiences: newAudiencesModel(c, comp, log),
		copy:      newCopyModel(c, log),
		playbooks: newPlaybooksModel(c, comp, log),
		boards:    newBoardsModel(c, comp, log),
		gallery:   newGalleryModel(c, objects, downloadDir, log),
		links:     newLinksModel(c, log),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.loadMemberships())
}

func (a App) loadMemberships() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		user := c.CurrentUser()
		if user == nil {
			return membershipsLoadedMsg{err: fmt.Errorf("not signed in")}
		}
		rows, err := c.Query(context.Background(), "workspace_members", gateway.QueryOptions{
			Select:  "workspace_id,role,workspaces(*)",
			Filters: []gateway.Filter{gateway.Eq("user_id", user.ID.String())},
		})
		if err != nil {
			return membershipsLoadedMsg{err: err}
		}
		memberships := make([]domain.Membership, 0, len(rows))
		for _, row := range rows {
			var m domain.Membership
			if err := json.Unmarshal(row, &m); err != nil {
				return membershipsLoadedMsg{err: err}
			}
			memberships = append(memberships, m)
		}
		return membershipsLoadedMsg{memberships: memberships}
	}
}

// resolvePending checks that the persisted view's entity still exists before
// the navigator restores it.
func (a App) resolvePending(v nav.View) tea.Cmd {
	c := a.client
	return func() tea.Msg {
		id, collection := v.EntityID, ""
		switch {
		case v.Kind == nav.KindGallery && v.SubBoardID != "":
			id, collection = v.SubBoardID, "sub_boards"
		case v.Kind == nav.KindGallery && v.BoardID != "":
			id, collection = v.BoardID, "boards"
		case v.Kind == nav.KindDetail:
			switch v.Section {
			case nav.SectionAudiences:
				collection = "audiences"
			case nav.SectionCopy:
				collection = "copy_blocks"
			case nav.SectionPlaybooks:
				collection = "playbooks"
			case nav.SectionBoards:
				collection = "boards"
			}
		}
		if collection == "" || id == "" {
			return restoredMsg{view: v, ok: true}
		}
		row, err := c.MaybeGetByID(context.Background(), collection, id)
		return restoredMsg{view: v, ok: err == nil && row != nil}
	}
}

// activeWorkspace picks the persisted workspace when the user is still a
// member of it, otherwise the first membership.
func (a App) activeWorkspace() string {
	if len(a.memberships) == 0 {
		return ""
	}
	if id, ok := nav.ActiveWorkspace(a.store); ok {
		for _, m := range a.memberships {
			if m.WorkspaceID.String() == id {
				return id
			}
		}
	}
	return a.memberships[0].WorkspaceID.String()
}

func (a App) workspaceName(id string) string {
	for _, m := range a.memberships {
		if m.WorkspaceID.String() == id {
			return m.Workspace.Name
		}
	}
	return ""
}

// loadCurrent kicks off the fetch for whatever view the navigator is on.
func (a *App) loadCurrent() tea.Cmd {
	wsID := a.navr.WorkspaceID()
	v := a.navr.Current()
	switch v.Kind {
	case nav.KindDashboard:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.enter(wsID)
		return cmd
	case nav.KindGallery:
		var cmd tea.Cmd
		a.gallery, cmd = a.gallery.enter(wsID, v.BoardID, v.SubBoardID)
		return cmd
	case nav.KindList, nav.KindDetail:
		switch v.Section {
		case nav.SectionAudiences:
			var cmd tea.Cmd
			if v.Kind == nav.KindDetail {
				a.audiences, cmd = a.audiences.enterDetail(wsID, v.EntityID)
			} else {
				a.audiences, cmd = a.audiences.enterList(wsID)
			}
			return cmd
		case nav.SectionCopy:
			var cmd tea.Cmd
			if v.Kind == nav.KindDetail {
				a.copy, cmd = a.copy.enterDetail(wsID, v.EntityID)
			} else {
				a.copy, cmd = a.copy.enterList(wsID)
			}
			return cmd
		case nav.SectionPlaybooks:
			var cmd tea.Cmd
			if v.Kind == nav.KindDetail {
				a.playbooks, cmd = a.playbooks.enterDetail(wsID, v.EntityID)
			} else {
				a.playbooks, cmd = a.playbooks.enterList(wsID)
			}
			return cmd
		case nav.SectionBoards:
			var cmd tea.Cmd
			if v.Kind == nav.KindDetail {
				a.boards, cmd = a.boards.enterDetail(wsID, v.EntityID)
			} else {
				a.boards, cmd = a.boards.enterList(wsID)
			}
			return cmd
		case nav.SectionLinks:
			var cmd tea.Cmd
			a.links, cmd = a.links.enter(wsID)
			return cmd
		}
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + breadcrumb(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.audiences, _ = a.audiences.Update(bodyMsg)
		a.copy, _ = a.copy.Update(bodyMsg)
		a.playbooks, _ = a.playbooks.Update(bodyMsg)
		a.boards, _ = a.boards.Update(bodyMsg)
		a.gallery, _ = a.gallery.Update(bodyMsg)
		a.links, _ = a.links.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case membershipsLoadedMsg:
		if msg.err != nil {
			a.log.Error().Err(msg.err).Msg("load memberships")
			a.errMsg = "could not load workspaces"
			return a, nil
		}
		a.memberships = msg.memberships
		if len(a.memberships) == 0 {
			a.errMsg = "no workspaces for this account"
			return a, nil
		}
		a.navr = nav.New(a.store, a.activeWorkspace(), a.log)
		if pending, ok := a.navr.Pending(); ok {
			return a, a.resolvePending(pending)
		}
		return a, a.loadCurrent()

	case restoredMsg:
		ok := msg.ok
		a.navr.Restore(func(nav.View) bool { return ok })
		return a, a.loadCurrent()

	case openViewMsg:
		a.navr.Go(msg.view)
		return a, a.loadCurrent()

	case tea.KeyMsg:
		if a.navr == nil {
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			return a, nil
		}

		// Workspace switcher captures all keys when open
		if a.wsOpen {
			switch msg.String() {
			case "esc", "w":
				a.wsOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.wsCursor < len(a.memberships)-1 {
					a.wsCursor++
				}
			case "k", "up":
				if a.wsCursor > 0 {
					a.wsCursor--
				}
			case "enter":
				a.wsOpen = false
				picked := a.memberships[a.wsCursor].WorkspaceID.String()
				if picked != a.navr.WorkspaceID() {
					a.navr.SwitchWorkspace(picked)
					return a, a.loadCurrent()
				}
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "w":
				a.wsOpen = true
				a.wsCursor = 0
				for i, m := range a.memberships {
					if m.WorkspaceID.String() == a.navr.WorkspaceID() {
						a.wsCursor = i
					}
				}
				return a, nil
			case "0":
				a.navr.Reset(nav.Dashboard())
				return a, a.loadCurrent()
			case "1":
				a.navr.Reset(nav.List(nav.SectionAudiences))
				return a, a.loadCurrent()
			case "2":
				a.navr.Reset(nav.List(nav.SectionCopy))
				return a, a.loadCurrent()
			case "3":
				a.navr.Reset(nav.List(nav.SectionPlaybooks))
				return a, a.loadCurrent()
			case "4":
				a.navr.Reset(nav.List(nav.SectionBoards))
				return a, a.loadCurrent()
			case "5":
				a.navr.Reset(nav.List(nav.SectionLinks))
				return a, a.loadCurrent()
			case "esc":
				if a.navr.Depth() > 1 {
					a.navr.Back()
					return a, a.loadCurrent()
				}
				return a, nil
			}
		}
	}

	return a.routeToActive(msg)
}

// routeToActive forwards a message to the sub-model owning the current view.
// Messages for views the user has since left are dropped with it.
func (a App) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.navr == nil {
		return a, nil
	}
	var cmd tea.Cmd
	v := a.navr.Current()
	switch {
	case v.Kind == nav.KindDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case v.Kind == nav.KindGallery:
		a.gallery, cmd = a.gallery.Update(msg)
	case v.Section == nav.SectionAudiences:
		a.audiences, cmd = a.audiences.Update(msg)
	case v.Section == nav.SectionCopy:
		a.copy, cmd = a.copy.Update(msg)
	case v.Section == nav.SectionPlaybooks:
		a.playbooks, cmd = a.playbooks.Update(msg)
	case v.Section == nav.SectionBoards:
		a.boards, cmd = a.boards.Update(msg)
	case v.Section == nav.SectionLinks:
		a.links, cmd = a.links.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	v := a.navr.Current()
	switch {
	case v.Kind == nav.KindGallery:
		return a.gallery.editing
	case v.Section == nav.SectionAudiences:
		return a.audiences.editing
	case v.Section == nav.SectionCopy:
		return a.copy.editing
	case v.Section == nav.SectionLinks:
		return a.links.editing
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	if a.navr == nil {
		body := " " + dimStyle.Render("loading workspaces...")
		if a.errMsg != "" {
			body = " " + errStyle.Render(a.errMsg)
		}
		return header + "\n" + body
	}

	// Tab bar
	type tabEntry struct {
		key  string
		name string
		on   bool
	}
	v := a.navr.Current()
	tabs := []tabEntry{
		{"0", "Dash", v.Kind == nav.KindDashboard},
		{"1", "Audiences", v.Kind != nav.KindDashboard && v.Section == nav.SectionAudiences},
		{"2", "Copy", v.Section == nav.SectionCopy},
		{"3", "Playbooks", v.Section == nav.SectionPlaybooks},
		{"4", "Boards", v.Section == nav.SectionBoards && v.Kind != nav.KindGallery},
		{"5", "Links", v.Section == nav.SectionLinks},
	}
	if v.Kind == nav.KindGallery {
		tabs[4].on = true
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.on {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	// Breadcrumb: workspace name + path to the current view
	crumb := " " + searchStyle.Render(a.workspaceName(a.navr.WorkspaceID()))
	if a.navr.Depth() > 1 {
		crumb += metaStyle.Render(" › " + a.crumbPath())
	}

	var body, help string
	switch {
	case v.Kind == nav.KindDashboard:
		body = a.dashboard.View()
		help = " " + helpEntry("0-5", "tabs") + "  " + helpEntry("enter", "open") + "  " + helpEntry("w", "workspace") + "  " + helpEntry("q", "quit")
	case v.Kind == nav.KindGallery:
		body = a.gallery.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("c", "copy url") + "  " + helpEntry("d", "download") + "  " + helpEntry("esc", "back")
	case v.Section == nav.SectionAudiences:
		body = a.audiences.View()
		if v.Kind == nav.KindDetail {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "expand") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "back")
		}
	case v.Section == nav.SectionCopy:
		body = a.copy.View()
		if v.Kind == nav.KindDetail {
			help = " " + helpEntry("c", "copy") + "  " + helpEntry("r", "reload") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("enter", "open") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
		}
	case v.Section == nav.SectionPlaybooks:
		body = a.playbooks.View()
		if v.Kind == nav.KindDetail {
			help = " " + helpEntry("h/l", "page") + "  " + helpEntry("j/k", "section") + "  " + helpEntry("v", "variant") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "back")
		}
	case v.Section == nav.SectionBoards:
		body = a.boards.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("g", "gallery") + "  " + helpEntry("esc", "back")
	case v.Section == nav.SectionLinks:
		body = a.links.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("f", "campaign") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
	}

	if a.wsOpen {
		body = a.viewSwitcher()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "switch") + "  " + helpEntry("esc", "close")
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s%s\n%s\n%s\n%s", header, tabBar.String(), crumb, body, help)
}

func (a App) crumbPath() string {
	v := a.navr.Current()
	switch v.Kind {
	case nav.KindList:
		return string(v.Section)
	case nav.KindDetail:
		return string(v.Section) + " › detail"
	case nav.KindGallery:
		if v.SubBoardID != "" {
			return "boards › gallery › sub-board"
		}
		if v.BoardID != "" {
			return "boards › gallery"
		}
		return "gallery"
	}
	return ""
}

func (a App) viewSwitcher() string {
	var b strings.Builder
	b.WriteString("\n " + sectionHeaderStyle.Render("WORKSPACES") + "\n\n")
	for i, m := range a.memberships {
		cursor := "  "
		nameStyle := dimStyle
		if i == a.wsCursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle.Inherit(selectedRowBg)
		}
		active := ""
		if m.WorkspaceID.String() == a.navr.WorkspaceID() {
			active = "  " + okStyle.Render("●")
		}
		fmt.Fprintf(&b, " %s%s  %s%s\n",
			cursor,
			nameStyle.Render(fmt.Sprintf("%-24s", truncStr(m.Workspace.Name, 24))),
			RoleStyle(m.Role).Render(m.Role),
			active)
	}
	return b.String()
}
