// Package nav is the view-state machine: a stack of views rooted at the
// dashboard, with the current view persisted per workspace so the panel
// reopens where it was left. Only identifiers are persisted, never payloads.
package nav

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Section is one of the top-level content areas.
type Section string

const (
	SectionAudiences Section = "audiences"
	SectionCopy      Section = "copy"
	SectionPlaybooks Section = "playbooks"
	SectionBoards    Section = "boards"
	SectionLinks     Section = "links"
)

// Kind is the shape of a view.
type Kind string

const (
	KindDashboard Kind = "dashboard"
	KindList      Kind = "list"
	KindDetail    Kind = "detail"
	KindGallery   Kind = "gallery"
)

// View is one entry on the navigation stack. EntityID scopes detail views;
// BoardID and SubBoardID scope nested gallery views.
type View struct {
	Kind       Kind    `json:"kind"`
	Section    Section `json:"section,omitempty"`
	EntityID   string  `json:"entity_id,omitempty"`
	BoardID    string  `json:"board_id,omitempty"`
	SubBoardID string  `json:"sub_board_id,omitempty"`
}

// Dashboard is the root view.
func Dashboard() View { return View{Kind: KindDashboard} }

// List is the top-level listing of a section.
func List(s Section) View { return View{Kind: KindList, Section: s} }

// Detail is a single entity inside a section.
func Detail(s Section, entityID string) View {
	return View{Kind: KindDetail, Section: s, EntityID: entityID}
}

// Gallery is the creative asset view, optionally scoped to a board or a
// sub-board within it.
func Gallery(boardID, subBoardID string) View {
	return View{Kind: KindGallery, Section: SectionBoards, BoardID: boardID, SubBoardID: subBoardID}
}

// Store is the durable key/value store descriptors persist through.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

const (
	keyWorkspace = "active_workspace"
	keyView      = "current_view"
)

type descriptor struct {
	View        View   `json:"view"`
	WorkspaceID string `json:"workspace_id"`
}

// Navigator owns the view stack and its persistence. Not safe for concurrent
// use; the UI loop is single-threaded.
type Navigator struct {
	store       Store
	log         zerolog.Logger
	workspaceID string
	stack       []View
}

// New creates a Navigator rooted at the dashboard for the given workspace.
func New(store Store, workspaceID string, log zerolog.Logger) *Navigator {
	return &Navigator{
		store:       store,
		log:         log,
		workspaceID: workspaceID,
		stack:       []View{Dashboard()},
	}
}

// Current is the top of the stack.
func (n *Navigator) Current() View {
	return n.stack[len(n.stack)-1]
}

// WorkspaceID is the workspace the stack is scoped to.
func (n *Navigator) WorkspaceID() string {
	return n.workspaceID
}

// Depth reports the stack depth. The dashboard alone is depth 1.
func (n *Navigator) Depth() int {
	return len(n.stack)
}

// Go pushes a view and persists it as the current descriptor.
func (n *Navigator) Go(v View) {
	n.stack = append(n.stack, v)
	n.persist()
}

// Back pops to the view that opened the current one. At the dashboard it is
// a no-op.
func (n *Navigator) Back() {
	if len(n.stack) <= 1 {
		return
	}
	n.stack = n.stack[:len(n.stack)-1]
	n.persist()
}

// Reset replaces the stack with the synthesized path to v, as if the user
// had navigated there from the dashboard, and persists it.
func (n *Navigator) Reset(v View) {
	n.stack = stackFor(v)
	n.persist()
}

// SwitchWorkspace resets the stack to the dashboard of the new workspace and
// drops the old workspace's descriptor. State from the previous workspace
// never leaks into the new one.
func (n *Navigator) SwitchWorkspace(workspaceID string) {
	n.workspaceID = workspaceID
	n.stack = []View{Dashboard()}
	if err := n.store.Set(keyWorkspace, workspaceID); err != nil {
		n.log.Error().Err(err).Msg("persist active workspace")
	}
	if err := n.store.Remove(keyView); err != nil {
		n.log.Error().Err(err).Msg("clear view descriptor")
	}
}

// ActiveWorkspace reads the persisted workspace selection.
func ActiveWorkspace(store Store) (string, bool) {
	return store.Get(keyWorkspace)
}

// Pending returns the persisted view for this workspace without mutating the
// stack. Callers use it to vet the entity remotely before calling Restore.
// A descriptor for another workspace or an unparseable one reads as absent.
func (n *Navigator) Pending() (View, bool) {
	raw, ok := n.store.Get(keyView)
	if !ok {
		return View{}, false
	}
	var d descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return View{}, false
	}
	if d.WorkspaceID != n.workspaceID || d.View.Kind == KindDashboard {
		return View{}, false
	}
	return d.View, true
}

// Restore rebuilds the stack from the persisted descriptor. The resolve
// callback vets the restored view (the entity may have been deleted since);
// on any mismatch or rejection the navigator stays at the dashboard. The
// restored stack includes the intermediate list view so Back behaves as if
// the user had navigated there.
func (n *Navigator) Restore(resolve func(View) bool) {
	raw, ok := n.store.Get(keyView)
	if !ok {
		return
	}
	var d descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		n.log.Warn().Err(err).Msg("corrupt view descriptor, starting at dashboard")
		n.clearDescriptor()
		return
	}
	if d.WorkspaceID != n.workspaceID {
		n.clearDescriptor()
		return
	}
	if d.View.Kind == KindDashboard {
		return
	}
	if resolve != nil && !resolve(d.View) {
		n.log.Info().Str("kind", string(d.View.Kind)).Msg("persisted view no longer valid, starting at dashboard")
		n.clearDescriptor()
		return
	}
	n.stack = stackFor(d.View)
	n.persist()
}

// stackFor synthesizes the path the user would have taken to reach v.
func stackFor(v View) []View {
	stack := []View{Dashboard()}
	switch v.Kind {
	case KindList:
		stack = append(stack, v)
	case KindDetail:
		stack = append(stack, List(v.Section), v)
	case KindGallery:
		stack = append(stack, List(SectionBoards))
		if v.BoardID != "" {
			stack = append(stack, Detail(SectionBoards, v.BoardID))
		}
		stack = append(stack, v)
	default:
		return []View{Dashboard()}
	}
	return stack
}

func (n *Navigator) persist() {
	raw, err := json.Marshal(descriptor{View: n.Current(), WorkspaceID: n.workspaceID})
	if err != nil {
		n.log.Error().Err(err).Msg("encode view descriptor")
		return
	}
	if err := n.store.Set(keyView, string(raw)); err != nil {
		n.log.Error().Err(err).Msg("persist view descriptor")
	}
}

func (n *Navigator) clearDescriptor() {
	if err := n.store.Remove(keyView); err != nil {
		n.log.Error().Err(err).Msg("clear view descriptor")
	}
}
