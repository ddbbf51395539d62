package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/pkg/domain"
)

func newTestAudiencesModel() audiencesModel {
	m := newAudiencesModel(nil, nil, zerolog.Nop())
	m.width = 80
	m.height = 24
	m.wsID = "ws-1"
	m.loading = false
	return m
}

func makeTestAudience(name, stage string, tags ...string) domain.Audience {
	return domain.Audience{
		ID:          uuid.New(),
		Name:        name,
		FunnelStage: stage,
		Tags:        tags,
		CreatedAt:   time.Now(),
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAudienceListRendersNames(t *testing.T) {
	m := newTestAudiencesModel()
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{
		makeTestAudience("SaaS Founders", "awareness"),
		makeTestAudience("Agency Owners", "conversion"),
	}})

	view := m.View()
	if !strings.Contains(view, "SaaS Founders") {
		t.Errorf("expected audience name in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Agency Owners") {
		t.Errorf("expected second audience name in view, got:\n%s", view)
	}
}

func TestAudienceListRendersOnTinyTerminal(t *testing.T) {
	m := newTestAudiencesModel()
	m.width = 10
	m.height = 8
	a := makeTestAudience("SaaS Founders", "awareness")
	a.Goal = "grow qualified pipeline from organic content"
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{a}})

	if m.View() == "" {
		t.Fatal("expected a rendered view at width 10")
	}
}

func TestAudienceListDropsLoadForOtherWorkspace(t *testing.T) {
	m := newTestAudiencesModel()
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{
		makeTestAudience("Keep Me", "awareness"),
	}})
	// A late response for a workspace the user already left.
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-other", rows: []domain.Audience{
		makeTestAudience("Stale Row", "awareness"),
	}})

	view := m.View()
	if !strings.Contains(view, "Keep Me") {
		t.Errorf("expected current workspace rows retained, got:\n%s", view)
	}
	if strings.Contains(view, "Stale Row") {
		t.Errorf("expected stale workspace rows dropped, got:\n%s", view)
	}
}

func TestAudienceSearchFiltersLocally(t *testing.T) {
	m := newTestAudiencesModel()
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{
		makeTestAudience("SaaS Founders", "awareness", "b2b"),
		makeTestAudience("Creators", "retention"),
	}})

	m, _ = m.Update(keyMsg("/"))
	if !m.editing {
		t.Fatal("expected editing=true after '/'")
	}
	for _, r := range "founder" {
		m, _ = m.Update(keyMsg(string(r)))
	}

	visible := m.visible()
	if len(visible) != 1 || visible[0].Name != "SaaS Founders" {
		t.Errorf("expected only 'SaaS Founders' to match, got %d rows", len(visible))
	}

	// The fetched list is untouched; clearing the search restores it.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if len(m.visible()) != 2 {
		t.Errorf("expected full list after clearing search, got %d rows", len(m.visible()))
	}
}

func TestAudienceSearchMatchesTags(t *testing.T) {
	m := newTestAudiencesModel()
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{
		makeTestAudience("Creators", "retention", "video", "shortform"),
		makeTestAudience("SaaS Founders", "awareness"),
	}})
	m.search = "VIDEO"

	visible := m.visible()
	if len(visible) != 1 || visible[0].Name != "Creators" {
		t.Errorf("expected tag match to surface 'Creators', got %d rows", len(visible))
	}
}

func TestAudienceEnterEmitsDetailView(t *testing.T) {
	m := newTestAudiencesModel()
	a := makeTestAudience("SaaS Founders", "awareness")
	m, _ = m.Update(audiencesLoadedMsg{wsID: "ws-1", rows: []domain.Audience{a}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected enter to return a command")
	}
	msg, ok := cmd().(openViewMsg)
	if !ok {
		t.Fatalf("expected openViewMsg, got %T", cmd())
	}
	if msg.view.EntityID != a.ID.String() {
		t.Errorf("expected view scoped to audience id, got %q", msg.view.EntityID)
	}
}

func newTestAudienceDetail() audiencesModel {
	m := newTestAudiencesModel()
	m.mode = audModeDetail
	m.detailID = "aud-1"

	pillar := domain.ContentPillar{ID: uuid.New(), Name: "Authority", CorePromise: "Be the obvious choice"}
	block := domain.ContentBlock{ID: uuid.New(), ContentPillarID: &pillar.ID, Messaging: "You ship faster with us"}
	m, _ = m.Update(audienceDetailMsg{
		audienceID: "aud-1",
		audience:   domain.Audience{ID: uuid.New(), Name: "SaaS Founders"},
		pains:      []domain.PainPoint{{ID: uuid.New(), Title: "No time for content"}},
		pillars:    []domain.ContentPillar{pillar},
		blocks:     map[string][]domain.ContentBlock{pillar.ID.String(): {block}},
		layers:     []domain.TargetingLayer{{ID: uuid.New(), Name: "Meta cold", Platform: "meta"}},
	})
	return m
}

func TestAudienceDetailRendersComposedChildren(t *testing.T) {
	m := newTestAudienceDetail()
	view := m.View()
	for _, want := range []string{"SaaS Founders", "No time for content", "Authority", "Meta cold"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in detail view, got:\n%s", want, view)
		}
	}
}

func TestAudienceDetailExpandShowsBlocksAndCollapseHides(t *testing.T) {
	m := newTestAudienceDetail()

	// Collapsed: block messaging hidden.
	if strings.Contains(m.View(), "You ship faster with us") {
		t.Fatal("expected blocks hidden before expand")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "You ship faster with us") {
		t.Errorf("expected block messaging after expand, got:\n%s", m.View())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if strings.Contains(m.View(), "You ship faster with us") {
		t.Error("expected blocks hidden again after collapse")
	}
}

func TestAudienceDetailCopyBlockMessaging(t *testing.T) {
	m := newTestAudienceDetail()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter}) // expand pillar
	m, _ = m.Update(keyMsg("j"))                    // cursor onto the block

	_, cmd := m.Update(keyMsg("c"))
	if cmd == nil {
		t.Error("expected copy on a block to return a command")
	}
}

func TestAudienceDetailFailureShowsEmptyState(t *testing.T) {
	m := newTestAudiencesModel()
	m.mode = audModeDetail
	m.detailID = "aud-1"
	m, _ = m.Update(audienceDetailMsg{audienceID: "aud-1", err: errTest})

	view := m.View()
	if !strings.Contains(view, "could not load audience") {
		t.Errorf("expected degraded empty view on failure, got:\n%s", view)
	}
}
