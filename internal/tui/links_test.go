package tui

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/pkg/domain"
)

func newTestLinksModel() linksModel {
	m := newLinksModel(nil, zerolog.Nop())
	m.width = 100
	m.height = 30
	m.wsID = "ws-1"
	m.loading = false
	return m
}

func makeTestLink(name, campaign, source string) domain.UTMLink {
	return domain.UTMLink{
		ID:           uuid.New(),
		Name:         name,
		OriginalURL:  "https://example.com/" + name,
		UTMURL:       "https://example.com/" + name + "?utm_campaign=" + campaign,
		CampaignName: campaign,
		Source:       source,
	}
}

func TestLinksRenderNameSourceAndFolder(t *testing.T) {
	folder := domain.UTMFolder{ID: uuid.New(), Name: "Q3 Launch"}
	link := makeTestLink("homepage", "summer", "newsletter")
	link.FolderID = &folder.ID

	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1",
		links:   []domain.UTMLink{link},
		folders: []domain.UTMFolder{folder}})

	view := m.View()
	for _, want := range []string{"homepage", "newsletter", "Q3 Launch"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestLinksShortBadgeAndCopyURL(t *testing.T) {
	short := "https://fl.ow/abc"
	link := makeTestLink("homepage", "summer", "meta")
	link.ShortenedURL = &short

	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", links: []domain.UTMLink{link}})

	view := m.View()
	if !strings.Contains(view, "short") {
		t.Errorf("expected short badge, got:\n%s", view)
	}
	// Preview shows what a copy would place on the clipboard.
	if !strings.Contains(view, short) {
		t.Errorf("expected shortened URL preview, got:\n%s", view)
	}
}

func TestLinksCampaignCycle(t *testing.T) {
	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", links: []domain.UTMLink{
		makeTestLink("a", "autumn", "meta"),
		makeTestLink("b", "summer", "meta"),
		makeTestLink("c", "", "meta"),
	}})

	if m.campaign != "" {
		t.Fatalf("expected no campaign filter initially, got %q", m.campaign)
	}
	m, _ = m.Update(keyMsg("f"))
	if m.campaign != "autumn" {
		t.Fatalf("expected first campaign alphabetically, got %q", m.campaign)
	}
	if got := len(m.visible()); got != 1 {
		t.Fatalf("expected 1 visible link under autumn, got %d", got)
	}
	m, _ = m.Update(keyMsg("f"))
	if m.campaign != "summer" {
		t.Fatalf("expected second campaign, got %q", m.campaign)
	}
	m, _ = m.Update(keyMsg("f"))
	if m.campaign != "" {
		t.Fatalf("expected cycle to wrap back to all, got %q", m.campaign)
	}
	if got := len(m.visible()); got != 3 {
		t.Fatalf("expected all links visible again, got %d", got)
	}
}

func TestLinksSearchStacksWithCampaignFilter(t *testing.T) {
	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", links: []domain.UTMLink{
		makeTestLink("homepage", "summer", "meta"),
		makeTestLink("pricing", "summer", "newsletter"),
		makeTestLink("homepage-v2", "autumn", "meta"),
	}})

	m, _ = m.Update(keyMsg("f")) // autumn
	m, _ = m.Update(keyMsg("f")) // summer
	m, _ = m.Update(keyMsg("/"))
	for _, r := range "home" {
		m, _ = m.Update(keyMsg(string(r)))
	}

	visible := m.visible()
	if len(visible) != 1 || visible[0].Name != "homepage" {
		t.Fatalf("expected only the summer homepage link, got %+v", visible)
	}
}

func TestLinksCopyReturnsCmd(t *testing.T) {
	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", links: []domain.UTMLink{
		makeTestLink("homepage", "summer", "meta"),
	}})
	_, cmd := m.Update(keyMsg("c"))
	if cmd == nil {
		t.Fatal("expected a clipboard command from c")
	}
}

func TestLinksLoadErrorDegradesToEmpty(t *testing.T) {
	m := newTestLinksModel()
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", links: []domain.UTMLink{
		makeTestLink("homepage", "summer", "meta"),
	}})
	m, _ = m.Update(linksLoadedMsg{wsID: "ws-1", err: errTest})

	if !strings.Contains(m.View(), "no links") {
		t.Errorf("expected empty state after load error, got:\n%s", m.View())
	}
}
