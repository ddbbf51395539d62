package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/nav"
	"github.com/nmorane/flowdeck/pkg/domain"
)

func newTestCopyModel() copyModel {
	m := newCopyModel(nil, zerolog.Nop())
	m.width = 80
	m.height = 24
	m.wsID = "ws-1"
	m.loading = false
	return m
}

func makeTestCopyBlock(name, category, tone string) domain.CopyBlock {
	return domain.CopyBlock{
		ID:        uuid.New(),
		Name:      name,
		Category:  category,
		Tone:      tone,
		CreatedAt: time.Now(),
	}
}

func TestCopyBlockListRendersRows(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{
		makeTestCopyBlock("Launch Hook", "hook", "bold"),
		makeTestCopyBlock("Objection CTA", "cta", "direct"),
	}})

	view := m.View()
	if !strings.Contains(view, "Launch Hook") {
		t.Errorf("expected first block in view, got:\n%s", view)
	}
	if !strings.Contains(view, "Objection CTA") {
		t.Errorf("expected second block in view, got:\n%s", view)
	}
}

func TestCopyBlockEmptyState(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1"})
	if !strings.Contains(m.View(), "no copy blocks") {
		t.Errorf("expected empty state, got:\n%s", m.View())
	}
}

func TestCopyBlockLoadErrorDegradesToEmpty(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{
		makeTestCopyBlock("Old Row", "hook", ""),
	}})
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", err: errTest})

	if len(m.rows) != 0 {
		t.Fatalf("expected rows cleared on load error, got %d", len(m.rows))
	}
	if !strings.Contains(m.View(), "no copy blocks") {
		t.Errorf("expected empty state after error, got:\n%s", m.View())
	}
}

func TestCopyBlockSearchFiltersLocally(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{
		makeTestCopyBlock("Launch Hook", "hook", "bold"),
		makeTestCopyBlock("Objection CTA", "cta", "direct"),
	}})

	m, _ = m.Update(keyMsg("/"))
	for _, r := range "hook" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	view := m.View()
	if !strings.Contains(view, "Launch Hook") {
		t.Errorf("expected matching block visible, got:\n%s", view)
	}
	if strings.Contains(view, "Objection CTA") {
		t.Errorf("expected non-matching block hidden, got:\n%s", view)
	}

	m, _ = m.Update(keyMsg("esc"))
	if !strings.Contains(m.View(), "Objection CTA") {
		t.Errorf("expected full list restored after esc")
	}
}

func TestCopyBlockSearchMatchesType(t *testing.T) {
	hook := makeTestCopyBlock("Launch Hook", "hook", "bold")
	hook.Type = "headline"
	cta := makeTestCopyBlock("Objection CTA", "cta", "direct")

	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{hook, cta}})

	m, _ = m.Update(keyMsg("/"))
	for _, r := range "headline" {
		m, _ = m.Update(keyMsg(string(r)))
	}
	visible := m.visible()
	if len(visible) != 1 || visible[0].Name != "Launch Hook" {
		t.Fatalf("expected the headline block only, got %+v", visible)
	}
}

func TestCopyBlockEnterOpensDetailView(t *testing.T) {
	blk := makeTestCopyBlock("Launch Hook", "hook", "bold")
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{blk}})

	_, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	msg, ok := cmd().(openViewMsg)
	if !ok {
		t.Fatalf("expected openViewMsg, got %T", cmd())
	}
	want := nav.Detail(nav.SectionCopy, blk.ID.String())
	if msg.view != want {
		t.Fatalf("expected %+v, got %+v", want, msg.view)
	}
}

func TestCopyBlockDetailRendersFullBody(t *testing.T) {
	blk := makeTestCopyBlock("Launch Hook", "hook", "bold")
	blk.Type = "headline"
	blk.Status = "approved"
	blk.Notes = strings.Repeat("Every word of the long body matters. ", 8)

	m := newTestCopyModel()
	m.mode = copyModeDetail
	m.detailID = blk.ID.String()
	m, _ = m.Update(copyDetailMsg{blockID: blk.ID.String(), block: blk})

	view := m.View()
	for _, want := range []string{"Launch Hook", "hook", "headline", "approved", "created"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in detail view, got:\n%s", want, view)
		}
	}
	if strings.Count(view, "matters.") < 8 {
		t.Errorf("expected the whole body, got:\n%s", view)
	}
}

func TestCopyBlockDetailCopyReturnsCmd(t *testing.T) {
	blk := makeTestCopyBlock("Launch Hook", "hook", "bold")
	blk.Notes = "Full body text."

	m := newTestCopyModel()
	m.mode = copyModeDetail
	m.detailID = blk.ID.String()
	m, _ = m.Update(copyDetailMsg{blockID: blk.ID.String(), block: blk})

	_, cmd := m.Update(keyMsg("c"))
	if cmd == nil {
		t.Fatal("expected a clipboard command from c in detail")
	}
}

func TestCopyBlockDetailDropsStaleBlock(t *testing.T) {
	m := newTestCopyModel()
	m.mode = copyModeDetail
	m.detailID = "cb-1"
	m.loading = true

	stale := makeTestCopyBlock("Stale Block", "hook", "")
	m, _ = m.Update(copyDetailMsg{blockID: "cb-gone", block: stale})
	if !m.loading {
		t.Fatal("expected a response for an abandoned block to be dropped")
	}
}

func TestCopyBlockDetailFailureShowsEmptyState(t *testing.T) {
	m := newTestCopyModel()
	m.mode = copyModeDetail
	m.detailID = "cb-1"
	m.loading = true
	m, _ = m.Update(copyDetailMsg{blockID: "cb-1", err: errTest})

	if !strings.Contains(m.View(), "could not load copy block") {
		t.Errorf("expected failure state, got:\n%s", m.View())
	}
}

func TestCopyBlockCopyReturnsClipboardCmd(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{
		makeTestCopyBlock("Launch Hook", "hook", "bold"),
	}})
	_, cmd := m.Update(keyMsg("c"))
	if cmd == nil {
		t.Fatal("expected a clipboard command from c")
	}
}

func TestCopyMarkerShowsAndExpires(t *testing.T) {
	m := newTestCopyModel()
	blk := makeTestCopyBlock("Launch Hook", "hook", "bold")
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{blk}})

	m, cmd := m.Update(copyDoneMsg{id: blk.ID.String()})
	if cmd == nil {
		t.Fatal("expected an expiry command when the marker is set")
	}
	if !strings.Contains(m.View(), "copied!") {
		t.Errorf("expected marker in view, got:\n%s", m.View())
	}

	m, _ = m.Update(markerClearMsg{gen: m.marker.gen})
	if strings.Contains(m.View(), "copied!") {
		t.Errorf("expected marker gone after expiry, got:\n%s", m.View())
	}
}

func TestCopyMarkerNewerCopySurvivesOlderTimer(t *testing.T) {
	m := newTestCopyModel()
	first := makeTestCopyBlock("First", "hook", "")
	second := makeTestCopyBlock("Second", "cta", "")
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{first, second}})

	m, _ = m.Update(copyDoneMsg{id: first.ID.String()})
	firstGen := m.marker.gen
	m, _ = m.Update(copyDoneMsg{id: second.ID.String()})

	// The timer armed for the first copy fires; the second marker stays.
	m, _ = m.Update(markerClearMsg{gen: firstGen})
	if !m.marker.on(second.ID.String()) {
		t.Fatal("expected the newer marker to survive the older timer")
	}

	m, _ = m.Update(markerClearMsg{gen: m.marker.gen})
	if m.marker.on(second.ID.String()) {
		t.Fatal("expected the newer marker to expire on its own timer")
	}
}

func TestCopyFailureNeverShowsMarker(t *testing.T) {
	m := newTestCopyModel()
	blk := makeTestCopyBlock("Launch Hook", "hook", "")
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{blk}})

	m, cmd := m.Update(copyDoneMsg{id: blk.ID.String(), err: errTest})
	if cmd != nil {
		t.Fatal("expected no expiry timer on a failed copy")
	}
	if strings.Contains(m.View(), "copied!") {
		t.Errorf("expected no marker on a failed copy, got:\n%s", m.View())
	}
}

func TestCopyBlockDropsLoadForOtherWorkspace(t *testing.T) {
	m := newTestCopyModel()
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-1", rows: []domain.CopyBlock{
		makeTestCopyBlock("Keep Me", "hook", ""),
	}})
	m, _ = m.Update(copyBlocksLoadedMsg{wsID: "ws-other", rows: []domain.CopyBlock{
		makeTestCopyBlock("Stale Row", "cta", ""),
	}})

	view := m.View()
	if !strings.Contains(view, "Keep Me") || strings.Contains(view, "Stale Row") {
		t.Errorf("expected stale workspace load dropped, got:\n%s", view)
	}
}
