package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// markerTTL is how long a "copied!" marker stays visible.
const markerTTL = 2 * time.Second

// copyDoneMsg reports a clipboard write for the given row id.
type copyDoneMsg struct {
	id  string
	err error
}

// markerClearMsg expires the marker set at generation gen.
type markerClearMsg struct {
	gen int
}

// downloadDoneMsg reports an asset download.
type downloadDoneMsg struct {
	id   string
	path string
	err  error
}

func copyCmd(id, text string) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{id: id, err: clipboard.WriteAll(text)}
	}
}

func markerClearCmd(gen int) tea.Cmd {
	return tea.Tick(markerTTL, func(time.Time) tea.Msg {
		return markerClearMsg{gen: gen}
	})
}

// copyMarker is the single transient "copied!" slot. Setting it bumps the
// generation so a timer armed for an earlier copy cannot clear a newer one:
// copying B right after A shows B's marker for the full interval.
type copyMarker struct {
	id    string
	label string
	gen   int
}

// set activates the marker for id and returns the expiry command.
func (m *copyMarker) set(id, label string) tea.Cmd {
	m.id = id
	m.label = label
	m.gen++
	return markerClearCmd(m.gen)
}

// clear expires the marker only if gen matches the current generation.
func (m *copyMarker) clear(gen int) {
	if gen != m.gen {
		return
	}
	m.id = ""
	m.label = ""
}

// on reports whether the marker is active for the given row.
func (m copyMarker) on(id string) bool {
	return m.id != "" && m.id == id
}

// render returns the inline marker text for a row, or "" when inactive.
func (m copyMarker) render(id string) string {
	if !m.on(id) {
		return ""
	}
	return okStyle.Render(m.label)
}
