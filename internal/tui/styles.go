package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the FLOWDECK wordmark.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "F L O W D E C K" as a flowing wave of indigo
// light, deep indigo (#28285a) -> bright periwinkle (#818cf8).
func renderShimmerLogo(frame int) string {
	const text = "FLOWDECK"
	n := len(text)

	var out string

	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(40 + b*(129-40))
		g := clampByte(40 + b*(140-40))
		bl := clampByte(90 + b*(248-90))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Search / accent
	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#818cf8")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6d77e8"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#b45555"))

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3ecce4"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Funnel stage colors
	funnelColors = map[string]lipgloss.Color{
		"awareness":     lipgloss.Color("#3ecce4"),
		"consideration": lipgloss.Color("#60a0e0"),
		"conversion":    lipgloss.Color("#4ade80"),
		"retention":     lipgloss.Color("#c084e0"),
		"advocacy":      lipgloss.Color("#d4a844"),
	}

	// Copy block category colors
	categoryColors = map[string]lipgloss.Color{
		"headline": lipgloss.Color("#d4a844"),
		"hook":     lipgloss.Color("#f0944a"),
		"cta":      lipgloss.Color("#4ade80"),
		"body":     lipgloss.Color("#60a0e0"),
		"caption":  lipgloss.Color("#c084e0"),
		"email":    lipgloss.Color("#3ecce4"),
		"ad":       lipgloss.Color("#e06060"),
	}

	// Role colors for the workspace switcher
	roleColors = map[string]lipgloss.Color{
		"owner":  lipgloss.Color("#d4a844"),
		"admin":  lipgloss.Color("#818cf8"),
		"member": lipgloss.Color("#8890a0"),
	}
)

// FunnelStyle returns a bold style colored for the given funnel stage.
func FunnelStyle(stage string) lipgloss.Style {
	if c, ok := funnelColors[stage]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// CategoryStyle returns a bold style colored for the given copy category.
func CategoryStyle(category string) lipgloss.Style {
	if c, ok := categoryColors[category]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// RoleStyle returns a style colored for a workspace role.
func RoleStyle(role string) lipgloss.Style {
	if c, ok := roleColors[role]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0"))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
