package render

import (
	"github.com/charmbracelet/lipgloss"
)

// styles are bound to one renderer so the colour profile follows the
// destination writer.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	help  lipgloss.Style
	err   lipgloss.Style
	buy   lipgloss.Style
	sell  lipgloss.Style
	panel lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Bold(true),
		help:  r.NewStyle().Faint(true),
		err:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		buy:   r.NewStyle().Foreground(lipgloss.Color("10")),
		sell:  r.NewStyle().Foreground(lipgloss.Color("9")),
		panel: r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// FormatPriceWithDirection formats a price with an arrow comparing it to the
// previous close.
func FormatPriceWithDirection(current, previous float64) string {
	priceStr := formatPrice(current)

	if previous == 0 {
		return priceStr
	}

	if current > previous {
		return priceStr + " ▲"
	} else if current < previous {
		return priceStr + " ▼"
	}

	return priceStr
}
