package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cardTitleStyle = lipgloss.NewStyle().Bold(true)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B3B3B3"))
)

// TerminalCards renders the persona cards as bordered boxes, one per line
// group, in input order. width <= 0 lets lipgloss size each box to its content.
func TerminalCards(cards []PersonaCard, width int) string {
	if len(cards) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("●")
		var sb strings.Builder
		sb.WriteString(dot + " " + cardTitleStyle.Render(c.Persona))
		if c.Description != "" {
			sb.WriteString("\n" + c.Description)
		}
		for _, m := range c.Metrics() {
			sb.WriteString("\n" + cardLabelStyle.Render(m.Label) + " " + m.Value)
		}
		box := lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Color)).
			Padding(0, 1)
		if width > 0 {
			box = box.Width(width)
		}
		boxes = append(boxes, box.Render(sb.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}
