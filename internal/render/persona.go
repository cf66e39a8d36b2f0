package render

import (
	"strconv"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
)

// Metric is one labelled line of a persona card.
type Metric struct {
	Label string
	Hint  string
	Value string
}

// PersonaCard is the render model of one persona summary.
type PersonaCard struct {
	ClusterID   int
	Color       string
	Persona     string
	Description string
	Recency     string
	Frequency   string
	Monetary    string
}

// Metrics returns the card's three metric lines in display order.
func (c PersonaCard) Metrics() []Metric {
	return []Metric{
		{Label: "Avg. Recency:", Hint: "How many days ago was their last purchase? (Lower is better)", Value: c.Recency},
		{Label: "Avg. Frequency:", Hint: "How many separate purchases have they made? (Higher is better)", Value: c.Frequency},
		{Label: "Avg. Monetary Value:", Hint: "What is their total spending? (Higher is better)", Value: c.Monetary},
	}
}

// BuildPersonaCards keeps input order; no sorting or deduplication.
func BuildPersonaCards(personas []segment.PersonaSummary) []PersonaCard {
	cards := make([]PersonaCard, 0, len(personas))
	for _, p := range personas {
		cards = append(cards, PersonaCard{
			ClusterID:   p.ClusterID,
			Color:       ClusterColor(p.ClusterID),
			Persona:     p.Persona,
			Description: p.Description,
			Recency:     FormatNumber(p.AvgRecency) + " days",
			Frequency:   FormatNumber(p.AvgFrequency),
			Monetary:    FormatMonetary(p.AvgMonetary),
		})
	}
	return cards
}

// FormatNumber prints v with the shortest exact representation.
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMonetary prints v with exactly two decimals.
func FormatMonetary(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
