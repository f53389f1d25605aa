package guide

import (
	"fmt"
	"strings"
)

// Markdown renders g as a Markdown document.
func Markdown(g *TravelGuide) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", g.Title)
	if g.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", g.Summary)
	}
	if g.Location != nil {
		fmt.Fprintf(&b, "_%s (%.4f, %.4f)_\n\n", g.Location.FormattedAddress,
			g.Location.Coordinates.Latitude, g.Location.Coordinates.Longitude)
	}
	if g.Weather != "" {
		fmt.Fprintf(&b, "## Weather\n\n%s\n\n", g.Weather)
	}

	if len(g.Itinerary) > 0 {
		b.WriteString("## Itinerary\n\n")
		for _, d := range g.Itinerary {
			fmt.Fprintf(&b, "### Day %d: %s", d.Day, d.Title)
			if d.Date != "" {
				fmt.Fprintf(&b, " (%s)", d.Date)
			}
			b.WriteString("\n\n")
			for _, a := range d.Activities {
				fmt.Fprintf(&b, "- %s\n", a)
			}
			b.WriteString("\n")
		}
	}

	if len(g.Places) > 0 {
		b.WriteString("## Points of interest\n\n")
		for _, p := range g.Places {
			if p.Location == nil {
				fmt.Fprintf(&b, "- %s\n", p.Name)
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Location.FormattedAddress)
		}
		b.WriteString("\n")
	}

	if len(g.Tips) > 0 {
		b.WriteString("## Tips\n\n")
		for _, t := range g.Tips {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}
