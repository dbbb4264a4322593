// Package charts renders summary groupings as PNG bar charts for the
// dashboard page.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// maxBars keeps charts readable when a grouping has many distinct keys;
// only the largest totals are drawn.
const maxBars = 12

// Generator turns aggregated totals into chart images.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GroupBars renders a bar chart of the given grouping, largest totals
// first. It returns nil when there is nothing to draw.
func (g *Generator) GroupBars(title string, group map[string]int64) ([]byte, error) {
	entries := core.SortedEntries(group)
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) > maxBars {
		entries = entries[:maxBars]
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		bars[i] = chart.Value{
			Label: e.Key,
			Value: float64(e.Amount),
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    1024,
		Height:   512,
		BarWidth: 56,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    48,
				Left:   32,
				Right:  32,
				Bottom: 32,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  11,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("¥%.0f", f)
				}
				return ""
			},
			Style: chart.Style{
				FontSize:  11,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
