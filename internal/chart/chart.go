// Package chart draws the dashboard category chart.
package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"expense_tracker/internal/models"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Renderer turns category totals into an image suitable for an <img> data URI.
// An empty result with a nil error means there is nothing to draw.
type Renderer interface {
	Render(totals []models.CategoryTotal) (string, error)
}

// BarRenderer renders a PNG bar chart of amounts per category, base64 encoded.
type BarRenderer struct {
	Width  int
	Height int
}

func NewBarRenderer() *BarRenderer {
	return &BarRenderer{Width: 640, Height: 400}
}

func (r *BarRenderer) Render(totals []models.CategoryTotal) (string, error) {
	if len(totals) == 0 {
		return "", nil
	}

	bars := make([]gochart.Value, 0, len(totals))
	var peak float64
	for _, t := range totals {
		amount := models.CentsToDecimal(t.AmountCents).InexactFloat64()
		if amount > peak {
			peak = amount
		}
		bars = append(bars, gochart.Value{Label: titleCase(t.Category), Value: amount})
	}
	// a flat series has no range of its own
	top := peak * 1.1
	if top == 0 {
		top = 1
	}

	c := gochart.BarChart{
		Title:    "Spending by Category",
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: 80,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: 0, Max: top},
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("$%.2f", v) },
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render bar chart: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
