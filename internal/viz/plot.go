package viz

import (
	"fmt"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/seals/internal/storage"
)

var columns = map[string]func(storage.Telemetry) float64{
	"points":      func(t storage.Telemetry) float64 { return float64(t.Points) },
	"edges":       func(t storage.Telemetry) float64 { return float64(t.Edges) },
	"volume":      func(t storage.Telemetry) float64 { return t.Volume },
	"edge_mean":   func(t storage.Telemetry) float64 { return t.EdgeMean },
	"edge_std":    func(t storage.Telemetry) float64 { return t.EdgeStd },
	"extent":      func(t storage.Telemetry) float64 { return t.Extent },
	"flexibility": func(t storage.Telemetry) float64 { return t.MeanFlexibility },
	"elapsed_ms":  func(t storage.Telemetry) float64 { return float64(t.ElapsedMS) },
}

// Columns lists the telemetry columns that can be plotted.
func Columns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column extracts one telemetry column.
func Column(rows []storage.Telemetry, name string) ([]float64, error) {
	fn, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out, nil
}

// PlotTelemetry draws one telemetry column over the run.
func PlotTelemetry(rows []storage.Telemetry, name string, width, height int) (string, error) {
	data, err := Column(rows, name)
	if err != nil {
		return "", err
	}
	if len(data) < 2 {
		return "", fmt.Errorf("need at least 2 rows to plot, have %d", len(data))
	}
	caption := fmt.Sprintf("%s (steps %d-%d)", name, rows[0].Step, rows[len(rows)-1].Step)
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
