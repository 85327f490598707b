package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Writer persists a batch of Datapoints produced by one Aggregator.Retrieve
// call. Implementations must tolerate repeated calls with disjoint HFT sets
// across datapoints (not every aggregation unit need carry every HFT).
type Writer interface {
	Write(points []Datapoint) error
}

// TextTables writes one CSV row per datapoint: a fixed header row
// followed by one record per observation, flushed immediately.
type TextTables struct {
	w       *csv.Writer
	wrote   bool
	hftCols []string // fixed column order, captured from the first Write call
}

// NewTextTables wraps w (typically an *os.File opened by the caller) in a
// time-series table Writer.
func NewTextTables(w io.Writer) *TextTables {
	return &TextTables{w: csv.NewWriter(w)}
}

// Write appends points to the underlying CSV stream, writing the header row
// once on the first call.
func (t *TextTables) Write(points []Datapoint) error {
	if len(points) == 0 {
		return nil
	}
	if !t.wrote {
		names := make(map[string]struct{})
		for _, p := range points {
			for name := range p.PerHFT {
				names[name] = struct{}{}
			}
		}
		t.hftCols = make([]string, 0, len(names))
		for name := range names {
			t.hftCols = append(t.hftCols, name)
		}
		sort.Strings(t.hftCols)

		header := []string{"aggregation_unit", "start", "end", "sample_count",
			"forage_available_kg_per_km2", "forage_available_stddev",
			"forage_eaten_kg_per_km2", "nitrogen_returned_kg"}
		for _, name := range t.hftCols {
			header = append(header, name+"_ind_per_km2", name+"_kg_per_km2")
		}
		if err := t.w.Write(header); err != nil {
			return fmt.Errorf("output.TextTables: writing header: %w", err)
		}
		t.wrote = true
	}

	sorted := make([]Datapoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AggregationUnit < sorted[j].AggregationUnit })

	for _, p := range sorted {
		record := []string{
			p.AggregationUnit,
			p.Start.String(),
			p.End.String(),
			strconv.Itoa(p.SampleCount),
			strconv.FormatFloat(p.ForageAvailable, 'f', 4, 64),
			strconv.FormatFloat(p.ForageAvailableStdDev, 'f', 4, 64),
			strconv.FormatFloat(p.ForageEaten, 'f', 4, 64),
			strconv.FormatFloat(p.NitrogenReturned, 'f', 6, 64),
		}
		for _, name := range t.hftCols {
			hd := p.PerHFT[name]
			record = append(record,
				strconv.FormatFloat(hd.IndPerKm2, 'f', 4, 64),
				strconv.FormatFloat(hd.KgPerKm2, 'f', 4, 64))
		}
		if err := t.w.Write(record); err != nil {
			return fmt.Errorf("output.TextTables: writing record: %w", err)
		}
	}
	t.w.Flush()
	return t.w.Error()
}
