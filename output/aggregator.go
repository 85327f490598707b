// Package output aggregates per-day, per-simulation-unit results into
// periodic datapoints, keyed by aggregation unit, and writes them out as
// text tables.
package output

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/evoranch/fauna/date"
	"github.com/evoranch/fauna/simulate"
)

// Interval selects how many simulated days worth of data the aggregator
// accumulates before handing datapoints to the Writer.
type Interval int

const (
	Daily Interval = iota
	Monthly
	Annual
	Decadal
)

func (i Interval) String() string {
	switch i {
	case Daily:
		return "daily"
	case Monthly:
		return "monthly"
	case Annual:
		return "annual"
	case Decadal:
		return "decadal"
	default:
		return "unknown interval"
	}
}

// days returns the number of simulated days this interval spans, used to
// decide when the aggregator's accumulated window is complete.
func (i Interval) days() int {
	switch i {
	case Daily:
		return 1
	case Monthly:
		return 30
	case Annual:
		return 365
	case Decadal:
		return 3650
	default:
		return 1
	}
}

// HFTDatapoint is one HFT's averaged contribution to a Datapoint.
type HFTDatapoint struct {
	IndPerKm2 float64
	KgPerKm2  float64
}

// Datapoint is one aggregation unit's averaged output over the interval
// [Start, End]; End is the last simulated day of the window, inclusive.
type Datapoint struct {
	AggregationUnit string
	Start           date.Date
	End             date.Date
	SampleCount     int // number of (unit, day) observations folded in
	// ForageAvailable and ForageAvailableStdDev are the mean and sample
	// standard deviation of daily available forage across the window;
	// the deviation is 0 when the window holds fewer than two samples.
	ForageAvailable       float64
	ForageAvailableStdDev float64
	ForageEaten           float64
	NitrogenReturned      float64
	PerHFT                map[string]HFTDatapoint
}

// bucket accumulates per-day samples for one aggregation unit until
// Retrieve reduces them to the Datapoint means.
type bucket struct {
	forageAvailable  []float64
	forageEaten      []float64
	nitrogenReturned []float64
	perHFT           map[string]HFTDatapoint
}

// Aggregator collects simulate.DayOutput values from every simulation
// unit over consecutive days, keyed by aggregation unit, until the
// configured Interval's day window is complete.
type Aggregator struct {
	interval   Interval
	start      date.Date
	end        date.Date
	daysSeen   int
	haveWindow bool
	buckets    map[string]*bucket
}

// NewAggregator constructs an empty Aggregator for the given interval.
func NewAggregator(interval Interval) *Aggregator {
	return &Aggregator{interval: interval, buckets: make(map[string]*bucket)}
}

// Add folds one simulation unit's day output into today's window.
func (a *Aggregator) Add(today date.Date, out simulate.DayOutput) {
	if !a.haveWindow {
		a.start = today
		a.haveWindow = true
	}
	a.end = today

	b, ok := a.buckets[out.AggregationUnit]
	if !ok {
		b = &bucket{perHFT: make(map[string]HFTDatapoint)}
		a.buckets[out.AggregationUnit] = b
	}
	b.forageAvailable = append(b.forageAvailable, out.ForageAvailable.Sum())
	b.forageEaten = append(b.forageEaten, out.ForageEaten.Sum())
	b.nitrogenReturned = append(b.nitrogenReturned, out.NitrogenReturned)
	for name, hftOut := range out.PerHFT {
		acc := b.perHFT[name]
		acc.IndPerKm2 += hftOut.IndPerKm2
		acc.KgPerKm2 += hftOut.KgPerKm2
		b.perHFT[name] = acc
	}
}

// AdvanceDay records that one more simulated day has passed, independent
// of whether any unit reported data for it (so a day with zero
// simulation units still advances the window toward completion).
func (a *Aggregator) AdvanceDay(today date.Date) {
	if !a.haveWindow {
		a.start = today
		a.haveWindow = true
	}
	a.end = today
	a.daysSeen++
}

// Ready reports whether the accumulated window spans the configured
// interval and should be retrieved and flushed to a Writer.
func (a *Aggregator) Ready() bool {
	return a.haveWindow && a.daysSeen >= a.interval.days()
}

// Retrieve returns one Datapoint per aggregation unit seen since the
// last Retrieve, averaged over the number of samples folded in, and
// resets the aggregator's accumulated state.
func (a *Aggregator) Retrieve() []Datapoint {
	points := make([]Datapoint, 0, len(a.buckets))
	for agg, b := range a.buckets {
		n := float64(len(b.forageAvailable))
		if n == 0 {
			n = 1
		}
		perHFT := make(map[string]HFTDatapoint, len(b.perHFT))
		for name, acc := range b.perHFT {
			perHFT[name] = HFTDatapoint{IndPerKm2: acc.IndPerKm2 / n, KgPerKm2: acc.KgPerKm2 / n}
		}
		availStdDev := 0.0
		if len(b.forageAvailable) > 1 {
			availStdDev = stat.StdDev(b.forageAvailable, nil)
		}
		points = append(points, Datapoint{
			AggregationUnit:       agg,
			Start:                 a.start,
			End:                   a.end,
			SampleCount:           len(b.forageAvailable),
			ForageAvailable:       stat.Mean(b.forageAvailable, nil),
			ForageAvailableStdDev: availStdDev,
			ForageEaten:           stat.Mean(b.forageEaten, nil),
			NitrogenReturned:      stat.Mean(b.nitrogenReturned, nil),
			PerHFT:                perHFT,
		})
	}
	a.buckets = make(map[string]*bucket)
	a.haveWindow = false
	a.daysSeen = 0
	return points
}

func (d Datapoint) String() string {
	return fmt.Sprintf("%s [%s..%s] n=%d forage_avail=%.2f forage_eaten=%.2f N=%.4f",
		d.AggregationUnit, d.Start, d.End, d.SampleCount, d.ForageAvailable, d.ForageEaten, d.NitrogenReturned)
}
