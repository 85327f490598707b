// Package world implements the top-level simulation façade: the owner of
// every simulation unit, the date-succession and re-establishment rules,
// and the bridge from per-unit daily output to the output aggregator and
// writer.
package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/evoranch/fauna/date"
	"github.com/evoranch/fauna/feed"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/output"
	"github.com/evoranch/fauna/population"
	"github.com/evoranch/fauna/simulate"
)

// Parameters holds the global, run-wide settings a World is constructed
// with. They are fixed for the lifetime of the World.
type Parameters struct {
	// ForageDistribution allocates available forage among demanding
	// herbivores each day.
	ForageDistribution feed.Distributor
	// OutputInterval selects how many days the output aggregator
	// accumulates before flushing to the Writer.
	OutputInterval output.Interval
	// EstablishmentIntervalDays is how often, in simulated days, an
	// emptied population is checked for re-establishment. Zero disables
	// re-establishment entirely.
	EstablishmentIntervalDays int
}

// SimDayOptions controls one call to SimulateDay.
type SimDayOptions struct {
	// DoHerbivores, if false, runs only each habitat's own daily update:
	// no demand, distribution, eating or life-cycle event touches any
	// population (simulate.NoHerbivoryDay).
	DoHerbivores bool
	// ResetDate suppresses the date-succession check, for restarting a
	// run at a new starting date.
	ResetDate bool
}

// World owns every simulation unit and HFT in a run, and drives the
// calendar across them.
type World struct {
	params Parameters
	hfts   []*hft.HFT

	mu    sync.Mutex
	units []*simulate.Unit

	aggregator             *output.Aggregator
	writer                 output.Writer
	lastDate               *date.Date
	daysSinceEstablishment int
}

// ErrNilHabitat is returned by CreateSimulationUnit when given a nil
// habitat.
var ErrNilHabitat = errors.New("world: nil habitat")

// New constructs a World with no simulation units yet. hfts is the
// immutable list of herbivore functional types every population drawn
// from CreateSimulationUnit will be established for.
func New(hfts []*hft.HFT, params Parameters, writer output.Writer) *World {
	return &World{
		params:     params,
		hfts:       hfts,
		aggregator: output.NewAggregator(params.OutputInterval),
		writer:     writer,
	}
}

// Params returns the World's global parameters.
func (w *World) Params() Parameters { return w.params }

// HFTs returns the World's immutable list of herbivore functional types.
func (w *World) HFTs() []*hft.HFT { return w.hfts }

// Units returns the currently live simulation units, in creation order.
func (w *World) Units() []*simulate.Unit {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*simulate.Unit, len(w.units))
	copy(out, w.units)
	return out
}

// CreateSimulationUnit builds one population per HFT for h, establishes
// each, and adds the resulting simulation unit to the World.
func (w *World) CreateSimulationUnit(h habitat.Habitat) error {
	if h == nil {
		return ErrNilHabitat
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	pops := make([]*population.Population, len(w.hfts))
	for i, hf := range w.hfts {
		p := population.New(hf)
		if err := p.Establish(); err != nil {
			return fmt.Errorf("world.CreateSimulationUnit: %w", err)
		}
		pops[i] = p
	}
	simUnit, err := simulate.NewUnit(h, pops)
	if err != nil {
		return fmt.Errorf("world.CreateSimulationUnit: %w", err)
	}
	w.units = append(w.units, simUnit)
	return nil
}

// SimulateDay advances every simulation unit by one day, sequentially.
func (w *World) SimulateDay(today date.Date, opts SimDayOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkDateSuccession(today, opts); err != nil {
		return err
	}
	w.dropDeadUnits()

	for _, u := range w.units {
		out, err := w.simulateOneUnit(u, today, opts)
		if err != nil {
			return err
		}
		w.aggregator.Add(today, out)
	}
	return w.finishDay(today)
}

// SimulateDayParallel is the optional fan-out variant of SimulateDay: one
// goroutine per simulation unit, each unit's own state untouched by any
// other, merged into the shared aggregator only after every worker
// finishes. Mortality and reproduction are deterministic rate formulas,
// not individual dice rolls, so the fan-out needs no per-unit random
// source to stay reproducible.
func (w *World) SimulateDayParallel(today date.Date, opts SimDayOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkDateSuccession(today, opts); err != nil {
		return err
	}
	w.dropDeadUnits()

	results := make([]simulate.DayOutput, len(w.units))
	errs := make([]error, len(w.units))

	var wg sync.WaitGroup
	for i, u := range w.units {
		wg.Add(1)
		go func(i int, u *simulate.Unit) {
			defer wg.Done()
			out, err := w.simulateOneUnit(u, today, opts)
			results[i] = out
			errs[i] = err
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for _, out := range results {
		w.aggregator.Add(today, out)
	}
	return w.finishDay(today)
}

func (w *World) simulateOneUnit(u *simulate.Unit, today date.Date, opts SimDayOptions) (simulate.DayOutput, error) {
	if opts.DoHerbivores {
		return simulate.Day(u, today.JulianDay(), w.params.ForageDistribution)
	}
	return simulate.NoHerbivoryDay(u, today.JulianDay())
}

func (w *World) checkDateSuccession(today date.Date, opts SimDayOptions) error {
	if w.lastDate != nil && !opts.ResetDate && !today.IsSuccessorOf(*w.lastDate) {
		return fmt.Errorf("world.SimulateDay: %s does not immediately follow %s", today, *w.lastDate)
	}
	if opts.ResetDate {
		w.lastDate = nil
		w.daysSinceEstablishment = 0
	}
	return nil
}

func (w *World) dropDeadUnits() {
	live := w.units[:0]
	for _, u := range w.units {
		if u.Habitat.IsDead() {
			log.Info().
				Str("aggregation_unit", u.Habitat.AggregationUnit()).
				Msg("dropping simulation unit with dead habitat")
			continue
		}
		live = append(live, u)
	}
	w.units = live
}

// finishDay runs re-establishment, advances the aggregator window, flushes
// to the writer when the window is complete, and records today as the
// last simulated date.
func (w *World) finishDay(today date.Date) error {
	w.daysSinceEstablishment++
	if w.params.EstablishmentIntervalDays > 0 && w.daysSinceEstablishment >= w.params.EstablishmentIntervalDays {
		w.daysSinceEstablishment = 0
		for _, u := range w.units {
			for _, p := range u.Populations {
				if p.IsEmpty() || p.TotalDensity() == 0 {
					if err := reestablish(p); err != nil {
						return fmt.Errorf("world.SimulateDay: %w", err)
					}
					log.Info().
						Str("aggregation_unit", u.Habitat.AggregationUnit()).
						Str("hft", p.HFT().Name).
						Str("date", today.String()).
						Msg("re-established empty population")
				}
			}
		}
	}

	w.aggregator.AdvanceDay(today)
	if w.aggregator.Ready() && w.writer != nil {
		points := w.aggregator.Retrieve()
		if err := w.writer.Write(points); err != nil {
			return fmt.Errorf("world.SimulateDay: %w", err)
		}
		log.Debug().
			Str("date", today.String()).
			Int("datapoints", len(points)).
			Msg("flushed output window")
	}

	next := today
	w.lastDate = &next
	return nil
}

// reestablish re-populates p from scratch. Population.Establish refuses a
// non-empty population, so a population with only zero-density cohorts
// left over from PurgeOfDead (already removed) or none at all is first
// cleared before re-establishing.
func reestablish(p *population.Population) error {
	for _, c := range p.Cohorts() {
		c.Kill()
	}
	p.PurgeOfDead()
	return p.Establish()
}
