// Package simulate implements the daily simulation pipeline for one
// simulation unit, in a strict stage order: init, life-cycle, demand,
// distribute, eat, offspring, purge, output.
package simulate

import (
	"errors"
	"fmt"

	"github.com/evoranch/fauna/digest"
	"github.com/evoranch/fauna/feed"
	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/herbivore"
	"github.com/evoranch/fauna/population"
)

// epsilon is the small forage-mass floor below which availability is
// clipped to zero before the day's demand/distribute/eat stages run.
const epsilon = 1e-6

// ErrHabitatDead is returned by Day when called on a unit whose habitat
// has already been marked dead; the caller (world.World) must have
// dropped the unit instead of simulating it further.
var ErrHabitatDead = errors.New("simulate: habitat is dead")

// Unit is one simulation unit: a habitat plus the herbivore populations
// living on it.
type Unit struct {
	Habitat     habitat.Habitat
	Populations []*population.Population
	Established bool
}

// NewUnit constructs a Unit, failing on a nil habitat.
func NewUnit(h habitat.Habitat, populations []*population.Population) (*Unit, error) {
	if h == nil {
		return nil, errors.New("simulate.NewUnit: nil habitat")
	}
	return &Unit{Habitat: h, Populations: populations}, nil
}

// HFTOutput is one HFT's slice of a day's per-unit output.
type HFTOutput struct {
	IndPerKm2 float64
	KgPerKm2  float64
}

// DayOutput is the per-day, per-simulation-unit result handed to the
// output aggregator.
type DayOutput struct {
	AggregationUnit  string
	ForageAvailable  forage.Mass
	ForageEaten      forage.Mass
	NitrogenReturned float64
	PerHFT           map[string]HFTOutput
}

type livingCohort struct {
	cohort *herbivore.Cohort
	pop    *population.Population
}

// Day runs one simulated day for u. Stages must not be reordered: every
// herbivore shares the habitat's forage pool, so demand, distribution
// and eating are each completed for all herbivores before the next
// stage begins. distributor is applied once, across every herbivore
// alive at the start of the day in every population of u.
func Day(u *Unit, julianDay int, distributor feed.Distributor) (DayOutput, error) {
	if u.Habitat.IsDead() {
		return DayOutput{}, ErrHabitatDead
	}
	if julianDay < 0 || julianDay > 365 {
		return DayOutput{}, fmt.Errorf("simulate.Day: julian day %d out of [0,365]", julianDay)
	}

	// init
	if err := u.Habitat.InitDay(julianDay); err != nil {
		return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
	}
	available := u.Habitat.AvailableForage()
	available.Mass = clipEpsilon(available.Mass)
	env := u.Habitat.Environment()

	var living []livingCohort
	for _, p := range u.Populations {
		for _, c := range p.Cohorts() {
			if !c.IsDead() {
				living = append(living, livingCohort{c, p})
			}
		}
	}

	// life-cycle: expenditure, ageing, scheduled offspring and today's
	// mortality all happen inside Cohort.SimulateDay, ahead of the
	// demand stage. A cohort that dies today (old age, starvation
	// threshold) never gets to demand or eat.
	offspringByPop := make(map[*population.Population]float64, len(u.Populations))
	for _, lc := range living {
		offspring, err := lc.cohort.SimulateDay(julianDay, env)
		if err != nil {
			return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
		}
		offspringByPop[lc.pop] += offspring
	}

	// demand
	demands := make(map[herbivore.Interface]forage.Mass, len(living))
	for _, lc := range living {
		if lc.cohort.IsDead() {
			continue
		}
		converter := digest.NetEnergyConverter{Model: lc.cohort.HFT().NetEnergyModel}
		energyContent, err := converter.Convert(available.Digestibility, lc.cohort.HFT().Digestion)
		if err != nil {
			return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
		}
		mass, err := lc.cohort.ForageDemands(available, energyContent)
		if err != nil {
			return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
		}
		demands[lc.cohort] = mass
	}

	// distribute
	portions, err := distributor.Distribute(available.Mass, demands)
	if err != nil {
		return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
	}

	// eat
	totalEaten := forage.Zero[forage.MassTag]()
	for _, lc := range living {
		portion, ok := portions[lc.cohort]
		if !ok {
			continue
		}
		if err := lc.cohort.Eat(portion, available.Digestibility, available.NitrogenFractionOfMass); err != nil {
			return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
		}
		totalEaten, err = totalEaten.Add(portion)
		if err != nil {
			return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
		}
	}
	if err := u.Habitat.RemoveEatenForage(totalEaten); err != nil {
		return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
	}

	// offspring, then kill-nonviable and purge. Nitrogen (daily
	// digestive excreta for every cohort, plus tissue nitrogen folded in
	// by Cohort.Kill for any that died today) is harvested before purge
	// removes the dead cohorts for good.
	nitrogen := 0.0
	for _, p := range u.Populations {
		if offspring := offspringByPop[p]; offspring > 0 {
			if err := p.CreateOffspring(offspring); err != nil {
				return DayOutput{}, fmt.Errorf("simulate.Day: %w", err)
			}
		}
		p.KillNonviable()
		for _, c := range p.Cohorts() {
			nitrogen += c.TakeNitrogenExcreta()
		}
		p.PurgeOfDead()
	}
	u.Habitat.AddExcretedNitrogen(nitrogen)

	// output
	perHFT := make(map[string]HFTOutput, len(u.Populations))
	for _, p := range u.Populations {
		out := HFTOutput{}
		for _, c := range p.Cohorts() {
			out.IndPerKm2 += c.IndPerKm2()
			out.KgPerKm2 += c.KgPerKm2()
		}
		perHFT[p.HFT().Name] = out
	}

	return DayOutput{
		AggregationUnit:  u.Habitat.AggregationUnit(),
		ForageAvailable:  available.Mass,
		ForageEaten:      totalEaten,
		NitrogenReturned: nitrogen,
		PerHFT:           perHFT,
	}, nil
}

// NoHerbivoryDay runs only the habitat's own daily update, for spin-up
// runs with herbivory switched off: no demand, distribution, eating or
// life-cycle event touches any population. The output mirrors the
// habitat's available forage exactly, and no nitrogen flows.
func NoHerbivoryDay(u *Unit, julianDay int) (DayOutput, error) {
	if u.Habitat.IsDead() {
		return DayOutput{}, ErrHabitatDead
	}
	if err := u.Habitat.InitDay(julianDay); err != nil {
		return DayOutput{}, fmt.Errorf("simulate.NoHerbivoryDay: %w", err)
	}
	available := u.Habitat.AvailableForage()
	perHFT := make(map[string]HFTOutput, len(u.Populations))
	for _, p := range u.Populations {
		out := HFTOutput{}
		for _, c := range p.Cohorts() {
			out.IndPerKm2 += c.IndPerKm2()
			out.KgPerKm2 += c.KgPerKm2()
		}
		perHFT[p.HFT().Name] = out
	}
	return DayOutput{
		AggregationUnit: u.Habitat.AggregationUnit(),
		ForageAvailable: available.Mass,
		PerHFT:          perHFT,
	}, nil
}

func clipEpsilon(m forage.Mass) forage.Mass {
	out := forage.Zero[forage.MassTag]()
	for _, t := range forage.Types {
		v, err := m.Get(t)
		if err != nil {
			continue
		}
		if v < epsilon {
			v = 0
		}
		out, _ = out.Set(t, v)
	}
	return out
}
