// Package digest converts forage dry matter to usable energy: providers
// for daily digestibility, and a converter from digestibility to net
// energy content per kg dry matter.
package digest

import (
	"fmt"

	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/hft"
)

// Provider returns the current per-forage-type digestibility, given a
// vegetation snapshot described by liveMass, deadMass (kg/km2 each) and
// today's net primary productivity (kg/km2/day, used only by FromNPP).
type Provider interface {
	Digestibility(liveMass, deadMass forage.Mass, nppToday forage.Mass) (forage.Fraction, error)
}

// PftFixedProvider returns a constant digestibility regardless of
// vegetation state: the degenerate, always-available provider.
type PftFixedProvider struct {
	Fixed forage.Fraction
}

func (p PftFixedProvider) Digestibility(forage.Mass, forage.Mass, forage.Mass) (forage.Fraction, error) {
	return p.Fixed, nil
}

// Pachzelt2013Provider mixes live and dead digestibility weighted by
// their relative biomass, after Pachzelt et al. (2013).
type Pachzelt2013Provider struct {
	LiveDigestibility forage.Fraction
	DeadDigestibility forage.Fraction
}

func (p Pachzelt2013Provider) Digestibility(liveMass, deadMass forage.Mass, _ forage.Mass) (forage.Fraction, error) {
	out := forage.Zero[forage.FractionTag]()
	for _, t := range forage.Types {
		live, err := liveMass.Get(t)
		if err != nil {
			return forage.Fraction{}, err
		}
		dead, err := deadMass.Get(t)
		if err != nil {
			return forage.Fraction{}, err
		}
		total := live + dead
		liveD, _ := p.LiveDigestibility.Get(t)
		deadD, _ := p.DeadDigestibility.Get(t)
		var d float64
		if total == 0 {
			d = liveD
		} else {
			d = (live*liveD + dead*deadD) / total
		}
		out, err = out.Set(t, d)
		if err != nil {
			return forage.Fraction{}, fmt.Errorf("digest.Pachzelt2013Provider: %w", err)
		}
	}
	return out, nil
}

// FromNPPProvider tracks an NPP-weighted moving average of forage age,
// then linearly interpolates digestibility from FreshDigestibility down
// to DeadDigestibility across AttritionWindowDays. Each call advances the
// internal age-weighted history by one day's worth of new growth.
type FromNPPProvider struct {
	FreshDigestibility  forage.Fraction
	DeadDigestibility   forage.Fraction
	AttritionWindowDays int // default 365 when zero

	// averageAgeDays tracks, per forage type, the sum of (age in days *
	// surviving mass) divided by total surviving mass: a decaying
	// weighted average age used to place the forage pool on the
	// fresh-to-dead interpolation line.
	averageAgeDays forage.Mass
}

// NewFromNPPProvider constructs a provider with a zeroed age history.
func NewFromNPPProvider(fresh, dead forage.Fraction, windowDays int) *FromNPPProvider {
	if windowDays <= 0 {
		windowDays = 365
	}
	return &FromNPPProvider{
		FreshDigestibility:  fresh,
		DeadDigestibility:   dead,
		AttritionWindowDays: windowDays,
		averageAgeDays:      forage.Zero[forage.MassTag](),
	}
}

func (p *FromNPPProvider) Digestibility(liveMass, deadMass, nppToday forage.Mass) (forage.Fraction, error) {
	out := forage.Zero[forage.FractionTag]()
	newAverageAge := forage.Zero[forage.MassTag]()
	for _, t := range forage.Types {
		live, err := liveMass.Get(t)
		if err != nil {
			return forage.Fraction{}, err
		}
		npp, err := nppToday.Get(t)
		if err != nil {
			return forage.Fraction{}, err
		}
		prevAge, _ := p.averageAgeDays.Get(t)

		total := live + npp
		var age float64
		if total == 0 {
			age = prevAge
		} else {
			// existing pool ages by one day; new growth enters at age 0.
			age = ((prevAge + 1) * live) / total
		}
		if age > float64(p.AttritionWindowDays) {
			age = float64(p.AttritionWindowDays)
		}
		newAverageAge, err = newAverageAge.Set(t, age)
		if err != nil {
			return forage.Fraction{}, err
		}

		fraction := age / float64(p.AttritionWindowDays)
		freshD, _ := p.FreshDigestibility.Get(t)
		deadD, _ := p.DeadDigestibility.Get(t)
		d := freshD + (deadD-freshD)*fraction
		out, err = out.Set(t, d)
		if err != nil {
			return forage.Fraction{}, fmt.Errorf("digest.FromNPPProvider: %w", err)
		}
	}
	p.averageAgeDays = newAverageAge
	return out, nil
}

// NetEnergyConverter turns a digestibility fraction into net-energy
// content (MJ/kgDM).
type NetEnergyConverter struct {
	Model hft.NetEnergyModel
}

// Convert returns the net energy content for every forage type, given
// digestibility and the animal's digestion type.
func (c NetEnergyConverter) Convert(d forage.Fraction, digestion hft.DigestionType) (forage.EnergyContent, error) {
	if c.Model != hft.DefaultNetEnergy {
		return forage.EnergyContent{}, fmt.Errorf("digest: unknown net-energy model %v", c.Model)
	}
	out := forage.Zero[forage.EnergyContentTag]()
	for _, t := range forage.Types {
		digestibility, err := d.Get(t)
		if err != nil {
			return forage.EnergyContent{}, err
		}
		me := 15 * digestibility
		var ne float64
		switch digestion {
		case hft.Ruminant:
			ne = me * (0.503 + 0.019*me)
		case hft.HindgutFermenter:
			ne = me * (0.503 + 0.019*me) * 0.93
		default:
			return forage.EnergyContent{}, fmt.Errorf("digest: unknown digestion type %v", digestion)
		}
		out, err = out.Set(t, ne)
		if err != nil {
			return forage.EnergyContent{}, fmt.Errorf("digest.Convert: %w", err)
		}
	}
	return out, nil
}
