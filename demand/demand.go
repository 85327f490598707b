// Package demand implements the per-herbivore forage-demand calculator: a
// stateful helper that, once initialized for the day, turns an energy
// need into the kg of forage to eat, honouring digestive and foraging
// limits and the preferred diet composition.
package demand

import (
	"errors"
	"fmt"

	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/limits"
)

// Sentinel logic-violation errors. These indicate a bug in the calling
// code, not bad input data.
var (
	// ErrNotInitialized is returned by Demand or AddEaten when called
	// before InitToday for the current day.
	ErrNotInitialized = errors.New("demand: InitToday has not been called for today")
	// ErrEatenExceedsMaxIntake is returned by AddEaten when the caller
	// reports eating more than the remaining max intake allows (beyond
	// the 0.1% rounding tolerance).
	ErrEatenExceedsMaxIntake = errors.New("demand: eaten exceeds remaining max intake")
)

const eatenTolerance = 1.001

// Calculator is a stateful per-herbivore forage-demand helper. Construct
// once per herbivore; call InitToday once per simulated day before
// calling Demand or AddEaten.
type Calculator struct {
	hft *hft.HFT
	sex hft.Sex

	initialized     bool
	day             int
	dietComposition forage.Fraction
	maxIntake       forage.Mass // remaining today, decremented by AddEaten
}

// New constructs a Calculator for one herbivore of the given HFT and sex.
func New(h *hft.HFT, sex hft.Sex) *Calculator {
	return &Calculator{hft: h, sex: sex}
}

// dietComposition returns the diet-composition fractions for the
// configured DietComposer. Only PureGrazer is implemented; hft.New
// already rejects any other tag at HFT-construction time, so this never
// sees an unknown tag in practice.
func dietComposition(h *hft.HFT) (forage.Fraction, error) {
	switch h.DietComposer {
	case hft.PureGrazer:
		f := forage.Zero[forage.FractionTag]()
		f, err := f.Set(forage.Grass, 1.0)
		if err != nil {
			return forage.Fraction{}, err
		}
		return f, nil
	default:
		return forage.Fraction{}, fmt.Errorf("demand: unimplemented diet composer %v", h.DietComposer)
	}
}

// IsDayInitialized reports whether InitToday has been called for day.
func (c *Calculator) IsDayInitialized(day int) bool {
	return c.initialized && c.day == day
}

// InitToday computes and caches today's diet composition and per-type max
// intake. available is the habitat's current forage snapshot;
// energyContent is today's net-energy content per forage type;
// bodymass is the herbivore's current body mass in kg.
func (c *Calculator) InitToday(day int, available habitat.Forage, energyContent forage.EnergyContent, bodymass float64) error {
	if day < 0 || day > 365 {
		return fmt.Errorf("demand.InitToday: day %d out of [0,365]", day)
	}
	if bodymass <= 0 {
		return fmt.Errorf("demand.InitToday: bodymass %v must be > 0", bodymass)
	}

	diet, err := dietComposition(c.hft)
	if err != nil {
		return err
	}

	digestibility, err := available.Digestibility.Get(forage.Grass)
	if err != nil {
		return err
	}
	grassEnergyContent, err := energyContent.Get(forage.Grass)
	if err != nil {
		return err
	}

	digestiveKg, err := limits.DigestiveLimitKg(c.hft, c.sex, bodymass, digestibility, grassEnergyContent)
	if err != nil {
		return fmt.Errorf("demand.InitToday: %w", err)
	}
	digestiveKg = limits.ClampInfinity(digestiveKg)

	availableGrassKg, err := available.Mass.Get(forage.Grass)
	if err != nil {
		return err
	}
	foragingKg := limits.ForagingLimitKg(c.hft, availableGrassKg, digestiveKg)

	maxIntake := forage.Zero[forage.MassTag]()
	for _, t := range forage.Types {
		var capKg float64
		if t == forage.Grass {
			capKg = minFloat(digestiveKg, foragingKg)
		} else {
			capKg = 0 // no diet composer in this module produces non-grass demand
		}
		maxIntake, err = maxIntake.Set(t, capKg)
		if err != nil {
			return fmt.Errorf("demand.InitToday: %w", err)
		}
	}

	// The general functional response applies on top of the combined
	// limit, only on the grass component. A zero asymptote stays zero
	// without going through the response curve.
	if c.hft.ForagingLimits[hft.GeneralFunctionalResponse] {
		grassCap, _ := maxIntake.Get(forage.Grass)
		if grassCap > 0 {
			adjusted := limits.GeneralFunctionalResponseKg(c.hft, availableGrassKg, grassCap)
			maxIntake, err = maxIntake.Set(forage.Grass, adjusted)
			if err != nil {
				return fmt.Errorf("demand.InitToday: %w", err)
			}
		}
	}

	c.day = day
	c.dietComposition = diet
	c.maxIntake = maxIntake
	c.initialized = true
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Demand returns the kg/ind to eat today given energyNeeds (MJ). It finds
// the forage type where the preferred diet composition is most
// constrained by availability, scales every type's max intake to that
// limiting ratio so the preferred energy-ratio is preserved, reduces to
// energyNeeds if that is smaller, then converts back to kg.
func (c *Calculator) Demand(energyNeeds float64, energyContent forage.EnergyContent) (forage.Mass, error) {
	if !c.initialized {
		return forage.Mass{}, ErrNotInitialized
	}
	if energyNeeds < 0 {
		return forage.Mass{}, fmt.Errorf("demand.Demand: energy needs %v is negative", energyNeeds)
	}
	zero := forage.Zero[forage.MassTag]()
	if energyNeeds == 0 {
		return zero, nil
	}

	maxEnergyIntake := forage.Zero[forage.EnergyTag]()
	maxEnergySum := 0.0
	for _, t := range forage.Types {
		kg, _ := c.maxIntake.Get(t)
		ec, err := energyContent.Get(t)
		if err != nil {
			return forage.Mass{}, err
		}
		mj := kg * ec
		maxEnergyIntake, err = maxEnergyIntake.Set(t, mj)
		if err != nil {
			return forage.Mass{}, err
		}
		maxEnergySum += mj
	}
	if maxEnergySum == 0 {
		return zero, nil
	}

	minFraction := -1.0
	for _, t := range forage.Types {
		dietFrac, _ := c.dietComposition.Get(t)
		if dietFrac <= 0 {
			continue
		}
		mj, _ := maxEnergyIntake.Get(t)
		frac := (dietFrac * maxEnergySum) / mj
		if minFraction < 0 || frac < minFraction {
			minFraction = frac
		}
	}
	if minFraction < 0 {
		return forage.Mass{}, errors.New("demand.Demand: no forage type has positive diet composition")
	}

	maxEnergyComposed := forage.Zero[forage.EnergyTag]()
	composedSum := 0.0
	for _, t := range forage.Types {
		dietFrac, _ := c.dietComposition.Get(t)
		v := maxEnergySum * minFraction * dietFrac
		var err error
		maxEnergyComposed, err = maxEnergyComposed.Set(t, v)
		if err != nil {
			return forage.Mass{}, err
		}
		composedSum += v
	}
	if composedSum == 0 {
		return zero, nil
	}

	energyReduction := 1.0
	if energyNeeds/composedSum < 1 {
		energyReduction = energyNeeds / composedSum
	}

	out := forage.Zero[forage.MassTag]()
	for _, t := range forage.Types {
		mj, _ := maxEnergyComposed.Get(t)
		actualMJ := mj * energyReduction
		ec, err := energyContent.Get(t)
		if err != nil {
			return forage.Mass{}, err
		}
		var kg float64
		if ec > 0 {
			kg = actualMJ / ec
		}
		available, _ := c.maxIntake.Get(t)
		if kg > available {
			kg = available
		}
		out, err = out.Set(t, kg)
		if err != nil {
			return forage.Mass{}, err
		}
	}
	return out, nil
}

// AddEaten decrements the remaining max intake by eaten, failing if eaten
// exceeds the remaining budget beyond a 0.1% tolerance.
func (c *Calculator) AddEaten(eaten forage.Mass) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	next := forage.Zero[forage.MassTag]()
	for _, t := range forage.Types {
		remaining, _ := c.maxIntake.Get(t)
		e, err := eaten.Get(t)
		if err != nil {
			return err
		}
		if e > remaining*eatenTolerance {
			return fmt.Errorf("%w: %v (forage type %v) exceeds remaining %v", ErrEatenExceedsMaxIntake, e, t, remaining)
		}
		left := remaining - e
		if left < 0 {
			left = 0
		}
		next, err = next.Set(t, left)
		if err != nil {
			return err
		}
	}
	c.maxIntake = next
	return nil
}

// MaxIntakeAsTotalMass converts an energy-proportion vector summing to
// ~1 into an absolute mass, scaling by kgTotal and energyContent.
func MaxIntakeAsTotalMass(mjProportions forage.Fraction, energyContent forage.EnergyContent, kgTotal float64) (forage.Mass, error) {
	if kgTotal < 0 {
		return forage.Mass{}, fmt.Errorf("demand.MaxIntakeAsTotalMass: kgTotal %v is negative", kgTotal)
	}
	zero := forage.Zero[forage.MassTag]()
	if kgTotal == 0 {
		return zero, nil
	}
	sum := mjProportions.Sum()
	if sum < 0.999 || sum > 1.001 {
		return forage.Mass{}, fmt.Errorf("demand.MaxIntakeAsTotalMass: proportions sum to %v, want ~1.0", sum)
	}

	massProportions := forage.Zero[forage.FractionTag]()
	massSum := 0.0
	rawMass := make(map[forage.Type]float64, len(forage.Types))
	for _, t := range forage.Types {
		p, _ := mjProportions.Get(t)
		ec, err := energyContent.Get(t)
		if err != nil {
			return forage.Mass{}, err
		}
		var kgShare float64
		if ec > 0 {
			kgShare = p / ec
		}
		rawMass[t] = kgShare
		massSum += kgShare
	}
	if massSum == 0 {
		return zero, nil
	}
	for _, t := range forage.Types {
		var err error
		massProportions, err = massProportions.Set(t, rawMass[t]/massSum)
		if err != nil {
			return forage.Mass{}, err
		}
	}
	return forage.FractionsToMass(massProportions, kgTotal)
}
