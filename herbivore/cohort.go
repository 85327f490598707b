// Package herbivore implements the herbivore cohort: the main herbivore
// variant's state and per-day life-cycle update.
package herbivore

import (
	"errors"
	"fmt"

	"github.com/evoranch/fauna/demand"
	"github.com/evoranch/fauna/digest"
	"github.com/evoranch/fauna/energy"
	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/lifecycle"
)

// Sentinel logic-violation errors. These indicate a bug in the calling
// code, not bad input data.
var (
	ErrDead              = errors.New("herbivore: operation on a dead cohort")
	ErrIncompatibleMerge = errors.New("herbivore: cohorts are not merge-compatible")
)

// Interface is exposed to the feed distributor and the simulate-day
// driver.
type Interface interface {
	ForageDemands(available habitat.Forage, energyContent forage.EnergyContent) (forage.Mass, error)
	Eat(eaten forage.Mass, digestibility forage.Fraction, nitrogenFractionOfMass forage.Fraction) error
	SimulateDay(julianDay int, env habitat.Environment) (offspringIndPerKm2 float64, err error)
	IndPerKm2() float64
	BodyMass() float64
	KgPerKm2() float64
	HFT() *hft.HFT
	IsDead() bool
	Kill()
	TakeNitrogenExcreta() float64
}

// bodyConditionHistory is a fixed-capacity rolling average of daily body
// condition, used when an HFT is configured to reproduce off the moving
// average rather than today's instantaneous value.
type bodyConditionHistory struct {
	window []float64
	cap    int
	next   int
	filled bool
}

func newBodyConditionHistory(capDays int) *bodyConditionHistory {
	if capDays <= 0 {
		return nil
	}
	return &bodyConditionHistory{window: make([]float64, capDays), cap: capDays}
}

func (b *bodyConditionHistory) add(v float64) {
	b.window[b.next] = v
	b.next = (b.next + 1) % b.cap
	if b.next == 0 {
		b.filled = true
	}
}

func (b *bodyConditionHistory) average() float64 {
	n := b.cap
	if !b.filled {
		n = b.next
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += b.window[i]
	}
	return sum / float64(n)
}

// anabolismCoefficient and catabolismCoefficient are the MJ/kg costs of
// laying down and burning fat reserves, physiological constants shared
// by every HFT in this module (Blaxter 1989).
const (
	anabolismCoefficient  = 54.6 // MJ/kg, cost of fat synthesis
	catabolismCoefficient = 39.3 // MJ/kg, energy yield of fat combustion
)

// tissueNitrogenContent is the nitrogen fraction of herbivore body tissue
// (kgN/kg), returned to the habitat's nitrogen pool in full the moment a
// cohort's density reaches zero.
const tissueNitrogenContent = 0.03

// Cohort is an age-class of same-sex herbivores of one HFT; its state
// variables are cohort means.
type Cohort struct {
	hft *hft.HFT
	sex hft.Sex

	ageDays   int
	indPerKm2 float64
	budget    *energy.Budget

	bcHistory      *bodyConditionHistory
	breedingSeason lifecycle.BreedingSeason

	today      int
	demandCalc *demand.Calculator
	netEnergy  digest.NetEnergyConverter

	nitrogenExcretaKg float64
}

// New constructs an establishment cohort: age and body condition are
// given directly rather than derived from birth.
func New(h *hft.HFT, sex hft.Sex, ageDays int, bodyCondition, indPerKm2 float64) (*Cohort, error) {
	if h == nil {
		return nil, errors.New("herbivore.New: nil HFT")
	}
	if ageDays < 0 {
		return nil, fmt.Errorf("herbivore.New: age %d is negative", ageDays)
	}
	if indPerKm2 < 0 {
		return nil, fmt.Errorf("herbivore.New: ind_per_km2 %v is negative", indPerKm2)
	}
	if bodyCondition < 0 || bodyCondition > 1 {
		return nil, fmt.Errorf("herbivore.New: body condition %v out of [0,1]", bodyCondition)
	}
	maxFat := maxFatMass(h, sex, ageDays)
	budget, err := energy.New(anabolismCoefficient, catabolismCoefficient, maxFat*bodyCondition, maxFat, 0)
	if err != nil {
		return nil, fmt.Errorf("herbivore.New: %w", err)
	}
	season, err := lifecycle.NewBreedingSeason(h.BreedingSeasonStartDay, h.BreedingSeasonLengthDays)
	if err != nil {
		return nil, err
	}
	var history *bodyConditionHistory
	if h.ReproductionUsesMovingAverage {
		history = newBodyConditionHistory(h.BodyConditionWindowDays)
	}
	return &Cohort{
		hft:            h,
		sex:            sex,
		ageDays:        ageDays,
		indPerKm2:      indPerKm2,
		budget:         budget,
		bcHistory:      history,
		breedingSeason: season,
		demandCalc:     demand.New(h, sex),
		netEnergy:      digest.NetEnergyConverter{Model: h.NetEnergyModel},
	}, nil
}

// NewBorn constructs a newborn cohort at age 0, with fat mass derived
// from the HFT's BirthBodyFatFraction (a fraction of birth body mass,
// not of max fat mass; converted here).
func NewBorn(h *hft.HFT, sex hft.Sex, indPerKm2 float64) (*Cohort, error) {
	maxFat := maxFatMass(h, sex, 0)
	structural := structuralMassAtBirth(h)
	birthBodyCondition := 0.0
	if h.BirthBodyFatFraction > 0 && h.BirthBodyFatFraction < 1 && maxFat > 0 {
		birthFatMass := structural * h.BirthBodyFatFraction / (1 - h.BirthBodyFatFraction)
		birthBodyCondition = birthFatMass / maxFat
		if birthBodyCondition > 1 {
			birthBodyCondition = 1
		}
	}
	return New(h, sex, 0, birthBodyCondition, indPerKm2)
}

// HFT returns the cohort's functional type.
func (c *Cohort) HFT() *hft.HFT { return c.hft }

// Sex returns the cohort's sex.
func (c *Cohort) Sex() hft.Sex { return c.sex }

// AgeDays returns the cohort's age in days.
func (c *Cohort) AgeDays() int { return c.ageDays }

// AgeYears returns the cohort's age-year (AgeDays / 365).
func (c *Cohort) AgeYears() int { return c.ageDays / 365 }

// IndPerKm2 returns the current individual density.
func (c *Cohort) IndPerKm2() float64 { return c.indPerKm2 }

// IsDead reports whether the cohort's density has reached zero.
func (c *Cohort) IsDead() bool { return c.indPerKm2 == 0 }

// Kill marks the cohort dead by zeroing its density. Any remaining body
// tissue nitrogen is folded into the accumulated excreta so the caller's
// next TakeNitrogenExcreta picks it up; otherwise the unit's nitrogen
// balance would leak on every death.
func (c *Cohort) Kill() {
	if c.indPerKm2 == 0 {
		return
	}
	c.nitrogenExcretaKg += c.KgPerKm2() * tissueNitrogenContent
	c.indPerKm2 = 0
}

// BodyMass returns the current per-individual body mass in kg.
func (c *Cohort) BodyMass() float64 {
	return bodyMass(c.hft, c.sex, c.ageDays, c.budget.Fat())
}

// KgPerKm2 returns total biomass density (BodyMass * IndPerKm2).
func (c *Cohort) KgPerKm2() float64 {
	return c.BodyMass() * c.indPerKm2
}

// BodyCondition returns fat / max fat for today, the quantity the
// reproduction and mortality formulas in lifecycle treat as "body
// condition".
func (c *Cohort) BodyCondition() float64 {
	if c.budget.MaxFat() == 0 {
		return 0
	}
	return c.budget.Fat() / c.budget.MaxFat()
}

// ActualBodyFatFraction returns fat / (structural + fat): the animal's
// true physiological body-fat percentage, distinct from BodyCondition.
// Exposed for reporting (see output.Aggregator).
func (c *Cohort) ActualBodyFatFraction() float64 {
	return bodyFatFraction(c.hft, c.sex, c.ageDays, c.budget.Fat())
}

// TakeNitrogenExcreta returns and resets the accumulated nitrogen
// excretion.
func (c *Cohort) TakeNitrogenExcreta() float64 {
	n := c.nitrogenExcretaKg
	c.nitrogenExcretaKg = 0
	return n
}

// ForageDemands lazily initializes today's demand calculation (if not
// already done for c.today) and returns the kg/km² the whole cohort
// demands given its currently unmet per-individual energy needs.
func (c *Cohort) ForageDemands(available habitat.Forage, energyContent forage.EnergyContent) (forage.Mass, error) {
	if c.IsDead() {
		return forage.Mass{}, ErrDead
	}
	if !c.demandCalc.IsDayInitialized(c.today) {
		if err := c.demandCalc.InitToday(c.today, available, energyContent, c.BodyMass()); err != nil {
			return forage.Mass{}, err
		}
	}
	// Hunger is today's unmet needs plus whatever fat the budget can
	// still lay down; the anabolism term keeps the surplus within what
	// Metabolize accepts, and lets a lean animal rebuild its reserves.
	hunger := c.budget.Needs() + c.budget.MaxAnabolismToday()
	perIndividual, err := c.demandCalc.Demand(hunger, energyContent)
	if err != nil {
		return forage.Mass{}, err
	}
	return perIndividual.Scale(c.indPerKm2)
}

// Eat applies eaten forage, given in kg/km² for the whole cohort: the
// per-individual share is converted to net energy via digestibility and
// the HFT's digestion type and paid into the energy budget, the intake
// is recorded against today's remaining demand, and the ingested
// nitrogen (kgN/km²) accumulates for later excretion.
func (c *Cohort) Eat(eaten forage.Mass, digestibility forage.Fraction, nitrogenFractionOfMass forage.Fraction) error {
	if c.IsDead() {
		return ErrDead
	}
	netEnergyContent, err := c.netEnergy.Convert(digestibility, c.hft.Digestion)
	if err != nil {
		return err
	}
	perIndividual, err := eaten.Scale(1 / c.indPerKm2)
	if err != nil {
		return fmt.Errorf("herbivore.Eat: %w", err)
	}
	mj := 0.0
	nitrogen := 0.0
	for _, t := range forage.Types {
		kgInd, err := perIndividual.Get(t)
		if err != nil {
			return err
		}
		ec, err := netEnergyContent.Get(t)
		if err != nil {
			return err
		}
		mj += kgInd * ec
		kgKm2, err := eaten.Get(t)
		if err != nil {
			return err
		}
		nf, err := nitrogenFractionOfMass.Get(t)
		if err != nil {
			return err
		}
		nitrogen += kgKm2 * nf
	}
	if err := c.budget.Metabolize(mj); err != nil {
		return err
	}
	if err := c.demandCalc.AddEaten(perIndividual); err != nil {
		return err
	}
	c.nitrogenExcretaKg += nitrogen
	return nil
}

// SimulateDay advances the cohort by one day: settles yesterday's unmet
// energy needs against fat reserves, grows structural and maximum fat
// mass for the new age, adds today's expenditure as a new energy need,
// evaluates reproduction and mortality, and returns the individual
// density of offspring produced today (to be spun off into a new
// newborn cohort by the caller).
func (c *Cohort) SimulateDay(julianDay int, env habitat.Environment) (float64, error) {
	if c.IsDead() {
		return 0, ErrDead
	}
	if julianDay < 0 || julianDay > 365 {
		return 0, fmt.Errorf("herbivore.SimulateDay: julian day %d out of [0,365]", julianDay)
	}

	// Settle yesterday's leftover need by catabolizing fat before
	// today's needs accrue.
	c.budget.Catabolize()

	c.ageDays++
	c.today = julianDay

	maxFat := maxFatMass(c.hft, c.sex, c.ageDays)
	if maxFat < c.budget.Fat() {
		// Structural-mass rounding can make max fat dip fractionally
		// below current fat at a maturity boundary; never shrink below
		// what is already carried.
		maxFat = c.budget.Fat()
	}
	if err := c.budget.SetMaxFatMass(maxFat, 0); err != nil {
		return 0, fmt.Errorf("herbivore.SimulateDay: %w", err)
	}

	expenditure := dailyExpenditure(c.hft, c.BodyMass(), env)
	if err := c.budget.AddNeeds(expenditure); err != nil {
		return 0, fmt.Errorf("herbivore.SimulateDay: %w", err)
	}

	bodyCondition := c.BodyCondition()
	reproCondition := bodyCondition
	if c.bcHistory != nil {
		c.bcHistory.add(bodyCondition)
		reproCondition = c.bcHistory.average()
	}

	offspringRate, err := lifecycle.DailyOffspringRate(c.hft, c.breedingSeason, julianDay, c.sex, c.ageDays, reproCondition)
	if err != nil {
		return 0, fmt.Errorf("herbivore.SimulateDay: %w", err)
	}
	offspring := offspringRate * c.indPerKm2

	outcome, err := lifecycle.ApplyMortality(c.hft, c.ageDays, bodyCondition)
	if err != nil {
		return 0, fmt.Errorf("herbivore.SimulateDay: %w", err)
	}
	if outcome.ShiftedBodyCondition != bodyCondition {
		if err := c.budget.ForceBodyCondition(outcome.ShiftedBodyCondition); err != nil {
			return 0, fmt.Errorf("herbivore.SimulateDay: %w", err)
		}
	}
	if outcome.SurvivalFraction <= 0 {
		c.Kill()
	} else {
		c.indPerKm2 *= outcome.SurvivalFraction
	}

	return offspring, nil
}

// constantMembersMatch reports whether c and other share the HFT
// (identity), sex and breeding season: the merge-compatibility
// precondition.
func (c *Cohort) constantMembersMatch(other *Cohort) bool {
	return c.hft == other.hft && c.sex == other.sex && c.breedingSeason == other.breedingSeason
}

// Merge folds other into c: requires equal HFT, sex and age-year.
// Energy budgets merge weighted by density; densities sum; other is
// left at density zero for the next purge to remove.
func (c *Cohort) Merge(other *Cohort) error {
	if !c.constantMembersMatch(other) {
		return ErrIncompatibleMerge
	}
	if c.AgeYears() != other.AgeYears() {
		return fmt.Errorf("%w: age-year %d != %d", ErrIncompatibleMerge, c.AgeYears(), other.AgeYears())
	}
	merged, err := c.budget.Merge(other.budget, c.indPerKm2, other.indPerKm2)
	if err != nil {
		return fmt.Errorf("herbivore.Merge: %w", err)
	}
	c.budget = merged
	c.indPerKm2 += other.indPerKm2
	other.indPerKm2 = 0
	return nil
}
