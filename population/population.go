// Package population implements the cohort population container: one
// population per herbivore functional type, owning an ordered list of
// cohorts and the establishment/offspring/purge operations that keep at
// most one living cohort per (sex, age-year) pair.
package population

import (
	"errors"
	"fmt"

	"github.com/evoranch/fauna/herbivore"
	"github.com/evoranch/fauna/hft"
)

// Sentinel logic-violation errors. These indicate a bug in the calling
// code, not bad input data.
var (
	// ErrAlreadyEstablished is returned by Establish when the population
	// is non-empty.
	ErrAlreadyEstablished = errors.New("population: already established")
)

// Population owns the cohorts of one HFT. All cohorts share the HFT;
// invariants (at most one living cohort per sex/age-year) are maintained
// by CreateOffspring and are the caller's responsibility otherwise.
type Population struct {
	hft     *hft.HFT
	cohorts []*herbivore.Cohort
}

// New constructs an empty population for h.
func New(h *hft.HFT) *Population {
	return &Population{hft: h}
}

// HFT returns the population's functional type.
func (p *Population) HFT() *hft.HFT { return p.hft }

// AddCohort appends an already-constructed cohort of this population's
// HFT: the entry point for seeding a population with a starting state
// (e.g. "10 ind/km², age 2 years" scenarios) that Establish's uniform
// age/sex spread cannot express. The caller is responsible for the
// at-most-one-living-cohort-per-(sex,age-year) invariant when seeding
// more than one cohort this way.
func (p *Population) AddCohort(c *herbivore.Cohort) error {
	if c.HFT() != p.hft {
		return fmt.Errorf("population.AddCohort: cohort HFT does not match population HFT %q", p.hft.Name)
	}
	p.cohorts = append(p.cohorts, c)
	return nil
}

// Cohorts returns the current cohort list. The returned slice is owned
// by the population; callers must not retain it across a call that
// mutates the population.
func (p *Population) Cohorts() []*herbivore.Cohort { return p.cohorts }

// IsEmpty reports whether the population has no cohorts at all (not
// merely no living ones).
func (p *Population) IsEmpty() bool { return len(p.cohorts) == 0 }

// TotalDensity sums IndPerKm2 across every cohort, living or dead.
func (p *Population) TotalDensity() float64 {
	total := 0.0
	for _, c := range p.cohorts {
		total += c.IndPerKm2()
	}
	return total
}

// Establish fails if the population is non-empty; otherwise it creates,
// for each integer age in the HFT's establishment age range and each
// sex, a cohort whose summed density across ages and sexes equals the
// HFT's establishment density.
func (p *Population) Establish() error {
	if !p.IsEmpty() {
		return ErrAlreadyEstablished
	}
	lo, hi := p.hft.EstablishmentAgeRangeYears[0], p.hft.EstablishmentAgeRangeYears[1]
	ageYears := hi - lo + 1
	if ageYears <= 0 {
		return fmt.Errorf("population.Establish: invalid establishment age range [%d,%d]", lo, hi)
	}
	densityPerAgeSex := p.hft.EstablishmentDensity / float64(ageYears) / 2
	for age := lo; age <= hi; age++ {
		ageDays := age*365 + 182 // mid-year age in days, an arbitrary but stable representative day
		for _, sex := range []hft.Sex{hft.Female, hft.Male} {
			c, err := herbivore.New(p.hft, sex, ageDays, 1.0, densityPerAgeSex)
			if err != nil {
				return fmt.Errorf("population.Establish: %w", err)
			}
			p.cohorts = append(p.cohorts, c)
		}
	}
	return nil
}

// findAgeZero returns the living age-year-0 cohort of sex, if one
// exists. Matching on age-year, not age-in-days, lets newborns from
// later in the year join the cohort born earlier; the existing cohort's
// age-in-days is preserved by the merge.
func (p *Population) findAgeZero(sex hft.Sex) *herbivore.Cohort {
	for _, c := range p.cohorts {
		if c.Sex() == sex && c.AgeYears() == 0 && !c.IsDead() {
			return c
		}
	}
	return nil
}

// CreateOffspring splits indPerKm2 evenly by sex; for each sex, merges
// into the existing living age-0 cohort if one exists, else appends a
// new newborn cohort. indPerKm2 must be non-negative.
func (p *Population) CreateOffspring(indPerKm2 float64) error {
	if indPerKm2 < 0 {
		return fmt.Errorf("population.CreateOffspring: %v is negative", indPerKm2)
	}
	if indPerKm2 == 0 {
		return nil
	}
	half := indPerKm2 / 2
	for _, sex := range []hft.Sex{hft.Female, hft.Male} {
		if existing := p.findAgeZero(sex); existing != nil {
			newborn, err := herbivore.NewBorn(p.hft, sex, half)
			if err != nil {
				return fmt.Errorf("population.CreateOffspring: %w", err)
			}
			if err := existing.Merge(newborn); err != nil {
				return fmt.Errorf("population.CreateOffspring: %w", err)
			}
			continue
		}
		newborn, err := herbivore.NewBorn(p.hft, sex, half)
		if err != nil {
			return fmt.Errorf("population.CreateOffspring: %w", err)
		}
		p.cohorts = append(p.cohorts, newborn)
	}
	return nil
}

// KillNonviable marks every cohort dead if total density has fallen
// below MinimumViableDensityFraction * EstablishmentDensity.
func (p *Population) KillNonviable() {
	threshold := p.hft.MinimumViableDensityFraction * p.hft.EstablishmentDensity
	if p.TotalDensity() >= threshold {
		return
	}
	for _, c := range p.cohorts {
		c.Kill()
	}
}

// PurgeOfDead removes every cohort with zero density. Callers must
// harvest any residual state (e.g. tissue nitrogen) before calling this.
func (p *Population) PurgeOfDead() {
	live := p.cohorts[:0]
	for _, c := range p.cohorts {
		if !c.IsDead() {
			live = append(live, c)
		}
	}
	p.cohorts = live
}

// FindCohort returns the living cohort matching sex and ageYears, or nil
// if none exists.
func (p *Population) FindCohort(sex hft.Sex, ageYears int) *herbivore.Cohort {
	for _, c := range p.cohorts {
		if c.Sex() == sex && c.AgeYears() == ageYears && !c.IsDead() {
			return c
		}
	}
	return nil
}
