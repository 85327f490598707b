package simulate

import (
	"testing"

	"github.com/evoranch/fauna/feed"
	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/herbivore"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/population"
)

// fakeHabitat is a minimal in-memory Habitat for exercising the driver
// without a real vegetation model.
type fakeHabitat struct {
	mass          forage.Mass
	digestibility forage.Fraction
	nitrogen      forage.Fraction
	agg           string
	dead          bool
	excretedN     float64
}

func newFakeHabitat(grassKg, digestibility float64) *fakeHabitat {
	m, _ := forage.New[forage.MassTag](0)
	m, _ = m.Set(forage.Grass, grassKg)
	d, _ := forage.New[forage.FractionTag](0)
	d, _ = d.Set(forage.Grass, digestibility)
	n, _ := forage.New[forage.FractionTag](0.02)
	return &fakeHabitat{mass: m, digestibility: d, nitrogen: n, agg: "unit-1"}
}

func (f *fakeHabitat) AvailableForage() habitat.Forage {
	return habitat.Forage{Mass: f.mass, Digestibility: f.digestibility, NitrogenFractionOfMass: f.nitrogen}
}
func (f *fakeHabitat) Environment() habitat.Environment { return habitat.Environment{AirTemperatureC: 20} }
func (f *fakeHabitat) AggregationUnit() string          { return f.agg }
func (f *fakeHabitat) RemoveEatenForage(eaten forage.Mass) error {
	next, err := f.mass.Sub(eaten)
	if err != nil {
		return err
	}
	f.mass = next
	return nil
}
func (f *fakeHabitat) AddExcretedNitrogen(kg float64) { f.excretedN += kg }
func (f *fakeHabitat) IsDead() bool                   { return f.dead }
func (f *fakeHabitat) Kill()                          { f.dead = true }
func (f *fakeHabitat) InitDay(int) error              { return nil }

func testHFT(t *testing.T) *hft.HFT {
	t.Helper()
	h, err := hft.New(hft.HFT{
		Name:                          "test-grazer",
		BodyMassMaleAdult:             250,
		BodyMassFemaleAdult:           200,
		BirthMass:                     20,
		BirthBodyFatFraction:          0.05,
		MaxBodyFatFraction:            0.3,
		EmptyBodyFraction:             0.9,
		LifespanYears:                 15,
		PhysicalMaturityAgeMale:       600,
		PhysicalMaturityAgeFemale:     550,
		SexualMaturityAge:             400,
		MinimumViableDensityFraction:  0.05,
		EstablishmentDensity:          10,
		EstablishmentAgeRangeYears:    [2]int{1, 5},
		DietComposer:                  hft.PureGrazer,
		NetEnergyModel:                hft.DefaultNetEnergy,
		Digestion:                     hft.Ruminant,
		DigestiveLimit:                hft.IlliusGordon1992,
		IlliusGordonI:                 0.034,
		IlliusGordonJ:                 3.565,
		IlliusGordonK:                 0.077,
		ForageGrossEnergy:             18.5,
		ExpenditureComponents:         map[hft.ExpenditureComponentKind]bool{hft.Taylor1981: true},
		MortalityFactors:              map[hft.MortalityFactorKind]bool{},
		ReproductionModel:             hft.ReproductionConstMax,
		BreedingSeasonStartDay:        100,
		BreedingSeasonLengthDays:      90,
		MaxAnnualReproductiveIncrease: 1.0,
	})
	if err != nil {
		t.Fatalf("hft.New: %v", err)
	}
	return h
}

func TestDayAbundantGrassFeedsAndAges(t *testing.T) {
	h := testHFT(t)
	c, err := herbivore.New(h, hft.Female, 2*365, 1.0, 10.0)
	if err != nil {
		t.Fatalf("herbivore.New: %v", err)
	}
	p := population.New(h)
	if err := p.AddCohort(c); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}

	hab := newFakeHabitat(10000, 0.6)
	u, err := NewUnit(hab, []*population.Population{p})
	if err != nil {
		t.Fatalf("NewUnit: %v", err)
	}

	out, err := Day(u, 1, feed.Equally{})
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if out.ForageEaten.Sum() <= 0 {
		t.Error("expected positive forage eaten with abundant grass")
	}
	if c.AgeDays() != 2*365+1 {
		t.Errorf("AgeDays = %d, want %d", c.AgeDays(), 2*365+1)
	}
	if hab.excretedN <= 0 {
		t.Error("expected positive nitrogen excretion after a day of feeding")
	}
}

func TestDayScarcityNeverOverdrawsForage(t *testing.T) {
	h := testHFT(t)
	c1, _ := herbivore.New(h, hft.Female, 2*365, 1.0, 1.0)
	c2, _ := herbivore.New(h, hft.Male, 2*365, 1.0, 1.0)
	p := population.New(h)
	if err := p.AddCohort(c1); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}
	if err := p.AddCohort(c2); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}

	hab := newFakeHabitat(0.1, 0.6)
	u, _ := NewUnit(hab, []*population.Population{p})

	if _, err := Day(u, 1, feed.Equally{}); err != nil {
		t.Fatalf("Day: %v", err)
	}
	if hab.mass.Sum() < 0 {
		t.Error("available forage must never go negative")
	}
}

func TestNoHerbivoryDayMatchesHabitatExactly(t *testing.T) {
	h := testHFT(t)
	c, _ := herbivore.New(h, hft.Female, 2*365, 1.0, 10.0)
	p := population.New(h)
	if err := p.AddCohort(c); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}

	hab := newFakeHabitat(10000, 0.6)
	u, _ := NewUnit(hab, []*population.Population{p})

	out, err := NoHerbivoryDay(u, 1)
	if err != nil {
		t.Fatalf("NoHerbivoryDay: %v", err)
	}
	if out.ForageAvailable.Sum() != hab.mass.Sum() {
		t.Error("output forage must match habitat exactly with no herbivory")
	}
	if c.IndPerKm2() != 10.0 || c.AgeDays() != 2*365 {
		t.Error("population must not change with do_herbivores=false")
	}
	if hab.excretedN != 0 {
		t.Error("no nitrogen should flow with no herbivory")
	}
}

// constantHabitat resets its grass pool to the same mass at the start of
// every day, for scenario runs against an inexhaustible food supply.
type constantHabitat struct {
	fakeHabitat
	dailyMass forage.Mass
}

func newConstantHabitat(grassKg, digestibility float64) *constantHabitat {
	f := newFakeHabitat(grassKg, digestibility)
	return &constantHabitat{fakeHabitat: *f, dailyMass: f.mass}
}

func (c *constantHabitat) InitDay(int) error {
	c.mass = c.dailyMass
	return nil
}

func TestYearOfAbundanceSumsToAnnualReproductiveRate(t *testing.T) {
	h, err := hft.New(hft.HFT{
		Name:                          "immortal-grazer",
		BodyMassMaleAdult:             100,
		BodyMassFemaleAdult:           100,
		BirthMass:                     5,
		BirthBodyFatFraction:          0.05,
		MaxBodyFatFraction:            0.25,
		EmptyBodyFraction:             0.9,
		LifespanYears:                 100,
		PhysicalMaturityAgeMale:       600,
		PhysicalMaturityAgeFemale:     600,
		SexualMaturityAge:             500,
		MinimumViableDensityFraction:  0.05,
		EstablishmentDensity:          10,
		EstablishmentAgeRangeYears:    [2]int{1, 5},
		DietComposer:                  hft.PureGrazer,
		NetEnergyModel:                hft.DefaultNetEnergy,
		Digestion:                     hft.Ruminant,
		DigestiveLimit:                hft.IlliusGordon1992,
		IlliusGordonI:                 0.034,
		IlliusGordonJ:                 3.565,
		IlliusGordonK:                 0.077,
		ForageGrossEnergy:             18.5,
		ExpenditureComponents:         map[hft.ExpenditureComponentKind]bool{hft.Taylor1981: true},
		MortalityFactors:              map[hft.MortalityFactorKind]bool{},
		ReproductionModel:             hft.ReproductionConstMax,
		BreedingSeasonStartDay:        100,
		BreedingSeasonLengthDays:      90,
		MaxAnnualReproductiveIncrease: 1.0,
	})
	if err != nil {
		t.Fatalf("hft.New: %v", err)
	}

	females, err := herbivore.New(h, hft.Female, 2*365, 1.0, 10.0)
	if err != nil {
		t.Fatalf("herbivore.New: %v", err)
	}
	p := population.New(h)
	if err := p.AddCohort(females); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}

	hab := newConstantHabitat(10000, 0.6)
	u, err := NewUnit(hab, []*population.Population{p})
	if err != nil {
		t.Fatalf("NewUnit: %v", err)
	}
	for day := 0; day < 365; day++ {
		if _, err := Day(u, day, feed.Equally{}); err != nil {
			t.Fatalf("Day %d: %v", day, err)
		}
	}

	// No mortality: the starting females persist, plus one year's newborns
	// at 1.0 per female spread evenly over the 90-day breeding season.
	total := p.TotalDensity()
	if total < 10.0 {
		t.Errorf("TotalDensity = %v, want >= starting 10 with no mortality", total)
	}
	newborns := total - 10.0
	if newborns < 10.0*0.95 || newborns > 10.0*1.05 {
		t.Errorf("newborns over the year = %v, want 10 +/- 5%%", newborns)
	}
}

func TestStarvationCollapsePurgesPopulation(t *testing.T) {
	h, err := hft.New(hft.HFT{
		Name:                          "starving-grazer",
		BodyMassMaleAdult:             100,
		BodyMassFemaleAdult:           100,
		BirthMass:                     5,
		BirthBodyFatFraction:          0.05,
		MaxBodyFatFraction:            0.25,
		EmptyBodyFraction:             0.9,
		LifespanYears:                 100,
		PhysicalMaturityAgeMale:       600,
		PhysicalMaturityAgeFemale:     600,
		SexualMaturityAge:             500,
		MinimumViableDensityFraction:  0.05,
		EstablishmentDensity:          10,
		EstablishmentAgeRangeYears:    [2]int{1, 5},
		DietComposer:                  hft.PureGrazer,
		NetEnergyModel:                hft.DefaultNetEnergy,
		Digestion:                     hft.Ruminant,
		DigestiveLimit:                hft.IlliusGordon1992,
		IlliusGordonI:                 0.034,
		IlliusGordonJ:                 3.565,
		IlliusGordonK:                 0.077,
		ForageGrossEnergy:             18.5,
		ExpenditureComponents:         map[hft.ExpenditureComponentKind]bool{hft.Taylor1981: true},
		MortalityFactors:              map[hft.MortalityFactorKind]bool{hft.StarvationThreshold: true},
		StarvationThresholdFraction:   0.1,
		ReproductionModel:             hft.ReproductionConstMax,
		BreedingSeasonStartDay:        100,
		BreedingSeasonLengthDays:      90,
		MaxAnnualReproductiveIncrease: 1.0,
	})
	if err != nil {
		t.Fatalf("hft.New: %v", err)
	}

	c, err := herbivore.New(h, hft.Female, 2*365, 0.15, 10.0)
	if err != nil {
		t.Fatalf("herbivore.New: %v", err)
	}
	p := population.New(h)
	if err := p.AddCohort(c); err != nil {
		t.Fatalf("AddCohort: %v", err)
	}

	hab := newFakeHabitat(0, 0.6)
	u, err := NewUnit(hab, []*population.Population{p})
	if err != nil {
		t.Fatalf("NewUnit: %v", err)
	}
	for day := 0; day < 30; day++ {
		if _, err := Day(u, day, feed.Equally{}); err != nil {
			t.Fatalf("Day %d: %v", day, err)
		}
		if len(p.Cohorts()) == 0 {
			break
		}
	}
	if len(p.Cohorts()) != 0 {
		t.Errorf("expected population purged within 30 days of total starvation, still has %d cohorts (density %v)",
			len(p.Cohorts()), p.TotalDensity())
	}
}

func TestDayOnDeadHabitatFails(t *testing.T) {
	hab := newFakeHabitat(100, 0.5)
	hab.Kill()
	u, _ := NewUnit(hab, nil)
	if _, err := Day(u, 1, feed.Equally{}); err == nil {
		t.Error("expected error simulating a unit with a dead habitat")
	}
}
