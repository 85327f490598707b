package world

import (
	"strings"
	"testing"

	"github.com/evoranch/fauna/date"
	"github.com/evoranch/fauna/feed"
	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/output"
)

type fakeHabitat struct {
	mass          forage.Mass
	digestibility forage.Fraction
	nitrogen      forage.Fraction
	agg           string
	dead          bool
}

func newFakeHabitat(agg string, grassKg, digestibility float64) *fakeHabitat {
	m, _ := forage.New[forage.MassTag](0)
	m, _ = m.Set(forage.Grass, grassKg)
	d, _ := forage.New[forage.FractionTag](0)
	d, _ = d.Set(forage.Grass, digestibility)
	n, _ := forage.New[forage.FractionTag](0.02)
	return &fakeHabitat{mass: m, digestibility: d, nitrogen: n, agg: agg}
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
func (f *fakeHabitat) AddExcretedNitrogen(kg float64) {}
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

func TestCreateSimulationUnitRejectsNilHabitat(t *testing.T) {
	w := New([]*hft.HFT{testHFT(t)}, Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily}, nil)
	if err := w.CreateSimulationUnit(nil); err == nil {
		t.Fatal("expected error for nil habitat")
	}
}

func TestSimulateDayRequiresSuccessiveDates(t *testing.T) {
	w := New([]*hft.HFT{testHFT(t)}, Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily}, nil)
	if err := w.CreateSimulationUnit(newFakeHabitat("unit-1", 10000, 0.6)); err != nil {
		t.Fatalf("CreateSimulationUnit: %v", err)
	}

	d0, _ := date.New(0, 2020)
	if err := w.SimulateDay(d0, SimDayOptions{DoHerbivores: true}); err != nil {
		t.Fatalf("SimulateDay day 0: %v", err)
	}

	d5, _ := date.New(5, 2020)
	if err := w.SimulateDay(d5, SimDayOptions{DoHerbivores: true}); err == nil {
		t.Fatal("expected error for non-successive date")
	}
	if err := w.SimulateDay(d5, SimDayOptions{DoHerbivores: true, ResetDate: true}); err != nil {
		t.Fatalf("SimulateDay with ResetDate: %v", err)
	}
}

func TestSimulateDayDropsDeadHabitatUnits(t *testing.T) {
	w := New([]*hft.HFT{testHFT(t)}, Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily}, nil)
	hab := newFakeHabitat("unit-1", 10000, 0.6)
	if err := w.CreateSimulationUnit(hab); err != nil {
		t.Fatalf("CreateSimulationUnit: %v", err)
	}
	hab.Kill()

	d0, _ := date.New(0, 2020)
	if err := w.SimulateDay(d0, SimDayOptions{DoHerbivores: true}); err != nil {
		t.Fatalf("SimulateDay: %v", err)
	}
	if len(w.Units()) != 0 {
		t.Errorf("len(Units()) = %d, want 0 after dropping dead habitat", len(w.Units()))
	}
}

func TestSimulateDayFlushesWriterOnInterval(t *testing.T) {
	var buf strings.Builder
	w := New([]*hft.HFT{testHFT(t)},
		Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily},
		output.NewTextTables(&buf))
	if err := w.CreateSimulationUnit(newFakeHabitat("unit-1", 10000, 0.6)); err != nil {
		t.Fatalf("CreateSimulationUnit: %v", err)
	}

	d0, _ := date.New(0, 2020)
	if err := w.SimulateDay(d0, SimDayOptions{DoHerbivores: true}); err != nil {
		t.Fatalf("SimulateDay: %v", err)
	}
	if !strings.Contains(buf.String(), "unit-1") {
		t.Error("expected a flushed datapoint row for unit-1 after one daily interval")
	}
}

func TestSimulateDayReestablishesEmptyPopulation(t *testing.T) {
	h := testHFT(t)
	w := New([]*hft.HFT{h},
		Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily, EstablishmentIntervalDays: 1},
		nil)
	if err := w.CreateSimulationUnit(newFakeHabitat("unit-1", 10000, 0.6)); err != nil {
		t.Fatalf("CreateSimulationUnit: %v", err)
	}

	u := w.Units()[0]
	for _, p := range u.Populations {
		for _, c := range p.Cohorts() {
			c.Kill()
		}
	}

	d0, _ := date.New(0, 2020)
	if err := w.SimulateDay(d0, SimDayOptions{DoHerbivores: true}); err != nil {
		t.Fatalf("SimulateDay: %v", err)
	}

	u = w.Units()[0]
	for _, p := range u.Populations {
		if p.TotalDensity() <= 0 {
			t.Error("expected population to be re-established after going empty")
		}
	}
}

func TestSimulateDayParallelMatchesSequentialUnitCount(t *testing.T) {
	w := New([]*hft.HFT{testHFT(t)}, Parameters{ForageDistribution: feed.Equally{}, OutputInterval: output.Daily}, nil)
	if err := w.CreateSimulationUnit(newFakeHabitat("unit-1", 10000, 0.6)); err != nil {
		t.Fatalf("CreateSimulationUnit unit-1: %v", err)
	}
	if err := w.CreateSimulationUnit(newFakeHabitat("unit-2", 10000, 0.6)); err != nil {
		t.Fatalf("CreateSimulationUnit unit-2: %v", err)
	}

	d0, _ := date.New(0, 2020)
	if err := w.SimulateDayParallel(d0, SimDayOptions{DoHerbivores: true}); err != nil {
		t.Fatalf("SimulateDayParallel: %v", err)
	}
	if len(w.Units()) != 2 {
		t.Errorf("len(Units()) = %d, want 2", len(w.Units()))
	}
}
