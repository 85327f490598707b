// Package demohabitat implements a standalone, logistic-growth grass
// habitat for running faunasim without a host vegetation model.
package demohabitat

import "fmt"

// daysInMonth is a fixed non-leap-year month-length table; month index
// and day-of-month come from a simple running count of julian day, not a
// full calendar (this package only needs which of 12 recycled monthly
// rate slots applies).
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// monthOfJulianDay returns which month (0-based) julianDay falls in,
// using daysInMonth. A leap day (365) shares December's slot.
func monthOfJulianDay(julianDay int) int {
	day := julianDay
	if day > 364 {
		day = 364
	}
	month := 0
	for day >= daysInMonth[month] {
		day -= daysInMonth[month]
		month++
	}
	return month
}

// GrassParameters configures one LogisticGrass instance. Growth and
// decay rates are given as one value per month; when fewer than 12 are
// given, the later months recycle the earlier values (index modulo
// length). Digestibility is described by the live and dead endpoint
// values; how they combine into the digestibility the habitat reports
// depends on the digestibility model the habitat is constructed with.
type GrassParameters struct {
	FoliarCover            float64   // fraction, 0-1
	InitialMassKgPerKm2    float64   // must be < SaturationKgPerKm2
	ReserveKgPerKm2        float64   // ungrazable floor, never offered to herbivores
	SaturationKgPerKm2     float64   // carrying capacity
	LiveDigestibility      float64   // fraction, 0-1, fresh growth
	DeadDigestibility      float64   // fraction, 0-1, fully senesced material
	DecayRateByMonth       []float64 // day^-1, one or more entries
	GrowthRateByMonth      []float64 // day^-1, one or more entries
	NitrogenFractionOfMass float64   // fraction of dry mass that is nitrogen
}

// Validate checks GrassParameters for internal consistency.
func (p GrassParameters) Validate() error {
	if p.SaturationKgPerKm2 <= 0 {
		return fmt.Errorf("demohabitat: SaturationKgPerKm2 must be > 0")
	}
	if p.InitialMassKgPerKm2 < 0 || p.InitialMassKgPerKm2 > p.SaturationKgPerKm2 {
		return fmt.Errorf("demohabitat: InitialMassKgPerKm2 must be in [0, SaturationKgPerKm2]")
	}
	if p.ReserveKgPerKm2 < 0 {
		return fmt.Errorf("demohabitat: ReserveKgPerKm2 must be >= 0")
	}
	if p.FoliarCover < 0 || p.FoliarCover > 1 {
		return fmt.Errorf("demohabitat: FoliarCover must be in [0,1]")
	}
	if p.LiveDigestibility < 0 || p.LiveDigestibility > 1 {
		return fmt.Errorf("demohabitat: LiveDigestibility must be in [0,1]")
	}
	if p.DeadDigestibility < 0 || p.DeadDigestibility > p.LiveDigestibility {
		return fmt.Errorf("demohabitat: DeadDigestibility must be in [0, LiveDigestibility]")
	}
	if len(p.DecayRateByMonth) == 0 || len(p.GrowthRateByMonth) == 0 {
		return fmt.Errorf("demohabitat: DecayRateByMonth and GrowthRateByMonth each need at least one entry")
	}
	return nil
}

// LogisticGrass models a grass sward as a live pool growing logistically
// toward SaturationKgPerKm2 and a dead pool fed by senescence, with both
// monthly rates recycled from the parameter vectors. Senescence moves
// live mass into the dead pool; the dead pool itself disappears at the
// same rate (litterfall).
type LogisticGrass struct {
	settings            GrassParameters
	liveKgPerKm2        float64
	deadKgPerKm2        float64
	growthTodayKgPerKm2 float64 // new growth from the most recent GrowDaily call
}

// NewLogisticGrass validates settings and constructs a grass pool seeded
// at its initial mass, all of it live.
func NewLogisticGrass(settings GrassParameters) (*LogisticGrass, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &LogisticGrass{settings: settings, liveKgPerKm2: settings.InitialMassKgPerKm2}, nil
}

func recycle(values []float64, month int) float64 {
	return values[month%len(values)]
}

// GrowDaily applies one day of logistic growth, senescence and
// litterfall for julianDay's month, clipping total mass to
// [0, SaturationKgPerKm2].
func (g *LogisticGrass) GrowDaily(julianDay int) error {
	if julianDay < 0 || julianDay > 365 {
		return fmt.Errorf("demohabitat.GrowDaily: julian day %d out of [0,365]", julianDay)
	}
	month := monthOfJulianDay(julianDay)
	growthRate := recycle(g.settings.GrowthRateByMonth, month)
	decayRate := recycle(g.settings.DecayRateByMonth, month)

	saturation := g.settings.SaturationKgPerKm2
	total := g.liveKgPerKm2 + g.deadKgPerKm2
	growth := growthRate * g.liveKgPerKm2 * (1 - total/saturation)
	if growth < 0 {
		growth = 0
	}
	senesced := decayRate * g.liveKgPerKm2
	litterfall := decayRate * g.deadKgPerKm2

	g.liveKgPerKm2 += growth - senesced
	g.deadKgPerKm2 += senesced - litterfall
	if g.liveKgPerKm2 < 0 {
		g.liveKgPerKm2 = 0
	}
	if g.deadKgPerKm2 < 0 {
		g.deadKgPerKm2 = 0
	}
	if g.liveKgPerKm2+g.deadKgPerKm2 > saturation {
		g.liveKgPerKm2 = saturation - g.deadKgPerKm2
	}
	g.growthTodayKgPerKm2 = growth
	return nil
}

// LiveMassKgPerKm2 is the standing live (green) grass mass.
func (g *LogisticGrass) LiveMassKgPerKm2() float64 { return g.liveKgPerKm2 }

// DeadMassKgPerKm2 is the standing dead grass mass.
func (g *LogisticGrass) DeadMassKgPerKm2() float64 { return g.deadKgPerKm2 }

// GrowthTodayKgPerKm2 is the new growth from the most recent GrowDaily
// call: the sward's net primary productivity for that day.
func (g *LogisticGrass) GrowthTodayKgPerKm2() float64 { return g.growthTodayKgPerKm2 }

// TotalMassKgPerKm2 is live plus dead standing mass, including the
// ungrazable reserve.
func (g *LogisticGrass) TotalMassKgPerKm2() float64 { return g.liveKgPerKm2 + g.deadKgPerKm2 }

// AvailableMassKgPerKm2 is the mass herbivores may actually graze: total
// standing mass less the ungrazable reserve, floored at zero.
func (g *LogisticGrass) AvailableMassKgPerKm2() float64 {
	available := g.TotalMassKgPerKm2() - g.settings.ReserveKgPerKm2
	if available < 0 {
		return 0
	}
	return available
}

// RemoveEaten subtracts eaten mass from the grazable pool, drawing down
// live and dead in proportion to their standing shares; the reserve
// itself is never touched by grazing.
func (g *LogisticGrass) RemoveEaten(eatenKgPerKm2 float64) error {
	if eatenKgPerKm2 < 0 {
		return fmt.Errorf("demohabitat.RemoveEaten: negative amount %v", eatenKgPerKm2)
	}
	if eatenKgPerKm2 > g.AvailableMassKgPerKm2()+1e-6 {
		return fmt.Errorf("demohabitat.RemoveEaten: %v exceeds available %v", eatenKgPerKm2, g.AvailableMassKgPerKm2())
	}
	total := g.TotalMassKgPerKm2()
	if total == 0 {
		return nil
	}
	g.liveKgPerKm2 -= eatenKgPerKm2 * g.liveKgPerKm2 / total
	g.deadKgPerKm2 -= eatenKgPerKm2 * g.deadKgPerKm2 / total
	if g.liveKgPerKm2 < 0 {
		g.liveKgPerKm2 = 0
	}
	if g.deadKgPerKm2 < 0 {
		g.deadKgPerKm2 = 0
	}
	return nil
}

// FoliarCover returns the configured foliar percentage cover.
func (g *LogisticGrass) FoliarCover() float64 { return g.settings.FoliarCover }

// NitrogenFractionOfMass returns the configured nitrogen content.
func (g *LogisticGrass) NitrogenFractionOfMass() float64 { return g.settings.NitrogenFractionOfMass }
