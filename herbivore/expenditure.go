package herbivore

import (
	"math"

	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
)

// wattsToMJPerDay converts a continuous power draw in watts to MJ/day
// (1 W = 86400 J/day = 0.0864 MJ/day).
const wattsToMJPerDay = 0.0864

// taylor1981BMR is the Taylor (1981) basal-metabolic-rate allometry for
// large herbivores: a fixed per-kg^0.75 MJ/day coefficient.
func taylor1981BMR(bodymass float64) float64 {
	const coefficient = 0.26
	return coefficient * math.Pow(bodymass, 0.75)
}

// zhu2018Correction adds a temperature-dependent correction on top of
// basal metabolism once ambient temperature drops below a reference
// thermoneutral point.
func zhu2018Correction(bodymass, ambientTempC float64) float64 {
	const referenceTempC = 20.0
	const coefficientPerDegree = 0.002
	if ambientTempC >= referenceTempC {
		return 0
	}
	return coefficientPerDegree * (referenceTempC - ambientTempC) * math.Pow(bodymass, 0.75)
}

// thermoregulationCost is the extra energy spent countering heat loss
// below the HFT's lower critical temperature, via Newtonian conductance
// over a surface area scaling as bodymass^0.63.
func thermoregulationCost(h *hft.HFT, bodymass, ambientTempC float64) float64 {
	if ambientTempC >= h.LowerCriticalTemperatureC {
		return 0
	}
	surfaceArea := math.Pow(bodymass, 0.63)
	wattage := h.ConductanceCoefficient * surfaceArea * (h.LowerCriticalTemperatureC - ambientTempC)
	return wattage * wattsToMJPerDay
}

// dailyExpenditure sums every expenditure component enabled on h.
func dailyExpenditure(h *hft.HFT, bodymass float64, env habitat.Environment) float64 {
	total := 0.0
	if h.ExpenditureComponents[hft.Taylor1981] {
		total += taylor1981BMR(bodymass)
	}
	if h.ExpenditureComponents[hft.Zhu2018] {
		total += zhu2018Correction(bodymass, env.AirTemperatureC)
	}
	if h.ExpenditureComponents[hft.Thermoregulation] {
		total += thermoregulationCost(h, bodymass, env.AirTemperatureC)
	}
	return total
}
