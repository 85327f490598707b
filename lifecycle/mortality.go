package lifecycle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/evoranch/fauna/hft"
)

// BackgroundDailyRate converts an annual mortality rate to the daily rate
// whose compounded 365-day survival equals 1-annual.
func BackgroundDailyRate(annual float64) float64 {
	if annual <= 0 {
		return 0
	}
	if annual >= 1 {
		return 1
	}
	return 1 - math.Pow(1-annual, 1.0/365.0)
}

// BackgroundMortality returns today's background mortality fraction,
// using the first-year rate below age 365 days and the adult rate
// thereafter.
func BackgroundMortality(h *hft.HFT, ageDays int) float64 {
	annual := h.AnnualMortalityAdult
	if ageDays < 365 {
		annual = h.AnnualMortalityFirstYear
	}
	return BackgroundDailyRate(annual)
}

// LifespanMortality returns 1 once ageDays reaches LifespanYears*365, 0
// before.
func LifespanMortality(h *hft.HFT, ageDays int) float64 {
	if float64(ageDays) >= h.LifespanYears*365 {
		return 1
	}
	return 0
}

// StarvationThresholdMortality returns 1 when bodyFatFraction is below
// h's configured threshold, 0 otherwise.
func StarvationThresholdMortality(h *hft.HFT, bodyFatFraction float64) float64 {
	if bodyFatFraction < h.StarvationThresholdFraction {
		return 1
	}
	return 0
}

// StarvationIlliusOConnor2000Mortality treats body condition across the
// cohort as normally distributed with mean bodyCondition and the HFT's
// configured standard deviation, and returns the cumulative probability
// that fat is negative (Φ at 0). When shiftBodyCondition is set, it also
// returns the body-condition mean shifted upward by 1/(1-mortality),
// clamped to 1, reflecting that the individuals culled were
// disproportionately the leanest; when mortality reaches 1 the shift is
// undefined and bodyCondition is returned unchanged.
func StarvationIlliusOConnor2000Mortality(h *hft.HFT, bodyCondition float64, shiftBodyCondition bool) (mortality, shiftedBodyCondition float64, err error) {
	if bodyCondition < 0 || bodyCondition > 1 {
		return 0, 0, fmt.Errorf("lifecycle.StarvationIlliusOConnor2000Mortality: body condition %v out of [0,1]", bodyCondition)
	}
	if h.StarvationFatStandardDeviation <= 0 {
		return 0, 0, fmt.Errorf("lifecycle.StarvationIlliusOConnor2000Mortality: standard deviation must be > 0")
	}
	dist := distuv.Normal{Mu: bodyCondition, Sigma: h.StarvationFatStandardDeviation}
	mortality = dist.CDF(0)
	shiftedBodyCondition = bodyCondition
	if shiftBodyCondition && mortality < 1 {
		shiftedBodyCondition = bodyCondition / (1 - mortality)
		if shiftedBodyCondition > 1 {
			shiftedBodyCondition = 1
		}
	}
	return mortality, shiftedBodyCondition, nil
}

// Outcome is the combined result of applying every enabled mortality
// factor for one cohort on one day.
type Outcome struct {
	// SurvivalFraction is the product of (1-mortality_i) over every
	// enabled factor; multiply a cohort's density by this.
	SurvivalFraction float64
	// ShiftedBodyCondition is the (possibly) starvation-shifted body
	// condition. Equal to the input bodyCondition when
	// StarvationIlliusOConnor2000 is not enabled. When it is enabled,
	// ApplyMortality always applies the shift; no HFT setting turns it
	// off.
	ShiftedBodyCondition float64
}

// ApplyMortality evaluates every mortality factor enabled on h, using the
// cohort's current state (ageDays, bodyFatFraction as a fraction of max
// fat) for each factor independently. The starvation body-condition shift
// is local to StarvationIlliusOConnor2000's own contribution and is never
// observed by the other factors evaluated the same day.
func ApplyMortality(h *hft.HFT, ageDays int, bodyFatFraction float64) (Outcome, error) {
	survival := 1.0
	shifted := bodyFatFraction

	if h.MortalityFactors[hft.Background] {
		survival *= 1 - BackgroundMortality(h, ageDays)
	}
	if h.MortalityFactors[hft.Lifespan] {
		survival *= 1 - LifespanMortality(h, ageDays)
	}
	if h.MortalityFactors[hft.StarvationThreshold] {
		survival *= 1 - StarvationThresholdMortality(h, bodyFatFraction)
	}
	if h.MortalityFactors[hft.StarvationIlliusOConnor2000] {
		m, shiftedBC, err := StarvationIlliusOConnor2000Mortality(h, bodyFatFraction, true)
		if err != nil {
			return Outcome{}, err
		}
		survival *= 1 - m
		shifted = shiftedBC
	}

	if survival < 0 {
		survival = 0
	}
	return Outcome{SurvivalFraction: survival, ShiftedBodyCondition: shifted}, nil
}
