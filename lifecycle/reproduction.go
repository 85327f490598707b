package lifecycle

import (
	"fmt"
	"math"

	"github.com/evoranch/fauna/hft"
)

// illiusOConnorB and illiusOConnorC are the shape coefficients of the
// Illius & O'Connor (2000) logistic reproduction curve.
const (
	illiusOConnorB = 15.0
	illiusOConnorC = 0.3
)

// DailyOffspringRate returns today's per-capita offspring rate (offspring
// per female per day) for h's configured reproduction model. It returns
// zero for males, before sexual maturity, and outside the breeding
// season.
func DailyOffspringRate(h *hft.HFT, season BreedingSeason, julianDay int, sex hft.Sex, ageDays int, bodyCondition float64) (float64, error) {
	if sex == hft.Male {
		return 0, nil
	}
	if ageDays < h.SexualMaturityAge {
		return 0, nil
	}
	if !season.IsInSeason(julianDay) {
		return 0, nil
	}
	if bodyCondition < 0 || bodyCondition > 1 {
		return 0, fmt.Errorf("lifecycle.DailyOffspringRate: body condition %v out of [0,1]", bodyCondition)
	}

	k := h.MaxAnnualReproductiveIncrease
	switch h.ReproductionModel {
	case hft.ReproductionIlliusOConnor2000:
		annual := k / (1 + math.Exp(-illiusOConnorB*(bodyCondition-illiusOConnorC)))
		return season.AnnualToDailyRate(annual), nil
	case hft.ReproductionConstMax:
		return season.AnnualToDailyRate(k), nil
	case hft.ReproductionLinear:
		annual := k * bodyCondition
		return season.AnnualToDailyRate(annual), nil
	default:
		return 0, fmt.Errorf("lifecycle: unknown reproduction model %v", h.ReproductionModel)
	}
}
