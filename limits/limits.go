// Package limits implements the two orthogonal daily intake caps:
// digestive limits (gut throughput) and foraging limits (harvesting rate
// at current forage density). Everything here is expressed in kg
// dry-matter per individual per day; only the Illius-Gordon-1992
// digestive limit is computed in energy terms internally and converted
// back to mass before it leaves this package.
package limits

import (
	"fmt"
	"math"

	"github.com/evoranch/fauna/hft"
)

// DigestiveLimitIlliusGordon1992EnergyMJ returns the Illius & Gordon
// (1992) digestive-limit in MJ/day: i*e^(j*d)*M_ad^(k*e^d+0.73)*(M/M_ad)^0.75.
// Zero digestibility yields zero intake. bodymass must not exceed
// bodymassAdult.
func DigestiveLimitIlliusGordon1992EnergyMJ(bodymassAdult, bodymass, digestibility, i, j, k float64) (float64, error) {
	if bodymassAdult <= 0 {
		return 0, fmt.Errorf("limits: adult bodymass %v must be > 0", bodymassAdult)
	}
	if bodymass <= 0 {
		return 0, fmt.Errorf("limits: bodymass %v must be > 0", bodymass)
	}
	if bodymass > bodymassAdult {
		return 0, fmt.Errorf("limits: bodymass %v exceeds adult bodymass %v", bodymass, bodymassAdult)
	}
	if digestibility <= 0 {
		return 0, nil
	}
	ratio := math.Pow(bodymass/bodymassAdult, 0.75)
	return i * math.Exp(j*digestibility) * math.Pow(bodymassAdult, k*math.Exp(digestibility)+0.73) * ratio, nil
}

// DigestiveLimitIlliusGordon1992 is DigestiveLimitIlliusGordon1992EnergyMJ
// converted to kg dry matter via energyContentMJPerKg (divide-safely: a
// non-positive energy content yields zero intake rather than failing).
func DigestiveLimitIlliusGordon1992(bodymassAdult, bodymass, digestibility, i, j, k, energyContentMJPerKg float64) (float64, error) {
	mj, err := DigestiveLimitIlliusGordon1992EnergyMJ(bodymassAdult, bodymass, digestibility, i, j, k)
	if err != nil {
		return 0, err
	}
	if energyContentMJPerKg <= 0 {
		return 0, nil
	}
	return mj / energyContentMJPerKg, nil
}

// Allometric evaluates y = c * M^exponent, with c fitted so the curve
// passes through (bodymassMaleAdult, yAtMaleAdult). Result is kg/day.
func Allometric(bodymassMaleAdult, bodymass, exponent, yAtMaleAdult float64) float64 {
	c := yAtMaleAdult * math.Pow(bodymassMaleAdult, -exponent)
	return c * math.Pow(bodymass, exponent)
}

// FixedFraction returns f*bodymass (kg/day) for an adult, and, for a
// juvenile (bodymass < bodymassAdult), scales it by the mass-specific
// metabolic ratio f * bodymassAdult^-0.75 * bodymass * bodymass^-0.75,
// where bodymassAdult is the individual's own sex's adult mass.
func FixedFraction(bodymassAdult, bodymass, f float64) float64 {
	if bodymass >= bodymassAdult {
		return f * bodymass
	}
	return f * math.Pow(bodymassAdult, -0.75) * bodymass * math.Pow(bodymass, -0.75)
}

// DigestiveLimitKg returns the digestive limit in kg dry matter per
// individual per day, dispatching on the HFT's configured digestive-limit
// tag. energyContentMJPerKg is only consulted for IlliusGordon1992.
func DigestiveLimitKg(h *hft.HFT, sex hft.Sex, bodymass, digestibility, energyContentMJPerKg float64) (float64, error) {
	bodymassAdult := h.AdultBodyMass(sex)
	switch h.DigestiveLimit {
	case hft.NoDigestiveLimit:
		return math.Inf(1), nil
	case hft.Allometric:
		return Allometric(h.BodyMassMaleAdult, bodymass, h.AllometricExponent, h.AllometricYAtMaleAdult), nil
	case hft.FixedFraction:
		return FixedFraction(bodymassAdult, bodymass, h.FixedFractionValue), nil
	case hft.IlliusGordon1992:
		return DigestiveLimitIlliusGordon1992(bodymassAdult, bodymass, digestibility, h.IlliusGordonI, h.IlliusGordonJ, h.IlliusGordonK, energyContentMJPerKg)
	default:
		return 0, fmt.Errorf("limits: unknown digestive limit %v", h.DigestiveLimit)
	}
}

// HalfMaxIntake is a Holling Type II functional response: I = I_max *
// V/(V_half + V).
type HalfMaxIntake struct {
	HalfMaxDensity float64 // same units as the density passed to IntakeRate
	MaxIntake      float64
}

// IntakeRate evaluates the functional response at the given density. A
// zero MaxIntake asymptote returns zero, silently.
func (h HalfMaxIntake) IntakeRate(density float64) float64 {
	if h.MaxIntake == 0 {
		return 0
	}
	if density <= 0 {
		return 0
	}
	return h.MaxIntake * density / (h.HalfMaxDensity + density)
}

// GramsPerM2ToKgPerKm2 converts a half-saturation density from g/m² (as
// HFT parameters express it) to kg/km² (as forage.Mass values are
// expressed).
func GramsPerM2ToKgPerKm2(gramsPerM2 float64) float64 {
	return gramsPerM2 * 1000
}

// ForagingLimitKg applies the IlliusOConnor2000 foraging limit, when
// enabled, to digestiveLimitKg (the already-computed digestive-limit
// asymptote for grass), returning the resulting cap in kg/day. When the
// limit is not enabled, digestiveLimitKg passes through unchanged.
// GeneralFunctionalResponse is intentionally excluded here; it is
// applied afterward, on top of the combined result, by the caller (see
// demand.Calculator.InitToday).
func ForagingLimitKg(h *hft.HFT, availableGrassKg, digestiveLimitKg float64) float64 {
	if !h.ForagingLimits[hft.IlliusOConnor2000ForagingLimit] {
		return digestiveLimitKg
	}
	hm := HalfMaxIntake{
		HalfMaxDensity: GramsPerM2ToKgPerKm2(h.HalfSaturationDensityGramPerM2),
		MaxIntake:      digestiveLimitKg,
	}
	return hm.IntakeRate(availableGrassKg)
}

// GeneralFunctionalResponseKg applies the general functional response on
// top of an already-computed limit, using that limit as its own
// asymptote. A zero limit yields zero, silently.
func GeneralFunctionalResponseKg(h *hft.HFT, availableKg, limitKg float64) float64 {
	if !h.ForagingLimits[hft.GeneralFunctionalResponse] {
		return limitKg
	}
	hm := HalfMaxIntake{
		HalfMaxDensity: GramsPerM2ToKgPerKm2(h.HalfSaturationDensityGramPerM2),
		MaxIntake:      limitKg,
	}
	return hm.IntakeRate(availableKg)
}

// ClampInfinity replaces +Inf with a very large finite ceiling, since
// forage.Mass cannot represent +Inf but NoDigestiveLimit legitimately
// produces it.
func ClampInfinity(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64 / 2
	}
	return v
}
