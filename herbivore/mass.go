package herbivore

import (
	"github.com/evoranch/fauna/hft"
)

// structuralMassAtBirth is SM_birth = BirthMass * EmptyBodyFraction *
// (1 - BirthBodyFatFraction).
func structuralMassAtBirth(h *hft.HFT) float64 {
	return h.BirthMass * h.EmptyBodyFraction * (1 - h.BirthBodyFatFraction)
}

// structuralMassAdult is SM_adult = AdultBodyMass(sex) * EmptyBodyFraction
// * (1 - MaxBodyFatFraction/2), the same halved-fraction convention used
// throughout this package for "maximum" fat quantities (see maxFatMass).
func structuralMassAdult(h *hft.HFT, sex hft.Sex) float64 {
	return h.AdultBodyMass(sex) * h.EmptyBodyFraction * (1 - h.MaxBodyFatFraction/2)
}

// structuralMass interpolates linearly between birth and adult structural
// mass up to physical maturity, then holds constant.
func structuralMass(h *hft.HFT, sex hft.Sex, ageDays int) float64 {
	maturity := h.PhysicalMaturityAge(sex)
	birth := structuralMassAtBirth(h)
	adult := structuralMassAdult(h, sex)
	if maturity <= 0 || ageDays >= maturity {
		return adult
	}
	frac := float64(ageDays) / float64(maturity)
	return birth + (adult-birth)*frac
}

// maxFatMass derives the maximum fat mass from the current structural
// mass such that, at adult structural mass, the resulting body-fat
// fraction (fat/(structural+fat)) equals half of MaxBodyFatFraction.
// AdultBodyMass is the mass of an adult at that halved fraction, so the
// derivation below and structuralMassAdult must use the same convention.
func maxFatMass(h *hft.HFT, sex hft.Sex, ageDays int) float64 {
	sm := structuralMass(h, sex, ageDays)
	bf := h.MaxBodyFatFraction / 2
	return sm * bf / (1 - bf)
}

// bodyMass returns current total body mass: (structural + fat) / empty
// body fraction.
func bodyMass(h *hft.HFT, sex hft.Sex, ageDays int, fatMass float64) float64 {
	sm := structuralMass(h, sex, ageDays)
	return (sm + fatMass) / h.EmptyBodyFraction
}

// bodyFatFraction is fat / (structural + fat): the animal's actual
// current body-fat fraction, distinct from body condition (fat/max fat).
func bodyFatFraction(h *hft.HFT, sex hft.Sex, ageDays int, fatMass float64) float64 {
	sm := structuralMass(h, sex, ageDays)
	denom := sm + fatMass
	if denom == 0 {
		return 0
	}
	return fatMass / denom
}
