package hft

import (
	"errors"
	"testing"
)

func validHFT() HFT {
	return HFT{
		Name:                          "wildebeest",
		BodyMassMaleAdult:             180,
		BodyMassFemaleAdult:           160,
		BirthMass:                     18,
		BirthBodyFatFraction:          0.05,
		MaxBodyFatFraction:            0.25,
		EmptyBodyFraction:             0.9,
		LifespanYears:                 20,
		PhysicalMaturityAgeMale:       730,
		PhysicalMaturityAgeFemale:     730,
		SexualMaturityAge:             365,
		MinimumViableDensityFraction:  0.05,
		EstablishmentDensity:          10,
		EstablishmentAgeRangeYears:    [2]int{2, 5},
		Digestion:                     Ruminant,
		DietComposer:                  PureGrazer,
		NetEnergyModel:                DefaultNetEnergy,
		DigestiveLimit:                IlliusGordon1992,
		IlliusGordonI:                 0.6,
		IlliusGordonJ:                 0.05,
		IlliusGordonK:                 -0.5,
		ForagingLimits:                map[ForagingLimitKind]bool{IlliusOConnor2000ForagingLimit: true},
		HalfSaturationDensityGramPerM2: 20,
		DigestibilityModel:            PftFixed,
		ForageGrossEnergy:             18.5,
		MortalityFactors:              map[MortalityFactorKind]bool{Background: true},
		AnnualMortalityFirstYear:      0.3,
		AnnualMortalityAdult:          0.1,
		ReproductionModel:             ReproductionConstMax,
		BreedingSeasonStartDay:        100,
		BreedingSeasonLengthDays:      90,
		MaxAnnualReproductiveIncrease: 1.0,
	}
}

func TestNewAcceptsValidHFT(t *testing.T) {
	if _, err := New(validHFT()); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestNewRejectsMissingBodyMass(t *testing.T) {
	h := validHFT()
	h.BodyMassMaleAdult = 0
	if _, err := New(h); !errors.Is(err, ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestNewRejectsUnimplementedDietComposer(t *testing.T) {
	h := validHFT()
	h.DietComposer = DietComposer(99)
	if _, err := New(h); !errors.Is(err, ErrUnimplementedVariant) {
		t.Fatalf("expected ErrUnimplementedVariant, got %v", err)
	}
}

func TestNewRejectsIlliusOConnorWithoutDigestiveLimit(t *testing.T) {
	h := validHFT()
	h.DigestiveLimit = NoDigestiveLimit
	if _, err := New(h); !errors.Is(err, ErrIncompatibleOptions) {
		t.Fatalf("expected ErrIncompatibleOptions, got %v", err)
	}
}

func TestNewDefaultsStarvationThreshold(t *testing.T) {
	h := validHFT()
	h.MortalityFactors[StarvationThreshold] = true
	got, err := New(h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got.StarvationThresholdFraction != defaultStarvationThresholdFraction {
		t.Errorf("StarvationThresholdFraction = %v, want default %v", got.StarvationThresholdFraction, defaultStarvationThresholdFraction)
	}
}

func TestAdultBodyMassBySex(t *testing.T) {
	h, err := New(validHFT())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.AdultBodyMass(Male) != 180 {
		t.Errorf("AdultBodyMass(Male) = %v, want 180", h.AdultBodyMass(Male))
	}
	if h.AdultBodyMass(Female) != 160 {
		t.Errorf("AdultBodyMass(Female) = %v, want 160", h.AdultBodyMass(Female))
	}
}
