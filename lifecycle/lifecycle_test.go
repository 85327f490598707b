package lifecycle

import (
	"math"
	"testing"

	"github.com/evoranch/fauna/hft"
)

func TestBreedingSeasonWrapsYearBoundary(t *testing.T) {
	b, err := NewBreedingSeason(350, 30)
	if err != nil {
		t.Fatalf("NewBreedingSeason: %v", err)
	}
	if !b.IsInSeason(360) {
		t.Error("expected day 360 to be in season")
	}
	if !b.IsInSeason(5) {
		t.Error("expected day 5 (wrapped) to be in season")
	}
	if b.IsInSeason(200) {
		t.Error("expected day 200 to be outside season")
	}
}

func TestBreedingSeasonNoWrap(t *testing.T) {
	b, _ := NewBreedingSeason(100, 90)
	if !b.IsInSeason(100) || !b.IsInSeason(189) {
		t.Error("expected boundary days in season")
	}
	if b.IsInSeason(190) || b.IsInSeason(99) {
		t.Error("expected days just outside season to be excluded")
	}
}

func TestBackgroundDailyRateCompounds(t *testing.T) {
	daily := BackgroundDailyRate(0.5)
	survival := math.Pow(1-daily, 365)
	if math.Abs(survival-0.5) > 1e-6 {
		t.Errorf("compounded survival = %v, want 0.5", survival)
	}
}

func TestLifespanMortalityStepFunction(t *testing.T) {
	h := &hft.HFT{LifespanYears: 10}
	if LifespanMortality(h, 10*365-1) != 0 {
		t.Error("expected 0 just before lifespan ends")
	}
	if LifespanMortality(h, 10*365) != 1 {
		t.Error("expected 1 at lifespan")
	}
}

func TestStarvationThresholdMortality(t *testing.T) {
	h := &hft.HFT{StarvationThresholdFraction: 0.1}
	if StarvationThresholdMortality(h, 0.05) != 1 {
		t.Error("expected mortality 1 below threshold")
	}
	if StarvationThresholdMortality(h, 0.2) != 0 {
		t.Error("expected mortality 0 above threshold")
	}
}

func TestStarvationIlliusOConnorBoundaries(t *testing.T) {
	h := &hft.HFT{StarvationFatStandardDeviation: 0.125}
	full, _, err := StarvationIlliusOConnor2000Mortality(h, 1.0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full > 0.01 {
		t.Errorf("full fat mortality = %v, want ~0", full)
	}
	zero, _, err := StarvationIlliusOConnor2000Mortality(h, 0.0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(zero-0.5) > 0.01 {
		t.Errorf("zero fat mortality = %v, want ~0.5", zero)
	}
}

func TestStarvationIlliusOConnorShift(t *testing.T) {
	h := &hft.HFT{StarvationFatStandardDeviation: 0.125}
	m, shifted, err := StarvationIlliusOConnor2000Mortality(h, 0.2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.2 / (1 - m)
	if want > 1 {
		want = 1
	}
	if math.Abs(shifted-want) > 1e-9 {
		t.Errorf("shifted body condition = %v, want %v", shifted, want)
	}
}

func TestDailyOffspringRateZeroForMales(t *testing.T) {
	h := &hft.HFT{ReproductionModel: hft.ReproductionConstMax, MaxAnnualReproductiveIncrease: 1, SexualMaturityAge: 365}
	season, _ := NewBreedingSeason(100, 90)
	rate, err := DailyOffspringRate(h, season, 150, hft.Male, 1000, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Errorf("expected 0 for males, got %v", rate)
	}
}

func TestDailyOffspringRateConstMaxSumsToAnnual(t *testing.T) {
	h := &hft.HFT{ReproductionModel: hft.ReproductionConstMax, MaxAnnualReproductiveIncrease: 1.0, SexualMaturityAge: 365}
	season, _ := NewBreedingSeason(100, 90)
	total := 0.0
	for day := 100; day <= 189; day++ {
		rate, err := DailyOffspringRate(h, season, day, hft.Female, 1000, 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total += rate
	}
	if math.Abs(total-1.0) > 0.05 {
		t.Errorf("summed annual offspring = %v, want ~1.0", total)
	}
}

func TestDailyOffspringRateOutsideSeasonIsZero(t *testing.T) {
	h := &hft.HFT{ReproductionModel: hft.ReproductionConstMax, MaxAnnualReproductiveIncrease: 1.0, SexualMaturityAge: 365}
	season, _ := NewBreedingSeason(100, 90)
	rate, err := DailyOffspringRate(h, season, 5, hft.Female, 1000, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0 {
		t.Errorf("expected 0 outside season, got %v", rate)
	}
}

func TestApplyMortalityCombinesFactors(t *testing.T) {
	h := &hft.HFT{
		MortalityFactors:         map[hft.MortalityFactorKind]bool{hft.Background: true, hft.Lifespan: true},
		AnnualMortalityAdult:     0.1,
		AnnualMortalityFirstYear: 0.3,
		LifespanYears:            20,
	}
	out, err := ApplyMortality(h, 5000, 0.5)
	if err != nil {
		t.Fatalf("ApplyMortality: %v", err)
	}
	if out.SurvivalFraction <= 0 || out.SurvivalFraction >= 1 {
		t.Errorf("SurvivalFraction = %v, want in (0,1)", out.SurvivalFraction)
	}
	if out.ShiftedBodyCondition != 0.5 {
		t.Errorf("ShiftedBodyCondition = %v, want unchanged 0.5 (starvation-Illius not enabled)", out.ShiftedBodyCondition)
	}
}
