package limits

import (
	"math"
	"testing"

	"github.com/evoranch/fauna/hft"
)

func TestDigestiveLimitIlliusGordon1992ZeroDigestibility(t *testing.T) {
	got, err := DigestiveLimitIlliusGordon1992(100, 100, 0, 0.6, 0.05, -0.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestDigestiveLimitIlliusGordon1992RejectsBodymassAboveAdult(t *testing.T) {
	if _, err := DigestiveLimitIlliusGordon1992(100, 150, 0.5, 0.6, 0.05, -0.5, 10); err == nil {
		t.Fatal("expected error: bodymass exceeds adult bodymass")
	}
}

func TestDigestiveLimitIlliusGordon1992Computes(t *testing.T) {
	mj, err := DigestiveLimitIlliusGordon1992EnergyMJ(100, 100, 0.5, 0.6, 0.05, -0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.6 * math.Exp(0.05*0.5) * math.Pow(100, -0.5*math.Exp(0.5)+0.73) * 1.0
	if math.Abs(mj-want) > 1e-9 {
		t.Errorf("got %v, want %v", mj, want)
	}
	kg, err := DigestiveLimitIlliusGordon1992(100, 100, 0.5, 0.6, 0.05, -0.5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(kg-mj/2) > 1e-9 {
		t.Errorf("kg conversion = %v, want %v", kg, mj/2)
	}
}

func TestAllometricPassesThroughPoint(t *testing.T) {
	got := Allometric(100, 100, 0.75, 50)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Allometric at the fitted point = %v, want 50", got)
	}
}

func TestFixedFractionAdultVsJuvenile(t *testing.T) {
	adult := FixedFraction(100, 100, 0.02)
	if adult != 2 {
		t.Errorf("adult FixedFraction = %v, want 2", adult)
	}
	juvenile := FixedFraction(100, 50, 0.02)
	if juvenile <= 0 || math.IsInf(juvenile, 0) {
		t.Errorf("juvenile FixedFraction = %v, want finite positive", juvenile)
	}
}

func TestHalfMaxIntakeZeroAsymptoteIsSilentZero(t *testing.T) {
	hm := HalfMaxIntake{HalfMaxDensity: 1000, MaxIntake: 0}
	if got := hm.IntakeRate(5000); got != 0 {
		t.Errorf("IntakeRate with zero asymptote = %v, want 0", got)
	}
}

func TestHalfMaxIntakeHollingTypeII(t *testing.T) {
	hm := HalfMaxIntake{HalfMaxDensity: 1000, MaxIntake: 10}
	got := hm.IntakeRate(1000)
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("IntakeRate at half-saturation density = %v, want 5", got)
	}
}

func TestForagingLimitKgSkippedWhenNotEnabled(t *testing.T) {
	h := &hft.HFT{ForagingLimits: map[hft.ForagingLimitKind]bool{}}
	if got := ForagingLimitKg(h, 5000, 42); got != 42 {
		t.Errorf("ForagingLimitKg = %v, want passthrough 42", got)
	}
}

func TestClampInfinity(t *testing.T) {
	if got := ClampInfinity(math.Inf(1)); math.IsInf(got, 1) {
		t.Error("expected ClampInfinity to return a finite value")
	}
	if got := ClampInfinity(5); got != 5 {
		t.Errorf("ClampInfinity(5) = %v, want 5", got)
	}
}
