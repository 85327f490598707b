package energy

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidatesInvariants(t *testing.T) {
	if _, err := New(0, 10, 1, 10, 0); err == nil {
		t.Fatal("expected error: anabolism coefficient must be > 0")
	}
	if _, err := New(10, 10, 11, 10, 0); err == nil {
		t.Fatal("expected error: initial fat exceeds max fat")
	}
	if _, err := New(10, 10, 5, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMetabolizePaysNeedsFirst(t *testing.T) {
	b, _ := New(10, 10, 0, 10, 0)
	_ = b.AddNeeds(20)
	if err := b.Metabolize(5); err != nil {
		t.Fatalf("Metabolize: %v", err)
	}
	if b.Needs() != 15 {
		t.Errorf("Needs() = %v, want 15", b.Needs())
	}
	if b.Fat() != 0 {
		t.Errorf("Fat() = %v, want 0 (no surplus yet)", b.Fat())
	}
}

func TestMetabolizeConvertsSurplusToFat(t *testing.T) {
	b, _ := New(10, 10, 0, 10, 0)
	_ = b.AddNeeds(0)
	if err := b.Metabolize(30); err != nil {
		t.Fatalf("Metabolize: %v", err)
	}
	if math.Abs(b.Fat()-3) > 1e-9 {
		t.Errorf("Fat() = %v, want 3", b.Fat())
	}
}

func TestMetabolizeRoundTripLaw(t *testing.T) {
	b, _ := New(10, 10, 0, 10, 0)
	e := b.MaxAnabolismToday()
	_ = b.AddNeeds(0)
	if err := b.Metabolize(e); err != nil {
		t.Fatalf("Metabolize: %v", err)
	}
	want := e / 10
	if math.Abs(b.Fat()-want) > 1e-9 {
		t.Errorf("Fat() = %v, want %v", b.Fat(), want)
	}
}

func TestMetabolizeRejectsExceedingMax(t *testing.T) {
	b, _ := New(1, 1, 0, 10, 0)
	if err := b.Metabolize(10.2); !errors.Is(err, ErrFatExceedsMax) {
		t.Fatalf("expected ErrFatExceedsMax, got %v", err)
	}
}

func TestCatabolizeFlooredAtZero(t *testing.T) {
	b, _ := New(10, 10, 1, 10, 0)
	_ = b.AddNeeds(1000)
	b.Catabolize()
	if b.Fat() != 0 {
		t.Errorf("Fat() = %v, want 0", b.Fat())
	}
	if b.Needs() != 0 {
		t.Errorf("Needs() = %v, want 0 after catabolize", b.Needs())
	}
}

func TestCatabolizeNoOpWhenNoNeeds(t *testing.T) {
	b, _ := New(10, 10, 5, 10, 0)
	b.Catabolize()
	if b.Fat() != 5 {
		t.Errorf("Fat() = %v, want unchanged 5", b.Fat())
	}
}

func TestMaxAnabolismTodayCapsAtMaxGain(t *testing.T) {
	b, _ := New(10, 10, 0, 10, 0.5)
	if got := b.MaxAnabolismToday(); got != 5 {
		t.Errorf("MaxAnabolismToday() = %v, want 5", got)
	}
}

func TestForceBodyConditionValidates(t *testing.T) {
	b, _ := New(10, 10, 0, 10, 0)
	if err := b.ForceBodyCondition(1.5); err == nil {
		t.Fatal("expected error for body condition > 1")
	}
	if err := b.ForceBodyCondition(0.5); err != nil {
		t.Fatalf("ForceBodyCondition: %v", err)
	}
	if b.Fat() != 5 {
		t.Errorf("Fat() = %v, want 5", b.Fat())
	}
}

func TestSetMaxFatMassRejectsBelowCurrentFat(t *testing.T) {
	b, _ := New(10, 10, 8, 10, 0)
	if err := b.SetMaxFatMass(5, 0); err == nil {
		t.Fatal("expected error: new max below current fat")
	}
}

func TestMergeWeightedAverage(t *testing.T) {
	a, _ := New(10, 10, 4, 10, 0)
	b, _ := New(10, 10, 6, 10, 0)
	merged, err := a.Merge(b, 1, 1)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Fat() != 5 {
		t.Errorf("merged Fat() = %v, want 5", merged.Fat())
	}
}
