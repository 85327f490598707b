// Package energy implements the fat-reserve energy budget carried by
// every herbivore: accumulated daily needs, anabolism/catabolism, and the
// max-fat-mass ceiling.
package energy

import (
	"errors"
	"fmt"
)

// Sentinel logic-violation errors. These indicate a bug in the calling
// code, not bad input data.
var (
	// ErrFatExceedsMax is returned by Metabolize when converting a
	// surplus to fat would push fat mass more than 0.1% above max fat.
	// The caller is required to clip demand so this never fires in
	// practice; it exists to catch calling-code bugs.
	ErrFatExceedsMax = errors.New("energy: metabolized surplus would exceed maximum fat mass")
)

// tolerance is the 0.1% rounding slack absorbed silently before a
// violation becomes an error.
const tolerance = 0.001

// Budget is one herbivore's fat-reserve energy budget.
type Budget struct {
	fat               float64
	maxFat            float64
	needs             float64
	anabolismCoeff    float64 // MJ/kg, cost to lay down fat
	catabolismCoeff   float64 // MJ/kg, energy recovered burning fat
	maxDailyFatGainKg float64 // 0 means unlimited
}

// New constructs a Budget. Coefficients and the fat ceiling must be
// positive; initial fat must fit under the ceiling.
func New(anabolismCoeff, catabolismCoeff, initialFat, maxFat, maxDailyFatGainKg float64) (*Budget, error) {
	if anabolismCoeff <= 0 {
		return nil, fmt.Errorf("energy.New: anabolism coefficient %v must be > 0", anabolismCoeff)
	}
	if catabolismCoeff <= 0 {
		return nil, fmt.Errorf("energy.New: catabolism coefficient %v must be > 0", catabolismCoeff)
	}
	if maxFat <= 0 {
		return nil, fmt.Errorf("energy.New: maximum fat mass %v must be > 0", maxFat)
	}
	// Compared at centigram resolution so a fat mass a few grams over
	// the ceiling from rounding still constructs.
	if initialFat < 0 || round2dp(initialFat) > round2dp(maxFat) {
		return nil, fmt.Errorf("energy.New: initial fat %v out of [0, %v]", initialFat, maxFat)
	}
	if maxDailyFatGainKg < 0 {
		return nil, fmt.Errorf("energy.New: max daily fat gain %v must be >= 0", maxDailyFatGainKg)
	}
	return &Budget{
		fat:               initialFat,
		maxFat:            maxFat,
		anabolismCoeff:    anabolismCoeff,
		catabolismCoeff:   catabolismCoeff,
		maxDailyFatGainKg: maxDailyFatGainKg,
	}, nil
}

func round2dp(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// Fat returns the current fat mass in kg.
func (b *Budget) Fat() float64 { return b.fat }

// MaxFat returns the current maximum fat mass in kg.
func (b *Budget) MaxFat() float64 { return b.maxFat }

// Needs returns today's accumulated, still-unmet energy needs in MJ.
func (b *Budget) Needs() float64 { return b.needs }

// AddNeeds accumulates mj of additional unmet energy need.
func (b *Budget) AddNeeds(mj float64) error {
	if mj < 0 {
		return fmt.Errorf("energy.AddNeeds: %v is negative", mj)
	}
	b.needs += mj
	return nil
}

// MaxAnabolismToday returns the most fat, in MJ-equivalent intake, that
// can be laid down today: the remaining headroom to MaxFat, capped by the
// daily gain limit when set, converted via the anabolism coefficient.
func (b *Budget) MaxAnabolismToday() float64 {
	increment := b.maxFat - b.fat
	if b.maxDailyFatGainKg > 0 && b.maxDailyFatGainKg < increment {
		increment = b.maxDailyFatGainKg
	}
	if increment < 0 {
		increment = 0
	}
	return increment * b.anabolismCoeff
}

// Metabolize applies mj MJ of ingested energy: it first pays down today's
// needs, then converts any surplus to fat. Fails if the resulting fat mass
// would exceed MaxFat by more than the rounding tolerance.
func (b *Budget) Metabolize(mj float64) error {
	if mj < 0 {
		return fmt.Errorf("energy.Metabolize: %v is negative", mj)
	}
	if mj <= b.needs {
		b.needs -= mj
		return nil
	}
	surplus := mj - b.needs
	b.needs = 0
	fatGain := surplus / b.anabolismCoeff
	if b.maxDailyFatGainKg > 0 && fatGain > b.maxDailyFatGainKg {
		fatGain = b.maxDailyFatGainKg
	}
	newFat := b.fat + fatGain
	if newFat > b.maxFat*(1+tolerance) {
		return fmt.Errorf("energy.Metabolize: %w (%v > %v)", ErrFatExceedsMax, newFat, b.maxFat)
	}
	if newFat > b.maxFat {
		newFat = b.maxFat
	}
	b.fat = newFat
	return nil
}

// Catabolize converts any remaining needs into fat draw-down, floored at
// zero fat, and resets needs to zero. A no-op when needs is already zero.
func (b *Budget) Catabolize() {
	if b.needs == 0 {
		return
	}
	drawdown := b.needs / b.catabolismCoeff
	b.fat -= drawdown
	if b.fat < 0 {
		b.fat = 0
	}
	b.needs = 0
}

// ForceBodyCondition overrides fat mass directly to bc * MaxFat. bc must
// lie in [0,1].
func (b *Budget) ForceBodyCondition(bc float64) error {
	if bc < 0 || bc > 1 {
		return fmt.Errorf("energy.ForceBodyCondition: %v out of [0,1]", bc)
	}
	b.fat = b.maxFat * bc
	return nil
}

// SetMaxFatMass changes the maximum fat mass and, optionally, the daily
// gain cap. Fails if newMax is below the current fat mass, non-positive,
// or if maxGain is negative.
func (b *Budget) SetMaxFatMass(newMax, maxDailyFatGainKg float64) error {
	if newMax <= 0 {
		return fmt.Errorf("energy.SetMaxFatMass: new max %v must be > 0", newMax)
	}
	if newMax < b.fat {
		return fmt.Errorf("energy.SetMaxFatMass: new max %v is below current fat %v", newMax, b.fat)
	}
	if maxDailyFatGainKg < 0 {
		return fmt.Errorf("energy.SetMaxFatMass: max daily fat gain %v must be >= 0", maxDailyFatGainKg)
	}
	b.maxFat = newMax
	b.maxDailyFatGainKg = maxDailyFatGainKg
	return nil
}

// Merge returns the weighted average of b and other's needs, fat, and
// max fat. b and other are untouched; the caller assigns the result.
// Fails if the weights sum to zero.
func (b *Budget) Merge(other *Budget, weightSelf, weightOther float64) (*Budget, error) {
	total := weightSelf + weightOther
	if total == 0 {
		return nil, errors.New("energy.Merge: weights sum to zero")
	}
	merged := &Budget{
		fat:               (b.fat*weightSelf + other.fat*weightOther) / total,
		maxFat:            (b.maxFat*weightSelf + other.maxFat*weightOther) / total,
		needs:             (b.needs*weightSelf + other.needs*weightOther) / total,
		anabolismCoeff:    b.anabolismCoeff,
		catabolismCoeff:   b.catabolismCoeff,
		maxDailyFatGainKg: b.maxDailyFatGainKg,
	}
	return merged, nil
}
