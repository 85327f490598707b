// Package hft defines the herbivore functional type: the immutable,
// shared parameter record that every cohort of one species/guild carries
// a read-only handle to.
package hft

import (
	"errors"
	"fmt"
)

// DigestionType selects the net-energy conversion pathway.
type DigestionType int

const (
	Ruminant DigestionType = iota
	HindgutFermenter
)

func (d DigestionType) String() string {
	switch d {
	case Ruminant:
		return "ruminant"
	case HindgutFermenter:
		return "hindgut fermenter"
	default:
		return "unknown digestion type"
	}
}

// DietComposer selects how diet composition across forage types is
// computed. Only PureGrazer has a worked-out implementation in this
// module; hft.New rejects every other tag.
type DietComposer int

const (
	PureGrazer DietComposer = iota
)

func (d DietComposer) String() string {
	switch d {
	case PureGrazer:
		return "pure grazer"
	default:
		return "unknown diet composer"
	}
}

// NetEnergyModel selects the digestibility-to-energy conversion formula.
type NetEnergyModel int

const (
	DefaultNetEnergy NetEnergyModel = iota
)

func (m NetEnergyModel) String() string {
	switch m {
	case DefaultNetEnergy:
		return "default"
	default:
		return "unknown net-energy model"
	}
}

// DigestiveLimitKind selects the daily gut-throughput cap.
type DigestiveLimitKind int

const (
	NoDigestiveLimit DigestiveLimitKind = iota
	Allometric
	FixedFraction
	IlliusGordon1992
)

func (k DigestiveLimitKind) String() string {
	switch k {
	case NoDigestiveLimit:
		return "none"
	case Allometric:
		return "allometric"
	case FixedFraction:
		return "fixed fraction"
	case IlliusGordon1992:
		return "illius-gordon-1992"
	default:
		return "unknown digestive limit"
	}
}

// ForagingLimitKind selects a daily harvesting-rate cap. Zero or more may
// be enabled per HFT; all enabled limits combine via component-wise min.
type ForagingLimitKind int

const (
	IlliusOConnor2000ForagingLimit ForagingLimitKind = iota
	GeneralFunctionalResponse
)

func (k ForagingLimitKind) String() string {
	switch k {
	case IlliusOConnor2000ForagingLimit:
		return "illius-oconnor-2000"
	case GeneralFunctionalResponse:
		return "general-functional-response"
	default:
		return "unknown foraging limit"
	}
}

// DigestibilityModelKind selects how daily per-forage-type digestibility
// is produced from the habitat's vegetation state.
type DigestibilityModelKind int

const (
	PftFixed DigestibilityModelKind = iota
	Pachzelt2013
	FromNPP
)

func (k DigestibilityModelKind) String() string {
	switch k {
	case PftFixed:
		return "pft-fixed"
	case Pachzelt2013:
		return "pachzelt-2013"
	case FromNPP:
		return "from-npp"
	default:
		return "unknown digestibility model"
	}
}

// ReproductionModelKind selects the seasonal offspring-rate formula.
type ReproductionModelKind int

const (
	ReproductionIlliusOConnor2000 ReproductionModelKind = iota
	ReproductionConstMax
	ReproductionLinear
)

func (k ReproductionModelKind) String() string {
	switch k {
	case ReproductionIlliusOConnor2000:
		return "illius-oconnor-2000"
	case ReproductionConstMax:
		return "const-max"
	case ReproductionLinear:
		return "linear"
	default:
		return "unknown reproduction model"
	}
}

// ExpenditureComponentKind selects one contributor to daily energy
// expenditure. Zero or more may be enabled per HFT; contributions sum.
type ExpenditureComponentKind int

const (
	Taylor1981 ExpenditureComponentKind = iota
	Zhu2018
	Thermoregulation
)

func (k ExpenditureComponentKind) String() string {
	switch k {
	case Taylor1981:
		return "taylor-1981"
	case Zhu2018:
		return "zhu-2018"
	case Thermoregulation:
		return "thermoregulation"
	default:
		return "unknown expenditure component"
	}
}

// MortalityFactorKind selects one contributor to daily mortality. Zero or
// more may be enabled per HFT; contributions apply independently in
// sequence (see lifecycle.ApplyMortality).
type MortalityFactorKind int

const (
	Background MortalityFactorKind = iota
	Lifespan
	StarvationThreshold
	StarvationIlliusOConnor2000
)

func (k MortalityFactorKind) String() string {
	switch k {
	case Background:
		return "background"
	case Lifespan:
		return "lifespan"
	case StarvationThreshold:
		return "starvation-threshold"
	case StarvationIlliusOConnor2000:
		return "starvation-illius-oconnor-2000"
	default:
		return "unknown mortality factor"
	}
}

// Sex is the biological sex of a herbivore or cohort.
type Sex int

const (
	Female Sex = iota
	Male
)

func (s Sex) String() string {
	switch s {
	case Female:
		return "female"
	case Male:
		return "male"
	default:
		return "unknown sex"
	}
}

// Sentinel configuration errors, detected once at HFT construction.
// A world refuses to be built over any of these.
var (
	ErrMissingParameter     = errors.New("hft: missing mandatory parameter")
	ErrIncompatibleOptions  = errors.New("hft: incompatible option combination")
	ErrUnimplementedVariant = errors.New("hft: unimplemented option tag")
)

// HFT is the immutable parameter record for one species/guild. Construct
// with New, which validates every invariant; once constructed, an HFT is
// shared read-only across every cohort carrying it.
type HFT struct {
	Name string

	// Body composition.
	BodyMassMaleAdult    float64 // kg
	BodyMassFemaleAdult  float64 // kg
	BirthMass            float64 // kg
	BirthBodyFatFraction float64
	MaxBodyFatFraction   float64
	EmptyBodyFraction    float64 // fraction of live body mass that is not gut fill

	// Life-cycle ages.
	LifespanYears             float64
	PhysicalMaturityAgeMale   int // days
	PhysicalMaturityAgeFemale int // days
	SexualMaturityAge         int // days

	// Population / establishment.
	MinimumViableDensityFraction float64
	EstablishmentDensity         float64 // ind/km2
	EstablishmentAgeRangeYears   [2]int  // inclusive

	// Digestion / diet.
	Digestion          DigestionType
	DietComposer       DietComposer
	NetEnergyModel     NetEnergyModel
	DigestiveLimit     DigestiveLimitKind
	ForagingLimits     map[ForagingLimitKind]bool
	DigestibilityModel DigestibilityModelKind
	ForageGrossEnergy  float64 // MJ/kgDM, gross energy content before digestion losses

	// Digestive-limit parameters.
	AllometricExponent     float64
	AllometricYAtMaleAdult float64
	FixedFractionValue     float64
	IlliusGordonI          float64
	IlliusGordonJ          float64
	IlliusGordonK          float64

	// Foraging-limit parameters.
	HalfSaturationDensityGramPerM2 float64 // g/m2, converted to kg/km2 internally

	// Expenditure.
	ExpenditureComponents     map[ExpenditureComponentKind]bool
	ConductanceCoefficient    float64 // W/(m2 K), used by Thermoregulation
	LowerCriticalTemperatureC float64

	// Mortality.
	MortalityFactors               map[MortalityFactorKind]bool
	AnnualMortalityFirstYear       float64
	AnnualMortalityAdult           float64
	StarvationThresholdFraction    float64 // default 0.05 when zero-valued and factor enabled; see New
	StarvationFatStandardDeviation float64

	// Reproduction.
	ReproductionModel             ReproductionModelKind
	BreedingSeasonStartDay        int // julian day, 0-based
	BreedingSeasonLengthDays      int
	MaxAnnualReproductiveIncrease float64
	ReproductionUsesMovingAverage bool
	BodyConditionWindowDays       int // width of the rolling average window, when ReproductionUsesMovingAverage
}

const defaultStarvationThresholdFraction = 0.05

// New validates hft and returns a copy of it if every invariant holds.
// The only field New fills in is StarvationThresholdFraction, which
// defaults to 0.05 when StarvationThreshold is enabled and the fraction
// is zero. Construction is the only place configuration errors are detected;
// after this, an HFT is treated as correct everywhere else.
func New(h HFT) (*HFT, error) {
	if h.Name == "" {
		return nil, fmt.Errorf("%w: Name", ErrMissingParameter)
	}
	if h.BodyMassMaleAdult <= 0 {
		return nil, fmt.Errorf("%w: BodyMassMaleAdult must be > 0", ErrMissingParameter)
	}
	if h.BodyMassFemaleAdult <= 0 {
		return nil, fmt.Errorf("%w: BodyMassFemaleAdult must be > 0", ErrMissingParameter)
	}
	if h.BirthMass <= 0 || h.BirthMass >= h.BodyMassFemaleAdult {
		return nil, fmt.Errorf("%w: BirthMass must be in (0, BodyMassFemaleAdult)", ErrMissingParameter)
	}
	if h.BirthBodyFatFraction < 0 || h.BirthBodyFatFraction > 1 {
		return nil, fmt.Errorf("%w: BirthBodyFatFraction out of [0,1]", ErrMissingParameter)
	}
	if h.MaxBodyFatFraction <= 0 || h.MaxBodyFatFraction > 1 {
		return nil, fmt.Errorf("%w: MaxBodyFatFraction out of (0,1]", ErrMissingParameter)
	}
	if h.EmptyBodyFraction <= 0 || h.EmptyBodyFraction > 1 {
		return nil, fmt.Errorf("%w: EmptyBodyFraction out of (0,1]", ErrMissingParameter)
	}
	if h.LifespanYears <= 0 {
		return nil, fmt.Errorf("%w: LifespanYears must be > 0", ErrMissingParameter)
	}
	if h.EstablishmentAgeRangeYears[0] < 0 || h.EstablishmentAgeRangeYears[1] < h.EstablishmentAgeRangeYears[0] {
		return nil, fmt.Errorf("%w: EstablishmentAgeRangeYears invalid", ErrMissingParameter)
	}
	if h.MinimumViableDensityFraction < 0 || h.MinimumViableDensityFraction > 1 {
		return nil, fmt.Errorf("%w: MinimumViableDensityFraction out of [0,1]", ErrMissingParameter)
	}

	if h.DietComposer != PureGrazer {
		return nil, fmt.Errorf("%w: diet composer %v", ErrUnimplementedVariant, h.DietComposer)
	}
	switch h.Digestion {
	case Ruminant, HindgutFermenter:
	default:
		return nil, fmt.Errorf("%w: digestion type %v", ErrUnimplementedVariant, h.Digestion)
	}
	if h.NetEnergyModel != DefaultNetEnergy {
		return nil, fmt.Errorf("%w: net-energy model %v", ErrUnimplementedVariant, h.NetEnergyModel)
	}

	switch h.DigestibilityModel {
	case PftFixed, Pachzelt2013, FromNPP:
	default:
		return nil, fmt.Errorf("%w: digestibility model %v", ErrUnimplementedVariant, h.DigestibilityModel)
	}

	switch h.DigestiveLimit {
	case NoDigestiveLimit:
	case Allometric:
		if h.AllometricExponent == 0 || h.AllometricYAtMaleAdult <= 0 {
			return nil, fmt.Errorf("%w: Allometric digestive limit needs AllometricExponent and AllometricYAtMaleAdult", ErrMissingParameter)
		}
	case FixedFraction:
		if h.FixedFractionValue <= 0 || h.FixedFractionValue > 1 {
			return nil, fmt.Errorf("%w: FixedFractionValue out of (0,1]", ErrMissingParameter)
		}
	case IlliusGordon1992:
		if h.IlliusGordonI <= 0 {
			return nil, fmt.Errorf("%w: IlliusGordon1992 needs IlliusGordonI > 0", ErrMissingParameter)
		}
	default:
		return nil, fmt.Errorf("%w: digestive limit %v", ErrUnimplementedVariant, h.DigestiveLimit)
	}

	if h.DigestiveLimit != IlliusGordon1992 {
		if h.ForagingLimits[IlliusOConnor2000ForagingLimit] {
			return nil, fmt.Errorf("%w: IlliusOConnor2000 foraging limit requires IlliusGordon1992 digestive limit as its asymptote", ErrIncompatibleOptions)
		}
	}
	if h.ForagingLimits[IlliusOConnor2000ForagingLimit] && h.HalfSaturationDensityGramPerM2 <= 0 {
		return nil, fmt.Errorf("%w: HalfSaturationDensityGramPerM2 must be > 0 when IlliusOConnor2000 foraging limit is enabled", ErrMissingParameter)
	}

	if h.MortalityFactors[StarvationIlliusOConnor2000] && h.StarvationFatStandardDeviation <= 0 {
		return nil, fmt.Errorf("%w: StarvationFatStandardDeviation must be > 0 when StarvationIlliusOConnor2000 is enabled", ErrMissingParameter)
	}
	if h.MortalityFactors[StarvationThreshold] && h.StarvationThresholdFraction == 0 {
		h.StarvationThresholdFraction = defaultStarvationThresholdFraction
	}
	if h.MortalityFactors[Background] && (h.AnnualMortalityFirstYear < 0 || h.AnnualMortalityFirstYear >= 1 || h.AnnualMortalityAdult < 0 || h.AnnualMortalityAdult >= 1) {
		return nil, fmt.Errorf("%w: Background mortality rates must be in [0,1)", ErrMissingParameter)
	}

	if h.BreedingSeasonLengthDays <= 0 || h.BreedingSeasonLengthDays > 366 {
		return nil, fmt.Errorf("%w: BreedingSeasonLengthDays out of (0,366]", ErrMissingParameter)
	}
	if h.BreedingSeasonStartDay < 0 || h.BreedingSeasonStartDay > 365 {
		return nil, fmt.Errorf("%w: BreedingSeasonStartDay out of [0,365]", ErrMissingParameter)
	}
	if h.MaxAnnualReproductiveIncrease < 0 {
		return nil, fmt.Errorf("%w: MaxAnnualReproductiveIncrease must be >= 0", ErrMissingParameter)
	}
	switch h.ReproductionModel {
	case ReproductionIlliusOConnor2000, ReproductionConstMax, ReproductionLinear:
	default:
		return nil, fmt.Errorf("%w: reproduction model %v", ErrUnimplementedVariant, h.ReproductionModel)
	}
	if h.ReproductionUsesMovingAverage && h.BodyConditionWindowDays <= 0 {
		return nil, fmt.Errorf("%w: BodyConditionWindowDays must be > 0 when ReproductionUsesMovingAverage is set", ErrMissingParameter)
	}

	if h.ForageGrossEnergy <= 0 {
		return nil, fmt.Errorf("%w: ForageGrossEnergy must be > 0", ErrMissingParameter)
	}

	return &h, nil
}

// AdultBodyMass returns the adult body mass for sex.
func (h *HFT) AdultBodyMass(sex Sex) float64 {
	if sex == Male {
		return h.BodyMassMaleAdult
	}
	return h.BodyMassFemaleAdult
}

// PhysicalMaturityAge returns the physical-maturity age in days for sex.
func (h *HFT) PhysicalMaturityAge(sex Sex) int {
	if sex == Male {
		return h.PhysicalMaturityAgeMale
	}
	return h.PhysicalMaturityAgeFemale
}
