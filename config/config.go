// Package config loads the run-wide options and herbivore functional type
// list from a YAML instruction file, merged over embedded defaults, and
// builds the typed values (feed.Distributor, output.Interval, []*hft.HFT,
// world.Parameters) the rest of the module consumes.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/evoranch/fauna/feed"
	"github.com/evoranch/fauna/hft"
	"github.com/evoranch/fauna/output"
	"github.com/evoranch/fauna/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Options holds the run-wide settings that are not per-HFT.
type Options struct {
	ForageDistribution        string `yaml:"forage_distribution"`
	OutputFormat              string `yaml:"output_format"`
	OutputInterval            string `yaml:"output_interval"`
	EstablishmentIntervalDays int    `yaml:"establishment_interval_days"`
}

// HFTConfig is the YAML-facing mirror of hft.HFT: the same fields, under
// snake_case tags, with enum-valued fields as strings and bool-sets as
// string lists. Build converts one HFTConfig into a validated *hft.HFT.
type HFTConfig struct {
	Name string `yaml:"name"`

	BodyMassMaleAdult    float64 `yaml:"body_mass_male_adult_kg"`
	BodyMassFemaleAdult  float64 `yaml:"body_mass_female_adult_kg"`
	BirthMass            float64 `yaml:"birth_mass_kg"`
	BirthBodyFatFraction float64 `yaml:"birth_body_fat_fraction"`
	MaxBodyFatFraction   float64 `yaml:"max_body_fat_fraction"`
	EmptyBodyFraction    float64 `yaml:"empty_body_fraction"`

	LifespanYears             float64 `yaml:"lifespan_years"`
	PhysicalMaturityAgeMale   int     `yaml:"physical_maturity_age_male_days"`
	PhysicalMaturityAgeFemale int     `yaml:"physical_maturity_age_female_days"`
	SexualMaturityAge         int     `yaml:"sexual_maturity_age_days"`

	MinimumViableDensityFraction float64 `yaml:"minimum_viable_density_fraction"`
	EstablishmentDensity         float64 `yaml:"establishment_density_ind_per_km2"`
	EstablishmentAgeRangeYears   [2]int  `yaml:"establishment_age_range_years"`

	Digestion          string   `yaml:"digestion"`
	DietComposer       string   `yaml:"diet_composer"`
	NetEnergyModel     string   `yaml:"net_energy_model"`
	DigestiveLimit     string   `yaml:"digestive_limit"`
	ForagingLimits     []string `yaml:"foraging_limits"`
	DigestibilityModel string   `yaml:"digestibility_model"`
	ForageGrossEnergy  float64  `yaml:"forage_gross_energy_mj_per_kg"`

	AllometricExponent     float64 `yaml:"allometric_exponent"`
	AllometricYAtMaleAdult float64 `yaml:"allometric_y_at_male_adult"`
	FixedFractionValue     float64 `yaml:"fixed_fraction_value"`
	IlliusGordonI          float64 `yaml:"illius_gordon_i"`
	IlliusGordonJ          float64 `yaml:"illius_gordon_j"`
	IlliusGordonK          float64 `yaml:"illius_gordon_k"`

	HalfSaturationDensityGramPerM2 float64 `yaml:"half_saturation_density_g_per_m2"`

	ExpenditureComponents     []string `yaml:"expenditure_components"`
	ConductanceCoefficient    float64  `yaml:"conductance_coefficient"`
	LowerCriticalTemperatureC float64  `yaml:"lower_critical_temperature_c"`

	MortalityFactors               []string `yaml:"mortality_factors"`
	AnnualMortalityFirstYear       float64  `yaml:"annual_mortality_first_year"`
	AnnualMortalityAdult           float64  `yaml:"annual_mortality_adult"`
	StarvationThresholdFraction    float64  `yaml:"starvation_threshold_fraction"`
	StarvationFatStandardDeviation float64  `yaml:"starvation_fat_standard_deviation"`

	ReproductionModel             string  `yaml:"reproduction_model"`
	BreedingSeasonStartDay        int     `yaml:"breeding_season_start_day"`
	BreedingSeasonLengthDays      int     `yaml:"breeding_season_length_days"`
	MaxAnnualReproductiveIncrease float64 `yaml:"max_annual_reproductive_increase"`
	ReproductionUsesMovingAverage bool    `yaml:"reproduction_uses_moving_average"`
	BodyConditionWindowDays       int     `yaml:"body_condition_window_days"`
}

// Config is the full parsed instruction file: run-wide options plus the
// herbivore functional type list.
type Config struct {
	Options Options     `yaml:"options"`
	HFTs    []HFTConfig `yaml:"hfts"`
}

// Load parses a YAML instruction file, merging it over the embedded
// defaults. If path is empty, only the embedded defaults are used (an
// empty HFT list, so the caller must still supply HFTs to run anything).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error, for use at program start.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// BuildHFTs validates and converts every HFTConfig into an *hft.HFT.
func (c *Config) BuildHFTs() ([]*hft.HFT, error) {
	hfts := make([]*hft.HFT, 0, len(c.HFTs))
	for _, hc := range c.HFTs {
		h, err := hc.build()
		if err != nil {
			return nil, fmt.Errorf("config.BuildHFTs: %w", err)
		}
		hfts = append(hfts, h)
	}
	return hfts, nil
}

// BuildForageDistribution converts Options.ForageDistribution into a
// feed.Distributor. Only "equally" can be selected from an instruction
// file; feed.StrictPriority needs an explicit herbivore order that no
// file-level option can express.
func (c *Config) BuildForageDistribution() (feed.Distributor, error) {
	switch c.Options.ForageDistribution {
	case "equally", "":
		return feed.Equally{}, nil
	default:
		return nil, fmt.Errorf("config: unimplemented forage_distribution %q", c.Options.ForageDistribution)
	}
}

// BuildOutputInterval converts Options.OutputInterval into an
// output.Interval.
func (c *Config) BuildOutputInterval() (output.Interval, error) {
	switch c.Options.OutputInterval {
	case "daily", "":
		return output.Daily, nil
	case "monthly":
		return output.Monthly, nil
	case "annual":
		return output.Annual, nil
	case "decadal":
		return output.Decadal, nil
	default:
		return 0, fmt.Errorf("config: unimplemented output_interval %q", c.Options.OutputInterval)
	}
}

// BuildOutputFormat validates Options.OutputFormat. Only "text-tables"
// is implemented.
func (c *Config) BuildOutputFormat() error {
	switch c.Options.OutputFormat {
	case "text-tables", "":
		return nil
	default:
		return fmt.Errorf("config: unimplemented output_format %q", c.Options.OutputFormat)
	}
}

// BuildWorldParameters converts Options plus the forage distribution and
// output interval into a world.Parameters ready for world.New.
func (c *Config) BuildWorldParameters() (world.Parameters, error) {
	if err := c.BuildOutputFormat(); err != nil {
		return world.Parameters{}, err
	}
	distributor, err := c.BuildForageDistribution()
	if err != nil {
		return world.Parameters{}, err
	}
	interval, err := c.BuildOutputInterval()
	if err != nil {
		return world.Parameters{}, err
	}
	return world.Parameters{
		ForageDistribution:        distributor,
		OutputInterval:            interval,
		EstablishmentIntervalDays: c.Options.EstablishmentIntervalDays,
	}, nil
}

func (hc HFTConfig) build() (*hft.HFT, error) {
	digestion, err := parseDigestion(hc.Digestion)
	if err != nil {
		return nil, err
	}
	dietComposer, err := parseDietComposer(hc.DietComposer)
	if err != nil {
		return nil, err
	}
	netEnergy, err := parseNetEnergyModel(hc.NetEnergyModel)
	if err != nil {
		return nil, err
	}
	digestiveLimit, err := parseDigestiveLimit(hc.DigestiveLimit)
	if err != nil {
		return nil, err
	}
	digestibilityModel, err := parseDigestibilityModel(hc.DigestibilityModel)
	if err != nil {
		return nil, err
	}
	reproductionModel, err := parseReproductionModel(hc.ReproductionModel)
	if err != nil {
		return nil, err
	}
	foragingLimits, err := parseForagingLimits(hc.ForagingLimits)
	if err != nil {
		return nil, err
	}
	expenditureComponents, err := parseExpenditureComponents(hc.ExpenditureComponents)
	if err != nil {
		return nil, err
	}
	mortalityFactors, err := parseMortalityFactors(hc.MortalityFactors)
	if err != nil {
		return nil, err
	}

	return hft.New(hft.HFT{
		Name: hc.Name,

		BodyMassMaleAdult:    hc.BodyMassMaleAdult,
		BodyMassFemaleAdult:  hc.BodyMassFemaleAdult,
		BirthMass:            hc.BirthMass,
		BirthBodyFatFraction: hc.BirthBodyFatFraction,
		MaxBodyFatFraction:   hc.MaxBodyFatFraction,
		EmptyBodyFraction:    hc.EmptyBodyFraction,

		LifespanYears:             hc.LifespanYears,
		PhysicalMaturityAgeMale:   hc.PhysicalMaturityAgeMale,
		PhysicalMaturityAgeFemale: hc.PhysicalMaturityAgeFemale,
		SexualMaturityAge:         hc.SexualMaturityAge,

		MinimumViableDensityFraction: hc.MinimumViableDensityFraction,
		EstablishmentDensity:         hc.EstablishmentDensity,
		EstablishmentAgeRangeYears:   hc.EstablishmentAgeRangeYears,

		Digestion:          digestion,
		DietComposer:       dietComposer,
		NetEnergyModel:     netEnergy,
		DigestiveLimit:     digestiveLimit,
		ForagingLimits:     foragingLimits,
		DigestibilityModel: digestibilityModel,
		ForageGrossEnergy:  hc.ForageGrossEnergy,

		AllometricExponent:     hc.AllometricExponent,
		AllometricYAtMaleAdult: hc.AllometricYAtMaleAdult,
		FixedFractionValue:     hc.FixedFractionValue,
		IlliusGordonI:          hc.IlliusGordonI,
		IlliusGordonJ:          hc.IlliusGordonJ,
		IlliusGordonK:          hc.IlliusGordonK,

		HalfSaturationDensityGramPerM2: hc.HalfSaturationDensityGramPerM2,

		ExpenditureComponents:     expenditureComponents,
		ConductanceCoefficient:    hc.ConductanceCoefficient,
		LowerCriticalTemperatureC: hc.LowerCriticalTemperatureC,

		MortalityFactors:               mortalityFactors,
		AnnualMortalityFirstYear:       hc.AnnualMortalityFirstYear,
		AnnualMortalityAdult:           hc.AnnualMortalityAdult,
		StarvationThresholdFraction:    hc.StarvationThresholdFraction,
		StarvationFatStandardDeviation: hc.StarvationFatStandardDeviation,

		ReproductionModel:             reproductionModel,
		BreedingSeasonStartDay:        hc.BreedingSeasonStartDay,
		BreedingSeasonLengthDays:      hc.BreedingSeasonLengthDays,
		MaxAnnualReproductiveIncrease: hc.MaxAnnualReproductiveIncrease,
		ReproductionUsesMovingAverage: hc.ReproductionUsesMovingAverage,
		BodyConditionWindowDays:       hc.BodyConditionWindowDays,
	})
}

func parseDigestion(s string) (hft.DigestionType, error) {
	switch s {
	case "ruminant", "":
		return hft.Ruminant, nil
	case "hindgut-fermenter":
		return hft.HindgutFermenter, nil
	default:
		return 0, fmt.Errorf("config: unknown digestion %q", s)
	}
}

func parseDietComposer(s string) (hft.DietComposer, error) {
	switch s {
	case "pure-grazer", "":
		return hft.PureGrazer, nil
	default:
		return 0, fmt.Errorf("config: unimplemented diet_composer %q", s)
	}
}

func parseNetEnergyModel(s string) (hft.NetEnergyModel, error) {
	switch s {
	case "default", "":
		return hft.DefaultNetEnergy, nil
	default:
		return 0, fmt.Errorf("config: unimplemented net_energy_model %q", s)
	}
}

func parseDigestiveLimit(s string) (hft.DigestiveLimitKind, error) {
	switch s {
	case "none", "":
		return hft.NoDigestiveLimit, nil
	case "allometric":
		return hft.Allometric, nil
	case "fixed-fraction":
		return hft.FixedFraction, nil
	case "illius-gordon-1992":
		return hft.IlliusGordon1992, nil
	default:
		return 0, fmt.Errorf("config: unknown digestive_limit %q", s)
	}
}

func parseDigestibilityModel(s string) (hft.DigestibilityModelKind, error) {
	switch s {
	case "pft-fixed", "":
		return hft.PftFixed, nil
	case "pachzelt-2013":
		return hft.Pachzelt2013, nil
	case "from-npp":
		return hft.FromNPP, nil
	default:
		return 0, fmt.Errorf("config: unknown digestibility_model %q", s)
	}
}

func parseReproductionModel(s string) (hft.ReproductionModelKind, error) {
	switch s {
	case "illius-oconnor-2000":
		return hft.ReproductionIlliusOConnor2000, nil
	case "const-max", "":
		return hft.ReproductionConstMax, nil
	case "linear":
		return hft.ReproductionLinear, nil
	default:
		return 0, fmt.Errorf("config: unknown reproduction_model %q", s)
	}
}

func parseForagingLimits(tags []string) (map[hft.ForagingLimitKind]bool, error) {
	out := make(map[hft.ForagingLimitKind]bool, len(tags))
	for _, tag := range tags {
		switch tag {
		case "illius-oconnor-2000":
			out[hft.IlliusOConnor2000ForagingLimit] = true
		case "general-functional-response":
			out[hft.GeneralFunctionalResponse] = true
		default:
			return nil, fmt.Errorf("config: unknown foraging limit %q", tag)
		}
	}
	return out, nil
}

func parseExpenditureComponents(tags []string) (map[hft.ExpenditureComponentKind]bool, error) {
	out := make(map[hft.ExpenditureComponentKind]bool, len(tags))
	for _, tag := range tags {
		switch tag {
		case "taylor-1981":
			out[hft.Taylor1981] = true
		case "zhu-2018":
			out[hft.Zhu2018] = true
		case "thermoregulation":
			out[hft.Thermoregulation] = true
		default:
			return nil, fmt.Errorf("config: unknown expenditure component %q", tag)
		}
	}
	return out, nil
}

func parseMortalityFactors(tags []string) (map[hft.MortalityFactorKind]bool, error) {
	out := make(map[hft.MortalityFactorKind]bool, len(tags))
	for _, tag := range tags {
		switch tag {
		case "background":
			out[hft.Background] = true
		case "lifespan":
			out[hft.Lifespan] = true
		case "starvation-threshold":
			out[hft.StarvationThreshold] = true
		case "starvation-illius-oconnor-2000":
			out[hft.StarvationIlliusOConnor2000] = true
		default:
			return nil, fmt.Errorf("config: unknown mortality factor %q", tag)
		}
	}
	return out, nil
}
