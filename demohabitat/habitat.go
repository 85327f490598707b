package demohabitat

import (
	"fmt"

	"github.com/evoranch/fauna/digest"
	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/habitat"
	"github.com/evoranch/fauna/hft"
)

// Habitat wires a LogisticGrass pool up to the habitat.Habitat contract,
// so faunasim can run end to end without a host vegetation model. Only
// the Grass forage type is populated; Browse always reports zero.
//
// The digestibility it reports each day comes from the digest.Provider
// selected at construction, fed with the sward's current live mass,
// dead mass and new growth.
type Habitat struct {
	grass           *LogisticGrass
	provider        digest.Provider
	digestibility   forage.Fraction
	aggregationUnit string
	environment     habitat.Environment
	excretedN       float64
	dead            bool
}

// NewHabitat constructs a standalone grass Habitat identified by
// aggregationUnit for output grouping, with a fixed ambient environment
// (faunasim's demo mode does not model seasonal temperature or snow).
// model selects how the sward's live/dead state becomes the
// digestibility reported to herbivores.
func NewHabitat(aggregationUnit string, settings GrassParameters, environment habitat.Environment, model hft.DigestibilityModelKind) (*Habitat, error) {
	grass, err := NewLogisticGrass(settings)
	if err != nil {
		return nil, fmt.Errorf("demohabitat.NewHabitat: %w", err)
	}
	provider, err := digestibilityProvider(model, settings)
	if err != nil {
		return nil, fmt.Errorf("demohabitat.NewHabitat: %w", err)
	}
	return &Habitat{
		grass:           grass,
		provider:        provider,
		digestibility:   forage.Zero[forage.FractionTag](),
		aggregationUnit: aggregationUnit,
		environment:     environment,
	}, nil
}

// digestibilityProvider builds the digest.Provider for model from the
// sward's live/dead digestibility endpoints.
func digestibilityProvider(model hft.DigestibilityModelKind, settings GrassParameters) (digest.Provider, error) {
	live := forage.Zero[forage.FractionTag]()
	live, err := live.Set(forage.Grass, settings.LiveDigestibility)
	if err != nil {
		return nil, err
	}
	dead := forage.Zero[forage.FractionTag]()
	dead, err = dead.Set(forage.Grass, settings.DeadDigestibility)
	if err != nil {
		return nil, err
	}
	switch model {
	case hft.PftFixed:
		return digest.PftFixedProvider{Fixed: live}, nil
	case hft.Pachzelt2013:
		return digest.Pachzelt2013Provider{LiveDigestibility: live, DeadDigestibility: dead}, nil
	case hft.FromNPP:
		return digest.NewFromNPPProvider(live, dead, 0), nil
	default:
		return nil, fmt.Errorf("demohabitat: unknown digestibility model %v", model)
	}
}

// InitDay grows the grass pool for julianDay, then refreshes today's
// digestibility from the provider, ahead of AvailableForage or
// Environment being read for that day.
func (h *Habitat) InitDay(julianDay int) error {
	if err := h.grass.GrowDaily(julianDay); err != nil {
		return err
	}
	liveMass := forage.Zero[forage.MassTag]()
	liveMass, err := liveMass.Set(forage.Grass, h.grass.LiveMassKgPerKm2())
	if err != nil {
		return err
	}
	deadMass := forage.Zero[forage.MassTag]()
	deadMass, err = deadMass.Set(forage.Grass, h.grass.DeadMassKgPerKm2())
	if err != nil {
		return err
	}
	npp := forage.Zero[forage.MassTag]()
	npp, err = npp.Set(forage.Grass, h.grass.GrowthTodayKgPerKm2())
	if err != nil {
		return err
	}
	digestibility, err := h.provider.Digestibility(liveMass, deadMass, npp)
	if err != nil {
		return fmt.Errorf("demohabitat.InitDay: %w", err)
	}
	h.digestibility = digestibility
	return nil
}

// AvailableForage reports the grazable grass mass, its digestibility,
// foliar cover and nitrogen content. Digestibility is the value the
// provider produced for the most recent InitDay; callers must call
// InitDay first each day, per the habitat.Habitat contract.
func (h *Habitat) AvailableForage() habitat.Forage {
	mass := forage.Zero[forage.MassTag]()
	mass, _ = mass.Set(forage.Grass, h.grass.AvailableMassKgPerKm2())

	foliarCover := forage.Zero[forage.FractionTag]()
	foliarCover, _ = foliarCover.Set(forage.Grass, h.grass.FoliarCover())

	nitrogen := forage.Zero[forage.FractionTag]()
	nitrogen, _ = nitrogen.Set(forage.Grass, h.grass.NitrogenFractionOfMass())

	return habitat.Forage{
		Mass:                   mass,
		Digestibility:          h.digestibility,
		FoliarCoverM2PerM2:     foliarCover,
		NitrogenFractionOfMass: nitrogen,
	}
}

// Environment returns the fixed ambient conditions this Habitat was
// constructed with.
func (h *Habitat) Environment() habitat.Environment { return h.environment }

// AggregationUnit identifies this habitat for output grouping.
func (h *Habitat) AggregationUnit() string { return h.aggregationUnit }

// RemoveEatenForage subtracts eaten grass mass from the standing pool.
func (h *Habitat) RemoveEatenForage(eaten forage.Mass) error {
	eatenGrass, err := eaten.Get(forage.Grass)
	if err != nil {
		return fmt.Errorf("demohabitat.RemoveEatenForage: %w", err)
	}
	return h.grass.RemoveEaten(eatenGrass)
}

// AddExcretedNitrogen accumulates returned nitrogen; the demo habitat
// does not feed it back into grass growth, only reports it for output.
func (h *Habitat) AddExcretedNitrogen(kgPerKm2 float64) { h.excretedN += kgPerKm2 }

// ExcretedNitrogen returns the nitrogen accumulated so far.
func (h *Habitat) ExcretedNitrogen() float64 { return h.excretedN }

// IsDead reports whether Kill has been called.
func (h *Habitat) IsDead() bool { return h.dead }

// Kill marks the habitat dead.
func (h *Habitat) Kill() { h.dead = true }

// GrassMassKgPerKm2 reports the total standing grass mass, including the
// ungrazable reserve, for display purposes.
func (h *Habitat) GrassMassKgPerKm2() float64 { return h.grass.TotalMassKgPerKm2() }
