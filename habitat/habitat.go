// Package habitat defines the contract the host vegetation model must
// implement, and the value types exchanged across it.
package habitat

import "github.com/evoranch/fauna/forage"

// Environment is the ambient physical state reported once per day.
type Environment struct {
	AirTemperatureC float64
	SnowDepthCm     float64
}

// Forage is a snapshot of what the habitat currently offers: available
// dry-matter mass, its digestibility, foliar cover, and nitrogen content,
// per forage type.
type Forage struct {
	Mass                   forage.Mass
	Digestibility          forage.Fraction
	FoliarCoverM2PerM2     forage.Fraction
	NitrogenFractionOfMass forage.Fraction
}

// TotalMass is the sum of available mass across all forage types.
func (f Forage) TotalMass() float64 {
	return f.Mass.Sum()
}

// Habitat is implemented by the host vegetation model. It is owned
// exclusively by one simulation unit.
type Habitat interface {
	// AvailableForage returns the current forage snapshot.
	AvailableForage() Forage
	// Environment returns the current ambient conditions.
	Environment() Environment
	// AggregationUnit identifies this habitat for output grouping.
	AggregationUnit() string
	// RemoveEatenForage subtracts eaten forage. Must never be called with
	// values exceeding AvailableForage(); habitat implementations may
	// treat a violation as a logic error.
	RemoveEatenForage(eaten forage.Mass) error
	// AddExcretedNitrogen returns nitrogen to the biogeochemistry.
	AddExcretedNitrogen(kgPerKm2 float64)
	// IsDead reports whether this habitat has been killed.
	IsDead() bool
	// Kill marks the habitat dead; further simulation of its unit stops.
	Kill()
	// InitDay is called first in each day's stage pipeline, before
	// AvailableForage or Environment are read for that day.
	InitDay(julianDay int) error
}
