// Package feed implements the feed distributor: the daily allocation of
// available forage across every herbivore's published demand.
package feed

import (
	"fmt"

	"github.com/evoranch/fauna/forage"
	"github.com/evoranch/fauna/herbivore"
)

// safetyMargin keeps the sum of portions strictly below available,
// absorbing floating-point rounding in the proportional split.
const safetyMargin = 0.999

// Distributor allocates available forage across a set of demands. It is
// called once per day, after every herbivore has published its demand.
type Distributor interface {
	Distribute(available forage.Mass, demands map[herbivore.Interface]forage.Mass) (map[herbivore.Interface]forage.Mass, error)
}

// Equally allocates forage proportionally to each herbivore's share of
// total demand per forage type, never exceeding either that herbivore's
// own demand or the available total.
type Equally struct{}

// Distribute implements Distributor.
func (Equally) Distribute(available forage.Mass, demands map[herbivore.Interface]forage.Mass) (map[herbivore.Interface]forage.Mass, error) {
	totalDemand := forage.Zero[forage.MassTag]()
	for _, d := range demands {
		var err error
		totalDemand, err = totalDemand.Add(d)
		if err != nil {
			return nil, fmt.Errorf("feed.Equally: %w", err)
		}
	}

	portions := make(map[herbivore.Interface]forage.Mass, len(demands))
	for h, d := range demands {
		portion := forage.Zero[forage.MassTag]()
		for _, t := range forage.Types {
			demandI, err := d.Get(t)
			if err != nil {
				return nil, err
			}
			totalD, err := totalDemand.Get(t)
			if err != nil {
				return nil, err
			}
			avail, err := available.Get(t)
			if err != nil {
				return nil, err
			}
			var share float64
			switch {
			case totalD == 0:
				share = 0
			case totalD <= avail:
				share = demandI
			default:
				share = (demandI / totalD) * avail * safetyMargin
			}
			if share > demandI {
				share = demandI
			}
			portion, err = portion.Set(t, share)
			if err != nil {
				return nil, fmt.Errorf("feed.Equally: %w", err)
			}
		}
		portions[h] = portion
	}
	return portions, nil
}

// StrictPriority allocates available forage in the fixed priority order
// given at construction: each herbivore in turn receives the lesser of
// its own demand and whatever remains of the available pool.
type StrictPriority struct {
	Order []herbivore.Interface
}

// Distribute implements Distributor.
func (s StrictPriority) Distribute(available forage.Mass, demands map[herbivore.Interface]forage.Mass) (map[herbivore.Interface]forage.Mass, error) {
	remaining := available
	portions := make(map[herbivore.Interface]forage.Mass, len(demands))
	for _, h := range s.Order {
		d, ok := demands[h]
		if !ok {
			continue
		}
		portion := forage.Zero[forage.MassTag]()
		for _, t := range forage.Types {
			demandI, err := d.Get(t)
			if err != nil {
				return nil, err
			}
			avail, err := remaining.Get(t)
			if err != nil {
				return nil, err
			}
			share := demandI
			if share > avail {
				share = avail
			}
			portion, err = portion.Set(t, share)
			if err != nil {
				return nil, fmt.Errorf("feed.StrictPriority: %w", err)
			}
			avail -= share
			remaining, err = remaining.Set(t, avail)
			if err != nil {
				return nil, fmt.Errorf("feed.StrictPriority: %w", err)
			}
		}
		portions[h] = portion
	}
	for h := range demands {
		if _, already := portions[h]; !already {
			// herbivore not present in Order: allocate nothing rather
			// than fail.
			portions[h] = forage.Zero[forage.MassTag]()
		}
	}
	return portions, nil
}
