package habitat

import (
	"testing"

	"github.com/evoranch/fauna/forage"
)

func TestForageTotalMass(t *testing.T) {
	m := forage.Zero[forage.MassTag]()
	m, _ = m.Set(forage.Grass, 1000)
	m, _ = m.Set(forage.Browse, 200)
	f := Forage{Mass: m}
	if got := f.TotalMass(); got != 1200 {
		t.Errorf("TotalMass() = %v, want 1200", got)
	}
}
