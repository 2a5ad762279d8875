package combat

import (
	"fmt"

	"dynmech/internal/config"
)

func living(units []*Unit) []*Unit {
	out := make([]*Unit, 0, len(units))
	for _, u := range units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

func anyAlive(units []*Unit) bool {
	for _, u := range units {
		if u.Alive {
			return true
		}
	}
	return false
}

// lowestHealth picks the living unit with the least health; the first one
// wins ties.
func lowestHealth(units []*Unit) *Unit {
	var best *Unit
	for _, u := range units {
		if !u.Alive {
			continue
		}
		if best == nil || u.Health < best.Health {
			best = u
		}
	}
	return best
}

// lowestFraction is the smallest health fraction among living units, or 1
// when none are alive.
func lowestFraction(units []*Unit) float64 {
	f := 1.0
	for _, u := range units {
		if u.Alive && u.HealthFraction() < f {
			f = u.HealthFraction()
		}
	}
	return f
}

func findUnit(units []*Unit, id string) *Unit {
	for _, u := range units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// unitAt returns the living unit standing on p.
func unitAt(units []*Unit, p Pos) *Unit {
	for _, u := range units {
		if u.Alive && u.X == p.X && u.Y == p.Y {
			return u
		}
	}
	return nil
}

func validClass(c Class) bool {
	for _, k := range Classes {
		if k == c {
			return true
		}
	}
	return false
}

// NewUnit builds a full-health unit from its definition.
func NewUnit(def config.UnitDef, team Team) (*Unit, error) {
	c := Class(def.Class)
	if !validClass(c) {
		return nil, fmt.Errorf("unit %s: unknown class %q", def.ID, def.Class)
	}
	if def.Health <= 0 {
		return nil, fmt.Errorf("unit %s: health must be positive", def.ID)
	}
	name := def.Name
	if name == "" {
		name = def.ID
	}
	return &Unit{
		ID:          def.ID,
		Name:        name,
		Team:        team,
		Faction:     def.Faction,
		Class:       c,
		Personality: def.Personality,
		Pilot:       def.Pilot,
		Health:      def.Health,
		MaxHealth:   def.Health,
		Attack:      def.Attack,
		Defense:     def.Defense,
		Speed:       def.Speed,
		X:           def.X,
		Y:           def.Y,
		Alive:       true,
	}, nil
}

// BuildRoster creates one side. A preset is resolved first, then explicit
// loadout entries override its slots. eq may be nil to skip customization.
func BuildRoster(defs []config.UnitDef, team Team, eq *Equipment) ([]*Unit, error) {
	seen := map[string]bool{}
	out := make([]*Unit, 0, len(defs))
	for _, d := range defs {
		if seen[d.ID] {
			return nil, fmt.Errorf("duplicate unit id %q", d.ID)
		}
		seen[d.ID] = true
		u, err := NewUnit(d, team)
		if err != nil {
			return nil, err
		}
		if eq != nil {
			loadout := map[string]string{}
			if d.Preset != "" {
				p, err := eq.Preset(d.Preset)
				if err != nil {
					return nil, fmt.Errorf("unit %s: %w", d.ID, err)
				}
				for k, v := range p {
					loadout[k] = v
				}
			}
			for k, v := range d.Loadout {
				loadout[k] = v
			}
			if len(loadout) > 0 {
				if err := eq.Customize(u, loadout); err != nil {
					return nil, fmt.Errorf("unit %s: %w", d.ID, err)
				}
			}
		}
		out = append(out, u)
	}
	return out, nil
}
