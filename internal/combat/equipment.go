package combat

import (
	"fmt"
	"sort"

	"dynmech/internal/config"
)

// Slots is the order parts are applied in.
var Slots = []string{"chassis", "weapon", "armor", "accessory"}

const (
	SpecialDodge         = "dodge"
	SpecialDoubleAttack  = "doubleAttack"
	SpecialArmorPiercing = "armorPiercing"

	stealthDodge       = 0.2
	doubleAttackChance = 0.3
)

type Part struct {
	ID      string
	Slot    string
	Name    string
	Health  int
	Attack  int
	Defense int
	Speed   int
	Cost    int
	Special string
}

// Equipment is the part catalogue plus named presets.
type Equipment struct {
	parts   map[string]map[string]Part
	presets map[string]map[string]string
}

func NewEquipment(cfg *config.EquipmentConfig) *Equipment {
	if cfg == nil {
		cfg = config.DefaultEquipment()
	}
	eq := &Equipment{parts: map[string]map[string]Part{}, presets: map[string]map[string]string{}}
	for slot, parts := range cfg.Parts {
		eq.parts[slot] = map[string]Part{}
		for id, p := range parts {
			eq.parts[slot][id] = Part{
				ID: id, Slot: slot, Name: p.Name,
				Health: p.Health, Attack: p.Attack, Defense: p.Defense, Speed: p.Speed,
				Cost: p.Cost, Special: p.Special,
			}
		}
	}
	for name, p := range cfg.Presets {
		eq.presets[name] = p
	}
	return eq
}

func (e *Equipment) Part(slot, id string) (Part, error) {
	p, ok := e.parts[slot][id]
	if !ok {
		return Part{}, fmt.Errorf("unknown %s part %q", slot, id)
	}
	return p, nil
}

// Preset returns a copy of the named loadout.
func (e *Equipment) Preset(name string) (map[string]string, error) {
	p, ok := e.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}

func (e *Equipment) PresetNames() []string {
	out := make([]string, 0, len(e.presets))
	for n := range e.presets {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Customize applies a loadout's stat deltas to base stats. It must run once,
// at roster setup, on a full-health unit.
func (e *Equipment) Customize(u *Unit, loadout map[string]string) error {
	for slot := range loadout {
		if _, ok := e.parts[slot]; !ok {
			return fmt.Errorf("unknown slot %q", slot)
		}
	}
	parts := make([]Part, 0, len(loadout))
	for _, slot := range Slots {
		id, ok := loadout[slot]
		if !ok || id == "" {
			continue
		}
		p, err := e.Part(slot, id)
		if err != nil {
			return err
		}
		parts = append(parts, p)
	}
	for _, p := range parts {
		u.MaxHealth += p.Health
		u.Attack += p.Attack
		u.Defense += p.Defense
		u.Speed += p.Speed
	}
	u.MaxHealth = max(1, u.MaxHealth)
	u.Health = u.MaxHealth
	u.Attack = max(1, u.Attack)
	u.Defense = max(0, u.Defense)
	u.Speed = max(1, u.Speed)
	u.Loadout = map[string]string{}
	for _, p := range parts {
		u.Loadout[p.Slot] = p.ID
	}
	return nil
}

// Cost totals the credit price of a loadout; unknown parts cost nothing.
func (e *Equipment) Cost(loadout map[string]string) int {
	total := 0
	for slot, id := range loadout {
		total += e.parts[slot][id].Cost
	}
	return total
}

// Specials lists the special tags of the parts a unit carries.
func (e *Equipment) Specials(u *Unit) []string {
	var out []string
	for _, slot := range Slots {
		id, ok := u.Loadout[slot]
		if !ok {
			continue
		}
		if p, ok := e.parts[slot][id]; ok && p.Special != "" {
			out = append(out, p.Special)
		}
	}
	return out
}

// applySpecials runs during synergy phase 3.
func (e *Equipment) applySpecials(u *Unit) {
	for _, s := range e.Specials(u) {
		switch s {
		case SpecialDodge:
			u.Dodge += stealthDodge
		case SpecialDoubleAttack:
			u.AttackAgainChance = max(u.AttackAgainChance, doubleAttackChance)
		case SpecialArmorPiercing:
			u.ArmorPiercing = true
		}
	}
}
