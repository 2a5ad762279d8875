package combat

import (
	"fmt"
	"sort"

	"dynmech/internal/config"
)

type statMode int

const (
	modeAccumulate statMode = iota
	modeOverwrite
	modeOpening
)

var statModes = map[string]statMode{
	"attackBonus":       modeAccumulate,
	"defenseBonus":      modeAccumulate,
	"speedBonus":        modeAccumulate,
	"dodge":             modeAccumulate,
	"damageReduction":   modeAccumulate,
	"healBonus":         modeOverwrite,
	"attackAgainChance": modeOverwrite,
	"crit":              modeOverwrite,
	"armorPiercing":     modeOverwrite,
	"shielded":          modeOpening,
	"abilityCooldown":   modeOpening,
}

type Effect struct {
	Stat  string  `json:"stat"`
	Value float64 `json:"value"`
}

type Threshold struct {
	Count       int      `json:"count"`
	Description string   `json:"description"`
	Effects     []Effect `json:"effects"`
}

// BonusTable maps a faction or class name to its thresholds, ascending by
// count.
type BonusTable map[string][]Threshold

type ActiveBonus struct {
	Group     string    `json:"group"`
	Count     int       `json:"count"`
	Threshold Threshold `json:"threshold"`
}

// Active is the outcome of Calculate for one side.
type Active struct {
	Factions []ActiveBonus `json:"factions"`
	Classes  []ActiveBonus `json:"classes"`
}

type SynergyEngine struct {
	factions  BonusTable
	classes   BonusTable
	pilots    map[string][]Effect
	terrain   *TerrainSet
	equipment *Equipment
}

func toEffects(defs []config.EffectDef) ([]Effect, error) {
	out := make([]Effect, 0, len(defs))
	for _, d := range defs {
		if _, ok := statModes[d.Stat]; !ok {
			return nil, fmt.Errorf("unknown stat %q", d.Stat)
		}
		out = append(out, Effect{Stat: d.Stat, Value: d.Value})
	}
	return out, nil
}

func toTable(defs map[string]config.BonusDef) (BonusTable, error) {
	t := BonusTable{}
	for name, b := range defs {
		ths := make([]Threshold, 0, len(b.Thresholds))
		for _, th := range b.Thresholds {
			eff, err := toEffects(th.Effects)
			if err != nil {
				return nil, fmt.Errorf("%s threshold %d: %w", name, th.Count, err)
			}
			ths = append(ths, Threshold{Count: th.Count, Description: th.Description, Effects: eff})
		}
		sort.SliceStable(ths, func(i, j int) bool { return ths[i].Count < ths[j].Count })
		t[name] = ths
	}
	return t, nil
}

// NewSynergyEngine builds the engine from config. Nil arguments use the
// shipped defaults.
func NewSynergyEngine(cfg *config.SynergiesConfig, terrain *TerrainSet, eq *Equipment) (*SynergyEngine, error) {
	if cfg == nil {
		cfg = config.DefaultSynergies()
	}
	if terrain == nil {
		terrain = NewTerrainSet(nil)
	}
	if eq == nil {
		eq = NewEquipment(nil)
	}
	f, err := toTable(cfg.Factions)
	if err != nil {
		return nil, fmt.Errorf("faction synergies: %w", err)
	}
	c, err := toTable(cfg.Classes)
	if err != nil {
		return nil, fmt.Errorf("class synergies: %w", err)
	}
	pilots := map[string][]Effect{}
	for name, defs := range cfg.Pilots {
		eff, err := toEffects(defs)
		if err != nil {
			return nil, fmt.Errorf("pilot %s: %w", name, err)
		}
		pilots[name] = eff
	}
	return &SynergyEngine{factions: f, classes: c, pilots: pilots, terrain: terrain, equipment: eq}, nil
}

func DefaultSynergyEngine() *SynergyEngine {
	s, err := NewSynergyEngine(nil, nil, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SynergyEngine) Terrain() *TerrainSet { return s.terrain }

func (s *SynergyEngine) Equipment() *Equipment { return s.equipment }

func highest(ths []Threshold, n int) (Threshold, bool) {
	var best Threshold
	found := false
	for _, th := range ths {
		if th.Count <= n && (!found || th.Count >= best.Count) {
			best, found = th, true
		}
	}
	return best, found
}

func activate(table BonusTable, counts map[string]int) []ActiveBonus {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	var out []ActiveBonus
	for _, n := range names {
		if th, ok := highest(table[n], counts[n]); ok {
			out = append(out, ActiveBonus{Group: n, Count: counts[n], Threshold: th})
		}
	}
	return out
}

// Calculate counts living members of one side and picks the highest met
// threshold for every configured group.
func (s *SynergyEngine) Calculate(roster []*Unit) Active {
	factions := map[string]int{}
	classes := map[string]int{}
	for _, u := range roster {
		if !u.Alive {
			continue
		}
		if u.Faction != "" {
			factions[u.Faction]++
		}
		classes[string(u.Class)]++
	}
	return Active{Factions: activate(s.factions, factions), Classes: activate(s.classes, classes)}
}

func applyEffect(u *Unit, e Effect) {
	switch e.Stat {
	case "attackBonus":
		u.AttackBonus += int(e.Value)
	case "defenseBonus":
		u.DefenseBonus += int(e.Value)
	case "speedBonus":
		u.SpeedBonus += int(e.Value)
	case "dodge":
		u.Dodge += e.Value
	case "damageReduction":
		u.DamageReduction += e.Value
	case "healBonus":
		u.HealBonus = e.Value
	case "attackAgainChance":
		u.AttackAgainChance = e.Value
	case "crit":
		u.Crit = e.Value != 0 && !u.CritSpent
	case "armorPiercing":
		u.ArmorPiercing = e.Value != 0
	}
}

func applyOpeningEffect(u *Unit, e Effect) {
	switch e.Stat {
	case "shielded":
		u.Shielded = e.Value != 0
	case "abilityCooldown":
		u.AbilityCooldown = max(0, int(e.Value))
	}
}

// Apply rebuilds every bonus field on the roster from scratch, so calling it
// twice with the same inputs gives the same units.
func (s *SynergyEngine) Apply(roster []*Unit, active Active, grid *Grid) {
	for _, u := range roster {
		u.resetBonuses()
	}
	// faction bonuses reach the whole side, class bonuses only that class
	for _, ab := range active.Factions {
		for _, u := range roster {
			for _, e := range ab.Threshold.Effects {
				applyEffect(u, e)
			}
		}
	}
	for _, ab := range active.Classes {
		for _, u := range roster {
			if string(u.Class) != ab.Group {
				continue
			}
			for _, e := range ab.Threshold.Effects {
				applyEffect(u, e)
			}
		}
	}
	for _, u := range roster {
		if grid != nil {
			s.applyTerrain(u, grid)
		}
		s.equipment.applySpecials(u)
		for _, e := range s.pilots[u.Pilot] {
			applyEffect(u, e)
		}
		u.clampBonuses()
	}
}

func (s *SynergyEngine) applyTerrain(u *Unit, grid *Grid) {
	id := grid.TerrainAt(u.Pos())
	if id == "" {
		return
	}
	t := s.terrain.Get(id)
	u.AttackBonus += t.AttackBonus
	u.DefenseBonus += t.DefenseBonus
	u.Dodge += t.Dodge
	if u.Mobile() && t.MovementCost > 1 {
		u.SpeedBonus -= t.MovementCost - 1
	}
}

// ApplyOpening sets the one-shot battle-start effects (shields, cooldown
// overrides). They are never reset afterwards.
func (s *SynergyEngine) ApplyOpening(roster []*Unit, active Active) {
	for _, ab := range active.Factions {
		for _, u := range roster {
			if u.Alive {
				for _, e := range ab.Threshold.Effects {
					applyOpeningEffect(u, e)
				}
			}
		}
	}
	for _, ab := range active.Classes {
		for _, u := range roster {
			if string(u.Class) == ab.Group && u.Alive {
				for _, e := range ab.Threshold.Effects {
					applyOpeningEffect(u, e)
				}
			}
		}
	}
}

// Recompute is Calculate followed by Apply.
func (s *SynergyEngine) Recompute(roster []*Unit, grid *Grid) Active {
	a := s.Calculate(roster)
	s.Apply(roster, a, grid)
	return a
}
