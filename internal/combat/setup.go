package combat

import (
	"fmt"

	"dynmech/internal/config"
	"dynmech/internal/util"
)

// Engine is the data-driven half of a battle, built once from a config set
// and shared by every battle that uses it. It is read-only after NewEngine.
type Engine struct {
	Terrain   *TerrainSet
	Equipment *Equipment
	Synergy   *SynergyEngine
	Policy    *Policy
}

func NewEngine(set *config.Set) (*Engine, error) {
	if set == nil {
		set = config.Defaults()
	}
	ts := NewTerrainSet(set.Terrain)
	eq := NewEquipment(set.Equipment)
	syn, err := NewSynergyEngine(set.Synergies, ts, eq)
	if err != nil {
		return nil, err
	}
	pol, err := NewPolicy(set.Personalities)
	if err != nil {
		return nil, err
	}
	return &Engine{Terrain: ts, Equipment: eq, Synergy: syn, Policy: pol}, nil
}

func (e *Engine) Options() []Option {
	return []Option{WithSynergy(e.Synergy), WithPolicy(e.Policy)}
}

// NewBattle builds the roster scenario. The seed drives grid generation and
// every roll of the battle.
func (e *Engine) NewBattle(rc *config.RosterConfig, seed int64, opts ...Option) (*Battle, error) {
	if rc == nil {
		rc = config.DefaultRoster()
	}
	known := map[string]bool{}
	for _, n := range e.Policy.Personalities() {
		known[n] = true
	}
	for _, defs := range [][]config.UnitDef{rc.Player, rc.Enemy} {
		for _, d := range defs {
			if d.Personality != "" && !known[d.Personality] {
				return nil, fmt.Errorf("unit %s: unknown personality %q", d.ID, d.Personality)
			}
		}
	}
	player, err := BuildRoster(rc.Player, TeamPlayer, e.Equipment)
	if err != nil {
		return nil, fmt.Errorf("player roster: %w", err)
	}
	enemy, err := BuildRoster(rc.Enemy, TeamEnemy, e.Equipment)
	if err != nil {
		return nil, fmt.Errorf("enemy roster: %w", err)
	}
	rng := util.NewStream(seed)
	grid, err := GenerateGrid(rc.Grid.Width, rc.Grid.Height, e.Terrain, rng)
	if err != nil {
		return nil, err
	}
	all := append(e.Options(), WithRng(rng))
	return NewBattle(player, enemy, grid, append(all, opts...)...)
}

// NewBattleFromConfig is NewEngine followed by Engine.NewBattle on the set's
// roster.
func NewBattleFromConfig(set *config.Set, seed int64, opts ...Option) (*Battle, error) {
	if set == nil {
		set = config.Defaults()
	}
	e, err := NewEngine(set)
	if err != nil {
		return nil, err
	}
	return e.NewBattle(set.Roster, seed, opts...)
}
