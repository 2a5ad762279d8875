package config

type RosterConfig struct {
	Grid   GridDef   `yaml:"grid"`
	Player []UnitDef `yaml:"player"`
	Enemy  []UnitDef `yaml:"enemy"`
}

type GridDef struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type UnitDef struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Class       string            `yaml:"class"`
	Faction     string            `yaml:"faction"`
	Health      int               `yaml:"health"`
	Attack      int               `yaml:"attack"`
	Defense     int               `yaml:"defense"`
	Speed       int               `yaml:"speed"`
	X           int               `yaml:"x"`
	Y           int               `yaml:"y"`
	Personality string            `yaml:"personality"`
	Pilot       string            `yaml:"pilot"`
	Loadout     map[string]string `yaml:"loadout"`
	Preset      string            `yaml:"preset"`
}

// DefaultRoster is the 8x6 skirmish: assault/medic/scout against
// defender/sniper/engineer.
func DefaultRoster() *RosterConfig {
	return &RosterConfig{
		Grid: GridDef{Width: 8, Height: 6},
		Player: []UnitDef{
			{ID: "p1", Name: "Alpha", Class: "assault", Faction: "Wu", Health: 20, Attack: 6, Defense: 2, Speed: 3, X: 0, Y: 1},
			{ID: "p2", Name: "Bravo", Class: "medic", Faction: "Wu", Health: 16, Attack: 4, Defense: 1, Speed: 4, X: 0, Y: 3},
			{ID: "p3", Name: "Scout", Class: "scout", Faction: "Shu", Health: 14, Attack: 5, Defense: 1, Speed: 6, X: 0, Y: 2},
		},
		Enemy: []UnitDef{
			{ID: "e1", Name: "Omega", Class: "defender", Faction: "Wei", Health: 22, Attack: 5, Defense: 4, Speed: 2, X: 7, Y: 1, Personality: "defensive"},
			{ID: "e2", Name: "Delta", Class: "sniper", Faction: "Wei", Health: 16, Attack: 8, Defense: 1, Speed: 4, X: 7, Y: 3, Personality: "aggressive"},
			{ID: "e3", Name: "Engi", Class: "engineer", Faction: "Wei", Health: 18, Attack: 5, Defense: 3, Speed: 2, X: 7, Y: 2, Personality: "opportunist"},
		},
	}
}
