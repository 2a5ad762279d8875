package config

type TerrainConfig struct {
	Default string       `yaml:"default"`
	Types   []TerrainDef `yaml:"types"`
}

type TerrainDef struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	MovementCost int     `yaml:"movement_cost"`
	DefenseBonus int     `yaml:"defense_bonus"`
	AttackBonus  int     `yaml:"attack_bonus"`
	Dodge        float64 `yaml:"dodge"`
	Hazard       int     `yaml:"hazard"`
	Weight       float64 `yaml:"weight"`
	Note         string  `yaml:"note"`
}

func DefaultTerrain() *TerrainConfig {
	return &TerrainConfig{
		Default: "normal",
		Types: []TerrainDef{
			{ID: "normal", Name: "Normal", MovementCost: 1, Weight: 6},
			{ID: "fortress", Name: "Fortress", MovementCost: 1, DefenseBonus: 2, Weight: 1, Note: "fortified position"},
			{ID: "swamp", Name: "Swamp", MovementCost: 2, Weight: 1, Note: "slows movement"},
			{ID: "forest", Name: "Forest", MovementCost: 2, DefenseBonus: 1, Dodge: 0.15, Weight: 1, Note: "concealment"},
			{ID: "mountain", Name: "Mountain", MovementCost: 3, DefenseBonus: 2, AttackBonus: 2, Weight: 0.5, Note: "high ground"},
			{ID: "water", Name: "Water", MovementCost: 3, DefenseBonus: -1, Weight: 0.5},
			{ID: "lava", Name: "Lava", MovementCost: 2, Hazard: 2, Weight: 0.25, Note: "burns occupants"},
			{ID: "ice", Name: "Ice", MovementCost: 1, Weight: 0.5},
		},
	}
}
