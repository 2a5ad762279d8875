package config

type SynergiesConfig struct {
	Factions map[string]BonusDef    `yaml:"factions"`
	Classes  map[string]BonusDef    `yaml:"classes"`
	Pilots   map[string][]EffectDef `yaml:"pilots"`
}

type BonusDef struct {
	Thresholds []ThresholdDef `yaml:"thresholds"`
}

type ThresholdDef struct {
	Count       int         `yaml:"count"`
	Description string      `yaml:"description"`
	Effects     []EffectDef `yaml:"effects"`
}

// EffectDef is one (stat, value) pair. Booleans use 1 for true.
type EffectDef struct {
	Stat  string  `yaml:"stat"`
	Value float64 `yaml:"value"`
}

func DefaultSynergies() *SynergiesConfig {
	return &SynergiesConfig{
		Factions: map[string]BonusDef{
			"Shu": {Thresholds: []ThresholdDef{
				{Count: 2, Description: "All allies gain +1 Speed", Effects: []EffectDef{{Stat: "speedBonus", Value: 1}}},
				{Count: 3, Description: "All allies gain +2 Speed and 10% Dodge", Effects: []EffectDef{{Stat: "speedBonus", Value: 2}, {Stat: "dodge", Value: 0.1}}},
			}},
			"Wei": {Thresholds: []ThresholdDef{
				{Count: 2, Description: "All allies gain +1 Defense", Effects: []EffectDef{{Stat: "defenseBonus", Value: 1}}},
				{Count: 3, Description: "All allies gain +2 Defense and 10% Damage Reduction", Effects: []EffectDef{{Stat: "defenseBonus", Value: 2}, {Stat: "damageReduction", Value: 0.1}}},
			}},
			"Wu": {Thresholds: []ThresholdDef{
				{Count: 2, Description: "All allies gain +1 Attack", Effects: []EffectDef{{Stat: "attackBonus", Value: 1}}},
				{Count: 3, Description: "All allies gain +2 Attack and a guaranteed crit each turn", Effects: []EffectDef{{Stat: "attackBonus", Value: 2}, {Stat: "crit", Value: 1}}},
			}},
		},
		Classes: map[string]BonusDef{
			"assault":  {Thresholds: []ThresholdDef{{Count: 2, Description: "Assault bots gain +3 Attack", Effects: []EffectDef{{Stat: "attackBonus", Value: 3}}}}},
			"sniper":   {Thresholds: []ThresholdDef{{Count: 2, Description: "Sniper bots have a 25% chance to attack again", Effects: []EffectDef{{Stat: "attackAgainChance", Value: 0.25}}}}},
			"defender": {Thresholds: []ThresholdDef{{Count: 2, Description: "Defender bots start battle with a shield", Effects: []EffectDef{{Stat: "shielded", Value: 1}}}}},
			"medic":    {Thresholds: []ThresholdDef{{Count: 2, Description: "Medic bots heal for 50% more", Effects: []EffectDef{{Stat: "healBonus", Value: 0.5}}}}},
			"scout":    {Thresholds: []ThresholdDef{{Count: 2, Description: "Scout bots gain +2 Speed", Effects: []EffectDef{{Stat: "speedBonus", Value: 2}}}}},
			"engineer": {Thresholds: []ThresholdDef{{Count: 2, Description: "Engineer bots start with their ability cooldown at 0", Effects: []EffectDef{{Stat: "abilityCooldown", Value: 0}}}}},
		},
		Pilots: map[string][]EffectDef{
			"ace":     {{Stat: "attackBonus", Value: 1}, {Stat: "dodge", Value: 0.05}},
			"veteran": {{Stat: "defenseBonus", Value: 1}},
		},
	}
}
