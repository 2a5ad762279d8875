package config

type EquipmentConfig struct {
	Parts   map[string]map[string]PartDef `yaml:"parts"`
	Presets map[string]map[string]string  `yaml:"presets"`
}

type PartDef struct {
	Name        string `yaml:"name"`
	Health      int    `yaml:"health"`
	Attack      int    `yaml:"attack"`
	Defense     int    `yaml:"defense"`
	Speed       int    `yaml:"speed"`
	Cost        int    `yaml:"cost"`
	Special     string `yaml:"special"`
	Description string `yaml:"description"`
}

func DefaultEquipment() *EquipmentConfig {
	return &EquipmentConfig{
		Parts: map[string]map[string]PartDef{
			"chassis": {
				"light":   {Name: "Light Chassis", Health: -5, Speed: 2, Defense: -1, Cost: 100, Description: "Fast and agile but fragile"},
				"heavy":   {Name: "Heavy Chassis", Health: 8, Speed: -1, Defense: 2, Cost: 200, Description: "Tanky but slow"},
				"stealth": {Name: "Stealth Chassis", Speed: 1, Cost: 250, Special: "dodge", Description: "+20% dodge chance"},
			},
			"weapon": {
				"plasma":  {Name: "Plasma Cannon", Attack: 3, Cost: 150, Description: "High damage"},
				"railgun": {Name: "Railgun", Attack: 5, Speed: -1, Cost: 300, Special: "armorPiercing", Description: "Pierces armor but heavy"},
				"burst":   {Name: "Burst Rifle", Attack: 1, Speed: 1, Cost: 120, Special: "doubleAttack", Description: "30% chance for double attack"},
			},
			"armor": {
				"reactive": {Name: "Reactive Armor", Defense: 2, Health: 3, Cost: 180},
				"shield":   {Name: "Energy Shield", Defense: 1, Health: -2, Cost: 220},
				"ablative": {Name: "Ablative Coating", Defense: 3, Speed: -1, Cost: 160},
			},
			"accessory": {
				"targeting": {Name: "Targeting Computer", Attack: 1, Cost: 140},
				"booster":   {Name: "Jump Booster", Speed: 2, Health: -3, Cost: 130},
				"repair":    {Name: "Auto-Repair", Health: 5, Cost: 190},
			},
		},
		Presets: map[string]map[string]string{
			"berserker": {"chassis": "light", "weapon": "burst", "armor": "reactive", "accessory": "booster"},
			"tank":      {"chassis": "heavy", "weapon": "railgun", "armor": "ablative", "accessory": "repair"},
			"assassin":  {"chassis": "stealth", "weapon": "plasma", "armor": "shield", "accessory": "targeting"},
		},
	}
}
