package config

type PersonalitiesConfig struct {
	Personalities map[string][]RuleDef `yaml:"personalities"`
}

// RuleDef fires Do when When evaluates true. When is an expr expression over
// the decision environment; an empty When always matches.
type RuleDef struct {
	Name string `yaml:"name"`
	When string `yaml:"when"`
	Do   string `yaml:"do"`
}

func DefaultPersonalities() *PersonalitiesConfig {
	return &PersonalitiesConfig{
		Personalities: map[string][]RuleDef{
			"defensive": {
				{Name: "protect-wounded", When: "LowestAllyFraction() < 0.6", Do: "ability"},
			},
			"aggressive": {
				{Name: "ability-first", When: "AbilityReady()", Do: "ability"},
				{Name: "hit-weakest", When: "HasTarget()", Do: "attack"},
			},
			"opportunist": {
				{Name: "ability-first", When: "AbilityReady()", Do: "ability"},
				{Name: "hit-weakest", When: "HasTarget()", Do: "attack"},
			},
		},
	}
}
