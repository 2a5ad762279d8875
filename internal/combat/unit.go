package combat

import (
	"math"

	"dynmech/internal/util"
)

type Class string

const (
	ClassDefender Class = "defender"
	ClassMedic    Class = "medic"
	ClassScout    Class = "scout"
	ClassAssault  Class = "assault"
	ClassSniper   Class = "sniper"
	ClassEngineer Class = "engineer"
	ClassTurret   Class = "turret"
)

// Classes is the closed set of unit classes.
var Classes = []Class{ClassDefender, ClassMedic, ClassScout, ClassAssault, ClassSniper, ClassEngineer, ClassTurret}

const (
	maxDodge           = 0.8
	maxDamageReduction = 0.9
)

// Unit is one combatant. Base stats are fixed at roster setup; the bonus
// fields are owned by the synergy engine and rebuilt on every recompute.
type Unit struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Team        Team              `json:"team"`
	Faction     string            `json:"faction,omitempty"`
	Class       Class             `json:"class"`
	Personality string            `json:"personality,omitempty"`
	Pilot       string            `json:"pilot,omitempty"`
	Loadout     map[string]string `json:"loadout,omitempty"`

	Health    int  `json:"health"`
	MaxHealth int  `json:"maxHealth"`
	Attack    int  `json:"attack"`
	Defense   int  `json:"defense"`
	Speed     int  `json:"speed"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Alive     bool `json:"alive"`

	// synergy-owned
	AttackBonus       int     `json:"attackBonus"`
	DefenseBonus      int     `json:"defenseBonus"`
	SpeedBonus        int     `json:"speedBonus"`
	Dodge             float64 `json:"dodge"`
	DamageReduction   float64 `json:"damageReduction"`
	HealBonus         float64 `json:"healBonus"`
	AttackAgainChance float64 `json:"attackAgainChance"`
	Crit              bool    `json:"crit"`
	ArmorPiercing     bool    `json:"armorPiercing"`

	// combat state
	Shielded        bool `json:"shielded"`
	AbilityCooldown int  `json:"abilityCooldown"`
	TurretDeployed  bool `json:"turretDeployed"`
	DoubleMove      bool `json:"doubleMove"`
	CritSpent       bool `json:"critSpent"`
	MovesLeft       int  `json:"movesLeft"`
	Acted           bool `json:"acted"`
}

func (u *Unit) Pos() Pos { return Pos{u.X, u.Y} }

func (u *Unit) FinalAttack() int  { return max(0, u.Attack+u.AttackBonus) }
func (u *Unit) FinalDefense() int { return max(0, u.Defense+u.DefenseBonus) }

// FinalSpeed never drops a mobile unit below 1.
func (u *Unit) FinalSpeed() int {
	s := u.Speed + u.SpeedBonus
	if u.Speed > 0 && s < 1 {
		return 1
	}
	return max(0, s)
}

func (u *Unit) HealthFraction() float64 {
	if u.MaxHealth <= 0 {
		return 0
	}
	return float64(u.Health) / float64(u.MaxHealth)
}

func (u *Unit) IsAlive() bool { return u.Alive }
func (u *Unit) CanAct() bool  { return u.Alive }

// Mobile units may take grid steps; turrets and zero-speed units never do.
func (u *Unit) Mobile() bool { return u.Class != ClassTurret && u.Speed > 0 }

// TakeDamage applies one incoming hit. Dodge is rolled first (no roll is
// drawn when Dodge is zero or rng is nil), then damage reduction, then the
// shield halves what is left, rounding up, and breaks.
func (u *Unit) TakeDamage(amount int, rng util.Roller) Hit {
	h := Hit{Target: u.ID}
	if u.Dodge > 0 && rng != nil && rng.Float64() < u.Dodge {
		h.Dodged = true
		return h
	}
	dmg := float64(max(0, amount)) * (1 - u.DamageReduction)
	if u.Shielded {
		dmg = math.Ceil(dmg / 2)
		u.Shielded = false
		h.Absorbed = true
	}
	loss := min(int(math.Round(dmg)), u.Health)
	u.Health -= loss
	h.Amount = loss
	if u.Health <= 0 {
		u.Health = 0
		h.Killed = u.Alive
		u.Alive = false
	}
	return h
}

// Heal restores amount scaled by HealBonus, capped at MaxHealth, and returns
// the health actually gained. Callers must not heal dead units.
func (u *Unit) Heal(amount int) int {
	gain := int(math.Round(float64(max(0, amount)) * (1 + u.HealBonus)))
	before := u.Health
	u.Health = min(u.MaxHealth, u.Health+gain)
	return u.Health - before
}

func (u *Unit) TickCooldown() {
	if u.AbilityCooldown > 0 {
		u.AbilityCooldown--
	}
}

// resetBonuses clears everything the synergy engine owns.
func (u *Unit) resetBonuses() {
	u.AttackBonus = 0
	u.DefenseBonus = 0
	u.SpeedBonus = 0
	u.Dodge = 0
	u.DamageReduction = 0
	u.HealBonus = 0
	u.AttackAgainChance = 0
	u.Crit = false
	u.ArmorPiercing = false
}

func (u *Unit) clampBonuses() {
	u.Dodge = math.Min(math.Max(u.Dodge, 0), maxDodge)
	u.DamageReduction = math.Min(math.Max(u.DamageReduction, 0), maxDamageReduction)
	u.HealBonus = math.Max(u.HealBonus, -1)
	u.AttackAgainChance = math.Min(math.Max(u.AttackAgainChance, 0), 1)
}

func (u *Unit) clone() *Unit {
	cp := *u
	if u.Loadout != nil {
		cp.Loadout = make(map[string]string, len(u.Loadout))
		for k, v := range u.Loadout {
			cp.Loadout[k] = v
		}
	}
	return &cp
}
