package combat

import (
	"fmt"
	"math"

	"dynmech/internal/util"
)

const (
	medicHeal     = 6
	turretHealth  = 8
	turretAttack  = 3
	areaAttackMul = 0.8
	snipeBonus    = 2
)

// Board receives units spawned mid-battle.
type Board interface {
	Spawn(u *Unit)
}

// AbilityContext is everything a class ability may look at. Allies include
// the acting unit itself.
type AbilityContext struct {
	Allies  []*Unit
	Enemies []*Unit
	Board   Board
	Rng     util.Roller
}

type ability struct {
	kind     ActionKind
	cooldown int
	use      func(u *Unit, ctx AbilityContext) (Result, bool)
}

// abilities is the class dispatch table. Turrets have no entry.
var abilities = map[Class]ability{
	ClassDefender: {kind: ActShield, cooldown: 3, use: shieldWeakestAlly},
	ClassMedic:    {kind: ActHeal, cooldown: 2, use: healWoundedAlly},
	ClassScout:    {kind: ActDoubleMove, cooldown: 2, use: grantDoubleMove},
	ClassAssault:  {kind: ActAreaAttack, cooldown: 3, use: strikeAdjacent},
	ClassSniper:   {kind: ActSnipe, cooldown: 4, use: snipeWeakest},
	ClassEngineer: {kind: ActDeployTurret, cooldown: 5, use: deployTurret},
}

func HasAbility(c Class) bool {
	_, ok := abilities[c]
	return ok
}

// AbilityCooldown is the cooldown a class ability sets when it fires.
func AbilityCooldown(c Class) int { return abilities[c].cooldown }

// UseAbility fires the unit's class ability. It returns false when the
// ability is cooling down, the class has none, or no valid target exists;
// nothing changes in that case.
func (u *Unit) UseAbility(ctx AbilityContext) (Result, bool) {
	if u.AbilityCooldown > 0 {
		return Result{}, false
	}
	ab, ok := abilities[u.Class]
	if !ok {
		return Result{}, false
	}
	res, ok := ab.use(u, ctx)
	if !ok {
		return Result{}, false
	}
	u.AbilityCooldown = ab.cooldown
	res.Kind = ab.kind
	res.Actor = u.ID
	return res, true
}

func shieldWeakestAlly(u *Unit, ctx AbilityContext) (Result, bool) {
	ally := lowestHealth(ctx.Allies)
	if ally == nil {
		return Result{}, false
	}
	ally.Shielded = true
	return Result{Target: ally.ID, X: ally.X, Y: ally.Y}, true
}

func healWoundedAlly(u *Unit, ctx AbilityContext) (Result, bool) {
	var target *Unit
	for _, a := range ctx.Allies {
		if !a.Alive || a.Health >= a.MaxHealth {
			continue
		}
		if target == nil || a.HealthFraction() < target.HealthFraction() {
			target = a
		}
	}
	if target == nil {
		return Result{}, false
	}
	gained := target.Heal(medicHeal)
	return Result{Target: target.ID, Amount: gained, X: target.X, Y: target.Y}, true
}

func grantDoubleMove(u *Unit, _ AbilityContext) (Result, bool) {
	u.DoubleMove = true
	return Result{X: u.X, Y: u.Y}, true
}

func strikeAdjacent(u *Unit, ctx AbilityContext) (Result, bool) {
	dmg := int(math.Round(float64(u.FinalAttack()) * areaAttackMul))
	res := Result{X: u.X, Y: u.Y}
	hit := false
	for _, d := range dirs {
		p := u.Pos().Add(d)
		for _, e := range ctx.Enemies {
			if !e.Alive || e.Pos() != p {
				continue
			}
			res.addHit(e.TakeDamage(dmg, ctx.Rng))
			hit = true
		}
	}
	return res, hit
}

func snipeWeakest(u *Unit, ctx AbilityContext) (Result, bool) {
	target := lowestHealth(ctx.Enemies)
	if target == nil {
		return Result{}, false
	}
	res := Result{Target: target.ID, X: target.X, Y: target.Y}
	res.addHit(target.TakeDamage(u.FinalAttack()+snipeBonus, ctx.Rng))
	return res, true
}

func deployTurret(u *Unit, ctx AbilityContext) (Result, bool) {
	if ctx.Board == nil || u.TurretDeployed {
		return Result{}, false
	}
	t := NewTurret(u)
	ctx.Board.Spawn(t)
	u.TurretDeployed = true
	return Result{Target: t.ID, X: t.X, Y: t.Y}, true
}

// NewTurret builds the stationary unit an engineer deploys on its own tile.
func NewTurret(owner *Unit) *Unit {
	return &Unit{
		ID:        fmt.Sprintf("turret-%s", owner.ID),
		Name:      "Turret",
		Team:      owner.Team,
		Class:     ClassTurret,
		Health:    turretHealth,
		MaxHealth: turretHealth,
		Attack:    turretAttack,
		X:         owner.X,
		Y:         owner.Y,
		Alive:     true,
	}
}
