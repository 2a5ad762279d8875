package combat

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"dynmech/internal/bt"
	"dynmech/internal/config"
)

const (
	verbAbility = "ability"
	verbAttack  = "attack"
)

// DecisionEnv is what personality rule conditions can see. Every method is
// callable from an expression, e.g. `AbilityReady() && LivingEnemies() > 1`.
type DecisionEnv struct {
	b *Battle
	u *Unit
}

func (e DecisionEnv) LowestAllyFraction() float64 { return lowestFraction(e.b.allies(e.u)) }

func (e DecisionEnv) AbilityReady() bool {
	return HasAbility(e.u.Class) && e.u.AbilityCooldown == 0
}

func (e DecisionEnv) HasTarget() bool { return lowestHealth(e.b.opponents(e.u)) != nil }

func (e DecisionEnv) HealthFraction() float64 { return e.u.HealthFraction() }

func (e DecisionEnv) LivingEnemies() int { return len(living(e.b.opponents(e.u))) }

func (e DecisionEnv) LivingAllies() int { return len(living(e.b.allies(e.u))) }

func (e DecisionEnv) AdjacentEnemies() int {
	n := 0
	for _, o := range living(e.b.opponents(e.u)) {
		if adjacent(e.u.Pos(), o.Pos()) {
			n++
		}
	}
	return n
}

func (e DecisionEnv) Class() string { return string(e.u.Class) }

func (e DecisionEnv) Turn() int { return e.b.Turn }

type rule struct {
	name    string
	verb    string
	program *vm.Program
}

// Blackboard is the per-decision scratch space of the fallback tree.
type Blackboard struct {
	Battle *Battle
	Self   *Unit
	Target *Unit
	Result Result
	Acted  bool
}

// Policy decides what an AI-driven unit does: personality rules first, then
// the behavior tree.
type Policy struct {
	personalities map[string][]rule
	tree          bt.Node[*Blackboard]
}

func NewPolicy(cfg *config.PersonalitiesConfig) (*Policy, error) {
	if cfg == nil {
		cfg = config.DefaultPersonalities()
	}
	p := &Policy{personalities: map[string][]rule{}, tree: fallbackTree()}
	names := make([]string, 0, len(cfg.Personalities))
	for n := range cfg.Personalities {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		for i, rd := range cfg.Personalities[name] {
			if rd.Do != verbAbility && rd.Do != verbAttack {
				return nil, fmt.Errorf("personality %s rule %d: unknown verb %q", name, i, rd.Do)
			}
			src := rd.When
			if src == "" {
				src = "true"
			}
			prog, err := expr.Compile(src, expr.Env(DecisionEnv{}), expr.AsBool())
			if err != nil {
				return nil, fmt.Errorf("personality %s rule %q: %w", name, rd.Name, err)
			}
			p.personalities[name] = append(p.personalities[name], rule{name: rd.Name, verb: rd.Do, program: prog})
		}
	}
	return p, nil
}

// DefaultPolicy compiles the built-in personalities. It panics only if they
// fail to compile.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(nil)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) Personalities() []string {
	out := make([]string, 0, len(p.personalities))
	for n := range p.personalities {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Act makes u take its one action for the phase and returns what it did.
// A unit that already attacked or used its ability this phase may only move.
func (p *Policy) Act(b *Battle, u *Unit) Result {
	env := DecisionEnv{b: b, u: u}
	rules := p.personalities[u.Personality]
	if u.Acted {
		rules = nil
	}
	for _, r := range rules {
		out, err := vm.Run(r.program, env)
		if err != nil {
			b.logger.Warn("rule condition error", zap.String("rule", r.name), zap.Error(err))
			continue
		}
		if match, ok := out.(bool); !ok || !match {
			continue
		}
		switch r.verb {
		case verbAbility:
			if res, ok := b.useAbility(u); ok {
				return res
			}
		case verbAttack:
			if t := lowestHealth(b.opponents(u)); t != nil {
				return b.strike(u, t)
			}
		}
	}

	bb := &Blackboard{Battle: b, Self: u}
	if bt.Tick(p.tree, bb) == bt.Success && bb.Acted {
		return bb.Result
	}
	b.logLine("%s waits.", u.Name)
	return b.record(Result{Kind: ActWait, Actor: u.ID, X: u.X, Y: u.Y})
}

func fallbackTree() bt.Node[*Blackboard] {
	return bt.Selector(
		bt.Sequence(
			bt.Condition(canStrike),
			bt.Action(chooseTarget),
			bt.Condition(targetAdjacent),
			bt.Action(attackTarget),
		),
		bt.Sequence(
			bt.Action(chooseTarget),
			bt.Action(stepTowardTarget),
		),
	)
}

func chooseTarget(bb *Blackboard) bt.Status {
	bb.Target = lowestHealth(bb.Battle.opponents(bb.Self))
	if bb.Target == nil {
		return bt.Failure
	}
	return bt.Success
}

func canStrike(bb *Blackboard) bool { return !bb.Self.Acted }

func targetAdjacent(bb *Blackboard) bool {
	return bb.Target != nil && adjacent(bb.Self.Pos(), bb.Target.Pos())
}

func attackTarget(bb *Blackboard) bt.Status {
	bb.Result = bb.Battle.strike(bb.Self, bb.Target)
	bb.Acted = true
	return bt.Success
}

func stepTowardTarget(bb *Blackboard) bt.Status {
	res, ok := bb.Battle.stepToward(bb.Self, bb.Target)
	if !ok {
		return bt.Failure
	}
	bb.Result = res
	bb.Acted = true
	return bt.Success
}

// stepToward moves u one tile closer to t, closing the larger axis gap first
// (ties close y). If that tile is blocked the other axis is tried.
func (b *Battle) stepToward(u, t *Unit) (Result, bool) {
	if !u.Mobile() || u.MovesLeft <= 0 || adjacent(u.Pos(), t.Pos()) {
		return Result{}, false
	}
	dx, dy := t.X-u.X, t.Y-u.Y
	xStep := Pos{sign(dx), 0}
	yStep := Pos{0, sign(dy)}
	order := []Pos{yStep, xStep}
	if abs(dx) > abs(dy) {
		order = []Pos{xStep, yStep}
	}
	for _, d := range order {
		if d == (Pos{}) {
			continue
		}
		dst := u.Pos().Add(d)
		if !b.Grid.InBounds(dst) || b.occupied(dst) {
			continue
		}
		return b.moveTo(u, dst), true
	}
	return Result{}, false
}
