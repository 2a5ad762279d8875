package combat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynmech/internal/util"
)

func TestAttackDamageModels(t *testing.T) {
	tests := []struct {
		name      string
		model     DamageModel
		att, def  *Unit
		pierce    bool
		wantTotal int
	}{
		{name: "simple 8 vs 3", model: DamageSimple, att: mk("a", ClassDefender, 20, 8, 0, 0, 0), def: mk("d", ClassDefender, 20, 1, 3, 1, 0), wantTotal: 5},
		{name: "simple floor", model: DamageSimple, att: mk("a", ClassDefender, 20, 2, 0, 0, 0), def: mk("d", ClassDefender, 20, 1, 5, 1, 0), wantTotal: 1},
		{name: "typed neutral", model: DamageTyped, att: mk("a", ClassMedic, 20, 8, 0, 0, 0), def: mk("d", ClassDefender, 20, 1, 3, 1, 0), wantTotal: 5},
		{name: "typed advantage", model: DamageTyped, att: mk("a", ClassAssault, 20, 10, 0, 0, 0), def: mk("d", ClassSniper, 20, 1, 0, 1, 0), wantTotal: 12},
		{name: "typed disadvantage", model: DamageTyped, att: mk("a", ClassSniper, 20, 10, 0, 0, 0), def: mk("d", ClassAssault, 20, 1, 0, 1, 0), wantTotal: 8},
		{name: "engineer beats assault", model: DamageTyped, att: mk("a", ClassEngineer, 20, 10, 0, 0, 0), def: mk("d", ClassAssault, 20, 1, 0, 1, 0), wantTotal: 12},
		{name: "armor piercing", model: DamageTyped, att: mk("a", ClassMedic, 20, 10, 0, 0, 0), def: mk("d", ClassDefender, 20, 1, 4, 1, 0), pierce: true, wantTotal: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBattle(t, []*Unit{tt.att}, []*Unit{tt.def}, WithDamageModel(tt.model))
			tt.att.ArmorPiercing = tt.pierce
			res, err := b.Attack("a", "d")
			require.NoError(t, err)
			assert.Equal(t, ActAttack, res.Kind)
			assert.Equal(t, tt.wantTotal, res.Amount)
			assert.Equal(t, 20-tt.wantTotal, tt.def.Health)
		})
	}
}

func TestAttackLogsAndMarksActed(t *testing.T) {
	a := mk("a", ClassDefender, 20, 8, 0, 0, 0)
	a.Name = "Alpha"
	d := mk("d", ClassDefender, 20, 1, 3, 1, 0)
	d.Name = "Omega"
	b := newTestBattle(t, []*Unit{a}, []*Unit{d})

	_, err := b.Attack("a", "d")
	require.NoError(t, err)
	assert.Contains(t, b.Log, "Alpha attacks Omega for 5 damage!")
	assert.True(t, a.Acted)

	_, err = b.Attack("a", "d")
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, 15, d.Health)
}

func TestCritDoublesAndIsConsumed(t *testing.T) {
	a := mk("a", ClassMedic, 20, 6, 0, 0, 0)
	d := mk("d", ClassDefender, 40, 1, 1, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{d})
	a.Crit = true

	res, err := b.Attack("a", "d")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Amount)
	assert.True(t, res.Hits[0].Crit)
	assert.False(t, a.Crit)
	assert.True(t, a.CritSpent)
}

func TestExtraAttackRollsAfterFirstHit(t *testing.T) {
	a := mk("a", ClassMedic, 20, 6, 0, 0, 0)
	d := mk("d", ClassDefender, 40, 1, 1, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{d}, WithRng(&util.Fixed{Rolls: []float64{0.1}}))
	a.AttackAgainChance = 0.5

	res, err := b.Attack("a", "d")
	require.NoError(t, err)
	assert.Len(t, res.Hits, 2)
	assert.Equal(t, 10, res.Amount)
	assert.Contains(t, b.Log, "a attacks again!")
}

func TestAttackRejections(t *testing.T) {
	a := mk("a", ClassDefender, 20, 8, 0, 0, 0)
	far := mk("far", ClassDefender, 20, 1, 0, 4, 4)
	dead := mk("dead", ClassDefender, 20, 1, 0, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{far, dead})
	dead.Health, dead.Alive = 0, false

	tests := []struct {
		name, attacker, target string
	}{
		{"out of range", "a", "far"},
		{"dead target", "a", "dead"},
		{"unknown attacker", "ghost", "far"},
		{"unknown target", "a", "ghost"},
		{"own team", "a", "a"},
		{"enemy on player phase", "far", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(b.Log)
			_, err := b.Attack(tt.attacker, tt.target)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAction))
			var ae *ActionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "attack", ae.Op)
			assert.Len(t, b.Log, before+1)
			assert.Equal(t, 20, a.Health)
			assert.Equal(t, 20, far.Health)
		})
	}
}

func TestMoveValidation(t *testing.T) {
	a := mk("a", ClassMedic, 20, 1, 0, 1, 1)
	blocker := mk("b", ClassMedic, 20, 1, 0, 2, 1)
	e := mk("e", ClassDefender, 20, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{a, blocker}, []*Unit{e})

	for _, dst := range []Pos{{2, 1}, {2, 2}, {1, 3}, {-1, 1}, {1, 1}} {
		_, err := b.Move("a", dst.X, dst.Y)
		assert.ErrorIs(t, err, ErrInvalidAction, "%v", dst)
	}
	assert.Equal(t, Pos{1, 1}, a.Pos())

	res, err := b.Move("a", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, ActMove, res.Kind)
	assert.Equal(t, Pos{1, 0}, a.Pos())

	_, err = b.Move("a", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidAction, "one move per phase")

	_, err = b.Move("e", 5, 4)
	assert.ErrorIs(t, err, ErrInvalidAction, "enemy cannot move on the player phase")
}

func TestEdgeOfGrid(t *testing.T) {
	a := mk("a", ClassMedic, 20, 1, 0, 5, 5)
	e := mk("e", ClassDefender, 20, 1, 0, 0, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{e})
	_, err := b.Move("a", 6, 5)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestScoutDoubleMoveThroughBattle(t *testing.T) {
	s := mk("s", ClassScout, 14, 5, 1, 0, 0)
	e := mk("e", ClassDefender, 20, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{s}, []*Unit{e})

	res, err := b.RequestAbility("s")
	require.NoError(t, err)
	assert.Equal(t, ActDoubleMove, res.Kind)
	assert.Equal(t, 2, s.MovesLeft)

	_, err = b.Move("s", 1, 0)
	require.NoError(t, err)
	_, err = b.Move("s", 2, 0)
	require.NoError(t, err)
	_, err = b.Move("s", 3, 0)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = b.RequestAbility("s")
	assert.ErrorIs(t, err, ErrInvalidAction, "already acted")
}

func TestRequestAbilityWithoutTarget(t *testing.T) {
	a := mk("a", ClassAssault, 20, 6, 2, 0, 0)
	e := mk("e", ClassDefender, 20, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{a}, []*Unit{e})

	res, err := b.RequestAbility("a")
	require.NoError(t, err)
	assert.Equal(t, ActNone, res.Kind)
	assert.Equal(t, 0, a.AbilityCooldown)
	assert.False(t, a.Acted)
}

func TestRequestAbilityOnCooldown(t *testing.T) {
	d := mk("d", ClassDefender, 20, 6, 2, 0, 0)
	e := mk("e", ClassDefender, 20, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{d}, []*Unit{e})
	d.AbilityCooldown = 2

	_, err := b.RequestAbility("d")
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.False(t, d.Shielded)
}

func TestEngineerTurretJoinsRoster(t *testing.T) {
	eng := mk("eng", ClassEngineer, 18, 5, 3, 2, 2)
	e := mk("e", ClassDefender, 20, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{eng}, []*Unit{e})

	res, err := b.RequestAbility("eng")
	require.NoError(t, err)
	assert.Equal(t, ActDeployTurret, res.Kind)
	require.Len(t, b.Player, 2)
	assert.Equal(t, "turret-eng", b.Player[1].ID)
	assert.Equal(t, TeamPlayer, b.Player[1].Team)
	assert.NotNil(t, b.Unit("turret-eng"))
}

func TestVictoryEndsBattle(t *testing.T) {
	a := mk("a", ClassDefender, 20, 30, 0, 0, 0)
	d := mk("d", ClassDefender, 5, 1, 0, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{d})

	res, err := b.Attack("a", "d")
	require.NoError(t, err)
	assert.True(t, res.Hits[0].Killed)
	assert.True(t, b.Ended)
	assert.Equal(t, TeamPlayer, b.Winner)
	assert.Equal(t, PhaseEnded, b.Phase())
	assert.Equal(t, "Team player wins!", b.Log[len(b.Log)-1])

	_, err = b.EndTurn()
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = b.Move("a", 0, 1)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestDoubleKnockoutIsDraw(t *testing.T) {
	a := mk("a", ClassDefender, 20, 1, 0, 0, 0)
	d := mk("d", ClassDefender, 20, 1, 0, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{d})
	a.TakeDamage(100, nil)
	d.TakeDamage(100, nil)

	assert.True(t, b.checkVictory())
	assert.Equal(t, Draw, b.Winner)
	assert.True(t, b.Ended)
	assert.Equal(t, "Battle ends in a draw!", b.Log[len(b.Log)-1])
}

func TestEndTurnRunsEnemyPhase(t *testing.T) {
	p := mk("p", ClassDefender, 20, 1, 0, 0, 0)
	p.AbilityCooldown = 2
	e := mk("e", ClassMedic, 20, 5, 0, 3, 0)
	b := newTestBattle(t, []*Unit{p}, []*Unit{e})
	assert.Equal(t, PhasePlayer, b.Phase())

	results, err := b.EndTurn()
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, ActMove, results[0].Kind)
	assert.Equal(t, Pos{2, 0}, e.Pos())
	assert.Equal(t, 2, b.Turn)
	assert.Equal(t, PhasePlayer, b.Phase())
	assert.Equal(t, 1, p.AbilityCooldown, "player cooldown ticks at the start of the player phase")
	assert.Equal(t, 1, p.MovesLeft)

	_, err = b.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, Pos{1, 0}, e.Pos())
	_, err = b.EndTurn()
	require.NoError(t, err)
	assert.Equal(t, 15, p.Health, "adjacent enemy attacks")
}

func TestHazardBurnsAtPhaseStart(t *testing.T) {
	p := mk("p", ClassDefender, 10, 1, 0, 0, 0)
	e := mk("e", ClassDefender, 10, 1, 0, 5, 5)
	grid := NewGrid(6, 6, "normal")
	grid.Tiles[0][0] = "lava"
	b, err := NewBattle([]*Unit{p}, []*Unit{e}, grid, WithSynergy(plainSynergy(t)), WithRng(&util.Fixed{}))
	require.NoError(t, err)
	assert.Equal(t, 8, p.Health)
	assert.Equal(t, 10, e.Health)
	assert.Contains(t, b.Log, "p takes 2 damage from Lava!")
}

func TestNewBattleValidates(t *testing.T) {
	_, err := NewBattle(nil, []*Unit{mk("e", ClassMedic, 1, 1, 0, 0, 0)}, nil)
	assert.Error(t, err)

	_, err = NewBattle(
		[]*Unit{mk("a", ClassMedic, 10, 1, 0, 0, 0)},
		[]*Unit{mk("a", ClassMedic, 10, 1, 0, 1, 0)}, nil)
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewBattle(
		[]*Unit{mk("a", ClassMedic, 10, 1, 0, 0, 0)},
		[]*Unit{mk("b", ClassMedic, 10, 1, 0, 0, 0)}, nil)
	assert.ErrorContains(t, err, "share")

	_, err = NewBattle(
		[]*Unit{mk("a", ClassMedic, 10, 1, 0, 9, 0)},
		[]*Unit{mk("b", ClassMedic, 10, 1, 0, 0, 0)}, nil)
	assert.ErrorContains(t, err, "off the")
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	p := mk("p", ClassMedic, 10, 1, 0, 0, 0)
	p.Loadout = map[string]string{"weapon": "plasma"}
	e := mk("e", ClassDefender, 10, 1, 0, 5, 5)
	b := newTestBattle(t, []*Unit{p}, []*Unit{e})

	s := b.Snapshot()
	s.Player[0].Health = 1
	s.Player[0].Loadout["weapon"] = "burst"
	s.Grid.Tiles[0][0] = "lava"
	s.Log[0] = "changed"

	assert.Equal(t, 10, p.Health)
	assert.Equal(t, "plasma", p.Loadout["weapon"])
	assert.Equal(t, "normal", b.Grid.Tiles[0][0])
	assert.NotEqual(t, "changed", b.Log[0])
	assert.Equal(t, 1, s.Player[0].FinalAttack)
	assert.Equal(t, "normal", s.Player[0].Terrain)
	assert.Equal(t, PhasePlayer, s.Phase)
}

func TestObserverSeesEvents(t *testing.T) {
	var types []string
	a := mk("a", ClassDefender, 20, 8, 0, 0, 0)
	d := mk("d", ClassDefender, 20, 1, 3, 1, 0)
	b := newTestBattle(t, []*Unit{a}, []*Unit{d}, WithObserver(func(ev Event) { types = append(types, ev.Type) }))
	_, err := b.Attack("a", "d")
	require.NoError(t, err)
	assert.Contains(t, types, "PhaseStart")
	assert.Contains(t, types, "Action")
	assert.Contains(t, types, "LogLine")
	assert.NotEmpty(t, b.ID)
}

func TestAutoPlayerPhaseKeepsOneActionPerUnit(t *testing.T) {
	p := mk("p", ClassAssault, 20, 6, 0, 0, 0)
	q := mk("q", ClassScout, 20, 4, 0, 5, 5)
	e := mk("e", ClassDefender, 34, 5, 0, 1, 0)
	b := newTestBattle(t, []*Unit{p, q}, []*Unit{e})

	_, err := b.Attack("p", "e")
	require.NoError(t, err)
	hp := e.Health

	for _, res := range b.AutoPlayerPhase() {
		if res.Actor == "p" {
			assert.Equal(t, ActWait, res.Kind)
		}
	}
	assert.Equal(t, hp, e.Health)
	assert.Equal(t, Pos{0, 0}, p.Pos())
}
