package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynmech/internal/config"
)

func wu(id string, class Class, x int) *Unit {
	u := mk(id, class, 20, 5, 2, x, 0)
	u.Faction = "Wu"
	return u
}

func TestCalculatePicksHighestThresholdOnly(t *testing.T) {
	s := DefaultSynergyEngine()
	roster := []*Unit{wu("a", ClassAssault, 0), wu("b", ClassMedic, 1), wu("c", ClassScout, 2)}

	act := s.Calculate(roster)
	require.Len(t, act.Factions, 1)
	assert.Equal(t, "Wu", act.Factions[0].Group)
	assert.Equal(t, 3, act.Factions[0].Count)
	assert.Equal(t, 3, act.Factions[0].Threshold.Count)
	assert.Empty(t, act.Classes)

	s.Apply(roster, act, nil)
	for _, u := range roster {
		assert.Equal(t, 2, u.AttackBonus, "count-3 effect replaces count-2, it does not stack")
		assert.True(t, u.Crit)
	}
}

func TestCalculateIgnoresDeadMembers(t *testing.T) {
	s := DefaultSynergyEngine()
	roster := []*Unit{wu("a", ClassAssault, 0), wu("b", ClassMedic, 1), wu("c", ClassScout, 2)}
	roster[2].Health, roster[2].Alive = 0, false

	act := s.Calculate(roster)
	require.Len(t, act.Factions, 1)
	assert.Equal(t, 2, act.Factions[0].Count)
	assert.Equal(t, 2, act.Factions[0].Threshold.Count)

	s.Apply(roster, act, nil)
	assert.Equal(t, 1, roster[0].AttackBonus)
	assert.False(t, roster[0].Crit)
}

func TestThresholdMonotonic(t *testing.T) {
	s := DefaultSynergyEngine()
	prev := 0
	for n := 0; n <= 4; n++ {
		var roster []*Unit
		for i := 0; i < n; i++ {
			roster = append(roster, wu(string(rune('a'+i)), ClassMedic, i))
		}
		got := 0
		for _, ab := range s.Calculate(roster).Factions {
			got = ab.Threshold.Count
		}
		assert.GreaterOrEqual(t, got, prev, "n=%d", n)
		prev = got
	}
	assert.Equal(t, 3, prev)
}

func TestApplyIsIdempotent(t *testing.T) {
	s := DefaultSynergyEngine()
	grid := NewGrid(4, 2, "normal")
	grid.Tiles[0][1] = "forest"
	roster := []*Unit{wu("a", ClassAssault, 0), wu("b", ClassAssault, 1), wu("c", ClassSniper, 2)}
	roster[1].Pilot = "ace"

	act := s.Calculate(roster)
	s.Apply(roster, act, grid)
	first := copyUnits(roster)
	s.Apply(roster, act, grid)
	assert.Equal(t, first, copyUnits(roster))

	s.Recompute(roster, grid)
	assert.Equal(t, first, copyUnits(roster))
}

func TestApplyLayers(t *testing.T) {
	s := DefaultSynergyEngine()
	grid := NewGrid(4, 2, "normal")
	grid.Tiles[0][1] = "forest"
	roster := []*Unit{wu("a", ClassAssault, 0), wu("b", ClassAssault, 1)}
	roster[1].Pilot = "ace"

	s.Recompute(roster, grid)
	a, b := roster[0], roster[1]
	// Wu(2) +1, assault(2) +3
	assert.Equal(t, 4, a.AttackBonus)
	assert.Equal(t, 0, a.DefenseBonus)
	// plus forest and the ace pilot
	assert.Equal(t, 5, b.AttackBonus)
	assert.Equal(t, 1, b.DefenseBonus)
	assert.Equal(t, -1, b.SpeedBonus)
	assert.InDelta(t, 0.2, b.Dodge, 1e-9)
}

func TestSidesDoNotCrossPollinate(t *testing.T) {
	s := DefaultSynergyEngine()
	player := []*Unit{wu("a", ClassMedic, 0)}
	enemy := []*Unit{wu("b", ClassMedic, 1), wu("c", ClassScout, 2)}
	s.Recompute(player, nil)
	s.Recompute(enemy, nil)
	assert.Equal(t, 0, player[0].AttackBonus)
	assert.Equal(t, 1, enemy[0].AttackBonus)
}

func TestApplyClampsDodgeAndReduction(t *testing.T) {
	cfg := &config.SynergiesConfig{
		Factions: map[string]config.BonusDef{"X": {Thresholds: []config.ThresholdDef{
			{Count: 1, Effects: []config.EffectDef{{Stat: "dodge", Value: 0.6}, {Stat: "damageReduction", Value: 0.7}}},
		}}},
		Classes: map[string]config.BonusDef{"scout": {Thresholds: []config.ThresholdDef{
			{Count: 1, Effects: []config.EffectDef{{Stat: "dodge", Value: 0.6}, {Stat: "damageReduction", Value: 0.7}}},
		}}},
	}
	s, err := NewSynergyEngine(cfg, nil, nil)
	require.NoError(t, err)
	u := mk("u", ClassScout, 10, 1, 0, 0, 0)
	u.Faction = "X"
	s.Recompute([]*Unit{u}, nil)
	assert.InDelta(t, 0.8, u.Dodge, 1e-9)
	assert.InDelta(t, 0.9, u.DamageReduction, 1e-9)
}

func TestCritSpentSurvivesRecompute(t *testing.T) {
	s := DefaultSynergyEngine()
	roster := []*Unit{wu("a", ClassAssault, 0), wu("b", ClassMedic, 1), wu("c", ClassScout, 2)}
	roster[0].CritSpent = true
	s.Recompute(roster, nil)
	assert.False(t, roster[0].Crit)
	assert.True(t, roster[1].Crit)
}

func TestOpeningEffectsSurviveApply(t *testing.T) {
	s := DefaultSynergyEngine()
	roster := []*Unit{mk("d1", ClassDefender, 20, 1, 1, 0, 0), mk("d2", ClassDefender, 20, 1, 1, 1, 0)}
	act := s.Calculate(roster)
	s.ApplyOpening(roster, act)
	assert.True(t, roster[0].Shielded)
	assert.True(t, roster[1].Shielded)

	s.Apply(roster, act, nil)
	assert.True(t, roster[0].Shielded)
}

func TestMountainSpeedPenaltyKeepsMobileUnitsMoving(t *testing.T) {
	s := DefaultSynergyEngine()
	grid := NewGrid(2, 1, "mountain")
	u := mk("u", ClassMedic, 10, 1, 0, 0, 0)
	u.Speed = 2
	tur := NewTurret(mk("e", ClassEngineer, 10, 1, 0, 1, 0))
	s.Recompute([]*Unit{u, tur}, grid)
	assert.Equal(t, 2, u.AttackBonus)
	assert.Equal(t, 2, u.DefenseBonus)
	assert.Equal(t, 1, u.FinalSpeed())
	assert.Equal(t, 0, tur.SpeedBonus)
}

func TestEquipmentSpecialsApplyInSynergy(t *testing.T) {
	s := DefaultSynergyEngine()
	u := mk("u", ClassSniper, 16, 8, 1, 0, 0)
	require.NoError(t, s.Equipment().Customize(u, map[string]string{"weapon": "railgun", "chassis": "stealth"}))
	s.Recompute([]*Unit{u}, nil)
	assert.True(t, u.ArmorPiercing)
	assert.InDelta(t, 0.2, u.Dodge, 1e-9)
}

func TestUnknownStatRejected(t *testing.T) {
	_, err := NewSynergyEngine(&config.SynergiesConfig{
		Pilots: map[string][]config.EffectDef{"bad": {{Stat: "luck", Value: 1}}},
	}, nil, nil)
	assert.ErrorContains(t, err, "luck")
}

func TestFactionBonusReachesWholeSide(t *testing.T) {
	s := DefaultSynergyEngine()
	shu := mk("c", ClassScout, 20, 5, 2, 2, 0)
	shu.Faction = "Shu"
	tur := NewTurret(wu("a", ClassEngineer, 0))
	roster := []*Unit{wu("a", ClassMedic, 0), wu("b", ClassMedic, 1), shu, tur}

	act := s.Recompute(roster, nil)
	require.Len(t, act.Factions, 1)
	for _, u := range roster {
		assert.Equal(t, 1, u.AttackBonus, u.ID)
	}
	assert.Equal(t, 0.5, roster[0].HealBonus)
	assert.Equal(t, 0.0, shu.HealBonus, "class bonus stays with medics")
}

func TestFactionOpeningReachesWholeSide(t *testing.T) {
	cfg := &config.SynergiesConfig{
		Factions: map[string]config.BonusDef{"X": {Thresholds: []config.ThresholdDef{
			{Count: 2, Effects: []config.EffectDef{{Stat: "shielded", Value: 1}}},
		}}},
	}
	s, err := NewSynergyEngine(cfg, nil, nil)
	require.NoError(t, err)
	a := mk("a", ClassMedic, 20, 1, 1, 0, 0)
	b := mk("b", ClassMedic, 20, 1, 1, 1, 0)
	a.Faction, b.Faction = "X", "X"
	other := mk("c", ClassScout, 20, 1, 1, 2, 0)

	s.ApplyOpening([]*Unit{a, b, other}, s.Calculate([]*Unit{a, b, other}))
	assert.True(t, other.Shielded)
}
