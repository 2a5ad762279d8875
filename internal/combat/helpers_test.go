package combat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dynmech/internal/config"
	"dynmech/internal/util"
)

func mk(id string, class Class, hp, atk, def, x, y int) *Unit {
	return &Unit{
		ID: id, Name: id, Class: class,
		Health: hp, MaxHealth: hp, Attack: atk, Defense: def, Speed: 3,
		X: x, Y: y, Alive: true,
	}
}

// plainSynergy has terrain and equipment but no faction or class bonuses.
func plainSynergy(t *testing.T) *SynergyEngine {
	t.Helper()
	s, err := NewSynergyEngine(&config.SynergiesConfig{}, nil, nil)
	require.NoError(t, err)
	return s
}

func newTestBattle(t *testing.T, player, enemy []*Unit, opts ...Option) *Battle {
	t.Helper()
	base := []Option{WithSynergy(plainSynergy(t)), WithRng(&util.Fixed{})}
	b, err := NewBattle(player, enemy, NewGrid(6, 6, "normal"), append(base, opts...)...)
	require.NoError(t, err)
	return b
}

type spawnBoard struct{ spawned []*Unit }

func (s *spawnBoard) Spawn(u *Unit) { s.spawned = append(s.spawned, u) }

// countingRoller records how many rolls were drawn.
type countingRoller struct {
	v     float64
	calls int
}

func (c *countingRoller) Float64() float64 {
	c.calls++
	return c.v
}
