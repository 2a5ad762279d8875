package combat

import (
	"errors"
	"fmt"
)

// Event is the observer feed for an effects layer.
type Event struct {
	Turn    int            `json:"turn"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Team string

const (
	TeamPlayer Team = "player"
	TeamEnemy  Team = "enemy"
	// Draw is the winner tag when both rosters fall to the same action.
	Draw Team = "draw"
)

func (t Team) Opponent() Team {
	if t == TeamPlayer {
		return TeamEnemy
	}
	return TeamPlayer
}

type ActionKind string

const (
	ActNone         ActionKind = "none"
	ActAttack       ActionKind = "attack"
	ActMove         ActionKind = "move"
	ActWait         ActionKind = "wait"
	ActHazard       ActionKind = "hazard"
	ActShield       ActionKind = "shield"
	ActHeal         ActionKind = "heal"
	ActDoubleMove   ActionKind = "doubleMove"
	ActAreaAttack   ActionKind = "areaAttack"
	ActSnipe        ActionKind = "snipe"
	ActDeployTurret ActionKind = "deployTurret"
)

// Hit is the outcome of one TakeDamage call.
type Hit struct {
	Target   string `json:"target"`
	Amount   int    `json:"amount"`
	Dodged   bool   `json:"dodged,omitempty"`
	Absorbed bool   `json:"absorbed,omitempty"`
	Crit     bool   `json:"crit,omitempty"`
	Killed   bool   `json:"killed,omitempty"`
}

// Result describes what a state-mutating action did. Amount is total damage
// dealt, or health restored for heals.
type Result struct {
	Kind   ActionKind `json:"kind"`
	Actor  string     `json:"actor"`
	Target string     `json:"target,omitempty"`
	Amount int        `json:"amount,omitempty"`
	Hits   []Hit      `json:"hits,omitempty"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
}

func (r *Result) addHit(h Hit) {
	r.Hits = append(r.Hits, h)
	r.Amount += h.Amount
}

// Damaging reports whether any hit landed for a nonzero amount.
func (r Result) Damaging() bool {
	for _, h := range r.Hits {
		if h.Amount > 0 {
			return true
		}
	}
	return false
}

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidRecord = errors.New("invalid battle record")
)

// ActionError is a rejected UI request. It wraps ErrInvalidAction.
type ActionError struct {
	Op     string
	UnitID string
	Reason string
}

func (e *ActionError) Error() string {
	if e.UnitID == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.UnitID, e.Reason)
}

func (e *ActionError) Unwrap() error { return ErrInvalidAction }
