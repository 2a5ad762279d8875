package combat

import (
	"encoding/json"
	"fmt"

	"dynmech/internal/util"
)

const recordVersion = 1

// Record is the persistent form of a battle. Restore(b.Record()) yields a
// battle that is indistinguishable from b. When b rolls from a util.Stream
// the record keeps its seed and draw count, and the restored battle goes on
// with the same rolls.
type Record struct {
	Version int         `json:"version"`
	ID      string      `json:"id"`
	Turn    int         `json:"turn"`
	Phase   Phase       `json:"phase"`
	Player  []Unit      `json:"player"`
	Enemy   []Unit      `json:"enemy"`
	Grid    *Grid       `json:"grid"`
	Log     []string    `json:"log"`
	Ended   bool        `json:"ended"`
	Winner  Team        `json:"winner,omitempty"`
	Model   DamageModel `json:"model"`
	Seed    int64       `json:"seed,omitempty"`
	Rolls   int64       `json:"rolls,omitempty"`
}

func copyUnits(units []*Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		out = append(out, *u.clone())
	}
	return out
}

// positioner is a roller that can say where it is in its sequence.
type positioner interface {
	Position() (seed, rolls int64)
}

func (b *Battle) Record() Record {
	rec := Record{
		Version: recordVersion,
		ID:      b.ID,
		Turn:    b.Turn,
		Phase:   b.Phase(),
		Player:  copyUnits(b.Player),
		Enemy:   copyUnits(b.Enemy),
		Grid:    b.Grid.clone(),
		Log:     append([]string(nil), b.Log...),
		Ended:   b.Ended,
		Winner:  b.Winner,
		Model:   b.model,
	}
	if p, ok := b.rng.(positioner); ok {
		rec.Seed, rec.Rolls = p.Position()
	}
	return rec
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, fmt.Sprintf(format, args...))
}

func (r Record) validate() error {
	if r.Version != recordVersion {
		return invalid("unsupported version %d", r.Version)
	}
	switch r.Phase {
	case PhasePlayer, PhaseEnemy:
		if r.Ended {
			return invalid("ended battle in phase %s", r.Phase)
		}
	case PhaseEnded:
		if !r.Ended {
			return invalid("phase ended but battle is not")
		}
	default:
		return invalid("unknown phase %q", r.Phase)
	}
	if r.Ended && r.Winner != TeamPlayer && r.Winner != TeamEnemy && r.Winner != Draw {
		return invalid("unknown winner %q", r.Winner)
	}
	if r.Rolls < 0 {
		return invalid("negative roll count %d", r.Rolls)
	}
	if r.Turn < 1 {
		return invalid("turn %d", r.Turn)
	}
	if r.Grid == nil || r.Grid.Width <= 0 || r.Grid.Height <= 0 || len(r.Grid.Tiles) != r.Grid.Height {
		return invalid("malformed grid")
	}
	for _, row := range r.Grid.Tiles {
		if len(row) != r.Grid.Width {
			return invalid("malformed grid row")
		}
	}
	return nil
}

func toPointers(units []Unit, team Team) []*Unit {
	out := make([]*Unit, 0, len(units))
	for i := range units {
		u := units[i].clone()
		u.Team = team
		out = append(out, u)
	}
	return out
}

// Restore rebuilds a battle from a record. The units are taken as stored;
// no synergy or phase-start logic runs. A stored roll stream is resumed
// unless opts bring their own roller.
func Restore(rec Record, opts ...Option) (*Battle, error) {
	if err := rec.validate(); err != nil {
		return nil, err
	}
	base := []Option{WithID(rec.ID), WithDamageModel(rec.Model)}
	if rec.Seed != 0 || rec.Rolls > 0 {
		base = append(base, WithRng(util.Resume(rec.Seed, rec.Rolls)))
	}
	b := newBattle(append(base, opts...))
	b.Player = toPointers(rec.Player, TeamPlayer)
	b.Enemy = toPointers(rec.Enemy, TeamEnemy)
	b.Grid = rec.Grid.clone()
	if err := b.validate(); err != nil {
		return nil, invalid("%v", err)
	}
	b.Turn = rec.Turn
	b.Log = append([]string(nil), rec.Log...)
	b.Ended = rec.Ended
	b.Winner = rec.Winner
	b.phase = newPhaseMachine(rec.Phase, b.logger)
	return b, nil
}

func (r Record) Marshal() ([]byte, error) { return json.Marshal(r) }

func UnmarshalRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := r.validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}
