package combat

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

type Phase string

const (
	PhasePlayer Phase = "player-phase"
	PhaseEnemy  Phase = "enemy-phase"
	PhaseEnded  Phase = "ended"
)

const (
	evEndTurn   = "end_turn"
	evEnemyDone = "enemy_done"
	evFinish    = "finish"
)

func (p Phase) Team() Team {
	if p == PhaseEnemy {
		return TeamEnemy
	}
	return TeamPlayer
}

type phaseMachine struct {
	f *fsm.FSM
}

func newPhaseMachine(initial Phase, log *zap.Logger) *phaseMachine {
	f := fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: evEndTurn, Src: []string{string(PhasePlayer)}, Dst: string(PhaseEnemy)},
			{Name: evEnemyDone, Src: []string{string(PhaseEnemy)}, Dst: string(PhasePlayer)},
			{Name: evFinish, Src: []string{string(PhasePlayer), string(PhaseEnemy)}, Dst: string(PhaseEnded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Info("phase", zap.String("from", e.Src), zap.String("to", e.Dst), zap.String("event", e.Event))
			},
		},
	)
	return &phaseMachine{f: f}
}

func (m *phaseMachine) current() Phase { return Phase(m.f.Current()) }

func (m *phaseMachine) can(event string) bool { return m.f.Can(event) }

func (m *phaseMachine) fire(event string) error {
	return m.f.Event(context.Background(), event)
}
