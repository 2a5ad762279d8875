package combat

import (
	"encoding/json"
	"sync"

	"dynmech/internal/config"
)

// DefaultMaxTurns caps auto-battles that would otherwise stall.
const DefaultMaxTurns = 100

type SimResult struct {
	ID           string         `json:"id"`
	Seed         int64          `json:"seed"`
	Winner       Team           `json:"winner,omitempty"`
	Turns        int            `json:"turns"`
	TimedOut     bool           `json:"timed_out,omitempty"`
	DamageByUnit map[string]int `json:"damage_by_unit"`
	Abilities    map[string]int `json:"abilities"`
	Events       []Event        `json:"events,omitempty"`
	Log          []string       `json:"log,omitempty"`
	Record       *Record        `json:"record,omitempty"`
}

// RunSingle lets the policy drive both sides of b until it ends or maxTurns
// turns have passed. With record set the log and final record are kept.
func RunSingle(b *Battle, maxTurns int, record bool) SimResult {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	res := SimResult{ID: b.ID, DamageByUnit: map[string]int{}, Abilities: map[string]int{}}
	tally := func(rs []Result) {
		for _, r := range rs {
			switch r.Kind {
			case ActAttack, ActAreaAttack, ActSnipe:
				res.DamageByUnit[r.Actor] += r.Amount
			}
			switch r.Kind {
			case ActShield, ActHeal, ActDoubleMove, ActAreaAttack, ActSnipe, ActDeployTurret:
				res.Abilities[string(r.Kind)]++
			}
		}
	}

	for !b.Ended && b.Turn <= maxTurns {
		tally(b.AutoPlayerPhase())
		if b.Ended {
			break
		}
		rs, err := b.EndTurn()
		tally(rs)
		if err != nil {
			break
		}
	}

	res.Turns = min(b.Turn, maxTurns)
	res.Winner = b.Winner
	res.TimedOut = !b.Ended
	if record {
		res.Log = append([]string(nil), b.Log...)
		rec := b.Record()
		res.Record = &rec
	}
	return res
}

// Simulate builds one battle from the roster and runs it. Events are only
// collected when record is set.
func (e *Engine) Simulate(rc *config.RosterConfig, seed int64, maxTurns int, record bool, opts ...Option) (SimResult, error) {
	var events []Event
	if record {
		opts = append(opts, WithObserver(func(ev Event) { events = append(events, ev) }))
	}
	b, err := e.NewBattle(rc, seed, opts...)
	if err != nil {
		return SimResult{}, err
	}
	res := RunSingle(b, maxTurns, record)
	res.Seed = seed
	res.Events = events
	return res, nil
}

type BatchSummary struct {
	Runs         int                       `json:"runs"`
	Wins         map[Team]int              `json:"wins"`
	WinRate      float64                   `json:"win_rate"`
	TimedOut     int                       `json:"timed_out"`
	AvgTurns     float64                   `json:"avg_turns"`
	TotalDamage  int                       `json:"total_damage"`
	DamageByUnit map[string]map[string]any `json:"damage_by_unit"`
	Abilities    map[string]int            `json:"abilities"`
}

// RunBatch runs n independent battles on a worker pool. Run i uses seed+i,
// so the summary does not depend on the number of workers.
func (e *Engine) RunBatch(rc *config.RosterConfig, seed int64, n, workers, maxTurns int) (BatchSummary, error) {
	if workers <= 0 {
		workers = 8
	}
	type stat struct {
		wins     map[Team]int
		timedOut int
		sumTurns int
		byUnit   map[string]int
		abil     map[string]int
		err      error
	}
	st := stat{wins: map[Team]int{}, byUnit: map[string]int{}, abil: map[string]int{}}
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.Simulate(rc, seed+int64(i), maxTurns, false)

				mu.Lock()
				if err != nil {
					if st.err == nil {
						st.err = err
					}
					mu.Unlock()
					continue
				}
				if res.TimedOut {
					st.timedOut++
				} else {
					st.wins[res.Winner]++
				}
				st.sumTurns += res.Turns
				for k, v := range res.DamageByUnit {
					st.byUnit[k] += v
				}
				for k, v := range res.Abilities {
					st.abil[k] += v
				}
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if st.err != nil {
		return BatchSummary{}, st.err
	}

	total := 0
	for _, v := range st.byUnit {
		total += v
	}
	byUnit := map[string]map[string]any{}
	for k, v := range st.byUnit {
		share := 0.0
		if total > 0 {
			share = float64(v) / float64(total)
		}
		byUnit[k] = map[string]any{"total": v, "ratio": share}
	}
	sum := BatchSummary{
		Runs:         n,
		Wins:         st.wins,
		TimedOut:     st.timedOut,
		TotalDamage:  total,
		DamageByUnit: byUnit,
		Abilities:    st.abil,
	}
	if n > 0 {
		sum.WinRate = float64(st.wins[TeamPlayer]) / float64(n)
		sum.AvgTurns = float64(st.sumTurns) / float64(n)
	}
	return sum, nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
