package combat

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dynmech/internal/util"
)

type DamageModel string

const (
	// DamageSimple is max(1, attack - defense) on base stats.
	DamageSimple DamageModel = "simple"
	// DamageTyped adds bonuses, the class matchup table, crits and extra
	// attacks.
	DamageTyped DamageModel = "typed"
)

const (
	advantage    = 1.2
	disadvantage = 0.8
)

// typeEdge lists the winning side of each class matchup.
var typeEdge = map[Class]Class{
	ClassAssault:  ClassSniper,
	ClassSniper:   ClassEngineer,
	ClassEngineer: ClassAssault,
}

func typeMultiplier(att, def Class) float64 {
	switch {
	case typeEdge[att] == def:
		return advantage
	case typeEdge[def] == att:
		return disadvantage
	}
	return 1
}

// Battle owns both rosters and the grid. It is not safe for concurrent use.
type Battle struct {
	ID     string
	Player []*Unit
	Enemy  []*Unit
	Grid   *Grid
	Turn   int
	Log    []string
	Ended  bool
	Winner Team

	model    DamageModel
	phase    *phaseMachine
	rng      util.Roller
	synergy  *SynergyEngine
	policy   *Policy
	logger   *zap.Logger
	observer func(Event)
}

type Option func(*Battle)

func WithRng(r util.Roller) Option { return func(b *Battle) { b.rng = r } }

func WithLogger(l *zap.Logger) Option {
	return func(b *Battle) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithSynergy(s *SynergyEngine) Option { return func(b *Battle) { b.synergy = s } }

func WithPolicy(p *Policy) Option { return func(b *Battle) { b.policy = p } }

func WithDamageModel(m DamageModel) Option { return func(b *Battle) { b.model = m } }

// WithObserver receives every event the battle emits, in order.
func WithObserver(fn func(Event)) Option { return func(b *Battle) { b.observer = fn } }

func WithID(id string) Option { return func(b *Battle) { b.ID = id } }

func newBattle(opts []Option) *Battle {
	b := &Battle{model: DamageTyped, logger: zap.NewNop()}
	for _, o := range opts {
		o(b)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.synergy == nil {
		b.synergy = DefaultSynergyEngine()
	}
	if b.policy == nil {
		b.policy = DefaultPolicy()
	}
	if b.rng == nil {
		b.rng = util.NewStream(time.Now().UnixNano())
	}
	if b.model != DamageSimple {
		b.model = DamageTyped
	}
	b.logger = b.logger.With(zap.String("battle", b.ID))
	return b
}

// NewBattle seats both rosters on grid, applies battle-start synergies and
// opens turn 1 with the player phase. A nil grid is an 8x6 field of the
// default terrain.
func NewBattle(player, enemy []*Unit, grid *Grid, opts ...Option) (*Battle, error) {
	b := newBattle(opts)
	if grid == nil {
		grid = NewGrid(8, 6, b.synergy.Terrain().Default())
	}
	b.Player, b.Enemy, b.Grid = player, enemy, grid
	for _, u := range player {
		u.Team = TeamPlayer
	}
	for _, u := range enemy {
		u.Team = TeamEnemy
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	b.Turn = 1
	b.phase = newPhaseMachine(PhasePlayer, b.logger)
	b.synergy.ApplyOpening(b.Player, b.synergy.Calculate(b.Player))
	b.synergy.ApplyOpening(b.Enemy, b.synergy.Calculate(b.Enemy))
	b.logLine("Battle begins!")
	b.beginPhase(TeamPlayer)
	return b, nil
}

func (b *Battle) validate() error {
	if len(b.Player) == 0 || len(b.Enemy) == 0 {
		return fmt.Errorf("both sides need at least one unit")
	}
	ids := map[string]bool{}
	tiles := map[Pos]string{}
	for _, u := range b.all() {
		if u.ID == "" {
			return fmt.Errorf("unit without id")
		}
		if ids[u.ID] {
			return fmt.Errorf("duplicate unit id %q", u.ID)
		}
		ids[u.ID] = true
		if u.MaxHealth <= 0 || u.Health < 0 || u.Health > u.MaxHealth {
			return fmt.Errorf("unit %s: health %d/%d out of range", u.ID, u.Health, u.MaxHealth)
		}
		if u.Alive != (u.Health > 0) {
			return fmt.Errorf("unit %s: alive flag disagrees with health", u.ID)
		}
		if !b.Grid.InBounds(u.Pos()) {
			return fmt.Errorf("unit %s: position (%d,%d) off the %dx%d grid", u.ID, u.X, u.Y, b.Grid.Width, b.Grid.Height)
		}
		if other, ok := tiles[u.Pos()]; ok && u.Alive && u.Class != ClassTurret {
			return fmt.Errorf("units %s and %s share (%d,%d)", other, u.ID, u.X, u.Y)
		}
		if u.Alive {
			tiles[u.Pos()] = u.ID
		}
	}
	return nil
}

func (b *Battle) all() []*Unit {
	out := make([]*Unit, 0, len(b.Player)+len(b.Enemy))
	out = append(out, b.Player...)
	return append(out, b.Enemy...)
}

func (b *Battle) side(t Team) []*Unit {
	if t == TeamEnemy {
		return b.Enemy
	}
	return b.Player
}

func (b *Battle) allies(u *Unit) []*Unit    { return b.side(u.Team) }
func (b *Battle) opponents(u *Unit) []*Unit { return b.side(u.Team.Opponent()) }

func (b *Battle) Phase() Phase { return b.phase.current() }

func (b *Battle) DamageModel() DamageModel { return b.model }

// Unit looks up a unit on either side by id.
func (b *Battle) Unit(id string) *Unit {
	if u := findUnit(b.Player, id); u != nil {
		return u
	}
	return findUnit(b.Enemy, id)
}

// Active reports the synergies currently in force for one side.
func (b *Battle) Active(t Team) Active { return b.synergy.Calculate(b.side(t)) }

func (b *Battle) occupied(p Pos) bool {
	return unitAt(b.Player, p) != nil || unitAt(b.Enemy, p) != nil
}

// Spawn adds a unit to its team's roster mid-battle.
func (b *Battle) Spawn(u *Unit) {
	if u.Team == TeamEnemy {
		b.Enemy = append(b.Enemy, u)
	} else {
		b.Player = append(b.Player, u)
	}
	b.emit("Spawn", map[string]any{"id": u.ID, "team": string(u.Team), "x": u.X, "y": u.Y})
}

func (b *Battle) emit(typ string, payload map[string]any) {
	if b.observer == nil {
		return
	}
	b.observer(Event{Turn: b.Turn, Type: typ, Payload: payload})
}

func (b *Battle) logLine(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	b.Log = append(b.Log, text)
	b.logger.Debug(text, zap.Int("turn", b.Turn))
	b.emit("LogLine", map[string]any{"text": text})
}

func (b *Battle) record(res Result) Result {
	b.emit("Action", map[string]any{
		"kind":   string(res.Kind),
		"actor":  res.Actor,
		"target": res.Target,
		"amount": res.Amount,
	})
	return res
}

func (b *Battle) reject(op, unitID, reason string) error {
	err := &ActionError{Op: op, UnitID: unitID, Reason: reason}
	b.logLine("Invalid %s: %s", op, err.Error())
	b.logger.Warn("rejected action", zap.String("op", op), zap.String("unit", unitID), zap.String("reason", reason))
	return err
}

// actor resolves a unit that may act in the current phase.
func (b *Battle) actor(op, id string) (*Unit, error) {
	if b.Ended {
		return nil, b.reject(op, id, "battle has ended")
	}
	u := b.Unit(id)
	if u == nil {
		return nil, b.reject(op, id, "unknown unit")
	}
	if u.Team != b.Phase().Team() {
		return nil, b.reject(op, id, "not this side's turn")
	}
	if !u.CanAct() {
		return nil, b.reject(op, id, "unit is destroyed")
	}
	return u, nil
}

// Attack is the player-side attack request. The attacker must be adjacent to
// its target and must not have acted this phase.
func (b *Battle) Attack(attackerID, targetID string) (Result, error) {
	a, err := b.actor("attack", attackerID)
	if err != nil {
		return Result{}, err
	}
	t := findUnit(b.opponents(a), targetID)
	switch {
	case t == nil:
		return Result{}, b.reject("attack", attackerID, fmt.Sprintf("no enemy %q", targetID))
	case !t.Alive:
		return Result{}, b.reject("attack", attackerID, fmt.Sprintf("%s is already destroyed", t.Name))
	case a.Acted:
		return Result{}, b.reject("attack", attackerID, "already acted this phase")
	case !adjacent(a.Pos(), t.Pos()):
		return Result{}, b.reject("attack", attackerID, fmt.Sprintf("%s is out of range", t.Name))
	}
	return b.strike(a, t), nil
}

func (b *Battle) damage(a, t *Unit) int {
	if b.model == DamageSimple {
		return max(1, a.Attack-t.Defense)
	}
	def := t.FinalDefense()
	if a.ArmorPiercing {
		def /= 2
	}
	raw := int(math.Round(float64(a.FinalAttack()) * typeMultiplier(a.Class, t.Class)))
	return max(1, raw-def)
}

// strike resolves one attack with no range check. Crit and the extra attack
// are decided here; dodge is rolled by the target.
func (b *Battle) strike(a, t *Unit) Result {
	res := Result{Kind: ActAttack, Actor: a.ID, Target: t.ID, X: t.X, Y: t.Y}
	dmg := b.damage(a, t)
	crit := false
	if b.model == DamageTyped && a.Crit {
		dmg *= 2
		crit = true
		a.Crit = false
		a.CritSpent = true
	}
	h := t.TakeDamage(dmg, b.rng)
	h.Crit = crit
	res.addHit(h)
	b.logHit(a, t, h)

	if b.model == DamageTyped && t.Alive && a.AttackAgainChance > 0 && b.rng != nil &&
		b.rng.Float64() < a.AttackAgainChance {
		b.logLine("%s attacks again!", a.Name)
		h2 := t.TakeDamage(b.damage(a, t), b.rng)
		res.addHit(h2)
		b.logHit(a, t, h2)
	}
	a.Acted = true
	b.settle(res)
	return b.record(res)
}

func (b *Battle) logHit(a, t *Unit, h Hit) {
	switch {
	case h.Dodged:
		b.logLine("%s dodges %s's attack!", t.Name, a.Name)
		return
	case h.Crit:
		b.logLine("%s lands a critical hit on %s for %d damage!", a.Name, t.Name, h.Amount)
	default:
		b.logLine("%s attacks %s for %d damage!", a.Name, t.Name, h.Amount)
	}
	if h.Absorbed {
		b.logLine("%s's shield absorbs part of the blow.", t.Name)
	}
	if h.Killed {
		b.logLine("%s is destroyed!", t.Name)
	}
}

// settle runs after any action: composition changes trigger a synergy
// recompute and damaging actions a victory check.
func (b *Battle) settle(res Result) {
	killed := false
	for _, h := range res.Hits {
		killed = killed || h.Killed
	}
	if killed || res.Kind == ActMove || res.Kind == ActDeployTurret {
		b.recompute()
	}
	if res.Damaging() {
		b.checkVictory()
	}
}

func (b *Battle) recompute() {
	b.synergy.Recompute(b.Player, b.Grid)
	b.synergy.Recompute(b.Enemy, b.Grid)
}

// checkVictory ends the battle when a side has no living member. A double
// knockout is a draw.
func (b *Battle) checkVictory() bool {
	if b.Ended {
		return true
	}
	playerUp, enemyUp := anyAlive(b.Player), anyAlive(b.Enemy)
	switch {
	case playerUp && enemyUp:
		return false
	case !playerUp && !enemyUp:
		b.Winner = Draw
		b.logLine("Battle ends in a draw!")
	case playerUp:
		b.Winner = TeamPlayer
		b.logLine("Team %s wins!", b.Winner)
	default:
		b.Winner = TeamEnemy
		b.logLine("Team %s wins!", b.Winner)
	}
	b.Ended = true
	if b.phase.can(evFinish) {
		if err := b.phase.fire(evFinish); err != nil {
			b.logger.Error("phase transition", zap.Error(err))
		}
	}
	b.logger.Info("battle over", zap.String("winner", string(b.Winner)), zap.Int("turn", b.Turn))
	b.emit("BattleEnd", map[string]any{"winner": string(b.Winner)})
	return true
}

// Move steps a unit of the acting side one orthogonal tile.
func (b *Battle) Move(unitID string, x, y int) (Result, error) {
	u, err := b.actor("move", unitID)
	if err != nil {
		return Result{}, err
	}
	dst := Pos{x, y}
	switch {
	case !u.Mobile():
		return Result{}, b.reject("move", unitID, "unit cannot move")
	case u.MovesLeft <= 0:
		return Result{}, b.reject("move", unitID, "no moves left this phase")
	case !b.Grid.InBounds(dst):
		return Result{}, b.reject("move", unitID, fmt.Sprintf("(%d,%d) is off the grid", x, y))
	case !adjacent(u.Pos(), dst):
		return Result{}, b.reject("move", unitID, fmt.Sprintf("(%d,%d) is not one step away", x, y))
	case b.occupied(dst):
		return Result{}, b.reject("move", unitID, fmt.Sprintf("(%d,%d) is occupied", x, y))
	}
	return b.moveTo(u, dst), nil
}

func (b *Battle) moveTo(u *Unit, dst Pos) Result {
	u.X, u.Y = dst.X, dst.Y
	u.MovesLeft--
	res := Result{Kind: ActMove, Actor: u.ID, X: dst.X, Y: dst.Y}
	b.logLine("%s moves to (%d,%d).", u.Name, dst.X, dst.Y)
	b.settle(res)
	return b.record(res)
}

// RequestAbility fires a unit's class ability. An ability that finds no
// target is not an error: the result kind is ActNone.
func (b *Battle) RequestAbility(unitID string) (Result, error) {
	u, err := b.actor("ability", unitID)
	if err != nil {
		return Result{}, err
	}
	switch {
	case u.Acted:
		return Result{}, b.reject("ability", unitID, "already acted this phase")
	case u.AbilityCooldown > 0:
		return Result{}, b.reject("ability", unitID, fmt.Sprintf("ability cooling down (%d)", u.AbilityCooldown))
	}
	res, ok := b.useAbility(u)
	if !ok {
		return Result{Kind: ActNone, Actor: u.ID, X: u.X, Y: u.Y}, nil
	}
	return res, nil
}

func (b *Battle) abilityContext(u *Unit) AbilityContext {
	return AbilityContext{Allies: b.allies(u), Enemies: b.opponents(u), Board: b, Rng: b.rng}
}

func (b *Battle) useAbility(u *Unit) (Result, bool) {
	res, ok := u.UseAbility(b.abilityContext(u))
	if !ok {
		if HasAbility(u.Class) && u.AbilityCooldown == 0 {
			b.logLine("%s's ability finds no target.", u.Name)
		}
		return res, false
	}
	u.Acted = true
	if res.Kind == ActDoubleMove {
		u.MovesLeft++
	}
	b.logAbility(u, res)
	b.settle(res)
	return b.record(res), true
}

func (b *Battle) logAbility(u *Unit, res Result) {
	name := func(id string) string {
		if t := b.Unit(id); t != nil {
			return t.Name
		}
		return id
	}
	switch res.Kind {
	case ActShield:
		b.logLine("%s shields %s!", u.Name, name(res.Target))
	case ActHeal:
		b.logLine("%s heals %s for %d!", u.Name, name(res.Target), res.Amount)
	case ActDoubleMove:
		b.logLine("%s boosts for a double move!", u.Name)
	case ActAreaAttack:
		b.logLine("%s unleashes an area attack!", u.Name)
		for _, h := range res.Hits {
			b.logHit(u, b.Unit(h.Target), h)
		}
	case ActSnipe:
		b.logLine("%s takes aim at %s!", u.Name, name(res.Target))
		for _, h := range res.Hits {
			b.logHit(u, b.Unit(h.Target), h)
		}
	case ActDeployTurret:
		b.logLine("%s deploys a turret at (%d,%d)!", u.Name, res.X, res.Y)
	}
}

// beginPhase opens a side's phase: budgets reset, player cooldowns tick,
// hazards burn, synergies recompute.
func (b *Battle) beginPhase(t Team) []Result {
	side := b.side(t)
	for _, u := range side {
		u.MovesLeft = 1
		u.Acted = false
		u.DoubleMove = false
		u.CritSpent = false
		if t == TeamPlayer {
			u.TickCooldown()
		}
	}
	results := b.hazards(side)
	b.recompute()
	b.checkVictory()
	b.emit("PhaseStart", map[string]any{"phase": string(b.Phase()), "team": string(t)})
	return results
}

func (b *Battle) hazards(side []*Unit) []Result {
	var out []Result
	for _, u := range side {
		if !u.Alive {
			continue
		}
		ter := b.synergy.Terrain().Get(b.Grid.TerrainAt(u.Pos()))
		if ter.Hazard <= 0 {
			continue
		}
		res := Result{Kind: ActHazard, Actor: ter.ID, Target: u.ID, X: u.X, Y: u.Y}
		h := u.TakeDamage(ter.Hazard, nil)
		res.addHit(h)
		b.logLine("%s takes %d damage from %s!", u.Name, h.Amount, ter.Name)
		if h.Killed {
			b.logLine("%s is destroyed!", u.Name)
		}
		out = append(out, b.record(res))
	}
	return out
}

// EndTurn closes the player phase, runs the whole enemy phase and opens the
// next player phase. It returns everything that happened in between.
func (b *Battle) EndTurn() ([]Result, error) {
	if b.Ended {
		return nil, b.reject("end turn", "", "battle has ended")
	}
	if b.Phase() != PhasePlayer {
		return nil, b.reject("end turn", "", "not the player phase")
	}
	b.logLine("Player ends turn %d.", b.Turn)
	if err := b.phase.fire(evEndTurn); err != nil {
		return nil, fmt.Errorf("end turn: %w", err)
	}
	results := b.beginPhase(TeamEnemy)
	if !b.Ended {
		results = append(results, b.runSide(TeamEnemy)...)
	}
	if b.Ended {
		return results, nil
	}
	if err := b.phase.fire(evEnemyDone); err != nil {
		return results, fmt.Errorf("enemy done: %w", err)
	}
	b.Turn++
	results = append(results, b.beginPhase(TeamPlayer)...)
	return results, nil
}

// AutoPlayerPhase lets the policy drive the player side for the current
// phase. It does not end the turn.
func (b *Battle) AutoPlayerPhase() []Result {
	if b.Ended || b.Phase() != PhasePlayer {
		return nil
	}
	return b.runSide(TeamPlayer)
}

// runSide lets every living unit of one side act once, in roster order.
// Units spawned during the phase wait for the next one. Enemy cooldowns tick
// per unit just before it acts.
func (b *Battle) runSide(t Team) []Result {
	actors := append([]*Unit(nil), b.side(t)...)
	var out []Result
	for _, u := range actors {
		if b.Ended {
			break
		}
		if !u.Alive {
			continue
		}
		if t == TeamEnemy {
			u.TickCooldown()
		}
		out = append(out, b.policy.Act(b, u))
	}
	return out
}

// UnitView is a unit copy with its derived stats filled in.
type UnitView struct {
	Unit
	FinalAttack  int    `json:"finalAttack"`
	FinalDefense int    `json:"finalDefense"`
	FinalSpeed   int    `json:"finalSpeed"`
	Terrain      string `json:"terrain"`
}

// Snapshot is a read-only deep copy for rendering.
type Snapshot struct {
	ID        string     `json:"id"`
	Turn      int        `json:"turn"`
	Phase     Phase      `json:"phase"`
	Player    []UnitView `json:"player"`
	Enemy     []UnitView `json:"enemy"`
	Grid      *Grid      `json:"grid"`
	Log       []string   `json:"log"`
	Ended     bool       `json:"ended"`
	Winner    Team       `json:"winner,omitempty"`
	Synergies struct {
		Player Active `json:"player"`
		Enemy  Active `json:"enemy"`
	} `json:"synergies"`
}

func (b *Battle) view(units []*Unit) []UnitView {
	out := make([]UnitView, 0, len(units))
	for _, u := range units {
		out = append(out, UnitView{
			Unit:         *u.clone(),
			FinalAttack:  u.FinalAttack(),
			FinalDefense: u.FinalDefense(),
			FinalSpeed:   u.FinalSpeed(),
			Terrain:      b.Grid.TerrainAt(u.Pos()),
		})
	}
	return out
}

func (b *Battle) Snapshot() Snapshot {
	s := Snapshot{
		ID:     b.ID,
		Turn:   b.Turn,
		Phase:  b.Phase(),
		Player: b.view(b.Player),
		Enemy:  b.view(b.Enemy),
		Grid:   b.Grid.clone(),
		Log:    append([]string(nil), b.Log...),
		Ended:  b.Ended,
		Winner: b.Winner,
	}
	s.Synergies.Player = b.Active(TeamPlayer)
	s.Synergies.Enemy = b.Active(TeamEnemy)
	return s
}
