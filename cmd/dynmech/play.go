package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dynmech/internal/combat"
	"dynmech/internal/save"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a battle turn by turn",
	Long: `Starts an interactive shell for the player side. The enemy answers
every "end" with its own phase.
Usage:
	> move a1 2 3
	> attack a1 e2
	> ability m1
	> end`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, _ := cmd.Flags().GetInt("slot")
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		store, closeStore, err := a.store(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		sh := &shell{app: a, store: store, out: cmd.OutOrStdout()}
		if slot != 0 {
			if err := sh.load(ctx, slot); err != nil {
				return err
			}
		} else {
			b, err := a.engine.NewBattle(a.set.Roster, viper.GetInt64("seed"), a.battleOptions()...)
			if err != nil {
				return err
			}
			sh.battle = b
		}

		fmt.Fprintln(sh.out, "Type 'help' for commands, 'quit' to leave.")
		sh.show()
		return sh.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().Int("slot", 0, "resume the battle saved in this slot")
}

func (a *app) battleOptions() []combat.Option {
	return append(a.engine.Options(), combat.WithLogger(a.log))
}

const helpText = `commands:
  move <unit> <x> <y>      step a unit to an adjacent tile
  attack <unit> <target>   strike an adjacent enemy
  ability <unit>           use the unit's class ability
  end                      end the player phase
  auto                     let the policy play the rest of the player phase
  show                     print the board
  save <slot> | load <slot> | slots
  quit`

var errQuit = errors.New("quit")

type shell struct {
	app    *app
	store  save.Store
	battle *combat.Battle
	out    io.Writer
	seen   int
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		err := s.exec(ctx, fields)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		s.flushLog()
	}
}

func (s *shell) exec(ctx context.Context, f []string) error {
	b := s.battle
	switch f[0] {
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "quit", "exit":
		return errQuit
	case "show":
		s.show()
	case "move":
		if len(f) != 4 {
			return errors.New("usage: move <unit> <x> <y>")
		}
		x, err := strconv.Atoi(f[2])
		if err != nil {
			return fmt.Errorf("bad x: %w", err)
		}
		y, err := strconv.Atoi(f[3])
		if err != nil {
			return fmt.Errorf("bad y: %w", err)
		}
		_, err = b.Move(f[1], x, y)
		return err
	case "attack":
		if len(f) != 3 {
			return errors.New("usage: attack <unit> <target>")
		}
		_, err := b.Attack(f[1], f[2])
		return err
	case "ability":
		if len(f) != 2 {
			return errors.New("usage: ability <unit>")
		}
		res, err := b.RequestAbility(f[1])
		if err == nil && res.Kind == combat.ActNone {
			fmt.Fprintln(s.out, "nothing happens.")
		}
		return err
	case "end":
		if _, err := b.EndTurn(); err != nil {
			return err
		}
	case "auto":
		b.AutoPlayerPhase()
	case "save":
		slot, err := slotArg(f)
		if err != nil {
			return err
		}
		if err := save.SaveBattle(ctx, s.store, slot, b); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "saved to slot %d.\n", slot)
	case "load":
		slot, err := slotArg(f)
		if err != nil {
			return err
		}
		if err := s.load(ctx, slot); err != nil {
			return err
		}
		s.show()
	case "slots":
		return printSlots(ctx, s.out, s.store)
	default:
		return fmt.Errorf("unknown command %q (try help)", f[0])
	}
	return nil
}

func slotArg(f []string) (int, error) {
	if len(f) != 2 {
		return 0, fmt.Errorf("usage: %s <slot>", f[0])
	}
	return strconv.Atoi(f[1])
}

func (s *shell) load(ctx context.Context, slot int) error {
	b, err := save.LoadBattle(ctx, s.store, slot, s.app.battleOptions()...)
	if err != nil {
		return err
	}
	s.battle = b
	s.seen = len(b.Log)
	fmt.Fprintf(s.out, "loaded slot %d (turn %d).\n", slot, b.Turn)
	return nil
}

// flushLog prints log lines added since the last command.
func (s *shell) flushLog() {
	log := s.battle.Log
	if s.seen > len(log) {
		s.seen = 0
	}
	for _, line := range log[s.seen:] {
		fmt.Fprintln(s.out, "  "+line)
	}
	s.seen = len(log)
}

func (s *shell) show() {
	s.flushLog()
	renderBoard(s.out, s.battle.Snapshot())
}

// renderBoard draws the grid with one letter per unit (upper case for the
// player side) followed by a unit table.
func renderBoard(w io.Writer, snap combat.Snapshot) {
	fmt.Fprintf(w, "turn %d, %s\n", snap.Turn, snap.Phase)
	marks := map[[2]int]byte{}
	mark := func(units []combat.UnitView, upper bool) {
		for _, u := range units {
			if !u.Alive {
				continue
			}
			c := u.Class
			if c == "" {
				continue
			}
			ch := c[0]
			if upper {
				ch = strings.ToUpper(string(ch))[0]
			}
			marks[[2]int{u.X, u.Y}] = ch
		}
	}
	mark(snap.Enemy, false)
	mark(snap.Player, true)

	g := snap.Grid
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if ch, ok := marks[[2]int{x, y}]; ok {
				sb.WriteByte(ch)
			} else {
				sb.WriteByte(terrainGlyph(g.Tiles[y][x]))
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())

	row := func(u combat.UnitView) {
		state := fmt.Sprintf("%d/%d", u.Health, u.MaxHealth)
		if !u.Alive {
			state = "destroyed"
		}
		fmt.Fprintf(w, "  %-4s %-9s %-10s atk %-2d def %-2d spd %-2d cd %d (%d,%d) %s\n",
			u.ID, u.Class, state, u.FinalAttack, u.FinalDefense, u.FinalSpeed,
			u.AbilityCooldown, u.X, u.Y, u.Terrain)
	}
	fmt.Fprintln(w, "player:")
	for _, u := range snap.Player {
		row(u)
	}
	fmt.Fprintln(w, "enemy:")
	for _, u := range snap.Enemy {
		row(u)
	}
	if snap.Ended {
		fmt.Fprintf(w, "battle over: %s\n", snap.Winner)
	}
}

func terrainGlyph(id string) byte {
	switch id {
	case "forest":
		return '^'
	case "mountain":
		return 'M'
	case "water":
		return '~'
	case "lava":
		return '*'
	case "ice":
		return '='
	default:
		return '.'
	}
}
