package combat

import (
	"fmt"

	"dynmech/internal/config"
	"dynmech/internal/util"
)

type Terrain struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MovementCost int     `json:"movementCost"`
	DefenseBonus int     `json:"defenseBonus"`
	AttackBonus  int     `json:"attackBonus"`
	Dodge        float64 `json:"dodge"`
	Hazard       int     `json:"hazard"`
	Weight       float64 `json:"weight"`
}

// TerrainSet resolves terrain ids. Unknown ids fall back to the default.
type TerrainSet struct {
	def   string
	order []string
	types map[string]Terrain
}

func NewTerrainSet(cfg *config.TerrainConfig) *TerrainSet {
	if cfg == nil {
		cfg = config.DefaultTerrain()
	}
	ts := &TerrainSet{def: cfg.Default, types: map[string]Terrain{}}
	for _, t := range cfg.Types {
		if _, dup := ts.types[t.ID]; !dup {
			ts.order = append(ts.order, t.ID)
		}
		ts.types[t.ID] = Terrain{
			ID: t.ID, Name: t.Name, MovementCost: max(1, t.MovementCost),
			DefenseBonus: t.DefenseBonus, AttackBonus: t.AttackBonus,
			Dodge: t.Dodge, Hazard: t.Hazard, Weight: t.Weight,
		}
	}
	if _, ok := ts.types[ts.def]; !ok {
		if ts.def == "" {
			ts.def = "normal"
		}
		ts.types[ts.def] = Terrain{ID: ts.def, Name: ts.def, MovementCost: 1}
		ts.order = append([]string{ts.def}, ts.order...)
	}
	return ts
}

func (ts *TerrainSet) Default() string { return ts.def }

func (ts *TerrainSet) Get(id string) Terrain {
	if t, ok := ts.types[id]; ok {
		return t
	}
	return ts.types[ts.def]
}

// Grid is the battlefield, indexed Tiles[y][x].
type Grid struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Tiles  [][]string `json:"tiles"`
}

func NewGrid(w, h int, fill string) *Grid {
	g := &Grid{Width: w, Height: h, Tiles: make([][]string, h)}
	for y := range g.Tiles {
		g.Tiles[y] = make([]string, w)
		for x := range g.Tiles[y] {
			g.Tiles[y][x] = fill
		}
	}
	return g
}

// GenerateGrid fills a grid by weighted random picks over the terrain set.
func GenerateGrid(w, h int, ts *TerrainSet, rng util.Roller) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid %dx%d: dimensions must be positive", w, h)
	}
	g := NewGrid(w, h, ts.def)
	total := 0.0
	for _, id := range ts.order {
		total += max(0, ts.types[id].Weight)
	}
	if total <= 0 || rng == nil {
		return g, nil
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := rng.Float64() * total
			for _, id := range ts.order {
				wt := max(0, ts.types[id].Weight)
				if r < wt {
					g.Tiles[y][x] = id
					break
				}
				r -= wt
			}
		}
	}
	return g, nil
}

func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

// TerrainAt is the terrain id under p, or "" off the board.
func (g *Grid) TerrainAt(p Pos) string {
	if !g.InBounds(p) {
		return ""
	}
	return g.Tiles[p.Y][p.X]
}

func (g *Grid) clone() *Grid {
	if g == nil {
		return nil
	}
	cp := &Grid{Width: g.Width, Height: g.Height, Tiles: make([][]string, len(g.Tiles))}
	for y, row := range g.Tiles {
		cp.Tiles[y] = append([]string(nil), row...)
	}
	return cp
}
