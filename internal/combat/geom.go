package combat

type Pos struct{ X, Y int }

func (p Pos) Add(o Pos) Pos { return Pos{p.X + o.X, p.Y + o.Y} }

// orthogonal neighbours, in the order abilities scan them
var dirs = [4]Pos{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func manhattan(a, b Pos) int { return abs(a.X-b.X) + abs(a.Y-b.Y) }

func adjacent(a, b Pos) bool { return manhattan(a, b) == 1 }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
