// Package bt is a small tick-based behavior tree.
//
// Nodes are a tagged variant interpreted by Tick rather than a type
// hierarchy: a composite holds children, a leaf holds a function over the
// blackboard.
package bt

type Status int

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Running:
		return "running"
	}
	return "unknown"
}

type Kind int

const (
	KindSelector Kind = iota
	KindSequence
	KindCondition
	KindAction
)

// Node is one tree node over a blackboard of type T.
type Node[T any] struct {
	Kind     Kind
	Children []Node[T]
	Cond     func(T) bool
	Act      func(T) Status
}

// Selector succeeds (or keeps running) on the first child that does.
func Selector[T any](children ...Node[T]) Node[T] {
	return Node[T]{Kind: KindSelector, Children: children}
}

// Sequence fails (or keeps running) on the first child that does.
func Sequence[T any](children ...Node[T]) Node[T] {
	return Node[T]{Kind: KindSequence, Children: children}
}

func Condition[T any](fn func(T) bool) Node[T] {
	return Node[T]{Kind: KindCondition, Cond: fn}
}

func Action[T any](fn func(T) Status) Node[T] {
	return Node[T]{Kind: KindAction, Act: fn}
}

// Leaf returns a fixed status; handy for wiring and tests.
func Leaf[T any](s Status) Node[T] {
	return Action(func(T) Status { return s })
}

// Tick evaluates n against bb. Leaves without a function fail.
func Tick[T any](n Node[T], bb T) Status {
	switch n.Kind {
	case KindSelector:
		for _, ch := range n.Children {
			if r := Tick(ch, bb); r == Success || r == Running {
				return r
			}
		}
		return Failure
	case KindSequence:
		for _, ch := range n.Children {
			if r := Tick(ch, bb); r == Failure || r == Running {
				return r
			}
		}
		return Success
	case KindCondition:
		if n.Cond != nil && n.Cond(bb) {
			return Success
		}
		return Failure
	case KindAction:
		if n.Act == nil {
			return Failure
		}
		return n.Act(bb)
	}
	return Failure
}

// Tree binds a root to the blackboard it ticks against.
type Tree[T any] struct {
	Root       Node[T]
	Blackboard T
}

func (t *Tree[T]) Tick() Status { return Tick(t.Root, t.Blackboard) }
