package sat

// Engine is the contract shared by the core trail engine and every layered
// engine wrapped around it. All assignment state lives in the core trail;
// layers add propagation logic on top of it.
//
// The query methods are read-only and may be called freely by the conflict
// analyzer while it owns its scratch buffers.
type Engine interface {
	NumVariables() int
	NumAssigns() int
	CurrentDecisionLevel() int

	IsAssigned(v int) bool
	IsTrue(l Literal) bool
	IsFalse(l Literal) bool

	// Value returns the value bit of variable v. The bit is meaningful even
	// while v is unassigned: it then holds the saved phase.
	Value(v int) Boolean

	// DecisionLevel returns the decision level at which v was assigned, or
	// nullLevel if v is unassigned.
	DecisionLevel(v int) int

	// AssignmentOrder returns v's position on the assignment stack, or
	// nullOrder if v is unassigned.
	AssignmentOrder(v int) int

	// Reason returns the reason of v's assignment. The second return value
	// is false if v is unassigned.
	Reason(v int) (Reason, bool)

	// AssignmentRange returns the half-open [start, end) range of assignment
	// stack slots belonging to the given decision level.
	AssignmentRange(level int) (start, end int)

	// Assignment returns the literal assigned at the given stack slot, under
	// its assigned polarity.
	Assignment(order int) Literal

	AddVariable(initial Boolean)

	// Assign assigns the literal true for the given reason and drains the
	// propagations this triggers across every layer above the core.
	Assign(l Literal, reason Reason) PropagationResult

	// Explain returns the literals of the constraint identified by key. The
	// returned slice is a short-lived view into layer-owned storage: callers
	// must consume it before the engine is mutated again.
	Explain(key ExplainKey) []Literal

	// Backjump undoes every assignment strictly above the given level and
	// returns the unassigned literals in reverse chronological order, under
	// their last assigned polarity. The returned slice is valid until the
	// next Backjump call.
	Backjump(level int) []Literal

	// AddConstraint installs a clause at the layer that owns its size class
	// and drains any propagation it triggers.
	AddConstraint(literals []Literal, learnt bool) PropagationResult

	// ReduceConstraints gives every layer a chance to shed low-value learnt
	// constraints.
	ReduceConstraints()

	// Summarize accumulates this layer's counters (and those of the layers
	// below) into sum.
	Summarize(sum *Summary)
}

// theory layers additional reasoning on top of an inner engine. A theory
// never stores assignment state of its own: it reacts to trail assignments,
// propagates back into the engine, and explains the propagations it caused.
type theory interface {
	AddVariable()

	// Assign is invoked exactly once per trail entry, in assignment order.
	// It may call engine.Assign to propagate forced literals.
	Assign(l Literal, engine Engine) PropagationResult

	// AddConstraint installs a clause of the size class this theory owns.
	// It may immediately propagate or report a conflict.
	AddConstraint(literals []Literal, learnt bool, engine Engine) PropagationResult

	// owns reports whether this theory produced the given key, and wants
	// whether it is responsible for clauses of the given size.
	owns(key ExplainKey) bool
	wants(size int) bool

	Explain(key ExplainKey) []Literal

	// Unassign is notified of the literals undone by a backjump, in reverse
	// chronological order.
	Unassign(literals []Literal)

	ReduceConstraints()

	summarize(sum *Summary)
}

// layeredEngine composes a theory with an inner engine. The outermost layer
// presents the full Engine contract; underneath, a chain of layeredEngines
// ends in the core trail engine.
type layeredEngine struct {
	theory theory
	inner  Engine

	// Number of trail entries this layer's theory has seen. The propagation
	// loop advances it to the trail length; backjumps clamp it back to the
	// start-of-level boundary.
	propagated int

	unassignBuf []Literal
}

func newLayeredEngine(t theory, inner Engine) *layeredEngine {
	return &layeredEngine{theory: t, inner: inner}
}

func (e *layeredEngine) NumVariables() int          { return e.inner.NumVariables() }
func (e *layeredEngine) NumAssigns() int            { return e.inner.NumAssigns() }
func (e *layeredEngine) CurrentDecisionLevel() int  { return e.inner.CurrentDecisionLevel() }
func (e *layeredEngine) IsAssigned(v int) bool      { return e.inner.IsAssigned(v) }
func (e *layeredEngine) IsTrue(l Literal) bool      { return e.inner.IsTrue(l) }
func (e *layeredEngine) IsFalse(l Literal) bool     { return e.inner.IsFalse(l) }
func (e *layeredEngine) Value(v int) Boolean        { return e.inner.Value(v) }
func (e *layeredEngine) DecisionLevel(v int) int    { return e.inner.DecisionLevel(v) }
func (e *layeredEngine) AssignmentOrder(v int) int  { return e.inner.AssignmentOrder(v) }
func (e *layeredEngine) Assignment(o int) Literal   { return e.inner.Assignment(o) }
func (e *layeredEngine) Reason(v int) (Reason, bool) { return e.inner.Reason(v) }

func (e *layeredEngine) AssignmentRange(level int) (start, end int) {
	return e.inner.AssignmentRange(level)
}

func (e *layeredEngine) AddVariable(initial Boolean) {
	e.inner.AddVariable(initial)
	e.theory.AddVariable()
}

func (e *layeredEngine) Assign(l Literal, reason Reason) PropagationResult {
	if r := e.inner.Assign(l, reason); r.IsConflict() {
		return r
	}
	return e.propagate()
}

// propagate drains the trail: every assignment not yet seen by this layer's
// theory is handed to it, in stack order. Nested propagations append to the
// trail and are picked up by the same loop before it returns.
func (e *layeredEngine) propagate() PropagationResult {
	for e.propagated < e.inner.NumAssigns() {
		l := e.inner.Assignment(e.propagated)
		e.propagated++
		if r := e.theory.Assign(l, e.inner); r.IsConflict() {
			return r
		}
	}
	return NoConflict
}

func (e *layeredEngine) Explain(key ExplainKey) []Literal {
	if e.theory.owns(key) {
		return e.theory.Explain(key)
	}
	return e.inner.Explain(key)
}

func (e *layeredEngine) Backjump(level int) []Literal {
	// Notify the theory of the assignments it has processed and that are
	// about to be undone, most recent first. Trail entries above propagated
	// were never seen by the theory and need no notification.
	_, boundary := e.inner.AssignmentRange(level)
	e.unassignBuf = e.unassignBuf[:0]
	for order := e.propagated - 1; order >= boundary; order-- {
		e.unassignBuf = append(e.unassignBuf, e.inner.Assignment(order))
	}
	e.theory.Unassign(e.unassignBuf)
	e.propagated = boundary
	return e.inner.Backjump(level)
}

func (e *layeredEngine) AddConstraint(literals []Literal, learnt bool) PropagationResult {
	var r PropagationResult
	if e.theory.wants(len(literals)) {
		r = e.theory.AddConstraint(literals, learnt, e.inner)
	} else {
		r = e.inner.AddConstraint(literals, learnt)
	}
	if r.IsConflict() {
		return r
	}
	return e.propagate()
}

func (e *layeredEngine) ReduceConstraints() {
	e.theory.ReduceConstraints()
	e.inner.ReduceConstraints()
}

func (e *layeredEngine) Summarize(sum *Summary) {
	e.theory.summarize(sum)
	e.inner.Summarize(sum)
}
