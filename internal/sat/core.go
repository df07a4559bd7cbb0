package sat

const (
	// nullOrder marks a variable with no slot on the assignment stack.
	nullOrder = -1

	// nullLevel is the decision level reported for unassigned variables.
	nullLevel = -1
)

// assignment is one entry of the assignment stack. It exists while the
// variable is assigned and is removed on backjump.
type assignment struct {
	variable int32
	level    int32
	reason   Reason
}

// decision is one entry of the decision stack: the assignment stack index at
// which its decision level began.
type decision struct {
	order int32
}

// coreEngine is the innermost engine: variable states, the assignment stack,
// and decision-level bookkeeping. It performs no propagation of its own;
// conflicts are discovered by the theories layered above it.
type coreEngine struct {
	states []varState
	orders []int32 // per-variable assignment order, nullOrder when unassigned

	trail     []assignment
	decisions []decision

	backjumpBuf []Literal
	explainBuf  [1]Literal
}

func newCoreEngine() *coreEngine {
	return &coreEngine{}
}

func (c *coreEngine) NumVariables() int {
	return len(c.states)
}

func (c *coreEngine) NumAssigns() int {
	return len(c.trail)
}

func (c *coreEngine) CurrentDecisionLevel() int {
	return len(c.decisions)
}

func (c *coreEngine) IsAssigned(v int) bool {
	return c.states[v].isAssigned()
}

func (c *coreEngine) IsTrue(l Literal) bool {
	return c.states[l.VarID()].isAssignedTo(l.Value())
}

func (c *coreEngine) IsFalse(l Literal) bool {
	return c.states[l.VarID()].isAssignedTo(l.Value().Negate())
}

func (c *coreEngine) Value(v int) Boolean {
	return c.states[v].value()
}

func (c *coreEngine) AssignmentOrder(v int) int {
	return int(c.orders[v])
}

func (c *coreEngine) DecisionLevel(v int) int {
	order := c.orders[v]
	if order == nullOrder {
		return nullLevel
	}
	return int(c.trail[order].level)
}

func (c *coreEngine) Reason(v int) (Reason, bool) {
	order := c.orders[v]
	if order == nullOrder {
		return Reason{}, false
	}
	return c.trail[order].reason, true
}

func (c *coreEngine) AssignmentRange(level int) (start, end int) {
	if level > len(c.decisions) {
		panic("sat: assignment range beyond current decision level")
	}
	if level > 0 {
		start = int(c.decisions[level-1].order)
	}
	if level < len(c.decisions) {
		end = int(c.decisions[level].order)
	} else {
		end = len(c.trail)
	}
	return start, end
}

func (c *coreEngine) Assignment(order int) Literal {
	v := int(c.trail[order].variable)
	return NewLiteral(v, c.states[v].value())
}

func (c *coreEngine) AddVariable(initial Boolean) {
	c.states = append(c.states, newVarState(initial))
	c.orders = append(c.orders, nullOrder)
}

func (c *coreEngine) Assign(l Literal, reason Reason) PropagationResult {
	v := l.VarID()
	if c.states[v].isAssigned() {
		panic("sat: assigning an already assigned variable")
	}
	order := len(c.trail)
	if reason.IsDecision() {
		c.decisions = append(c.decisions, decision{order: int32(order)})
	}
	c.trail = append(c.trail, assignment{
		variable: int32(v),
		level:    int32(len(c.decisions)),
		reason:   reason,
	})
	c.states[v].assign(l.Value())
	c.orders[v] = int32(order)
	return NoConflict
}

func (c *coreEngine) Explain(key ExplainKey) []Literal {
	if key.kind != kindUnit {
		panic("sat: core engine asked to explain a key it does not own")
	}
	c.explainBuf[0] = key.literal
	return c.explainBuf[:]
}

func (c *coreEngine) Backjump(level int) []Literal {
	c.backjumpBuf = c.backjumpBuf[:0]
	for len(c.decisions) > level {
		top := c.trail[len(c.trail)-1]
		c.trail = c.trail[:len(c.trail)-1]
		if top.reason.IsDecision() {
			c.decisions = c.decisions[:len(c.decisions)-1]
		}
		v := int(top.variable)
		value := c.states[v].value()
		c.states[v].unassign()
		c.orders[v] = nullOrder
		c.backjumpBuf = append(c.backjumpBuf, NewLiteral(v, value))
	}
	return c.backjumpBuf
}

// AddConstraint asserts a unit clause at the root level.
func (c *coreEngine) AddConstraint(literals []Literal, _ bool) PropagationResult {
	if len(literals) != 1 {
		panic("sat: core engine owns unit constraints only")
	}
	if len(c.decisions) != 0 {
		panic("sat: unit constraints can only be asserted at the root level")
	}
	l := literals[0]
	switch {
	case c.IsFalse(l):
		return Conflict(unitKey(l))
	case !c.IsAssigned(l.VarID()):
		return c.Assign(l, Propagation(unitKey(l)))
	default:
		return NoConflict
	}
}

func (c *coreEngine) ReduceConstraints() {}

func (c *coreEngine) Summarize(sum *Summary) {
	if len(c.decisions) == 0 {
		sum.FixedVariables = len(c.trail)
	} else {
		sum.FixedVariables = int(c.decisions[0].order)
	}
}
