package sat

import "sort"

// analyzer derives a learnt clause from a conflict by first-UIP resolution.
// All of its buffers are scratch state reused across calls; the slices it
// returns borrow them and are only valid until the next analyze call.
type analyzer struct {
	// Working clause of the resolution, as a map from variable to the
	// polarity it carries in the clause (at most one polarity per variable).
	working map[int]Boolean

	// Variables touched by a resolution pivot or surviving in the final
	// clause; the search controller bumps their activities.
	related []int

	buffer []Literal

	minimizer minimizer
}

func newAnalyzer() *analyzer {
	return &analyzer{working: map[int]Boolean{}}
}

// analyze resolves the conflict identified by key into a learnt clause. It
// returns ok == false when resolution reaches the empty clause, which is a
// root-level refutation. Otherwise it returns the learnt clause, the level
// to backjump to, and the related variables.
func (a *analyzer) analyze(key ExplainKey, engine Engine) (learnt []Literal, backjumpLevel int, related []int, ok bool) {
	clear(a.working)
	a.related = a.related[:0]

	a.resolve(engine.Explain(key), engine)

	for {
		if len(a.working) == 0 {
			return nil, 0, nil, false
		}

		if level, uip := a.backjumpLevel(engine); uip {
			a.buffer = a.buffer[:0]
			for v, value := range a.working {
				a.buffer = append(a.buffer, NewLiteral(v, value))
			}
			a.buffer = a.minimizer.minimize(a.buffer, engine)
			for _, l := range a.buffer {
				a.related = append(a.related, l.VarID())
			}
			return a.buffer, level, a.related, true
		}

		// Pick the most recently assigned literal of the working clause as
		// the next resolution pivot. It was necessarily propagated: the
		// current level still holds more than one literal, so the level's
		// decision cannot be the only one left.
		pivot := a.lastAssigned(engine)
		reason, assigned := engine.Reason(pivot.VarID())
		if !assigned || reason.IsDecision() {
			panic("sat: resolution pivot without a propagation reason")
		}
		a.resolve(engine.Explain(reason.Key()), engine)
		a.related = append(a.related, pivot.VarID())
	}
}

// resolve folds a constraint's literals into the working clause. Literals
// assigned at the root level are dropped; a variable occurring with both
// polarities cancels out, which is exactly the resolution step.
func (a *analyzer) resolve(literals []Literal, engine Engine) {
	for _, l := range literals {
		if engine.DecisionLevel(l.VarID()) == 0 {
			continue
		}
		if value, present := a.working[l.VarID()]; present {
			if value != l.Value() {
				delete(a.working, l.VarID())
			}
		} else {
			a.working[l.VarID()] = l.Value()
		}
	}
}

// backjumpLevel returns the second-highest decision level among the working
// clause's literals, and whether the clause has reached the first UIP (i.e.
// exactly one literal sits at the highest level).
func (a *analyzer) backjumpLevel(engine Engine) (level int, uip bool) {
	var top, second int
	for v := range a.working {
		l := engine.DecisionLevel(v)
		if l > top {
			top, second = l, top
		} else if l > second {
			second = l
		}
	}
	return second, top > second
}

// lastAssigned returns the negation of the working clause literal with the
// largest assignment order, i.e. the assignment to resolve against.
func (a *analyzer) lastAssigned(engine Engine) Literal {
	best := Literal(-1)
	bestOrder := -1
	for v, value := range a.working {
		if order := engine.AssignmentOrder(v); order > bestOrder {
			bestOrder = order
			best = NewLiteral(v, value).Opposite()
		}
	}
	return best
}

// minimizer removes self-subsumed literals from a learnt clause: a literal
// is redundant when every ancestor in its reason graph, restricted to levels
// above the root, is either in the clause already or transitively redundant.
type minimizer struct {
	// Minimum assignment order of the clause's literals per decision level.
	// An ancestor assigned at or before its level's minimum cannot be
	// explained by the clause alone.
	minOrderByLevel map[int]int

	// Memoised redundancy verdicts, keyed by variable.
	redundant map[int]bool

	stack []Literal
}

func (m *minimizer) minimize(clause []Literal, engine Engine) []Literal {
	if len(clause) <= 2 {
		return clause
	}
	sort.Slice(clause, func(i, j int) bool {
		return engine.AssignmentOrder(clause[i].VarID()) < engine.AssignmentOrder(clause[j].VarID())
	})

	if m.minOrderByLevel == nil {
		m.minOrderByLevel = map[int]int{}
		m.redundant = map[int]bool{}
	}
	clear(m.minOrderByLevel)
	clear(m.redundant)
	for _, l := range clause {
		level := engine.DecisionLevel(l.VarID())
		order := engine.AssignmentOrder(l.VarID())
		if min, present := m.minOrderByLevel[level]; !present || order < min {
			m.minOrderByLevel[level] = order
		}
		m.redundant[l.VarID()] = true
	}

	for k := len(clause) - 1; k >= 0; k-- {
		l := clause[k]
		// A clause literal must not justify its own redundancy.
		delete(m.redundant, l.VarID())
		m.stack = m.stack[:0]
		if m.isRedundant(l.VarID(), engine) {
			clause[k] = clause[len(clause)-1]
			clause = clause[:len(clause)-1]
		}
	}
	return clause
}

func (m *minimizer) isRedundant(v int, engine Engine) bool {
	if verdict, cached := m.redundant[v]; cached {
		return verdict
	}
	reason, assigned := engine.Reason(v)
	if !assigned {
		panic("sat: redundancy check on an unassigned ancestor")
	}

	level := engine.DecisionLevel(v)
	order := engine.AssignmentOrder(v)
	min, present := m.minOrderByLevel[level]
	verdict := true
	switch {
	case level == 0:
		verdict = true
	case !present || order <= min:
		// Assigned at or before the first clause literal of its level: the
		// clause cannot subsume it.
		verdict = false
	case reason.IsDecision():
		verdict = false
	default:
		// Copy the reason's literals before recursing: Explain views are
		// invalidated by the nested Explain calls below.
		n := len(m.stack)
		for _, ancestor := range engine.Explain(reason.Key()) {
			if ancestor.VarID() != v {
				m.stack = append(m.stack, ancestor)
			}
		}
		for k := n; k < len(m.stack); k++ {
			if !m.isRedundant(m.stack[k].VarID(), engine) {
				verdict = false
				break
			}
		}
		m.stack = m.stack[:n]
	}

	m.redundant[v] = verdict
	return verdict
}
