package sat

import (
	"math"
	"sort"
)

// clauseRow is one row of the long-clause table. Positions 0 and 1 of
// literals always hold the two watched literals of the row.
type clauseRow struct {
	literals   []Literal
	learnt     bool
	deleted    bool
	generation int
	lbd        int
	activity   float64
}

// watch records that a row watches position pos (0 or 1) of its literal
// array, registered on the negation of the watched literal.
type watch struct {
	row int32
	pos int32
}

// clauseTheory owns every clause of three or more literals: a dense table of
// rows plus per-literal watch lists implementing the two-watched-literals
// scheme. Rows are deleted lazily: reduction only flags them, and watch slots
// referencing a deleted row are collected the next time the watching literal
// is touched.
type clauseTheory struct {
	timeConstant float64

	rows    []clauseRow
	watches [][]watch // indexed by literal

	// Logical time and the current activity increment. Unassignments inflate
	// the increment, which decays every older row's relative activity.
	time      int
	increment float64

	lbd lbdCalculator

	clauses       int
	learntClauses int
}

func newClauseTheory(timeConstant float64) *clauseTheory {
	return &clauseTheory{
		timeConstant: timeConstant,
		increment:    1,
	}
}

func (t *clauseTheory) AddVariable() {
	t.watches = append(t.watches, nil, nil)
	t.lbd.grow()
}

func (t *clauseTheory) Assign(l Literal, engine Engine) PropagationResult {
	watches := t.watches[l]
loopWatches:
	for k := len(watches) - 1; k >= 0; k-- {
		w := watches[k]
		row := &t.rows[w.row]
		if row.deleted {
			watches[k] = watches[len(watches)-1]
			watches = watches[:len(watches)-1]
			continue
		}
		other := row.literals[1-w.pos]
		if engine.IsTrue(other) {
			// The clause is satisfied by the other watched literal. The watch
			// may keep pointing at a false literal until l is touched again.
			continue
		}
		for pos := 2; pos < len(row.literals); pos++ {
			m := row.literals[pos]
			if !engine.IsFalse(m) {
				// Migrate the watch to a non-false literal.
				row.literals[w.pos], row.literals[pos] = m, row.literals[w.pos]
				watches[k] = watches[len(watches)-1]
				watches = watches[:len(watches)-1]
				t.watches[m.Opposite()] = append(t.watches[m.Opposite()], w)
				continue loopWatches
			}
		}
		// Every literal but other is false: the row is unit or conflicting.
		if !engine.IsAssigned(other.VarID()) {
			row.activity += t.increment
			if r := engine.Assign(other, Propagation(clauseKey(int(w.row)))); r.IsConflict() {
				t.watches[l] = watches
				return r
			}
		} else {
			t.watches[l] = watches
			return Conflict(clauseKey(int(w.row)))
		}
	}
	t.watches[l] = watches
	return NoConflict
}

func (t *clauseTheory) AddConstraint(literals []Literal, learnt bool, engine Engine) PropagationResult {
	if len(literals) < 3 {
		panic("sat: clause theory owns clauses of three or more literals")
	}
	row := clauseRow{
		literals:   append([]Literal(nil), literals...),
		learnt:     learnt,
		generation: t.time,
		activity:   t.increment,
	}

	// Sort by placement quality so that the two best literals end up watched:
	// true literals first (earliest assigned first), then unassigned ones,
	// then false literals ordered most recently assigned first. For a learnt
	// clause this leaves the asserting literal at position 0 and the deepest
	// false literal at position 1.
	sort.Slice(row.literals, func(i, j int) bool {
		ri, oi := t.placement(row.literals[i], engine)
		rj, oj := t.placement(row.literals[j], engine)
		if ri != rj {
			return ri < rj
		}
		return oi < oj
	})

	row.lbd = t.lbd.calculate(row.literals, engine)

	t.clauses++
	if learnt {
		t.learntClauses++
	}

	rowID := len(t.rows)
	for pos := int32(0); pos < 2; pos++ {
		neg := row.literals[pos].Opposite()
		t.watches[neg] = append(t.watches[neg], watch{row: int32(rowID), pos: pos})
	}
	t.rows = append(t.rows, row)

	key := clauseKey(rowID)
	switch {
	case engine.IsFalse(row.literals[0]):
		// Placement sorting puts a non-false literal first whenever one
		// exists; the whole clause is falsified.
		return Conflict(key)
	case !engine.IsAssigned(row.literals[0].VarID()) && engine.IsFalse(row.literals[1]):
		return engine.Assign(row.literals[0], Propagation(key))
	default:
		return NoConflict
	}
}

// placement ranks a literal for watch selection: lower sorts first.
func (t *clauseTheory) placement(l Literal, engine Engine) (rank int, order int) {
	switch {
	case engine.IsTrue(l):
		return 0, engine.AssignmentOrder(l.VarID())
	case !engine.IsAssigned(l.VarID()):
		return 1, 0
	default:
		return 2, math.MaxInt - engine.AssignmentOrder(l.VarID())
	}
}

func (t *clauseTheory) owns(key ExplainKey) bool {
	return key.kind == kindClause
}

func (t *clauseTheory) wants(size int) bool {
	return size >= 3
}

// Explain returns a view over the row's literal array. Deleted rows keep
// their literals: a row that is the reason of a trail assignment may be
// flagged for deletion before the assignment is undone.
func (t *clauseTheory) Explain(key ExplainKey) []Literal {
	return t.rows[key.row].literals
}

func (t *clauseTheory) Unassign(_ []Literal) {
	t.increment /= 1 - 1/t.timeConstant
	t.time++
}

// ReduceConstraints flags every learnt row whose normalised activity fell
// under the decay threshold, then renormalises all activities so that the
// increment restarts at 1.
func (t *clauseTheory) ReduceConstraints() {
	threshold := math.Pow(1-1/t.timeConstant, math.Max(t.timeConstant, float64(t.time)/10))
	for i := range t.rows {
		row := &t.rows[i]
		row.activity /= t.increment
		if row.learnt && !row.deleted && row.activity <= threshold {
			row.deleted = true
			t.clauses--
			t.learntClauses--
		}
	}
	t.increment = 1
}

func (t *clauseTheory) summarize(sum *Summary) {
	sum.Clauses = t.clauses
	sum.LearntClauses = t.learntClauses
}
