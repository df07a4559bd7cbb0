package sat

// binaryClauseTheory stores 2-literal clauses as symmetric implication
// adjacency lists: implications[l] holds every literal m such that the clause
// (¬l ∨ m) exists, i.e. the literals forced true when l becomes true.
// Propagation over a binary clause is a constant-time list walk, and binary
// clauses are never forgotten.
type binaryClauseTheory struct {
	implications [][]Literal // indexed by literal

	clauses       int
	learntClauses int

	explainBuf [2]Literal
}

func newBinaryClauseTheory() *binaryClauseTheory {
	return &binaryClauseTheory{}
}

func (t *binaryClauseTheory) AddVariable() {
	t.implications = append(t.implications, nil, nil)
}

func (t *binaryClauseTheory) Assign(l Literal, engine Engine) PropagationResult {
	for _, m := range t.implications[l] {
		switch {
		case !engine.IsAssigned(m.VarID()):
			key := binaryKey(l.Opposite(), m)
			if r := engine.Assign(m, Propagation(key)); r.IsConflict() {
				return r
			}
		case engine.IsFalse(m):
			return Conflict(binaryKey(l.Opposite(), m))
		}
	}
	return NoConflict
}

func (t *binaryClauseTheory) AddConstraint(literals []Literal, learnt bool, engine Engine) PropagationResult {
	l0, l1 := literals[0], literals[1]
	if l0.VarID() == l1.VarID() {
		panic("sat: binary clause over a single variable")
	}

	// Deduplicate against existing implications. The adjacency lists are
	// symmetric, so checking one direction is enough.
	for _, m := range t.implications[l0.Opposite()] {
		if m == l1 {
			return NoConflict
		}
	}

	t.clauses++
	if learnt {
		t.learntClauses++
	}

	t.implications[l0.Opposite()] = append(t.implications[l0.Opposite()], l1)
	t.implications[l1.Opposite()] = append(t.implications[l1.Opposite()], l0)

	key := binaryKey(l0, l1)
	switch {
	case engine.IsFalse(l0) && engine.IsFalse(l1):
		return Conflict(key)
	case engine.IsFalse(l0) && !engine.IsAssigned(l1.VarID()):
		return engine.Assign(l1, Propagation(key))
	case engine.IsFalse(l1) && !engine.IsAssigned(l0.VarID()):
		return engine.Assign(l0, Propagation(key))
	default:
		return NoConflict
	}
}

func (t *binaryClauseTheory) owns(key ExplainKey) bool {
	return key.kind == kindBinary
}

func (t *binaryClauseTheory) wants(size int) bool {
	return size == 2
}

func (t *binaryClauseTheory) Explain(key ExplainKey) []Literal {
	t.explainBuf = key.binary
	return t.explainBuf[:]
}

func (t *binaryClauseTheory) Unassign(_ []Literal) {}

func (t *binaryClauseTheory) ReduceConstraints() {}

func (t *binaryClauseTheory) summarize(sum *Summary) {
	sum.BinaryClauses = t.clauses
	sum.LearntBinaryClauses = t.learntClauses
}
