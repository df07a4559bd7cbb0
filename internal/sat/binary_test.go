package sat

import "testing"

func TestBinaryClauseTheory_Propagate(t *testing.T) {
	e := newTestEngine(3)
	mustNoConflict(t, e.AddConstraint([]Literal{NegativeLiteral(0), PositiveLiteral(1)}, false))
	mustNoConflict(t, e.AddConstraint([]Literal{NegativeLiteral(1), PositiveLiteral(2)}, false))

	mustNoConflict(t, e.Assign(PositiveLiteral(0), Decision))

	for v := 1; v < 3; v++ {
		if !e.IsTrue(PositiveLiteral(v)) {
			t.Errorf("variable %d should be true", v)
		}
		r, ok := e.Reason(v)
		if !ok || !r.IsPropagation() {
			t.Fatalf("variable %d should have a propagation reason", v)
		}
		if got := e.Explain(r.Key()); len(got) != 2 {
			t.Errorf("Explain(): got %d literals, want 2", len(got))
		}
	}
}

func TestBinaryClauseTheory_Conflict(t *testing.T) {
	e := newTestEngine(2)
	mustNoConflict(t, e.AddConstraint([]Literal{NegativeLiteral(0), PositiveLiteral(1)}, false))
	mustNoConflict(t, e.AddConstraint([]Literal{NegativeLiteral(0), NegativeLiteral(1)}, false))

	r := e.Assign(PositiveLiteral(0), Decision)
	if !r.IsConflict() {
		t.Fatal("assigning x0 should conflict")
	}
	if got := e.Explain(r.Key()); len(got) != 2 {
		t.Errorf("Explain(conflict): got %d literals, want 2", len(got))
	}
}

func TestBinaryClauseTheory_AddFalsifiedClause(t *testing.T) {
	e := newTestEngine(2)
	mustNoConflict(t, e.Assign(PositiveLiteral(0), Decision))

	// Adding (¬x0 ∨ x1) while ¬x0 is false must propagate x1 right away.
	mustNoConflict(t, e.AddConstraint([]Literal{NegativeLiteral(0), PositiveLiteral(1)}, false))
	if !e.IsTrue(PositiveLiteral(1)) {
		t.Error("variable 1 should have been propagated on add")
	}

	// Adding a clause with both literals false is an immediate conflict.
	r := e.AddConstraint([]Literal{NegativeLiteral(0), NegativeLiteral(1)}, false)
	if !r.IsConflict() {
		t.Fatal("adding a falsified binary clause should conflict")
	}
}

func TestBinaryClauseTheory_Deduplicate(t *testing.T) {
	theory := newBinaryClauseTheory()
	e := newLayeredEngine(theory, newCoreEngine())
	e.AddVariable(False)
	e.AddVariable(False)

	clause := []Literal{PositiveLiteral(0), PositiveLiteral(1)}
	mustNoConflict(t, e.AddConstraint(clause, false))
	mustNoConflict(t, e.AddConstraint(clause, false))
	mustNoConflict(t, e.AddConstraint([]Literal{PositiveLiteral(1), PositiveLiteral(0)}, false))

	if got := theory.clauses; got != 1 {
		t.Errorf("clause count: got %d, want 1", got)
	}
	if got := len(theory.implications[NegativeLiteral(0)]); got != 1 {
		t.Errorf("implication list of !0: got %d entries, want 1", got)
	}
}
