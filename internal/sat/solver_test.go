package sat

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/kr/pretty"
)

func testOptions() Options {
	ops := DefaultOptions
	ops.Timeout = 30 * time.Second
	return ops
}

func addClauses(t *testing.T, s *Solver, clauses [][]Literal) {
	t.Helper()
	for _, c := range clauses {
		if err := s.AddClause(c); err != nil {
			t.Fatalf("AddClause(%v): %s", c, err)
		}
	}
}

// satisfies reports whether the model satisfies every clause.
func satisfies(model []bool, clauses [][]Literal) bool {
	for _, c := range clauses {
		ok := false
		for _, l := range c {
			if model[l.VarID()] == l.IsPositive() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestSolver_SingleUnit(t *testing.T) {
	s := NewSolver(testOptions())
	s.AddVariable()
	addClauses(t, s, [][]Literal{{PositiveLiteral(0)}})

	if got := s.Solve(); got != Satisfiable {
		t.Fatalf("Solve(): got %v, want SATISFIABLE", got)
	}
	if s.TotalConflicts != 0 {
		t.Errorf("TotalConflicts: got %d, want 0", s.TotalConflicts)
	}
	if !s.Model[0] {
		t.Error("Model[0]: got false, want true")
	}
}

func TestSolver_ContradictoryUnits(t *testing.T) {
	s := NewSolver(testOptions())
	s.AddVariable()
	addClauses(t, s, [][]Literal{{PositiveLiteral(0)}, {NegativeLiteral(0)}})

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
	if s.TotalConflicts != 1 {
		t.Errorf("TotalConflicts: got %d, want 1", s.TotalConflicts)
	}
}

func TestSolver_EmptyClause(t *testing.T) {
	s := NewSolver(testOptions())
	s.AddVariable()
	addClauses(t, s, [][]Literal{{}})

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
}

func TestSolver_RootPropagationConflict(t *testing.T) {
	s := NewSolver(testOptions())
	for i := 0; i < 2; i++ {
		s.AddVariable()
	}
	addClauses(t, s, [][]Literal{
		{PositiveLiteral(0), PositiveLiteral(1)},
		{NegativeLiteral(0), PositiveLiteral(1)},
		{NegativeLiteral(1)},
	})

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
}

func TestSolver_UnitChain(t *testing.T) {
	// (x0 ∨ ¬x1), (x1 ∨ ¬x2), (x2): everything is forced at the root.
	s := NewSolver(testOptions())
	clauses := [][]Literal{
		{PositiveLiteral(0), NegativeLiteral(1)},
		{PositiveLiteral(1), NegativeLiteral(2)},
		{PositiveLiteral(2)},
	}
	for i := 0; i < 3; i++ {
		s.AddVariable()
	}
	addClauses(t, s, clauses)

	if got := s.Solve(); got != Satisfiable {
		t.Fatalf("Solve(): got %v, want SATISFIABLE", got)
	}
	if s.TotalConflicts != 0 {
		t.Errorf("TotalConflicts: got %d, want 0", s.TotalConflicts)
	}
	for v := 0; v < 3; v++ {
		if !s.Model[v] {
			t.Errorf("Model[%d]: got false, want true", v)
		}
	}
}

func TestSolver_DeepBinaryChainConflict(t *testing.T) {
	// x0 -> x1 -> ... -> x49 together with (x0) and (¬x49) refutes at the
	// root through binary propagation alone.
	s := NewSolver(testOptions())
	const n = 50
	for i := 0; i < n; i++ {
		s.AddVariable()
	}
	// The binaries go in first so that (x0) triggers the chain through the
	// binary-clause theory instead of reducing each binary to a unit on add.
	clauses := [][]Literal{}
	for i := 0; i+1 < n; i++ {
		clauses = append(clauses, []Literal{NegativeLiteral(i), PositiveLiteral(i + 1)})
	}
	clauses = append(clauses, []Literal{PositiveLiteral(0)})
	clauses = append(clauses, []Literal{NegativeLiteral(n - 1)})
	addClauses(t, s, clauses)

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
}

// pigeonhole returns the clauses placing pigeons pigeons into holes holes:
// every pigeon goes somewhere and no hole hosts two pigeons. The instance is
// unsatisfiable whenever pigeons > holes.
func pigeonhole(pigeons, holes int) (nVars int, clauses [][]Literal) {
	varID := func(p, h int) int { return p*holes + h }
	for p := 0; p < pigeons; p++ {
		placed := []Literal{}
		for h := 0; h < holes; h++ {
			placed = append(placed, PositiveLiteral(varID(p, h)))
		}
		clauses = append(clauses, placed)
	}
	for h := 0; h < holes; h++ {
		for p := 0; p < pigeons; p++ {
			for q := p + 1; q < pigeons; q++ {
				clauses = append(clauses, []Literal{
					NegativeLiteral(varID(p, h)),
					NegativeLiteral(varID(q, h)),
				})
			}
		}
	}
	return pigeons * holes, clauses
}

func TestSolver_Pigeonhole(t *testing.T) {
	nVars, clauses := pigeonhole(3, 2)
	s := NewSolver(testOptions())
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	addClauses(t, s, clauses)

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
	if s.TotalConflicts == 0 {
		t.Error("TotalConflicts: got 0, want a non-trivial refutation")
	}
}

// makeRandom3SAT returns a random 3-SAT instance with the given number of
// variables and clauses.
func makeRandom3SAT(seed int64, nVars, nClauses int) [][]Literal {
	rng := rand.New(rand.NewSource(seed))
	clauses := make([][]Literal, 0, nClauses)
	for i := 0; i < nClauses; i++ {
		vars := rng.Perm(nVars)[:3]
		clause := make([]Literal, 3)
		for j, v := range vars {
			clause[j] = NewLiteral(v, Lift(rng.Intn(2) == 0))
		}
		clauses = append(clauses, clause)
	}
	return clauses
}

// bruteForceSAT exhaustively checks satisfiability. Only usable for small
// variable counts.
func bruteForceSAT(nVars int, clauses [][]Literal) bool {
	model := make([]bool, nVars)
	for bits := 0; bits < 1<<nVars; bits++ {
		for v := 0; v < nVars; v++ {
			model[v] = bits&(1<<v) != 0
		}
		if satisfies(model, clauses) {
			return true
		}
	}
	return false
}

func TestSolver_RandomizedAgainstBruteForce(t *testing.T) {
	const nVars = 8
	for _, nClauses := range []int{10, 20, 34} {
		t.Run(fmt.Sprintf("vars=%d,clauses=%d", nVars, nClauses), func(t *testing.T) {
			for seed := int64(0); seed < 50; seed++ {
				clauses := makeRandom3SAT(seed, nVars, nClauses)

				s := NewSolver(testOptions())
				for i := 0; i < nVars; i++ {
					s.AddVariable()
				}
				addClauses(t, s, clauses)
				got := s.Solve()

				want := Satisfiable
				if !bruteForceSAT(nVars, clauses) {
					want = Unsatisfiable
				}
				if got != want {
					t.Fatalf("[seed=%d] Solve(): got %v, want %v\nclauses: %s",
						seed, got, want, pretty.Sprint(clauses))
				}
				if got == Satisfiable && !satisfies(s.Model, clauses) {
					t.Fatalf("[seed=%d] invalid model: %s", seed, pretty.Sprint(s.Model))
				}
			}
		})
	}
}

func TestSolver_Random3SATAtThreshold(t *testing.T) {
	// 20 variables, 85 clauses: ratio 4.25, near the phase transition. The
	// solver must reach a verdict and any model must check out.
	for seed := int64(0); seed < 10; seed++ {
		clauses := makeRandom3SAT(seed, 20, 85)

		s := NewSolver(testOptions())
		for i := 0; i < 20; i++ {
			s.AddVariable()
		}
		addClauses(t, s, clauses)

		switch got := s.Solve(); got {
		case Satisfiable:
			if !satisfies(s.Model, clauses) {
				t.Fatalf("[seed=%d] invalid model: %s", seed, pretty.Sprint(s.Model))
			}
		case Unsatisfiable:
			if bruteForceSAT(20, clauses) {
				t.Fatalf("[seed=%d] got UNSATISFIABLE on a satisfiable instance", seed)
			}
		default:
			t.Fatalf("[seed=%d] Solve(): got %v, want a verdict", seed, got)
		}
	}
}

func TestSolver_RestartsAndReduction(t *testing.T) {
	// A hard enough instance to trigger restarts and database reductions.
	nVars, clauses := pigeonhole(6, 5)
	s := NewSolver(testOptions())
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	addClauses(t, s, clauses)

	if got := s.Solve(); got != Unsatisfiable {
		t.Fatalf("Solve(): got %v, want UNSATISFIABLE", got)
	}
	t.Logf("conflicts=%d restarts=%d summary=%+v",
		s.TotalConflicts, s.TotalRestarts, s.Summary())
}
