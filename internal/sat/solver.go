package sat

import (
	"fmt"
	"math"
	"os"
	"time"
)

// Status is the verdict of a solve run.
type Status int8

const (
	// Indefinite means the search exhausted its budget before reaching a
	// verdict. It is a normal outcome, not an error.
	Indefinite Status = iota
	Satisfiable
	Unsatisfiable
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "INDEFINITE"
	}
}

type Options struct {
	// Time constant of the long-clause activity decay.
	ClauseActivityTimeConstant float64

	// Time constant of the learnt-clause LBD statistics.
	WatcherTimeConstant float64

	// Wall-clock budget of a Solve call. Negative means no budget.
	Timeout time.Duration

	// Conflict budget of a Solve call. Negative means no budget.
	MaxConflicts int64

	// Print progress lines to stderr on restarts.
	Verbose bool
}

var DefaultOptions = Options{
	ClauseActivityTimeConstant: 1e4,
	WatcherTimeConstant:        1e4,
	Timeout:                    60 * time.Second,
	MaxConflicts:               -1,
	Verbose:                    false,
}

// Restart scale: a learnt clause whose LBD sits at quantile p of the fitted
// distribution allows a restart after ceil(restartScale * (1 - p)) conflicts.
const (
	restartScale        = 1e4
	restartMinConflicts = 100
)

// Solver is a CDCL SAT solver: a layered propagation engine (unit, binary,
// and long clauses over a core trail), a first-UIP conflict analyzer, an
// activity-based decision heuristic, and an LBD-driven restart and clause
// database reduction policy.
type Solver struct {
	engine   Engine
	pricer   *Pricer
	analyzer *analyzer
	lbd      lbdCalculator
	watcher  *lbdWatcher

	options Options

	unsat bool

	// Model holds the satisfying assignment found by the last Solve call
	// that returned Satisfiable.
	Model []bool

	// Search statistics.
	TotalConflicts int64
	TotalRestarts  int64

	sinceRestart int64
	startTime    time.Time

	tmpClause []Literal
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(ops Options) *Solver {
	core := newCoreEngine()
	binaries := newLayeredEngine(newBinaryClauseTheory(), core)
	clauses := newLayeredEngine(newClauseTheory(ops.ClauseActivityTimeConstant), binaries)
	return &Solver{
		engine:   clauses,
		pricer:   NewPricer(),
		analyzer: newAnalyzer(),
		watcher:  newLBDWatcher(ops.WatcherTimeConstant),
		options:  ops,
	}
}

func (s *Solver) NumVariables() int {
	return s.engine.NumVariables()
}

// AddVariable declares a new variable with a False preferred polarity and
// returns its ID.
func (s *Solver) AddVariable() int {
	return s.AddVariableWithPhase(false)
}

// AddVariableWithPhase declares a new variable whose first decision will try
// the given polarity.
func (s *Solver) AddVariableWithPhase(phase bool) int {
	v := s.engine.NumVariables()
	s.engine.AddVariable(Lift(phase))
	s.pricer.AddVariable(0, false)
	s.lbd.grow()
	return v
}

// AddClause installs an input clause. Clauses can only be added at the root
// level; a clause falsified by the root assignments makes the instance
// unsatisfiable. The literal slice is copied and may be reused by the caller.
func (s *Solver) AddClause(literals []Literal) error {
	if s.engine.CurrentDecisionLevel() != 0 {
		return fmt.Errorf("can only add clauses at the root level")
	}
	if s.unsat {
		return nil
	}

	clause, satisfied := s.prepareClause(literals)
	if satisfied {
		return nil
	}
	if len(clause) == 0 {
		// Empty after removing root-falsified literals (or empty on input):
		// the instance admits no model.
		s.TotalConflicts++
		s.unsat = true
		return nil
	}
	if s.engine.AddConstraint(clause, false).IsConflict() {
		s.TotalConflicts++
		s.unsat = true
	}
	return nil
}

// prepareClause simplifies an input clause against the root assignments:
// duplicated literals are dropped, clauses containing a literal and its
// opposite (or a literal already true at the root) are satisfied, and
// root-falsified literals are removed.
func (s *Solver) prepareClause(literals []Literal) (clause []Literal, satisfied bool) {
	s.tmpClause = s.tmpClause[:0]
	seen := map[Literal]struct{}{}
	for _, l := range literals {
		if _, ok := seen[l.Opposite()]; ok {
			return nil, true
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		if s.engine.IsTrue(l) {
			return nil, true
		}
		if s.engine.IsFalse(l) {
			continue
		}
		s.tmpClause = append(s.tmpClause, l)
	}
	return s.tmpClause, false
}

// Solve runs the CDCL search until a verdict is reached or the budget runs
// out.
func (s *Solver) Solve() Status {
	s.startTime = time.Now()
	if s.unsat {
		return Unsatisfiable
	}

	result := NoConflict
	for {
		if s.shouldStop() {
			s.printProgress()
			return Indefinite
		}

		if result.IsConflict() {
			s.TotalConflicts++
			s.sinceRestart++

			if s.engine.CurrentDecisionLevel() == 0 {
				s.unsat = true
				s.printProgress()
				return Unsatisfiable
			}

			learnt, backjumpLevel, related, ok := s.analyzer.analyze(result.Key(), s.engine)
			if !ok {
				s.unsat = true
				s.printProgress()
				return Unsatisfiable
			}

			lbd := s.lbd.calculate(learnt, s.engine)
			s.watcher.Add(lbd)
			s.pricer.Bump(related, s.engine, backjumpLevel)

			for _, l := range s.engine.Backjump(backjumpLevel) {
				s.pricer.SetUnassigned(l.VarID())
			}

			result = s.engine.AddConstraint(learnt, true)
			if !result.IsConflict() && s.shouldRestart(lbd) {
				s.restart()
			}
			continue
		}

		v, ok := s.pricer.NextDecision(s.engine)
		if !ok {
			s.saveModel()
			s.printProgress()
			return Satisfiable
		}
		result = s.engine.Assign(NewLiteral(v, s.engine.Value(v)), Decision)
	}
}

func (s *Solver) shouldStop() bool {
	if s.options.Timeout >= 0 && time.Since(s.startTime) > s.options.Timeout {
		return true
	}
	if s.options.MaxConflicts >= 0 && s.TotalConflicts >= s.options.MaxConflicts {
		return true
	}
	return false
}

// shouldRestart applies the LBD-quantile policy: the more ordinary the last
// learnt clause, the fewer conflicts are required before restarting.
func (s *Solver) shouldRestart(lastLBD int) bool {
	if s.TotalConflicts < restartMinConflicts {
		return false
	}
	p := s.watcher.CDF(float64(lastLBD))
	return float64(s.sinceRestart) >= math.Ceil(restartScale*(1-p))
}

func (s *Solver) restart() {
	s.TotalRestarts++
	s.sinceRestart = 0
	if s.engine.CurrentDecisionLevel() != 0 {
		for _, l := range s.engine.Backjump(0) {
			s.pricer.SetUnassigned(l.VarID())
		}
	}
	s.engine.ReduceConstraints()
	s.printProgress()
}

func (s *Solver) saveModel() {
	model := make([]bool, s.engine.NumVariables())
	for v := range model {
		if !s.engine.IsAssigned(v) {
			panic("sat: model saved with unassigned variables")
		}
		model[v] = s.engine.Value(v) == True
	}
	s.Model = model
}

// Summary returns the counters of every engine layer.
func (s *Solver) Summary() Summary {
	sum := Summary{}
	s.engine.Summarize(&sum)
	return sum
}

func (s *Solver) printProgress() {
	if !s.options.Verbose {
		return
	}
	sum := s.Summary()
	fmt.Fprintf(os.Stderr,
		"c %8.3fs restarts=%d conflicts=%d fixed=%d binary=%d (%d learnt) clauses=%d (%d learnt)\n",
		time.Since(s.startTime).Seconds(),
		s.TotalRestarts,
		s.TotalConflicts,
		sum.FixedVariables,
		sum.BinaryClauses, sum.LearntBinaryClauses,
		sum.Clauses, sum.LearntClauses,
	)
}
