// Package dimacs loads DIMACS CNF instances into a solver.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"
	"github.com/rhartert/gluon/internal/sat"
)

// Solver is the subset of the solver surface needed to install an instance.
type Solver interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

// LoadDIMACS parses the DIMACS CNF file and loads its formula in the given
// solver.
func LoadDIMACS(filename string, gzipped bool, solver Solver) error {
	reader, err := open(filename, gzipped)
	if err != nil {
		return fmt.Errorf("error reading file %q: %w", filename, err)
	}
	defer reader.Close()
	return Read(reader, solver)
}

// Read parses DIMACS CNF text and loads its formula in the given solver.
// Comment and problem lines are ignored beyond declaring variables; every
// other line is a clause of non-zero literals terminated by 0. An empty
// clause is rejected.
func Read(r io.Reader, solver Solver) error {
	b := &builder{solver: solver}
	return dimacs.ReadBuilder(r, b)
}

func open(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver    Solver
	variables int
	clause    []sat.Literal
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("instances of type %q are not supported", problem)
	}
	b.grow(nVars)
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	if len(tmpClause) == 0 {
		return fmt.Errorf("illegal empty clause")
	}
	b.clause = b.clause[:0]
	for _, l := range tmpClause {
		if l == 0 {
			return fmt.Errorf("illegal literal 0 inside clause")
		}
		v := l
		if v < 0 {
			v = -v
		}
		b.grow(v) // tolerate clauses past the declared variable count
		if l < 0 {
			b.clause = append(b.clause, sat.NegativeLiteral(v-1))
		} else {
			b.clause = append(b.clause, sat.PositiveLiteral(v-1))
		}
	}
	return b.solver.AddClause(b.clause)
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *builder) grow(nVars int) {
	for b.variables < nVars {
		b.solver.AddVariable()
		b.variables++
	}
}
