package sat

// lbdCalculator computes the literal block distance of a clause: the number
// of distinct decision levels among its false literals. Clauses that are not
// currently unit or conflicting (more than one non-false literal) are instead
// priced pessimistically at len-1, which biases the statistic toward clauses
// whose quality is actually observable.
type lbdCalculator struct {
	levels   ResetSet
	capacity int
}

// grow makes room for one more decision level. Levels are bounded by the
// number of variables.
func (c *lbdCalculator) grow() {
	c.capacity++
	c.levels.Grow(c.capacity + 1)
}

func (c *lbdCalculator) calculate(literals []Literal, engine Engine) int {
	c.levels.Clear()
	distinct := 0
	notFalse := 0
	for _, l := range literals {
		if engine.IsFalse(l) {
			level := engine.DecisionLevel(l.VarID())
			if !c.levels.Contains(level) {
				c.levels.Add(level)
				distinct++
			}
		} else {
			notFalse++
		}
	}
	if notFalse <= 1 {
		return distinct
	}
	return len(literals) - 1
}
