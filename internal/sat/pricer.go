package sat

import "github.com/rhartert/yagh"

// Pricer maintains the decision ordering: a priority queue of unassigned
// variables keyed by activity. Activities live in [0, 1] and move toward 1
// or 0 by a fixed share of the residual on every conflict, so no overflow
// rescaling is ever needed.
type Pricer struct {
	// Indexed heap over the unassigned variables. Costs are negated
	// activities so that the min-heap pops the highest activity first; ties
	// break on variable ID.
	queue *yagh.IntMap[float64]

	activities []float64

	// Variables of the conflict level singled out by the last bump.
	targets ResetSet

	time int
}

// bumpStep is the share of the residual applied on every activity update.
const bumpStep = 0.1

func NewPricer() *Pricer {
	return &Pricer{queue: yagh.New[float64](0)}
}

// AddVariable registers a new variable with the given initial activity. The
// variable enters the queue unless it is already assigned.
func (p *Pricer) AddVariable(initialActivity float64, assigned bool) {
	v := len(p.activities)
	p.activities = append(p.activities, initialActivity)
	p.targets.Grow(v + 1)
	p.queue.GrowBy(1)
	if !assigned {
		p.queue.Put(v, -initialActivity)
	}
}

// SetUnassigned puts variable v back among the decision candidates. The
// solver calls it for every literal undone by a backjump.
func (p *Pricer) SetUnassigned(v int) {
	if !p.queue.Contains(v) {
		p.queue.Put(v, -p.activities[v])
	}
}

// NextDecision pops the highest-activity unassigned variable. Assigned
// entries may linger in the queue from lazy removal and are skipped. The
// second return value is false when no unassigned variable remains.
func (p *Pricer) NextDecision(engine Engine) (int, bool) {
	for {
		next, ok := p.queue.Pop()
		if !ok {
			return 0, false
		}
		if !engine.IsAssigned(next.Elem) {
			return next.Elem, true
		}
	}
}

// Bump rewards the variables involved in a conflict. Related variables
// assigned at the conflict level form the target set; every variable
// assigned in the window (backjumpLevel, currentLevel] then moves toward 1
// if targeted and toward 0 otherwise. Related variables assigned below the
// conflict level first move toward 1 directly, before the window sweep.
func (p *Pricer) Bump(related []int, engine Engine, backjumpLevel int) {
	p.time++
	p.targets.Clear()
	current := engine.CurrentDecisionLevel()
	for _, v := range related {
		if engine.DecisionLevel(v) == current {
			p.targets.Add(v)
		} else {
			p.moveToward(v, 1)
		}
	}
	for level := backjumpLevel + 1; level <= current; level++ {
		start, end := engine.AssignmentRange(level)
		for order := start; order < end; order++ {
			v := engine.Assignment(order).VarID()
			target := 0.0
			if p.targets.Contains(v) {
				target = 1
			}
			p.moveToward(v, target)
		}
	}
}

// moveToward updates v's activity by a bumpStep share of the residual and
// refreshes its queue key in place when v is still enqueued.
func (p *Pricer) moveToward(v int, target float64) {
	p.activities[v] += bumpStep * (target - p.activities[v])
	if p.queue.Contains(v) {
		p.queue.Put(v, -p.activities[v])
	}
}
