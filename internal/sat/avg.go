package sat

import "math"

// average tracks a running mean with a capped effective sample count: a
// plain mean for the first timeConstant samples, an exponentially weighted
// one afterwards.
type average struct {
	timeConstant float64
	count        float64
	mean         float64
}

func newAverage(timeConstant float64) average {
	return average{timeConstant: timeConstant}
}

func (a *average) add(x float64) {
	a.count++
	t := math.Min(a.timeConstant, a.count)
	a.mean = ((t-1)*a.mean + x) / t
}

// value returns the current mean, or NaN before the first sample.
func (a *average) value() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.mean
}
