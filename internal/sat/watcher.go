package sat

import "math"

// lbdWatcher tracks the distribution of learnt-clause LBDs by fitting a
// log-normal: it maintains exponentially weighted means of ln(LBD) and
// ln(LBD)² over a long time constant and exposes the CDF of the fit. The
// restart policy reads the CDF to judge how ordinary the latest learnt
// clause is.
type lbdWatcher struct {
	logMean   average
	logSquare average
}

func newLBDWatcher(timeConstant float64) *lbdWatcher {
	return &lbdWatcher{
		logMean:   newAverage(timeConstant),
		logSquare: newAverage(timeConstant),
	}
}

func (w *lbdWatcher) Add(lbd int) {
	x := math.Log(float64(lbd))
	w.logMean.add(x)
	w.logSquare.add(x * x)
}

// CDF returns the probability that a clause drawn from the fitted
// distribution has an LBD of at most x.
func (w *lbdWatcher) CDF(x float64) float64 {
	mean := w.logMean.value()
	variance := math.Max(0, w.logSquare.value()-mean*mean)
	return 0.5 * (1 + math.Erf((math.Log(x)-mean)/math.Sqrt(2*variance)))
}
