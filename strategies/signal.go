package strategies

// Point is the state of one instrument at one bar.
type Point struct {
	Close float64
	Fast  float64
	Slow  float64

	// Ready is false until both averages have completed their warmup.
	Ready bool
}

// Snapshot pairs the current bar with the previous bar of the same instrument.
type Snapshot struct {
	Instrument string
	Cur        Point
	Prev       Point

	// HavePrev is false on the instrument's first bar.
	HavePrev bool
}

// Evaluable reports whether all six inputs of the rules are available.
// A snapshot that is not evaluable produces no signals rather than
// a false crossing against zeroed averages.
func (s Snapshot) Evaluable() bool {
	return s.HavePrev && s.Cur.Ready && s.Prev.Ready
}

// Detect evaluates the three rules independently and returns the signals that
// fired, in the order of All. Each rule yields at most one signal; strict
// inequalities mean a tie with the average fires nothing.
func Detect(s Snapshot) []Signal {
	if !s.Evaluable() {
		return nil
	}

	var out []Signal
	emit := func(id ID, a Action) {
		if a != 0 {
			out = append(out, Signal{Instrument: s.Instrument, Strategy: id, Action: a})
		}
	}

	emit(FastSMACross, cross(s.Cur.Close, s.Cur.Fast, s.Prev.Close, s.Prev.Fast))
	emit(SlowSMACross, cross(s.Cur.Close, s.Cur.Slow, s.Prev.Close, s.Prev.Slow))
	emit(FastSlowCross, cross(s.Cur.Fast, s.Cur.Slow, s.Prev.Fast, s.Prev.Slow))

	return out
}

// cross returns Buy when a moves above b between the previous and current
// bar, Sell when it moves below, and 0 otherwise.
//
//   - Buy:  a > b now and a <= b before
//   - Sell: a < b now and a >= b before
func cross(a, b, prevA, prevB float64) Action {
	switch {
	case a > b && prevA <= prevB:
		return Buy
	case a < b && prevA >= prevB:
		return Sell
	default:
		return 0
	}
}
