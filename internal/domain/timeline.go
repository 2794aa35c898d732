package domain

// Leg is one directed hop of a realized route, identified by matrix node
// indices (0 is the base). A full route's legs always form the cycle
// base -> stop -> ... -> stop -> base.
type Leg struct {
	From    int
	To      int
	Minutes float64
}

// RouteTimeline is the planned route for one trip: the chosen visiting order,
// the leg durations closing back to the base, and the departure offset from
// the base in minutes since midnight (may be negative when a tight fixed
// start requires leaving before the reference midnight).
//
// It is immutable planning output. Aggregate totals are derived on demand so
// they can never diverge from the legs and stops they summarize.
type RouteTimeline struct {
	Stops        []Stop
	Legs         []Leg
	DepartureMin float64
}

// DrivingMinutes sums the leg durations (driving burden only).
func (t *RouteTimeline) DrivingMinutes() float64 {
	var total float64
	for _, leg := range t.Legs {
		total += leg.Minutes
	}
	return total
}

// ServiceMinutes sums the time spent at stops.
func (t *RouteTimeline) ServiceMinutes() int {
	var total int
	for _, s := range t.Stops {
		total += s.ServiceMinutes
	}
	return total
}

// TotalMinutes is driving plus service time.
func (t *RouteTimeline) TotalMinutes() float64 {
	return t.DrivingMinutes() + float64(t.ServiceMinutes())
}

// Visit is the realized schedule at one stop, in minutes since midnight.
// StartMin is when the stop's business begins: the arrival instant, or the
// fixed start time when the traveler arrives early and waits for it.
type Visit struct {
	Stop      Stop
	ArriveMin float64
	StartMin  float64
	LeaveMin  float64
}

// Visits walks the timeline from DepartureMin and returns the realized
// schedule at each stop in visiting order. A fixed-start stop reached early
// holds the clock at its scheduled minute before service begins.
func (t *RouteTimeline) Visits() []Visit {
	visits := make([]Visit, 0, len(t.Stops))
	clock := t.DepartureMin
	for i, s := range t.Stops {
		clock += t.Legs[i].Minutes
		v := Visit{Stop: s, ArriveMin: clock}
		if s.HasFixedStart() && clock < float64(*s.FixedStartMin) {
			clock = float64(*s.FixedStartMin)
		}
		v.StartMin = clock
		clock += float64(s.ServiceMinutes)
		v.LeaveMin = clock
		visits = append(visits, v)
	}
	return visits
}

// ReturnMin is the arrival instant back at the base, in minutes since
// midnight, following the same clock as Visits. For an empty route it equals
// DepartureMin.
func (t *RouteTimeline) ReturnMin() float64 {
	visits := t.Visits()
	if len(visits) == 0 {
		return t.DepartureMin
	}
	return visits[len(visits)-1].LeaveMin + t.Legs[len(t.Legs)-1].Minutes
}
