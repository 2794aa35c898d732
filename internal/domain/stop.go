package domain

// MinutesPerDay bounds fixed start times: a trip is planned within one
// calendar day, so clock times are minutes since midnight in [0, 1440).
const MinutesPerDay = 1440

// Stop is a single ground destination in a planning request.
// ServiceMinutes is the whole-minute time to be spent there.
// FixedStartMin, when non-nil, pins the stop to a clock time expressed in
// minutes since midnight; the planner must not arrive later than it.
// Stops are caller-owned input; the planner reorders references only.
type Stop struct {
	Name           string
	Location       Location
	ServiceMinutes int
	FixedStartMin  *int
}

// HasFixedStart reports whether the stop carries a fixed start time.
func (s Stop) HasFixedStart() bool { return s.FixedStartMin != nil }
