// Package schedule decodes decision vectors into intervention event times.
//
// Index i of a decision vector is year slot i within the horizon [0, dim].
// A strictly positive entry encodes one intervention during that year, at
// the fractional offset the entry carries; zero or negative entries encode
// no intervention for the slot.
package schedule

import "fmt"

// InvalidEncodingError reports a decision vector that does not decode to a
// valid event schedule
type InvalidEncodingError struct {
	Index  int
	Offset float64
	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("invalid encoding at index %d (offset %g): %s", e.Index, e.Offset, e.Reason)
}

// Decode maps a decision vector to an ordered event schedule over the
// horizon [0, len(x)]. The result is strictly increasing and always ends
// with the horizon end time as a terminal non-intervention marker.
//
// An offset above one full year slot would let an event collide with or
// pass the next slot's base time, and an event landing at or beyond the
// horizon end would collide with the terminal marker; both decode failures
// are rejected rather than clamped so the schedule stays a pure function
// of the vector.
func Decode(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, &InvalidEncodingError{Index: -1, Reason: "empty decision vector"}
	}

	horizon := float64(len(x))
	times := make([]float64, 0, len(x)+1)
	for i, offset := range x {
		if offset <= 0 {
			continue
		}
		if offset > 1 {
			return nil, &InvalidEncodingError{Index: i, Offset: offset, Reason: "offset exceeds one year slot"}
		}
		t := float64(i) + offset
		if t >= horizon {
			return nil, &InvalidEncodingError{Index: i, Offset: offset, Reason: "event time reaches horizon end"}
		}
		times = append(times, t)
	}
	times = append(times, horizon)

	// Distinct integer bases plus offsets in (0, 1] keep the sequence
	// strictly increasing; guard the invariant anyway.
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, &InvalidEncodingError{Index: i, Offset: times[i], Reason: "schedule not strictly increasing"}
		}
	}

	return times, nil
}

// Interventions returns the schedule without its terminal marker
func Interventions(times []float64) []float64 {
	if len(times) == 0 {
		return nil
	}
	return times[:len(times)-1]
}
