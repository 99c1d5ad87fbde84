// Package rebalance repairs an allocation after a single manual edit without
// re-running the waterfall. State transitions are pure: every operation takes
// a state by value and returns the next one, so a UI can drive sliders
// against it and throw the whole session away on reset or reclassification.
package rebalance

import (
	"math"

	"github.com/google/uuid"

	"planforge/internal/allocate"
	"planforge/internal/catalog"
	"planforge/internal/eligibility"
)

// State is one client's ephemeral editing session over an allocation.
type State struct {
	// ID tags the editing session; a recompute issues a fresh one.
	ID uuid.UUID
	// Budget is the discretionary monthly total every operation preserves.
	Budget float64
	// Vehicles is the priority order, overflow last.
	Vehicles []string
	// Overflow names the unlimited sweep vehicle.
	Overflow string

	Amounts     map[string]float64
	Recommended map[string]float64
	Locked      map[string]bool
	// Limits holds effective monthly limits; +Inf marks unlimited.
	Limits map[string]float64
}

// NewState opens an editing session over a finished waterfall result. Seeded
// non-discretionary vehicles are excluded: sliders only move discretionary
// money.
func NewState(res allocate.Result, ordered []eligibility.Vehicle) State {
	s := State{
		ID:          uuid.New(),
		Budget:      res.Budget,
		Amounts:     make(map[string]float64),
		Recommended: make(map[string]float64),
		Locked:      make(map[string]bool),
		Limits:      make(map[string]float64),
	}
	for _, ev := range ordered {
		if ev.NonDiscretionary {
			continue
		}
		s.Vehicles = append(s.Vehicles, ev.Name)
		amt := res.Vehicles[ev.Name]
		s.Amounts[ev.Name] = amt
		s.Recommended[ev.Name] = amt
		if ev.Unlimited {
			s.Limits[ev.Name] = math.Inf(1)
		} else {
			s.Limits[ev.Name] = ev.MonthlyLimit
		}
		if ev.Domain == catalog.DomainOverflow {
			s.Overflow = ev.Name
		}
	}
	return s
}

// clone deep-copies the maps so transitions never alias the previous state.
func (s State) clone() State {
	out := s
	out.Vehicles = append([]string(nil), s.Vehicles...)
	out.Amounts = copyMap(s.Amounts)
	out.Recommended = copyMap(s.Recommended)
	out.Limits = copyMap(s.Limits)
	out.Locked = make(map[string]bool, len(s.Locked))
	for k, v := range s.Locked {
		out.Locked[k] = v
	}
	return out
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Total sums the current vehicle amounts.
func (s State) Total() float64 {
	t := 0.0
	for _, v := range s.Vehicles {
		t += s.Amounts[v]
	}
	return t
}

func (s State) room(name string) float64 {
	return math.Max(s.Limits[name]-s.Amounts[name], 0)
}
