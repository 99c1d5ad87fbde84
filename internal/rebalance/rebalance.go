package rebalance

import "math"

const epsilon = 0.005 // half a cent

// Adjust applies a manual edit to one vehicle and redistributes the
// difference so the total still equals the budget and no unlocked vehicle
// exceeds its limit. Editing a locked or unknown vehicle is a no-op.
func Adjust(s State, edited string, newValue float64) State {
	if _, ok := s.Amounts[edited]; !ok || s.Locked[edited] {
		return s
	}
	out := s.clone()

	newValue = math.Max(newValue, 0)
	if limit := out.Limits[edited]; !math.IsInf(limit, 1) {
		newValue = math.Min(newValue, limit)
	}
	// One vehicle can never hold more than the whole budget.
	newValue = math.Min(newValue, out.Budget)
	delta := newValue - out.Amounts[edited]
	out.Amounts[edited] = newValue

	if delta > 0 {
		pullIncrease(&out, edited, delta)
	} else if delta < 0 {
		distributeFreed(&out, edited, -delta)
	}
	normalize(&out, edited)
	roundAmounts(&out, edited)
	return out
}

// pullIncrease funds an increase: overflow first, then the other unlocked
// vehicles in proportion to their share of the original recommendation.
func pullIncrease(s *State, edited string, need float64) {
	if s.Overflow != edited && !s.Locked[s.Overflow] {
		take := math.Min(need, s.Amounts[s.Overflow])
		s.Amounts[s.Overflow] -= take
		need -= take
	}
	if need <= epsilon {
		return
	}
	props := recommendedShares(s, edited)
	for name, prop := range props {
		take := math.Min(need*prop, s.Amounts[name])
		s.Amounts[name] -= take
	}
}

// distributeFreed spreads a decrease across the other unlocked vehicles by
// the same recommended proportions, capped by each one's remaining room; the
// unabsorbed remainder flows to overflow.
func distributeFreed(s *State, edited string, freed float64) {
	props := recommendedShares(s, edited)
	for name, prop := range props {
		give := math.Min(freed*prop, s.room(name))
		s.Amounts[name] += give
	}
	// normalize routes whatever was not absorbed into overflow.
}

// recommendedShares returns each unlocked vehicle's share of the original
// recommended allocation, renormalized after excluding overflow and the
// edited vehicle. Locked vehicles are neither source nor destination.
func recommendedShares(s *State, edited string) map[string]float64 {
	total := 0.0
	for _, name := range s.Vehicles {
		if name == edited || name == s.Overflow || s.Locked[name] {
			continue
		}
		total += s.Recommended[name]
	}
	out := make(map[string]float64)
	if total <= 0 {
		return out
	}
	for _, name := range s.Vehicles {
		if name == edited || name == s.Overflow || s.Locked[name] {
			continue
		}
		out[name] = s.Recommended[name] / total
	}
	return out
}

// normalize corrects residual drift after a transition: proportional shrink
// when over budget, shortfall routed to overflow (or the first vehicle with
// room) when under. The edited vehicle and locked vehicles stay put.
func normalize(s *State, edited string) {
	drift := s.Total() - s.Budget
	if drift > epsilon {
		shrinkable := 0.0
		for _, name := range s.Vehicles {
			if name == edited || s.Locked[name] {
				continue
			}
			shrinkable += s.Amounts[name]
		}
		if shrinkable <= 0 {
			return
		}
		scale := math.Max(shrinkable-drift, 0) / shrinkable
		for _, name := range s.Vehicles {
			if name == edited || s.Locked[name] {
				continue
			}
			s.Amounts[name] *= scale
		}
		return
	}
	if drift < -epsilon {
		shortfall := -drift
		if s.Overflow != "" && s.Overflow != edited && !s.Locked[s.Overflow] {
			s.Amounts[s.Overflow] += shortfall
			return
		}
		for _, name := range s.Vehicles {
			if name == edited || s.Locked[name] {
				continue
			}
			give := math.Min(shortfall, s.room(name))
			s.Amounts[name] += give
			shortfall -= give
			if shortfall <= epsilon {
				return
			}
		}
	}
}

// roundAmounts rounds to cents and parks the residual cent on the overflow
// vehicle so the total matches the budget exactly.
func roundAmounts(s *State, edited string) {
	for _, name := range s.Vehicles {
		s.Amounts[name] = math.Round(s.Amounts[name]*100) / 100
	}
	drift := math.Round((s.Total()-s.Budget)*100) / 100
	if drift == 0 {
		return
	}
	carrier := s.Overflow
	if carrier == "" || s.Locked[carrier] || carrier == edited {
		for _, name := range s.Vehicles {
			if name != edited && !s.Locked[name] && s.Amounts[name]-drift >= 0 {
				carrier = name
				break
			}
		}
	}
	if carrier != "" && s.Amounts[carrier]-drift >= 0 {
		s.Amounts[carrier] -= drift
	}
}

// SetBudget rescales the session to a new budget: every unlocked amount
// scales by newBudget/oldBudget, re-clamps to its limit, and the drift is
// normalized away. Locked vehicles keep their dollars.
func SetBudget(s State, newBudget float64) State {
	if newBudget <= 0 || s.Budget <= 0 {
		return s
	}
	out := s.clone()
	scale := newBudget / out.Budget
	out.Budget = newBudget
	for _, name := range out.Vehicles {
		if out.Locked[name] {
			continue
		}
		scaled := out.Amounts[name] * scale
		if limit := out.Limits[name]; !math.IsInf(limit, 1) {
			scaled = math.Min(scaled, limit)
		}
		out.Amounts[name] = scaled
	}
	normalize(&out, "")
	roundAmounts(&out, "")
	return out
}

// UpdateLimits swaps in recomputed effective limits (a catalog reload or a
// fact change) and re-clamps current amounts; freed drift is normalized into
// overflow.
func UpdateLimits(s State, limits map[string]float64) State {
	out := s.clone()
	for name, limit := range limits {
		if _, ok := out.Limits[name]; !ok {
			continue
		}
		out.Limits[name] = limit
		if !math.IsInf(limit, 1) && out.Amounts[name] > limit {
			out.Amounts[name] = limit
		}
	}
	normalize(&out, "")
	roundAmounts(&out, "")
	return out
}

// Lock pins a vehicle: it will not move during later edits.
func Lock(s State, name string) State {
	if _, ok := s.Amounts[name]; !ok {
		return s
	}
	out := s.clone()
	out.Locked[name] = true
	return out
}

// Unlock releases a pinned vehicle.
func Unlock(s State, name string) State {
	if _, ok := s.Amounts[name]; !ok {
		return s
	}
	out := s.clone()
	delete(out.Locked, name)
	return out
}

// Reset restores the original recommended amounts and clears every lock.
// Resetting twice is the same as resetting once.
func Reset(s State) State {
	out := s.clone()
	out.Locked = make(map[string]bool)
	total := 0.0
	for _, name := range out.Vehicles {
		out.Amounts[name] = out.Recommended[name]
		total += out.Recommended[name]
	}
	out.Budget = math.Round(total*100) / 100
	return out
}
