// Package allocate distributes the monthly discretionary budget across the
// prioritized eligible vehicles: domain budgets from the computed weights,
// cascading leftovers Education→Health→Retirement, shared-limit pairs filled
// 50/50, and everything unplaced swept into the overflow vehicle.
package allocate

import (
	"math"

	"planforge/internal/catalog"
	"planforge/internal/eligibility"
)

// Seed is a non-discretionary contribution (employer match, planned ROBS
// distribution). Seeds count toward a vehicle's limit usage but are not
// drawn from the discretionary budget.
type Seed struct {
	Vehicle string
	Amount  float64
}

// Result is the finished monthly allocation.
type Result struct {
	// Vehicles maps vehicle name to monthly dollars, seeds included.
	Vehicles map[string]float64
	// DomainTotals sums each domain's vehicles, seeds included.
	DomainTotals map[catalog.Domain]float64
	// Overflow is the unallocated remainder swept into the overflow vehicle.
	Overflow float64
	// EmployerMatch is the total of non-discretionary seeds.
	EmployerMatch float64
	// Budget echoes the discretionary budget that was distributed.
	Budget float64
}

// cascade is fixed policy: education's leftover feeds health, health's feeds
// retirement, retirement's sweeps to overflow. Never reversed.
var cascade = []catalog.Domain{catalog.DomainEducation, catalog.DomainHealth, catalog.DomainRetirement}

// Waterfall runs the allocation. ordered must already be the priority
// sequence; weights key the three active domains and sum to 1.
func Waterfall(ordered []eligibility.Vehicle, budget float64, weights map[catalog.Domain]float64, seeds []Seed) Result {
	res := Result{
		Vehicles:     make(map[string]float64, len(ordered)),
		DomainTotals: make(map[catalog.Domain]float64),
		Budget:       budget,
	}
	if budget < 0 {
		budget = 0
	}

	byName := make(map[string]*eligibility.Vehicle, len(ordered))
	room := make(map[string]float64, len(ordered))
	for i := range ordered {
		ev := &ordered[i]
		byName[ev.Name] = ev
		if ev.Unlimited {
			room[ev.Name] = math.Inf(1)
		} else {
			room[ev.Name] = ev.MonthlyLimit
		}
		res.Vehicles[ev.Name] = 0
	}

	// Shared-limit links are declared on either member (the Backdoor Roth
	// points at IRA Traditional without a back-pointer), so pair them up in
	// both directions across the present vehicles.
	partnerOf := make(map[string]string)
	for i := range ordered {
		ev := &ordered[i]
		if ev.SharesLimitWith == "" {
			continue
		}
		if _, present := byName[ev.SharesLimitWith]; present {
			partnerOf[ev.Name] = ev.SharesLimitWith
			partnerOf[ev.SharesLimitWith] = ev.Name
		}
	}

	// Seeds consume limit room but not budget.
	for _, s := range seeds {
		if _, ok := byName[s.Vehicle]; !ok || s.Amount <= 0 {
			continue
		}
		res.Vehicles[s.Vehicle] += s.Amount
		res.EmployerMatch += s.Amount
		room[s.Vehicle] = math.Max(room[s.Vehicle]-s.Amount, 0)
		if partner, ok := partnerOf[s.Vehicle]; ok {
			room[partner] = math.Max(room[partner]-s.Amount, 0)
		}
	}

	carry := 0.0
	pairDone := make(map[string]bool)
	for _, domain := range cascade {
		avail := budget*weights[domain] + carry
		for i := range ordered {
			ev := &ordered[i]
			if ev.Domain != domain || ev.NonDiscretionary || pairDone[ev.Name] {
				continue
			}
			if avail <= 0 {
				break
			}
			partner, paired := pairFor(ev.Name, partnerOf, byName)
			if paired && !partner.NonDiscretionary {
				// Shared-limit pair: an even split of what would otherwise
				// go to either, bounded by the shared remaining limit.
				shared := math.Min(room[ev.Name], room[partner.Name])
				take := math.Min(avail, shared)
				if take > 0 {
					// Round the halves jointly: the first member gets the
					// odd cent so the pair sum never exceeds the shared
					// limit by a rounding residue.
					half := roundCents(take / 2)
					res.Vehicles[ev.Name] += half
					res.Vehicles[partner.Name] += take - half
					room[ev.Name] -= take
					room[partner.Name] -= take
					avail -= take
				}
				pairDone[ev.Name] = true
				pairDone[partner.Name] = true
				continue
			}
			take := math.Min(avail, room[ev.Name])
			if take > 0 {
				res.Vehicles[ev.Name] += take
				room[ev.Name] -= take
				avail -= take
			}
		}
		carry = avail
	}

	// Retirement's leftover sweeps to overflow, which exists even at zero.
	for i := range ordered {
		if ordered[i].Domain == catalog.DomainOverflow {
			res.Vehicles[ordered[i].Name] += carry
			res.Overflow = res.Vehicles[ordered[i].Name]
			break
		}
	}

	for name, amt := range res.Vehicles {
		rounded := roundCents(amt)
		res.Vehicles[name] = rounded
		res.DomainTotals[byName[name].Domain] += rounded
	}
	res.Overflow = roundCents(res.Overflow)
	res.EmployerMatch = roundCents(res.EmployerMatch)
	return res
}

// pairFor reports the shared-limit partner when both members are present.
func pairFor(name string, partnerOf map[string]string, byName map[string]*eligibility.Vehicle) (*eligibility.Vehicle, bool) {
	partnerName, ok := partnerOf[name]
	if !ok {
		return nil, false
	}
	partner, ok := byName[partnerName]
	return partner, ok
}

func roundCents(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}
