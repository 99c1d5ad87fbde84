// Package priority turns a profile's base vehicle order plus the resolved
// eligible set into the final fill order for the waterfall: education slots
// in after health, the Backdoor Roth takes the Roth IRA's seat, and the
// client's tax preference shuffles Roth-labeled against Traditional-labeled
// vehicles. The overflow vehicle is always last.
package priority

import (
	"strings"

	"planforge/internal/catalog"
	"planforge/internal/eligibility"
	"planforge/internal/intake"
)

// Order produces the tax-preference-aware priority sequence over the
// eligible vehicles. A base-order entry that is missing from the vehicle
// catalog is a data mismatch and returns *catalog.ConfigError.
func Order(cat *catalog.Catalog, p catalog.Profile, eligible []eligibility.Vehicle, pref intake.TaxPreference) ([]eligibility.Vehicle, error) {
	byName := make(map[string]eligibility.Vehicle, len(eligible))
	placed := make(map[string]bool, len(eligible))
	for _, ev := range eligible {
		byName[ev.Name] = ev
	}

	backdoor, haveBackdoor := byName["Backdoor Roth IRA"]

	var ordered []eligibility.Vehicle
	add := func(ev eligibility.Vehicle) {
		if !placed[ev.Name] {
			ordered = append(ordered, ev)
			placed[ev.Name] = true
		}
	}

	for _, name := range p.BasePriority {
		if _, ok := cat.Vehicle(name); !ok {
			return nil, &catalog.ConfigError{
				Table:  "profiles.yaml",
				Ref:    name,
				Detail: "priority table references a vehicle absent from the catalog",
			}
		}
		if ev, ok := byName[name]; ok {
			add(ev)
			continue
		}
		// The Backdoor Roth inherits the Roth IRA's seat when the phase-out
		// knocked the Roth out.
		if name == "IRA Roth" && haveBackdoor {
			add(backdoor)
		}
	}

	// Base order without a Roth IRA seat: the backdoor goes just before the
	// Traditional IRA, or at the end if that is missing too.
	if haveBackdoor && !placed["Backdoor Roth IRA"] {
		insertBefore(&ordered, placed, backdoor, "IRA Traditional")
	}

	// Education vehicles slot in after the health vehicle, capped option
	// before unlimited.
	insertEducation(&ordered, placed, eligible)

	// Anything eligible but unplaced lands ahead of the overflow sweep.
	for _, ev := range eligible {
		if ev.Domain != catalog.DomainOverflow {
			add(ev)
		}
	}
	for _, ev := range eligible {
		if ev.Domain == catalog.DomainOverflow {
			add(ev)
		}
	}
	moveOverflowLast(ordered)

	reorderByTaxPreference(ordered, pref)
	return ordered, nil
}

func insertBefore(ordered *[]eligibility.Vehicle, placed map[string]bool, ev eligibility.Vehicle, anchor string) {
	if placed[ev.Name] {
		return
	}
	for i, v := range *ordered {
		if v.Name == anchor {
			*ordered = append((*ordered)[:i], append([]eligibility.Vehicle{ev}, (*ordered)[i:]...)...)
			placed[ev.Name] = true
			return
		}
	}
	*ordered = append(*ordered, ev)
	placed[ev.Name] = true
}

func insertEducation(ordered *[]eligibility.Vehicle, placed map[string]bool, eligible []eligibility.Vehicle) {
	var education []eligibility.Vehicle
	for _, ev := range eligible {
		if ev.Domain == catalog.DomainEducation && !placed[ev.Name] {
			education = append(education, ev)
		}
	}
	if len(education) == 0 {
		return
	}
	// Capped vehicles before unlimited ones, stable within each group.
	var sorted []eligibility.Vehicle
	for _, ev := range education {
		if !ev.Unlimited {
			sorted = append(sorted, ev)
		}
	}
	for _, ev := range education {
		if ev.Unlimited {
			sorted = append(sorted, ev)
		}
	}

	at := 0
	for i, v := range *ordered {
		if v.Domain == catalog.DomainHealth {
			at = i + 1
			break
		}
	}
	rest := append([]eligibility.Vehicle{}, (*ordered)[at:]...)
	*ordered = append((*ordered)[:at], append(sorted, rest...)...)
	for _, ev := range sorted {
		placed[ev.Name] = true
	}
}

func moveOverflowLast(ordered []eligibility.Vehicle) {
	for i, v := range ordered {
		if v.Domain == catalog.DomainOverflow && i != len(ordered)-1 {
			ev := v
			copy(ordered[i:], ordered[i+1:])
			ordered[len(ordered)-1] = ev
			return
		}
	}
}

// reorderByTaxPreference stable-partitions the Roth-labeled and
// Traditional-labeled vehicles across the positions they already occupy.
// Unlabeled vehicles (match, HSA, education, overflow) never move, so the
// match and health vehicle keep leading.
func reorderByTaxPreference(ordered []eligibility.Vehicle, pref intake.TaxPreference) {
	if pref == intake.TaxBoth {
		return
	}
	var slots []int
	var labeled []eligibility.Vehicle
	for i, v := range ordered {
		if rothLabeled(v.Name) || traditionalLabeled(v.Name) {
			slots = append(slots, i)
			labeled = append(labeled, v)
		}
	}
	if len(labeled) < 2 {
		return
	}
	first := rothLabeled
	if pref == intake.TaxLater {
		first = traditionalLabeled
	}
	var part []eligibility.Vehicle
	for _, v := range labeled {
		if first(v.Name) {
			part = append(part, v)
		}
	}
	for _, v := range labeled {
		if !first(v.Name) {
			part = append(part, v)
		}
	}
	for i, slot := range slots {
		ordered[slot] = part[i]
	}
}

func rothLabeled(name string) bool {
	return strings.Contains(name, "Roth")
}

func traditionalLabeled(name string) bool {
	return strings.Contains(name, "Traditional")
}
