// Package validate runs the advisory post-allocation limit check: each
// vehicle's annualized contribution against its resolved effective limit,
// plus the shared statutory caps across the 401(k) pair and the IRA trio.
// Findings are warnings for display; they never block a result.
package validate

import (
	"fmt"

	"planforge/internal/allocate"
	"planforge/internal/catalog"
	"planforge/internal/eligibility"
)

// Warning is one advisory finding.
type Warning struct {
	Vehicles   []string
	Annualized float64
	Limit      float64
	Message    string
}

// Report is the validator's output. OK is false when any warning fired.
type Report struct {
	OK       bool
	Warnings []Warning
}

var pair401k = []string{"401(k) Traditional", "401(k) Roth"}
var trioIRA = []string{"IRA Traditional", "IRA Roth", "Backdoor Roth IRA"}
var pairSolo = []string{"Solo 401(k) Traditional", "Solo 401(k) Roth"}

// Check validates the allocation for a client of the given age. Per-vehicle
// limits come from the resolved eligible set, so coverage-specific HSA limits
// and dependent-scaled education limits are honored; vehicles missing from
// the resolved set fall back to the catalog's age-adjusted limit. Unlimited
// vehicles are skipped.
func Check(cat *catalog.Catalog, res allocate.Result, resolved []eligibility.Vehicle, age int) Report {
	var warnings []Warning

	effective := make(map[string]eligibility.Vehicle, len(resolved))
	for _, ev := range resolved {
		effective[ev.Name] = ev
	}

	for name, monthly := range res.Vehicles {
		if monthly <= 0 {
			continue
		}
		var limit float64
		if ev, ok := effective[name]; ok {
			if ev.Unlimited {
				continue
			}
			limit = ev.MonthlyLimit * 12
		} else {
			cv, ok := cat.Vehicle(name)
			if !ok || cv.Unlimited {
				continue
			}
			limit = cv.AnnualLimitAtAge(age)
		}
		annual := monthly * 12
		if annual > limit+0.01 {
			warnings = append(warnings, Warning{
				Vehicles:   []string{name},
				Annualized: annual,
				Limit:      limit,
				Message:    fmt.Sprintf("%s at $%.2f/yr exceeds its $%.2f annual limit", name, annual, limit),
			})
		}
	}

	warnings = appendSharedWarning(warnings, res, pair401k,
		cat.Limits.Employee401kAtAge(age), "401(k) contributions share one elective deferral limit")
	warnings = appendSharedWarning(warnings, res, pairSolo,
		cat.Limits.Employee401kAtAge(age), "Solo 401(k) employee contributions share one elective deferral limit")
	warnings = appendSharedWarning(warnings, res, trioIRA,
		cat.Limits.IRAAtAge(age), "IRA contributions share one combined annual limit")

	return Report{OK: len(warnings) == 0, Warnings: warnings}
}

func appendSharedWarning(warnings []Warning, res allocate.Result, group []string, limit float64, what string) []Warning {
	var present []string
	annual := 0.0
	for _, name := range group {
		if monthly, ok := res.Vehicles[name]; ok && monthly > 0 {
			present = append(present, name)
			annual += monthly * 12
		}
	}
	if len(present) < 2 || annual <= limit+0.01 {
		return warnings
	}
	return append(warnings, Warning{
		Vehicles:   present,
		Annualized: annual,
		Limit:      limit,
		Message:    fmt.Sprintf("%s: $%.2f/yr exceeds the $%.2f cap", what, annual, limit),
	})
}
