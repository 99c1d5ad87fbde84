// Package eligibility filters the vehicle catalog down to what a classified
// client may actually use and computes each vehicle's effective monthly
// limit: catch-ups and super catch-ups by age, HSA coverage limits, Roth IRA
// income phase-out with the Backdoor Roth substitution, and education
// vehicles scaled by dependent count.
package eligibility

import (
	"fmt"
	"math"

	"planforge/internal/catalog"
	"planforge/internal/intake"
	"planforge/internal/profile"
)

// Advisory annotates a Backdoor Roth substitution with the pro-rata posture.
type Advisory string

const (
	AdvisoryNone     Advisory = ""
	AdvisoryClean    Advisory = "clean"
	AdvisoryProRata  Advisory = "pro-rata-warning"
	AdvisoryRollover Advisory = "rollover-available"
	AdvisoryUnsure   Advisory = "unsure"
)

// Vehicle is a catalog entry annotated with its computed effective monthly
// limit, valid only for the current profile and facts.
type Vehicle struct {
	catalog.Vehicle

	MonthlyLimit float64 // meaningless when Unlimited
	Note         string
	Warning      string
	Advisory     Advisory
}

// Resolver resolves eligibility against one loaded catalog.
type Resolver struct {
	cat *catalog.Catalog
}

// New builds a resolver over the injected catalog.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{cat: cat}
}

// employer401kProfiles are the W-2-bearing profiles that can carry an
// employer 401(k) family.
var employer401kProfiles = map[int]bool{
	profile.ROBSCurious:        true,
	profile.RolloverStrategist: true,
	profile.CatchUpContributor: true,
	profile.FoundationBuilder:  true,
	profile.TaxMinimizer:       true,
	profile.LateStage:          true,
}

// Resolve returns the eligible vehicles for the profile and facts, in catalog
// order, each with its effective monthly limit. The unlimited overflow
// vehicle is always present.
func (r *Resolver) Resolve(profileID int, a intake.Answers, f intake.ExternalFacts) []Vehicle {
	var out []Vehicle
	for _, cv := range r.cat.Vehicles {
		if ev, ok := r.resolveOne(cv, profileID, a, f); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Resolver) resolveOne(cv catalog.Vehicle, profileID int, a intake.Answers, f intake.ExternalFacts) (Vehicle, bool) {
	switch cv.Name {
	case "ROBS Distribution":
		if profileID != profile.ROBSInUse {
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv, Note: "plan profit distributions; no statutory cap"}, true

	case "Solo 401(k) Traditional", "Solo 401(k) Roth":
		if profileID != profile.ROBSInUse && profileID != profile.SoloOperator {
			return Vehicle{}, false
		}
		// The employee side splits by tax preference; "both" keeps the pair
		// and the allocator fills them 50/50 under the shared limit.
		switch a.TaxFocus(intake.TaxBoth) {
		case intake.TaxNow:
			if cv.Name == "Solo 401(k) Traditional" {
				return Vehicle{}, false
			}
		case intake.TaxLater:
			if cv.Name == "Solo 401(k) Roth" {
				return Vehicle{}, false
			}
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true

	case "Solo 401(k) Employer":
		if profileID != profile.SoloOperator {
			return Vehicle{}, false
		}
		annual := r.soloEmployerAnnual(f)
		if annual <= 0 {
			return Vehicle{}, false
		}
		return Vehicle{
			Vehicle:      cv,
			MonthlyLimit: annual / 12,
			Note:         fmt.Sprintf("%.0f%% of self-employment income", r.cat.Limits.SoloEmployerPercent*100),
		}, true

	case "SEP IRA", "SIMPLE IRA":
		if profileID != profile.OwnerWithStaff {
			return Vehicle{}, false
		}
		if cv.Name == "SEP IRA" {
			annual := r.sepAnnual(f)
			if annual <= 0 {
				return Vehicle{}, false
			}
			return Vehicle{
				Vehicle:      cv,
				MonthlyLimit: annual / 12,
				Note:         fmt.Sprintf("%.0f%% of compensation", r.cat.Limits.SEPPercent*100),
			}, true
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true

	case "401(k) Match":
		if !employer401kProfiles[profileID] || !f.HasEmployer401k || !f.HasEmployerMatch {
			return Vehicle{}, false
		}
		if f.MonthlyMatch() <= 0 {
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv, Note: "employer contribution; not drawn from budget"}, true

	case "401(k) Traditional":
		if !employer401kProfiles[profileID] || !f.HasEmployer401k {
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true

	case "401(k) Roth":
		if !employer401kProfiles[profileID] || !f.HasEmployer401k || !f.HasRoth401kOption {
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true

	case "IRA Traditional":
		return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true

	case "IRA Roth":
		monthly, note, phasedOut := r.rothIRAMonthly(cv, f)
		if phasedOut {
			// Replaced by the Backdoor Roth entry below.
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: monthly, Note: note}, true

	case "Backdoor Roth IRA":
		if _, _, phasedOut := r.rothIRAMonthly(cv, f); !phasedOut {
			return Vehicle{}, false
		}
		ev := Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}
		ev.Advisory = backdoorAdvisory(a, f)
		switch ev.Advisory {
		case AdvisoryProRata:
			ev.Warning = "existing traditional IRA balance triggers pro-rata taxation on conversion"
		case AdvisoryRollover:
			ev.Note = "roll the traditional IRA into an employer plan first to convert cleanly"
		case AdvisoryUnsure:
			ev.Note = "confirm whether the traditional IRA can be rolled into an employer plan"
		default:
			ev.Note = "no traditional IRA balance; conversion is clean"
		}
		return ev, true

	case "HSA":
		if !f.HSAEligible {
			return Vehicle{}, false
		}
		annual := r.cat.Limits.HSASelfOnly
		if f.HSACoverage == intake.CoverageFamily {
			annual = r.cat.Limits.HSAFamily
		}
		if f.Age >= r.cat.Limits.HSACatchUpAge {
			annual += r.cat.Limits.HSACatchUp
		}
		return Vehicle{Vehicle: cv, MonthlyLimit: annual / 12}, true

	case "Coverdell ESA":
		if f.Dependents <= 0 {
			return Vehicle{}, false
		}
		annual := r.cat.Limits.CESAPerChild * float64(f.Dependents)
		return Vehicle{
			Vehicle:      cv,
			MonthlyLimit: annual / 12,
			Note:         fmt.Sprintf("scaled for %d dependent(s)", f.Dependents),
		}, true

	case "529 Plan":
		if f.Dependents <= 0 {
			return Vehicle{}, false
		}
		return Vehicle{Vehicle: cv}, true
	}

	if cv.Domain == catalog.DomainOverflow {
		return Vehicle{Vehicle: cv}, true
	}

	// Unrecognized catalog additions default to eligible with their plain
	// age-adjusted limit; new vehicles should not require a code change.
	if cv.Unlimited {
		return Vehicle{Vehicle: cv}, true
	}
	return Vehicle{Vehicle: cv, MonthlyLimit: cv.AnnualLimitAtAge(f.Age) / 12}, true
}

// rothIRAMonthly applies the income phase-out: full limit below the band,
// linear reduction inside it, fully phased out above it. phasedOut reports
// that the Backdoor Roth substitution applies.
func (r *Resolver) rothIRAMonthly(cv catalog.Vehicle, f intake.ExternalFacts) (monthly float64, note string, phasedOut bool) {
	full := cv.AnnualLimitAtAge(f.Age)
	band, ok := r.cat.Limits.RothPhaseOut[string(filingOrDefault(f))]
	if !ok || f.GrossIncome <= 0 || f.GrossIncome < band.Start {
		return full / 12, "", false
	}
	if f.GrossIncome >= band.End {
		return 0, "", true
	}
	fraction := (band.End - f.GrossIncome) / (band.End - band.Start)
	reduced := full * fraction
	return reduced / 12, fmt.Sprintf("reduced by income phase-out (%.0f%% of full limit)", fraction*100), false
}

func filingOrDefault(f intake.ExternalFacts) intake.FilingStatus {
	if f.FilingStatus == "" {
		return intake.FilingSingle
	}
	return f.FilingStatus
}

func backdoorAdvisory(a intake.Answers, f intake.ExternalFacts) Advisory {
	if f.TraditionalIRABalance <= 0 {
		return AdvisoryClean
	}
	if !a.Has(intake.KeyBackdoorRolloverOK) {
		return AdvisoryUnsure
	}
	switch a.String(intake.KeyBackdoorRolloverOK, "unsure") {
	case "yes", "y", "true":
		return AdvisoryRollover
	case "no", "n", "false":
		return AdvisoryProRata
	}
	return AdvisoryUnsure
}

func (r *Resolver) soloEmployerAnnual(f intake.ExternalFacts) float64 {
	income := f.SelfEmploymentIncome
	if income <= 0 {
		income = f.GrossIncome
	}
	if income <= 0 {
		return 0
	}
	byIncome := income * r.cat.Limits.SoloEmployerPercent
	// Remaining room under the total 415(c) cap after the employee side.
	room := r.cat.Limits.Total401k - r.cat.Limits.Employee401kAtAge(f.Age)
	return math.Min(byIncome, math.Max(room, 0))
}

func (r *Resolver) sepAnnual(f intake.ExternalFacts) float64 {
	income := f.GrossIncome
	if income <= 0 {
		income = f.SelfEmploymentIncome
	}
	if income <= 0 {
		return 0
	}
	return math.Min(income*r.cat.Limits.SEPPercent, r.cat.Limits.Total401k)
}
