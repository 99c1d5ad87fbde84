// Package catalog holds the versioned vehicle, profile, and statutory limit
// tables that drive the allocation engine. Catalogs are data, not code: a new
// tax year is a YAML edit, never a rebuild of the rules.
package catalog

import "fmt"

// Domain is the budget bucket a vehicle belongs to.
type Domain string

const (
	DomainRetirement Domain = "retirement"
	DomainEducation  Domain = "education"
	DomainHealth     Domain = "health"
	DomainOverflow   Domain = "overflow"
)

// TaxTreatment classifies how withdrawals from a vehicle are taxed.
type TaxTreatment string

const (
	TaxFree     TaxTreatment = "free"     // Roth-style and HSA
	TaxDeferred TaxTreatment = "deferred" // Traditional-style, match, fixed seeds
	TaxTaxable  TaxTreatment = "taxable"  // overflow / brokerage
)

// Vehicle is one contribution channel in the catalog. Limits are annual
// dollars; the eligibility resolver converts them to monthly effective limits.
type Vehicle struct {
	Name               string       `yaml:"name"`
	Domain             Domain       `yaml:"domain"`
	AnnualLimit        float64      `yaml:"annual_limit"`
	Unlimited          bool         `yaml:"unlimited"`
	CatchUpAge         int          `yaml:"catch_up_age"`
	CatchUpAmount      float64      `yaml:"catch_up_amount"`
	SuperCatchUpMinAge int          `yaml:"super_catch_up_min_age"`
	SuperCatchUpMaxAge int          `yaml:"super_catch_up_max_age"`
	SuperCatchUpAmount float64      `yaml:"super_catch_up_amount"`
	SharesLimitWith    string       `yaml:"shares_limit_with"`
	NonDiscretionary   bool         `yaml:"non_discretionary"`
	TaxTreatment       TaxTreatment `yaml:"tax_treatment"`
}

// AnnualLimitAtAge resolves the vehicle's true annual limit for a client of
// the given age. A super catch-up band supersedes the regular catch-up inside
// its age window.
func (v Vehicle) AnnualLimitAtAge(age int) float64 {
	if v.Unlimited {
		return 0
	}
	limit := v.AnnualLimit
	if v.SuperCatchUpAmount > 0 && age >= v.SuperCatchUpMinAge && age <= v.SuperCatchUpMaxAge {
		return limit + v.SuperCatchUpAmount
	}
	if v.CatchUpAmount > 0 && v.CatchUpAge > 0 && age >= v.CatchUpAge {
		return limit + v.CatchUpAmount
	}
	return limit
}

// Profile is one of the nine canonical investor profiles.
type Profile struct {
	ID           int      `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	BasePriority []string `yaml:"base_priority"`
}

// PhaseOutBand is a linear income phase-out range.
type PhaseOutBand struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// LimitTable carries the statutory limits that span vehicles: shared annual
// caps checked by the validator, HSA coverage limits, and the Roth IRA income
// phase-out bands keyed by filing status.
type LimitTable struct {
	TaxYear int `yaml:"tax_year"`

	Employee401k     float64 `yaml:"employee_401k"`
	CatchUp401k      float64 `yaml:"catch_up_401k"`
	SuperCatchUp401k float64 `yaml:"super_catch_up_401k"`
	SuperCatchUpMin  int     `yaml:"super_catch_up_min_age"`
	SuperCatchUpMax  int     `yaml:"super_catch_up_max_age"`
	Total401k        float64 `yaml:"total_401k"`

	IRA        float64 `yaml:"ira"`
	CatchUpIRA float64 `yaml:"catch_up_ira"`

	HSASelfOnly   float64 `yaml:"hsa_self_only"`
	HSAFamily     float64 `yaml:"hsa_family"`
	HSACatchUp    float64 `yaml:"hsa_catch_up"`
	HSACatchUpAge int     `yaml:"hsa_catch_up_age"`

	CESAPerChild float64 `yaml:"cesa_per_child"`

	SEPPercent          float64 `yaml:"sep_percent"`
	SoloEmployerPercent float64 `yaml:"solo_employer_percent"`

	RothPhaseOut map[string]PhaseOutBand `yaml:"roth_phase_out"`
}

// Employee401kAtAge resolves the shared elective-deferral cap for an age.
func (l LimitTable) Employee401kAtAge(age int) float64 {
	if l.SuperCatchUp401k > 0 && age >= l.SuperCatchUpMin && age <= l.SuperCatchUpMax {
		return l.Employee401k + l.SuperCatchUp401k
	}
	if age >= 50 {
		return l.Employee401k + l.CatchUp401k
	}
	return l.Employee401k
}

// IRAAtAge resolves the shared IRA cap (Traditional+Roth+Backdoor) for an age.
func (l LimitTable) IRAAtAge(age int) float64 {
	if age >= 50 {
		return l.IRA + l.CatchUpIRA
	}
	return l.IRA
}

// ConfigError reports a mismatch inside the catalog data: a priority table
// naming a vehicle that does not exist, a shared-limit partner that is
// missing, or a malformed profile set. It is fatal for the pipeline.
type ConfigError struct {
	Table  string
	Ref    string
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("catalog config error in %s: %q: %s", e.Table, e.Ref, e.Detail)
	}
	return fmt.Sprintf("catalog config error in %s: %s", e.Table, e.Detail)
}
