// Package intake models the client-supplied inputs the engine consumes:
// open-ended questionnaire answers and read-only facts sourced from upstream
// tools. Everything is optional; missing or malformed values resolve to
// documented defaults and never halt the pipeline.
package intake

import (
	"strconv"
	"strings"
)

// Well-known answer keys. Unknown keys in an answer set are ignored.
const (
	KeyMonthlyBudget = "monthly_budget"

	KeyROBSInUse        = "robs_in_use"
	KeyROBSInterested   = "robs_interested"
	KeyROBSNewBusiness  = "robs_new_business"
	KeyROBSRolloverOK   = "robs_rollover_funds"
	KeyROBSSetupCostOK  = "robs_setup_cost_ok"
	KeyBizWithEmployees = "business_with_employees"
	KeySelfEmployedSolo = "self_employed_no_employees"
	KeyHasTradIRA       = "has_traditional_ira"
	KeyYearsToRetire    = "years_to_retirement"
	KeyCatchUpFeeling   = "catch_up_feeling"
	KeyTaxFocus         = "tax_focus" // now | later | both

	KeyImportanceRetirement = "importance_retirement" // 1-7
	KeyImportanceEducation  = "importance_education"  // 1-7
	KeyImportanceHealth     = "importance_health"     // 1-7
	KeyTimelineRetirement   = "retirement_timeline_months"
	KeyTimelineEducation    = "education_timeline_months"
	KeyTimelineHealth       = "health_timeline_months"
	KeyTopPriorityDomain    = "top_priority_domain" // retirement | education | health

	KeyInvestmentScore    = "investment_involvement" // 1-7, drives the projection rate
	KeyEducationHorizon   = "education_horizon_years"
	KeyBackdoorRolloverOK = "backdoor_rollover_ok" // yes | no | unsure
)

// TaxPreference is the client's stated tax-timing focus.
type TaxPreference string

const (
	TaxNow   TaxPreference = "now"
	TaxLater TaxPreference = "later"
	TaxBoth  TaxPreference = "both"
)

// Answers is the open-ended key/value response map. Values are stored as the
// strings the questionnaire captured; typed accessors apply defaults.
type Answers map[string]string

// Has reports whether the key was answered at all (non-empty).
func (a Answers) Has(key string) bool {
	v, ok := a[key]
	return ok && strings.TrimSpace(v) != ""
}

// String returns the trimmed answer or def when absent.
func (a Answers) String(key, def string) string {
	if !a.Has(key) {
		return def
	}
	return strings.TrimSpace(a[key])
}

// Bool interprets yes/no style answers. Anything unrecognized returns def.
func (a Answers) Bool(key string, def bool) bool {
	switch strings.ToLower(a.String(key, "")) {
	case "yes", "y", "true", "1":
		return true
	case "no", "n", "false", "0":
		return false
	}
	return def
}

// Int parses an integer answer, falling back to def on absence or garbage.
func (a Answers) Int(key string, def int) int {
	v, err := strconv.Atoi(a.String(key, ""))
	if err != nil {
		return def
	}
	return v
}

// Float parses a float answer, falling back to def. Leading currency symbols
// and thousands separators are tolerated.
func (a Answers) Float(key string, def float64) float64 {
	s := strings.NewReplacer("$", "", ",", "").Replace(a.String(key, ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// Scale parses a 1-7 scale answer, clamping out-of-range values into the
// scale and substituting def for anything unparseable.
func (a Answers) Scale(key string, def int) int {
	v := a.Int(key, def)
	if v < 1 {
		return 1
	}
	if v > 7 {
		return 7
	}
	return v
}

// TaxFocus returns the stated preference, or def when unanswered or not one
// of now/later/both.
func (a Answers) TaxFocus(def TaxPreference) TaxPreference {
	switch TaxPreference(strings.ToLower(a.String(KeyTaxFocus, ""))) {
	case TaxNow:
		return TaxNow
	case TaxLater:
		return TaxLater
	case TaxBoth:
		return TaxBoth
	}
	return def
}

// Clone returns an independent copy; partial-answer evaluation mutates copies
// during step-wise classification, never the stored set.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
