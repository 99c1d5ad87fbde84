// Package profile classifies a client into one of the nine investor profiles.
// Classification is a pure function of (answers, facts): the batch pipeline
// and any step-wise questionnaire call the same rule walk, so a partial
// answer set lands on the same terminal profile the full set would.
package profile

import (
	"planforge/internal/intake"
)

// Profile ids. Names and base priority orders live in the catalog.
const (
	ROBSInUse          = 1
	ROBSCurious        = 2
	OwnerWithStaff     = 3
	SoloOperator       = 4
	RolloverStrategist = 5
	CatchUpContributor = 6
	FoundationBuilder  = 7
	TaxMinimizer       = 8
	LateStage          = 9
)

// Decision is the tagged classification result: which profile won and which
// rule decided it.
type Decision struct {
	ProfileID int
	Rule      string
	Derived   bool // true when an age/timeline override decided it
}

// yearsSentinel marks an unanswered retirement timeline; it can never satisfy
// the "within five years" override.
const yearsSentinel = 99

type rule struct {
	name      string
	profileID int
	matches   func(a intake.Answers, f intake.ExternalFacts) bool
}

// orderedRules is the main short-circuiting sequence. The two derived
// overrides are deliberately not part of this list: they are re-checked at
// their fixed insertion point in Classify so the legacy ordering holds for
// every entry path.
var orderedRules = []rule{
	{
		name:      "robs_in_use",
		profileID: ROBSInUse,
		matches: func(a intake.Answers, f intake.ExternalFacts) bool {
			return a.Bool(intake.KeyROBSInUse, false)
		},
	},
	{
		// Interest alone is not enough: all three eligibility qualifiers
		// must be yes, otherwise the walk falls through (not terminates).
		name:      "robs_qualified",
		profileID: ROBSCurious,
		matches: func(a intake.Answers, f intake.ExternalFacts) bool {
			return a.Bool(intake.KeyROBSInterested, false) &&
				a.Bool(intake.KeyROBSNewBusiness, false) &&
				a.Bool(intake.KeyROBSRolloverOK, false) &&
				a.Bool(intake.KeyROBSSetupCostOK, false)
		},
	},
	{
		name:      "business_with_employees",
		profileID: OwnerWithStaff,
		matches: func(a intake.Answers, f intake.ExternalFacts) bool {
			return a.Bool(intake.KeyBizWithEmployees, false)
		},
	},
	{
		name:      "self_employed_solo",
		profileID: SoloOperator,
		matches: func(a intake.Answers, f intake.ExternalFacts) bool {
			return a.Bool(intake.KeySelfEmployedSolo, false)
		},
	},
	{
		name:      "has_traditional_ira",
		profileID: RolloverStrategist,
		matches: func(a intake.Answers, f intake.ExternalFacts) bool {
			return a.Bool(intake.KeyHasTradIRA, false) || f.TraditionalIRABalance > 0
		},
	},
}

// Classify walks the ordered rule list and returns the first satisfied
// profile. Unanswered questions never satisfy a rule, so partial answer sets
// classify exactly as the eventual full set would.
func Classify(a intake.Answers, f intake.ExternalFacts) Decision {
	for _, r := range orderedRules {
		if r.matches(a, f) {
			return Decision{ProfileID: r.profileID, Rule: r.name}
		}
	}

	// Derived override: late-stage timing is checked immediately before the
	// tax-focus question regardless of how the client got here.
	years := a.Int(intake.KeyYearsToRetire, yearsSentinel)
	if f.Age >= 55 || years <= 5 {
		return Decision{ProfileID: LateStage, Rule: "late_stage_timing", Derived: true}
	}

	// Derived override: catch-up requires the explicit feeling answer; age
	// alone never lands here.
	if f.Age >= 50 && a.Bool(intake.KeyCatchUpFeeling, false) {
		return Decision{ProfileID: CatchUpContributor, Rule: "catch_up_feeling", Derived: true}
	}

	if a.Has(intake.KeyTaxFocus) {
		switch a.TaxFocus(intake.TaxBoth) {
		case intake.TaxNow, intake.TaxBoth:
			return Decision{ProfileID: TaxMinimizer, Rule: "tax_focus_now"}
		}
	}

	return Decision{ProfileID: FoundationBuilder, Rule: "default"}
}
