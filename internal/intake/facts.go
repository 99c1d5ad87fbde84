package intake

import (
	"regexp"
	"strconv"
)

// FilingStatus keys the Roth IRA phase-out band in the limit table.
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
	FilingMarriedJoint    FilingStatus = "married_joint"
	FilingMarriedSeparate FilingStatus = "married_separate"
)

// HSACoverage selects which statutory HSA limit applies.
type HSACoverage string

const (
	CoverageSelfOnly HSACoverage = "self_only"
	CoverageFamily   HSACoverage = "family"
)

// ExternalFacts are read-only client facts sourced from upstream assessment
// tools. Every field is optional: the zero value is always a safe default and
// the absence of any field must not fail the pipeline.
type ExternalFacts struct {
	Age                  int          `yaml:"age" json:"age"`
	GrossIncome          float64      `yaml:"gross_income" json:"gross_income"`
	SelfEmploymentIncome float64      `yaml:"self_employment_income" json:"self_employment_income"`
	FilingStatus         FilingStatus `yaml:"filing_status" json:"filing_status"`

	TraditionalIRABalance    float64 `yaml:"traditional_ira_balance" json:"traditional_ira_balance"`
	ExistingRetirementAssets float64 `yaml:"existing_retirement_assets" json:"existing_retirement_assets"`
	ExistingEducationAssets  float64 `yaml:"existing_education_assets" json:"existing_education_assets"`

	HasEmployer401k   bool        `yaml:"has_employer_401k" json:"has_employer_401k"`
	HasRoth401kOption bool        `yaml:"has_roth_401k_option" json:"has_roth_401k_option"`
	HasEmployerMatch  bool        `yaml:"has_employer_match" json:"has_employer_match"`
	MatchFormula      string      `yaml:"match_formula" json:"match_formula"`
	HSAEligible       bool        `yaml:"hsa_eligible" json:"hsa_eligible"`
	HSACoverage       HSACoverage `yaml:"hsa_coverage" json:"hsa_coverage"`

	Dependents int `yaml:"dependents" json:"dependents"`
}

// FactsProvider is the upstream source of per-client facts.
type FactsProvider interface {
	Facts(clientID string) (ExternalFacts, error)
}

// AnswerStore round-trips the open-ended answer map for a client. Storage
// itself is an external concern; the engine only defines the contract.
type AnswerStore interface {
	Answers(clientID string) (Answers, error)
	SaveAnswers(clientID string, a Answers) error
}

// matchFormulaRe captures "50% up to 6%", "100% of the first 3%", and the
// other phrasings upstream tools emit: the first percentage is the match
// rate, the second the compensation cap.
var matchFormulaRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%[^%\d]*(\d+(?:\.\d+)?)\s*%`)

// ParseMatchFormula extracts (rate, cap) as fractions from an employer match
// formula string. ok is false when the string does not carry two percentages;
// callers treat that as a zero match, never an error.
func ParseMatchFormula(formula string) (rate, cap float64, ok bool) {
	m := matchFormulaRe.FindStringSubmatch(formula)
	if m == nil {
		return 0, 0, false
	}
	r, err1 := strconv.ParseFloat(m[1], 64)
	c, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return r / 100, c / 100, true
}

// MonthlyMatch computes the employer-match seed in dollars per month from the
// stated formula and gross income. Clients without a match (or with an
// unparseable formula) get zero.
func (f ExternalFacts) MonthlyMatch() float64 {
	if !f.HasEmployerMatch || f.GrossIncome <= 0 {
		return 0
	}
	rate, cap, ok := ParseMatchFormula(f.MatchFormula)
	if !ok {
		return 0
	}
	return f.GrossIncome / 12 * rate * cap
}
