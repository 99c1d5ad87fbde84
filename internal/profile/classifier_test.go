package profile

import (
	"testing"

	"planforge/internal/intake"
)

func TestClassify_RuleOrder(t *testing.T) {
	cases := []struct {
		name    string
		answers intake.Answers
		facts   intake.ExternalFacts
		want    int
	}{
		{
			name:    "empty inputs default to foundation builder",
			answers: intake.Answers{},
			want:    FoundationBuilder,
		},
		{
			name:    "robs in use wins over everything",
			answers: intake.Answers{"robs_in_use": "yes", "business_with_employees": "yes", "tax_focus": "now"},
			facts:   intake.ExternalFacts{Age: 60},
			want:    ROBSInUse,
		},
		{
			name: "robs interest with all qualifiers",
			answers: intake.Answers{
				"robs_interested":     "yes",
				"robs_new_business":   "yes",
				"robs_rollover_funds": "yes",
				"robs_setup_cost_ok":  "yes",
			},
			want: ROBSCurious,
		},
		{
			name: "robs interest missing a qualifier falls through",
			answers: intake.Answers{
				"robs_interested":    "yes",
				"robs_new_business":  "yes",
				"robs_setup_cost_ok": "no",
				"self_employed_no_employees": "yes",
			},
			want: SoloOperator,
		},
		{
			name:    "business with employees",
			answers: intake.Answers{"business_with_employees": "yes"},
			want:    OwnerWithStaff,
		},
		{
			name:    "traditional ira from facts alone",
			answers: intake.Answers{},
			facts:   intake.ExternalFacts{TraditionalIRABalance: 40000},
			want:    RolloverStrategist,
		},
		{
			name:    "age 55 overrides tax focus",
			answers: intake.Answers{"tax_focus": "now"},
			facts:   intake.ExternalFacts{Age: 55},
			want:    LateStage,
		},
		{
			name:    "five years to retirement overrides regardless of age",
			answers: intake.Answers{"years_to_retirement": "4", "tax_focus": "later"},
			facts:   intake.ExternalFacts{Age: 38},
			want:    LateStage,
		},
		{
			name:    "age 50 plus catch-up feeling",
			answers: intake.Answers{"catch_up_feeling": "yes"},
			facts:   intake.ExternalFacts{Age: 52},
			want:    CatchUpContributor,
		},
		{
			name:    "age 50 without the feeling answer is not catch-up",
			answers: intake.Answers{"tax_focus": "later"},
			facts:   intake.ExternalFacts{Age: 52},
			want:    FoundationBuilder,
		},
		{
			name:    "catch-up feeling without the age does nothing",
			answers: intake.Answers{"catch_up_feeling": "yes"},
			facts:   intake.ExternalFacts{Age: 45},
			want:    FoundationBuilder,
		},
		{
			name:    "tax focus now",
			answers: intake.Answers{"tax_focus": "now"},
			want:    TaxMinimizer,
		},
		{
			name:    "tax focus both",
			answers: intake.Answers{"tax_focus": "both"},
			want:    TaxMinimizer,
		},
		{
			name:    "tax focus later falls to default",
			answers: intake.Answers{"tax_focus": "later"},
			want:    FoundationBuilder,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.answers, tc.facts)
			if got.ProfileID != tc.want {
				t.Errorf("expected profile %d, got %d (rule %s)", tc.want, got.ProfileID, got.Rule)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	a := intake.Answers{"tax_focus": "now", "years_to_retirement": "12"}
	f := intake.ExternalFacts{Age: 47, TraditionalIRABalance: 0}
	first := Classify(a, f)
	for i := 0; i < 10; i++ {
		if got := Classify(a, f); got != first {
			t.Fatalf("classification must be deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestClassify_PartialThenFullAgree(t *testing.T) {
	// A step-wise flow answering one question at a time must land on the same
	// terminal profile as a batch evaluation of the full set.
	full := intake.Answers{
		"robs_interested":     "yes",
		"robs_new_business":   "yes",
		"robs_rollover_funds": "yes",
		"robs_setup_cost_ok":  "yes",
		"tax_focus":           "now",
	}
	facts := intake.ExternalFacts{Age: 40}

	partial := intake.Answers{}
	var last Decision
	for _, key := range []string{"robs_interested", "robs_new_business", "robs_rollover_funds", "robs_setup_cost_ok", "tax_focus"} {
		partial[key] = full[key]
		last = Classify(partial, facts)
	}
	batch := Classify(full, facts)
	if last != batch {
		t.Errorf("step-wise terminal %+v differs from batch %+v", last, batch)
	}
	if batch.ProfileID != ROBSCurious {
		t.Errorf("expected ROBS curious, got %d", batch.ProfileID)
	}
}
