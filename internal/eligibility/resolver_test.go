package eligibility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/catalog"
	"planforge/internal/intake"
	"planforge/internal/profile"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return New(cat)
}

func find(vs []Vehicle, name string) (Vehicle, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v, true
		}
	}
	return Vehicle{}, false
}

func TestResolve_OverflowAlwaysPresent(t *testing.T) {
	r := newResolver(t)
	for id := 1; id <= 9; id++ {
		vs := r.Resolve(id, intake.Answers{}, intake.ExternalFacts{})
		_, ok := find(vs, "Family Bank")
		assert.True(t, ok, "profile %d must include the overflow vehicle", id)
	}
}

func TestResolve_ProfileGating(t *testing.T) {
	r := newResolver(t)
	facts := intake.ExternalFacts{GrossIncome: 100000, SelfEmploymentIncome: 100000, HasEmployer401k: true}

	t.Run("robs distribution only for profile 1", func(t *testing.T) {
		vs := r.Resolve(profile.ROBSInUse, intake.Answers{}, facts)
		_, ok := find(vs, "ROBS Distribution")
		assert.True(t, ok)

		vs = r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts)
		_, ok = find(vs, "ROBS Distribution")
		assert.False(t, ok)
	})

	t.Run("sep and simple only for profile 3", func(t *testing.T) {
		vs := r.Resolve(profile.OwnerWithStaff, intake.Answers{}, facts)
		_, sep := find(vs, "SEP IRA")
		_, simple := find(vs, "SIMPLE IRA")
		assert.True(t, sep)
		assert.True(t, simple)

		vs = r.Resolve(profile.SoloOperator, intake.Answers{}, facts)
		_, sep = find(vs, "SEP IRA")
		assert.False(t, sep)
	})

	t.Run("employer 401k needs the flag", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{})
		_, ok := find(vs, "401(k) Traditional")
		assert.False(t, ok, "no employer plan without the flag")

		vs = r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts)
		_, ok = find(vs, "401(k) Traditional")
		assert.True(t, ok)
	})

	t.Run("roth 401k needs its own flag", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts)
		_, ok := find(vs, "401(k) Roth")
		assert.False(t, ok)

		withRoth := facts
		withRoth.HasRoth401kOption = true
		vs = r.Resolve(profile.FoundationBuilder, intake.Answers{}, withRoth)
		_, ok = find(vs, "401(k) Roth")
		assert.True(t, ok)
	})
}

func TestResolve_SoloEmployeeSplitByTaxPreference(t *testing.T) {
	r := newResolver(t)
	facts := intake.ExternalFacts{SelfEmploymentIncome: 120000, Age: 45}

	t.Run("now keeps only roth", func(t *testing.T) {
		vs := r.Resolve(profile.SoloOperator, intake.Answers{"tax_focus": "now"}, facts)
		_, roth := find(vs, "Solo 401(k) Roth")
		_, trad := find(vs, "Solo 401(k) Traditional")
		assert.True(t, roth)
		assert.False(t, trad)
	})

	t.Run("later keeps only traditional", func(t *testing.T) {
		vs := r.Resolve(profile.SoloOperator, intake.Answers{"tax_focus": "later"}, facts)
		_, roth := find(vs, "Solo 401(k) Roth")
		_, trad := find(vs, "Solo 401(k) Traditional")
		assert.False(t, roth)
		assert.True(t, trad)
	})

	t.Run("both keeps the shared-limit pair", func(t *testing.T) {
		vs := r.Resolve(profile.SoloOperator, intake.Answers{"tax_focus": "both"}, facts)
		roth, rok := find(vs, "Solo 401(k) Roth")
		trad, tok := find(vs, "Solo 401(k) Traditional")
		require.True(t, rok)
		require.True(t, tok)
		assert.InDelta(t, 23500.0/12, roth.MonthlyLimit, 0.01)
		assert.Equal(t, "Solo 401(k) Traditional", roth.SharesLimitWith)
		assert.Equal(t, "Solo 401(k) Roth", trad.SharesLimitWith)
	})
}

func TestResolve_SoloEmployeePairForROBSProfile(t *testing.T) {
	// A ROBS operator runs a C-corp 401(k): the employee pair is eligible
	// for profile 1 as well as profile 4, matching the catalog's profile-1
	// base priority. No other profile admits it.
	r := newResolver(t)
	facts := intake.ExternalFacts{Age: 45}

	vs := r.Resolve(profile.ROBSInUse, intake.Answers{"tax_focus": "both"}, facts)
	_, roth := find(vs, "Solo 401(k) Roth")
	_, trad := find(vs, "Solo 401(k) Traditional")
	assert.True(t, roth)
	assert.True(t, trad)

	vs = r.Resolve(profile.FoundationBuilder, intake.Answers{"tax_focus": "both"}, facts)
	_, roth = find(vs, "Solo 401(k) Roth")
	_, trad = find(vs, "Solo 401(k) Traditional")
	assert.False(t, roth)
	assert.False(t, trad)
}

func TestResolve_SoloEmployerLimit(t *testing.T) {
	r := newResolver(t)

	// min(20% of 120000, 70000-23500) = min(24000, 46500) = 24000/yr
	vs := r.Resolve(profile.SoloOperator, intake.Answers{}, intake.ExternalFacts{SelfEmploymentIncome: 120000, Age: 45})
	emp, ok := find(vs, "Solo 401(k) Employer")
	require.True(t, ok)
	assert.InDelta(t, 2000.0, emp.MonthlyLimit, 0.01)

	// Very high income pins to the remaining room under the total cap.
	vs = r.Resolve(profile.SoloOperator, intake.Answers{}, intake.ExternalFacts{SelfEmploymentIncome: 400000, Age: 45})
	emp, ok = find(vs, "Solo 401(k) Employer")
	require.True(t, ok)
	assert.InDelta(t, 46500.0/12, emp.MonthlyLimit, 0.01)

	// No income, no employer vehicle.
	vs = r.Resolve(profile.SoloOperator, intake.Answers{}, intake.ExternalFacts{})
	_, ok = find(vs, "Solo 401(k) Employer")
	assert.False(t, ok)
}

func TestResolve_CatchUpBands(t *testing.T) {
	r := newResolver(t)
	facts := func(age int) intake.ExternalFacts {
		return intake.ExternalFacts{HasEmployer401k: true, Age: age}
	}

	t.Run("base limit under 50", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts(45))
		v, ok := find(vs, "401(k) Traditional")
		require.True(t, ok)
		assert.InDelta(t, 23500.0/12, v.MonthlyLimit, 0.01)
	})

	t.Run("regular catch-up at 50", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts(50))
		v, ok := find(vs, "401(k) Traditional")
		require.True(t, ok)
		assert.InDelta(t, 31000.0/12, v.MonthlyLimit, 0.01)
	})

	t.Run("super catch-up supersedes at 62", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts(62))
		v, ok := find(vs, "401(k) Traditional")
		require.True(t, ok)
		assert.InDelta(t, 34750.0/12, v.MonthlyLimit, 0.01)
	})
}

func TestResolve_HSA(t *testing.T) {
	r := newResolver(t)

	t.Run("ineligible clients get no HSA", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{})
		_, ok := find(vs, "HSA")
		assert.False(t, ok)
	})

	t.Run("self-only coverage", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{HSAEligible: true, Age: 40})
		v, ok := find(vs, "HSA")
		require.True(t, ok)
		assert.InDelta(t, 4300.0/12, v.MonthlyLimit, 0.01)
	})

	t.Run("family coverage with age-55 catch-up", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{},
			intake.ExternalFacts{HSAEligible: true, HSACoverage: intake.CoverageFamily, Age: 56})
		v, ok := find(vs, "HSA")
		require.True(t, ok)
		assert.InDelta(t, 9550.0/12, v.MonthlyLimit, 0.01)
	})
}

func TestResolve_RothPhaseOut(t *testing.T) {
	r := newResolver(t)

	t.Run("below the band keeps the full limit", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{},
			intake.ExternalFacts{GrossIncome: 120000, FilingStatus: intake.FilingSingle, Age: 40})
		v, ok := find(vs, "IRA Roth")
		require.True(t, ok)
		assert.InDelta(t, 7000.0/12, v.MonthlyLimit, 0.01)
		_, backdoor := find(vs, "Backdoor Roth IRA")
		assert.False(t, backdoor)
	})

	t.Run("inside the band reduces linearly", func(t *testing.T) {
		// Midpoint of 150000..165000 halves the limit.
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{},
			intake.ExternalFacts{GrossIncome: 157500, FilingStatus: intake.FilingSingle, Age: 40})
		v, ok := find(vs, "IRA Roth")
		require.True(t, ok)
		assert.InDelta(t, 3500.0/12, v.MonthlyLimit, 0.01)
		assert.NotEmpty(t, v.Note)
	})

	t.Run("above the band substitutes the backdoor", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{},
			intake.ExternalFacts{GrossIncome: 200000, FilingStatus: intake.FilingSingle, Age: 40})
		_, roth := find(vs, "IRA Roth")
		assert.False(t, roth)
		bd, ok := find(vs, "Backdoor Roth IRA")
		require.True(t, ok)
		assert.Equal(t, AdvisoryClean, bd.Advisory)
		assert.Equal(t, "IRA Traditional", bd.SharesLimitWith)
		assert.InDelta(t, 7000.0/12, bd.MonthlyLimit, 0.01)
	})

	t.Run("missing income means no phase-out", func(t *testing.T) {
		vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{Age: 40})
		_, ok := find(vs, "IRA Roth")
		assert.True(t, ok)
	})
}

func TestResolve_BackdoorAdvisories(t *testing.T) {
	r := newResolver(t)
	base := intake.ExternalFacts{GrossIncome: 250000, FilingStatus: intake.FilingSingle, Age: 40}

	cases := []struct {
		name    string
		balance float64
		answer  string
		want    Advisory
	}{
		{"no balance is clean", 0, "", AdvisoryClean},
		{"balance with rollover accepted", 50000, "yes", AdvisoryRollover},
		{"balance with rollover declined", 50000, "no", AdvisoryProRata},
		{"balance with no answer", 50000, "", AdvisoryUnsure},
		{"balance answered unsure", 50000, "unsure", AdvisoryUnsure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facts := base
			facts.TraditionalIRABalance = tc.balance
			a := intake.Answers{}
			if tc.answer != "" {
				a[intake.KeyBackdoorRolloverOK] = tc.answer
			}
			vs := r.Resolve(profile.FoundationBuilder, a, facts)
			bd, ok := find(vs, "Backdoor Roth IRA")
			require.True(t, ok)
			assert.Equal(t, tc.want, bd.Advisory)
			if tc.want == AdvisoryProRata {
				assert.NotEmpty(t, bd.Warning)
			}
		})
	}
}

func TestResolve_EducationScaling(t *testing.T) {
	r := newResolver(t)

	vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{})
	_, cesa := find(vs, "Coverdell ESA")
	_, plan529 := find(vs, "529 Plan")
	assert.False(t, cesa, "education vehicles require dependents")
	assert.False(t, plan529)

	vs = r.Resolve(profile.FoundationBuilder, intake.Answers{}, intake.ExternalFacts{Dependents: 3})
	v, ok := find(vs, "Coverdell ESA")
	require.True(t, ok)
	assert.InDelta(t, 6000.0/12, v.MonthlyLimit, 0.01)
	p, ok := find(vs, "529 Plan")
	require.True(t, ok)
	assert.True(t, p.Unlimited)
}

func TestResolve_MatchRequiresParseableFormula(t *testing.T) {
	r := newResolver(t)
	facts := intake.ExternalFacts{
		GrossIncome:      90000,
		HasEmployer401k:  true,
		HasEmployerMatch: true,
		MatchFormula:     "50% up to 6%",
	}
	vs := r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts)
	m, ok := find(vs, "401(k) Match")
	require.True(t, ok)
	assert.True(t, m.NonDiscretionary)

	facts.MatchFormula = "discretionary"
	vs = r.Resolve(profile.FoundationBuilder, intake.Answers{}, facts)
	_, ok = find(vs, "401(k) Match")
	assert.False(t, ok, "unparseable formula means no usable match seed")
}

func TestResolve_LimitsAreFinite(t *testing.T) {
	r := newResolver(t)
	vs := r.Resolve(profile.SoloOperator, intake.Answers{}, intake.ExternalFacts{SelfEmploymentIncome: 200000, Age: 61})
	for _, v := range vs {
		if v.Unlimited {
			continue
		}
		assert.False(t, math.IsInf(v.MonthlyLimit, 0) || math.IsNaN(v.MonthlyLimit), "%s limit must be finite", v.Name)
		assert.GreaterOrEqual(t, v.MonthlyLimit, 0.0)
	}
}
