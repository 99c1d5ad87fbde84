// Package projection turns a finished monthly allocation into future-value
// estimates: nominal and inflation-adjusted balances at retirement, a
// no-further-contribution baseline, a 4%-rule monthly income figure, an
// independent education projection, and a tax-treatment breakdown.
//
// All the math is guarded. Horizons at or past the sentinel mean "not
// applicable" and project to zero; compounding factors that blow past the
// configured guard collapse to the future-value cap instead of overflowing.
package projection

import (
	"math"

	"planforge/internal/allocate"
	"planforge/internal/catalog"
	"planforge/internal/config"
)

// Engine computes projections with one fixed tuning.
type Engine struct {
	cfg config.ProjectionConfig
}

// NewEngine returns an engine using the given tuning.
func NewEngine(cfg config.ProjectionConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Input is everything a projection needs beyond the allocation itself.
type Input struct {
	Result  allocate.Result
	Catalog *catalog.Catalog

	// InvolvementScore is the client's 1-7 investment-involvement answer;
	// it personalizes the annual growth rate.
	InvolvementScore  int
	YearsToRetirement int

	ExistingRetirementAssets float64
	ExistingEducationAssets  float64

	Dependents            int
	EducationHorizonYears int
}

// TaxSlice is one tax-treatment bucket of the projected balance.
type TaxSlice struct {
	Treatment catalog.TaxTreatment
	// Percent is the bucket's share of monthly contributions, 0-100.
	Percent float64
	// Amount is the bucket's dollar share of the projected balance.
	Amount float64
}

// EducationProjection is the independent education-savings projection.
type EducationProjection struct {
	MonthlyContribution float64
	Years               int
	ProjectedBalance    float64
	RealBalance         float64
}

// Result is the full projection over one allocation.
type Result struct {
	AnnualRate float64
	Years      int

	// ProjectedBalance is contribution growth plus lump-sum growth of
	// existing assets, in nominal dollars.
	ProjectedBalance float64
	// RealBalance discounts the projected balance by inflation.
	RealBalance float64
	// Baseline is existing assets grown with no further contributions.
	Baseline float64
	// Improvement is ProjectedBalance minus Baseline.
	Improvement float64
	// MonthlyIncome is RealBalance spread over the withdrawal window.
	MonthlyIncome float64

	Education    EducationProjection
	TaxBreakdown []TaxSlice
}

// PersonalizedRate maps the 1-7 involvement score onto the configured rate
// band: base rate at 1, base plus the full additional rate at 7.
func (e *Engine) PersonalizedRate(score int) float64 {
	if score < 1 {
		score = 1
	}
	if score > 7 {
		score = 7
	}
	return e.cfg.BaseRate + float64(score-1)/6*e.cfg.MaxAdditionalRate
}

// FutureValue grows a monthly contribution at an annual rate for a number
// of years, compounded monthly. Non-positive contributions or horizons, and
// horizons at the sentinel, return 0.
func (e *Engine) FutureValue(monthly, annualRate float64, years int) float64 {
	if monthly <= 0 || years <= 0 || years >= e.cfg.HorizonSentinel {
		return 0
	}
	rate, months, factor, capped := e.compound(annualRate, years)
	if capped {
		return e.cfg.FutureValueCap
	}
	monthlyRate := rate / 12
	var fv float64
	if monthlyRate == 0 {
		fv = monthly * float64(months)
	} else {
		fv = monthly * (factor - 1) / monthlyRate
	}
	return e.capRound(fv)
}

// LumpSum grows an existing balance at an annual rate for a number of years,
// compounded monthly, with the same guards as FutureValue.
func (e *Engine) LumpSum(principal, annualRate float64, years int) float64 {
	if principal <= 0 || years <= 0 || years >= e.cfg.HorizonSentinel {
		return 0
	}
	_, _, factor, capped := e.compound(annualRate, years)
	if capped {
		return e.cfg.FutureValueCap
	}
	return e.capRound(principal * factor)
}

// compound clamps rate and horizon to the configured maxima and returns the
// monthly compounding factor, flagging when it tripped the overflow guard.
func (e *Engine) compound(annualRate float64, years int) (rate float64, months int, factor float64, capped bool) {
	rate = annualRate
	if rate < 0 {
		rate = 0
	}
	if rate > e.cfg.MaxAnnualRate {
		rate = e.cfg.MaxAnnualRate
	}
	if years > e.cfg.MaxYears {
		years = e.cfg.MaxYears
	}
	months = years * 12
	factor = math.Pow(1+rate/12, float64(months))
	if math.IsInf(factor, 0) || math.IsNaN(factor) || factor > e.cfg.CompoundGuard {
		return rate, months, factor, true
	}
	return rate, months, factor, false
}

func (e *Engine) capRound(v float64) float64 {
	if v > e.cfg.FutureValueCap {
		return e.cfg.FutureValueCap
	}
	return math.Round(v*100) / 100
}

// Project runs the full projection: retirement balances, the education
// projection, and the tax-treatment breakdown.
func (e *Engine) Project(in Input) Result {
	rate := e.PersonalizedRate(in.InvolvementScore)
	years := in.YearsToRetirement

	monthly := e.retirementMonthly(in)
	contribFV := e.FutureValue(monthly, rate, years)
	lumpFV := e.LumpSum(in.ExistingRetirementAssets, rate, years)

	projected := e.capSum(contribFV, lumpFV)
	real := e.discount(projected, years)
	baseline := lumpFV
	improvement := projected - baseline
	if improvement < 0 {
		improvement = 0
	}

	income := 0.0
	if e.cfg.WithdrawalMonths > 0 {
		income = math.Round(real/e.cfg.WithdrawalMonths*100) / 100
	}

	return Result{
		AnnualRate:       rate,
		Years:            years,
		ProjectedBalance: projected,
		RealBalance:      real,
		Baseline:         baseline,
		Improvement:      math.Round(improvement*100) / 100,
		MonthlyIncome:    income,
		Education:        e.educationProjection(in),
		TaxBreakdown:     e.taxBreakdown(in, projected),
	}
}

// retirementMonthly sums everything outside the education domain. Overflow
// counts: it is still money being put away each month.
func (e *Engine) retirementMonthly(in Input) float64 {
	total := 0.0
	for name, amt := range in.Result.Vehicles {
		if v, ok := in.Catalog.Vehicle(name); ok && v.Domain == catalog.DomainEducation {
			continue
		}
		total += amt
	}
	return total
}

// educationProjection mirrors the retirement math independently with the
// fixed education rate and its own horizon. No dependents or a sentinel
// horizon means zeros.
func (e *Engine) educationProjection(in Input) EducationProjection {
	monthly := 0.0
	for name, amt := range in.Result.Vehicles {
		if v, ok := in.Catalog.Vehicle(name); ok && v.Domain == catalog.DomainEducation {
			monthly += amt
		}
	}
	ep := EducationProjection{MonthlyContribution: monthly, Years: in.EducationHorizonYears}
	if in.Dependents <= 0 || in.EducationHorizonYears <= 0 || in.EducationHorizonYears >= e.cfg.HorizonSentinel {
		return EducationProjection{MonthlyContribution: monthly}
	}
	contrib := e.FutureValue(monthly, e.cfg.EducationRate, in.EducationHorizonYears)
	lump := e.LumpSum(in.ExistingEducationAssets, e.cfg.EducationRate, in.EducationHorizonYears)
	ep.ProjectedBalance = e.capSum(contrib, lump)
	ep.RealBalance = e.discount(ep.ProjectedBalance, in.EducationHorizonYears)
	return ep
}

// taxBreakdown buckets every funded vehicle by tax treatment and expresses
// each bucket as a share of monthly contributions and of the projected
// balance. The order is always free, deferred, taxable.
func (e *Engine) taxBreakdown(in Input, projected float64) []TaxSlice {
	buckets := map[catalog.TaxTreatment]float64{}
	total := 0.0
	for name, amt := range in.Result.Vehicles {
		if amt <= 0 {
			continue
		}
		treatment := catalog.TaxTaxable
		if v, ok := in.Catalog.Vehicle(name); ok && v.TaxTreatment != "" {
			treatment = v.TaxTreatment
		}
		buckets[treatment] += amt
		total += amt
	}
	slices := make([]TaxSlice, 0, 3)
	for _, t := range []catalog.TaxTreatment{catalog.TaxFree, catalog.TaxDeferred, catalog.TaxTaxable} {
		amt := buckets[t]
		s := TaxSlice{Treatment: t}
		if total > 0 {
			s.Percent = math.Round(amt/total*10000) / 100
			s.Amount = math.Round(amt/total*projected*100) / 100
		}
		slices = append(slices, s)
	}
	return slices
}

func (e *Engine) capSum(a, b float64) float64 {
	sum := a + b
	if sum > e.cfg.FutureValueCap {
		return e.cfg.FutureValueCap
	}
	return math.Round(sum*100) / 100
}

// discount deflates a nominal balance into today's dollars.
func (e *Engine) discount(nominal float64, years int) float64 {
	if nominal <= 0 || years <= 0 {
		return nominal
	}
	if years > e.cfg.MaxYears {
		years = e.cfg.MaxYears
	}
	real := nominal / math.Pow(1+e.cfg.InflationRate, float64(years))
	return math.Round(real*100) / 100
}
