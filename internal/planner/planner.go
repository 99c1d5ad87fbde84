// Package planner is the facade over the full recompute pipeline: classify
// the client, weight the active domains, resolve eligibility, order by
// priority, run the waterfall, then validate and project the result. It is
// the only layer that guards against catalog configuration errors; the
// stages underneath are expected to succeed on a validated catalog.
package planner

import (
	"errors"

	"go.uber.org/zap"

	"planforge/internal/allocate"
	"planforge/internal/catalog"
	"planforge/internal/config"
	"planforge/internal/eligibility"
	"planforge/internal/intake"
	"planforge/internal/priority"
	"planforge/internal/profile"
	"planforge/internal/projection"
	"planforge/internal/rebalance"
	"planforge/internal/validate"
	"planforge/internal/weights"
)

// Default weighting timelines, in months, used when the client never gave a
// domain timeline answer. Retirement falls back to the years-to-retirement
// answer first.
const (
	defaultRetirementMonths = 360
	defaultEducationMonths  = 216
	defaultHealthMonths     = 120
)

// Plan is everything one full recompute produces.
type Plan struct {
	ProfileID   int
	ProfileName string
	// Rule names the classifier rule that decided the profile.
	Rule string

	Weights  map[catalog.Domain]float64
	Eligible []eligibility.Vehicle
	Ordered  []eligibility.Vehicle

	Allocation allocate.Result
	Warnings   validate.Report
	Projection projection.Result

	// Message is set, and the allocation left empty, when the plan could
	// not be computed: a non-positive budget or a catalog mismatch.
	Message string
}

// Planner runs recomputes against one catalog and one tuning. It is cheap to
// construct; build a fresh one when the catalog reloads.
type Planner struct {
	cat      *catalog.Catalog
	cfg      *config.Config
	resolver *eligibility.Resolver
	engine   *projection.Engine
	log      *zap.SugaredLogger
}

// New builds a planner. A nil logger is replaced with a no-op one.
func New(cat *catalog.Catalog, cfg *config.Config, log *zap.SugaredLogger) *Planner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Planner{
		cat:      cat,
		cfg:      cfg,
		resolver: eligibility.New(cat),
		engine:   projection.NewEngine(cfg.Projection),
		log:      log,
	}
}

// Plan runs the full pipeline. It never returns an error: malformed answers
// fall back to defaults, a non-positive budget or a catalog mismatch yields
// a Plan whose Message explains why the allocation is empty.
func (p *Planner) Plan(a intake.Answers, f intake.ExternalFacts) Plan {
	decision := profile.Classify(a, f)
	plan := Plan{
		ProfileID: decision.ProfileID,
		Rule:      decision.Rule,
	}
	if prof, ok := p.cat.Profile(decision.ProfileID); ok {
		plan.ProfileName = prof.Name
	}
	p.log.Debugw("classified", "profile", decision.ProfileID, "rule", decision.Rule)

	plan.Weights = p.domainWeights(a, f)
	plan.Eligible = p.resolver.Resolve(decision.ProfileID, a, f)

	budget := a.Float(intake.KeyMonthlyBudget, 0)
	if budget <= 0 {
		plan.Message = "cannot allocate: the monthly savings budget must be greater than zero"
		return plan
	}

	prof, ok := p.cat.Profile(decision.ProfileID)
	if !ok {
		plan.Message = "cannot allocate: investor profile missing from catalog"
		return plan
	}
	ordered, err := priority.Order(p.cat, prof, plan.Eligible, a.TaxFocus(intake.TaxBoth))
	if err != nil {
		var cfgErr *catalog.ConfigError
		if errors.As(err, &cfgErr) {
			p.log.Errorw("catalog mismatch", "table", cfgErr.Table, "ref", cfgErr.Ref)
			plan.Message = "cannot allocate: catalog and priority table disagree (" + cfgErr.Ref + ")"
			return plan
		}
		p.log.Errorw("priority ordering failed", "error", err)
		plan.Message = "cannot allocate: " + err.Error()
		return plan
	}
	plan.Ordered = ordered

	plan.Allocation = allocate.Waterfall(ordered, budget, plan.Weights, p.seeds(plan.Eligible, f))
	plan.Warnings = validate.Check(p.cat, plan.Allocation, plan.Ordered, f.Age)
	plan.Projection = p.engine.Project(projection.Input{
		Result:                   plan.Allocation,
		Catalog:                  p.cat,
		InvolvementScore:         a.Scale(intake.KeyInvestmentScore, 4),
		YearsToRetirement:        a.Int(intake.KeyYearsToRetire, p.cfg.Projection.HorizonSentinel),
		ExistingRetirementAssets: f.ExistingRetirementAssets,
		ExistingEducationAssets:  f.ExistingEducationAssets,
		Dependents:               f.Dependents,
		EducationHorizonYears:    a.Int(intake.KeyEducationHorizon, p.cfg.Projection.HorizonSentinel),
	})
	return plan
}

// NewSession opens an interactive rebalancing session over a finished plan.
func (p *Planner) NewSession(plan Plan) rebalance.State {
	return rebalance.NewState(plan.Allocation, plan.Ordered)
}

// domainWeights assembles the active-domain inputs. Retirement is always
// active, Education only with dependents, Health only when HSA-eligible.
func (p *Planner) domainWeights(a intake.Answers, f intake.ExternalFacts) map[catalog.Domain]float64 {
	retMonths := a.Int(intake.KeyTimelineRetirement, 0)
	if retMonths <= 0 {
		if years := a.Int(intake.KeyYearsToRetire, 0); years > 0 && years < p.cfg.Projection.HorizonSentinel {
			retMonths = years * 12
		} else {
			retMonths = defaultRetirementMonths
		}
	}
	inputs := []weights.Input{{
		Domain:     catalog.DomainRetirement,
		Importance: a.Scale(intake.KeyImportanceRetirement, 4),
		Months:     retMonths,
	}}
	if f.Dependents > 0 {
		eduMonths := a.Int(intake.KeyTimelineEducation, 0)
		if eduMonths <= 0 {
			if years := a.Int(intake.KeyEducationHorizon, 0); years > 0 && years < p.cfg.Projection.HorizonSentinel {
				eduMonths = years * 12
			} else {
				eduMonths = defaultEducationMonths
			}
		}
		inputs = append(inputs, weights.Input{
			Domain:     catalog.DomainEducation,
			Importance: a.Scale(intake.KeyImportanceEducation, 4),
			Months:     eduMonths,
		})
	}
	if f.HSAEligible {
		inputs = append(inputs, weights.Input{
			Domain:     catalog.DomainHealth,
			Importance: a.Scale(intake.KeyImportanceHealth, 4),
			Months:     a.Int(intake.KeyTimelineHealth, defaultHealthMonths),
		})
	}
	tieBreaker := catalog.Domain(a.String(intake.KeyTopPriorityDomain, ""))
	return weights.Compute(inputs, tieBreaker, p.cfg.Weights)
}

// seeds collects the non-discretionary contributions. Today that is the
// employer match; it consumes limit room without drawing on the budget.
func (p *Planner) seeds(eligible []eligibility.Vehicle, f intake.ExternalFacts) []allocate.Seed {
	var seeds []allocate.Seed
	for _, ev := range eligible {
		if !ev.NonDiscretionary {
			continue
		}
		if ev.Name == "401(k) Match" {
			if m := f.MonthlyMatch(); m > 0 {
				seeds = append(seeds, allocate.Seed{Vehicle: ev.Name, Amount: m})
			}
		}
	}
	return seeds
}
