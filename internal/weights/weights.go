// Package weights computes the normalized domain weights that split the
// monthly budget across Retirement, Education, and Health: the "Ambition
// Quotient". Importance comes from 1-7 scale answers, urgency from the
// present-value discount of each domain's timeline.
package weights

import (
	"math"

	"planforge/internal/catalog"
	"planforge/internal/config"
)

// Input is one active domain's raw signal. Which domains are active is the
// caller's call: Retirement always, Education with dependents, Health when
// HSA-eligible.
type Input struct {
	Domain     catalog.Domain
	Importance int // 1-7 scale
	Months     int // months until the money is needed
}

// Compute turns the active-domain inputs into weights summing to 1.0.
// A single active domain short-circuits to weight 1.0. When all three
// domains are active and tieBreaker names one of them, that domain is
// boosted by the configured amount (capped) and the others shrink
// proportionally so the sum stays 1.0.
func Compute(inputs []Input, tieBreaker catalog.Domain, cfg config.WeightsConfig) map[catalog.Domain]float64 {
	out := make(map[catalog.Domain]float64, len(inputs))
	if len(inputs) == 0 {
		return out
	}
	if len(inputs) == 1 {
		out[inputs[0].Domain] = 1.0
		return out
	}

	// urgencyRaw = 1/(1+r)^months, then normalized by the max across the
	// active domains so the nearest timeline scores 1.0.
	maxRaw := 0.0
	raws := make([]float64, len(inputs))
	for i, in := range inputs {
		months := in.Months
		if months < 0 {
			months = 0
		}
		raws[i] = 1 / math.Pow(1+cfg.MonthlyDiscountRate, float64(months))
		if raws[i] > maxRaw {
			maxRaw = raws[i]
		}
	}

	total := 0.0
	for i, in := range inputs {
		imp := clampScale(in.Importance)
		impNorm := float64(imp-1) / 6
		urgNorm := 0.0
		if maxRaw > 0 {
			urgNorm = raws[i] / maxRaw
		}
		w := (impNorm + urgNorm) / 2
		out[in.Domain] = w
		total += w
	}

	if total <= 0 {
		even := 1.0 / float64(len(inputs))
		for _, in := range inputs {
			out[in.Domain] = even
		}
		return out
	}
	for d := range out {
		out[d] /= total
	}

	if len(inputs) == 3 {
		if _, ok := out[tieBreaker]; ok {
			applyTieBreaker(out, tieBreaker, cfg)
		}
	}
	return out
}

func applyTieBreaker(w map[catalog.Domain]float64, favored catalog.Domain, cfg config.WeightsConfig) {
	boosted := w[favored] + cfg.TieBreakerBoost
	if boosted > cfg.TieBreakerCap {
		boosted = cfg.TieBreakerCap
	}
	if boosted <= w[favored] {
		return
	}
	restBefore := 1 - w[favored]
	restAfter := 1 - boosted
	if restBefore <= 0 {
		return
	}
	scale := restAfter / restBefore
	for d := range w {
		if d == favored {
			continue
		}
		w[d] *= scale
	}
	w[favored] = boosted
}

func clampScale(v int) int {
	if v < 1 {
		return 1
	}
	if v > 7 {
		return 7
	}
	return v
}
