package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"planforge/internal/config"
	"planforge/internal/planner"
	"planforge/internal/rebalance"
)

var (
	sessionEdits  []string
	sessionLocks  []string
	sessionBudget float64
	sessionReset  bool
)

// sessionCmd opens a rebalancing session and replays scripted edits
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open a rebalancing session over a computed plan",
	Long: `Computes a plan, opens an editing session over it, then replays the
requested operations in order: locks, edits, budget change, reset. Every
operation keeps the session on budget and under each vehicle's limit.

Example:
  planforge session --answers client.yaml --facts facts.yaml \
    --lock "IRA Roth" --edit "HSA=350" --edit "401(k) Traditional=700"`,
	RunE: runSession,
}

func init() {
	sessionCmd.Flags().StringVarP(&answersPath, "answers", "a", "", "client answers YAML (key: value)")
	sessionCmd.Flags().StringVarP(&factsPath, "facts", "f", "", "external facts YAML")
	sessionCmd.Flags().StringArrayVar(&sessionEdits, "edit", nil, "vehicle edit as \"name=monthly amount\", repeatable")
	sessionCmd.Flags().StringArrayVar(&sessionLocks, "lock", nil, "vehicle to lock before editing, repeatable")
	sessionCmd.Flags().Float64Var(&sessionBudget, "budget", 0, "change the session budget after edits")
	sessionCmd.Flags().BoolVar(&sessionReset, "reset", false, "restore the recommended amounts at the end")
	_ = sessionCmd.MarkFlagRequired("answers")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	answers, facts, err := loadClient(answersPath, factsPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	p := planner.New(cat, cfg, logger)
	plan := p.Plan(answers, facts)
	if plan.Message != "" {
		return fmt.Errorf("%s", plan.Message)
	}

	state := p.NewSession(plan)
	for _, name := range sessionLocks {
		state = rebalance.Lock(state, name)
	}
	for _, raw := range sessionEdits {
		name, value, err := parseEdit(raw)
		if err != nil {
			return err
		}
		state = rebalance.Adjust(state, name, value)
		logger.Debugw("applied edit", "vehicle", name, "amount", value, "total", state.Total())
	}
	if sessionBudget > 0 {
		state = rebalance.SetBudget(state, sessionBudget)
	}
	if sessionReset {
		state = rebalance.Reset(state)
	}

	fmt.Println(renderSession(state))
	return nil
}

func parseEdit(edit string) (string, float64, error) {
	name, amount, ok := strings.Cut(edit, "=")
	if !ok {
		return "", 0, fmt.Errorf("invalid edit %q: want \"name=amount\"", edit)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid edit amount in %q: %w", edit, err)
	}
	return strings.TrimSpace(name), value, nil
}
