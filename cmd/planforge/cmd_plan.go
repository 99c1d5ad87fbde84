package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"planforge/internal/catalog"
	"planforge/internal/config"
	"planforge/internal/intake"
	"planforge/internal/planner"
)

var (
	answersPath string
	factsPath   string
	watchFlag   bool
)

// planCmd runs one full recompute and renders the result
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a full savings allocation for one client",
	Long: `Runs the full pipeline against a client's answers and external facts:
classify, weight, resolve eligibility, order, allocate, validate, project.

Answers are an open key/value YAML map; facts are the read-only client data
an upstream system would supply. Both files are optional field by field:
missing values fall back to safe defaults.

Example:
  planforge plan --answers client.yaml --facts facts.yaml
  planforge plan --answers client.yaml --facts facts.yaml --watch`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&answersPath, "answers", "a", "", "client answers YAML (key: value)")
	planCmd.Flags().StringVarP(&factsPath, "facts", "f", "", "external facts YAML")
	planCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "recompute when the catalog directory changes")
	_ = planCmd.MarkFlagRequired("answers")
}

func runPlan(cmd *cobra.Command, args []string) error {
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
	fmt.Println(renderPlan(p.Plan(answers, facts), cat))

	if !watchFlag {
		return nil
	}
	if cfg.CatalogDir == "" {
		return fmt.Errorf("--watch needs a catalog directory (config catalog_dir or PLANFORGE_CATALOG_DIR)")
	}
	watcher, err := catalog.Watch(cfg.CatalogDir, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	logger.Infow("watching catalog", "dir", cfg.CatalogDir)
	for {
		select {
		case next, ok := <-watcher.Catalogs():
			if !ok {
				return nil
			}
			p = planner.New(next, cfg, logger)
			fmt.Println(renderPlan(p.Plan(answers, facts), next))
		case <-sigCh:
			return nil
		}
	}
}

// loadClient reads the answers map and facts struct. A missing facts path
// yields zero-valued facts; every consumer safe-defaults them.
func loadClient(answersPath, factsPath string) (intake.Answers, intake.ExternalFacts, error) {
	data, err := os.ReadFile(answersPath)
	if err != nil {
		return nil, intake.ExternalFacts{}, fmt.Errorf("read answers: %w", err)
	}
	// Answers are stringly typed; accept bare YAML scalars of any kind.
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, intake.ExternalFacts{}, fmt.Errorf("parse answers %s: %w", answersPath, err)
	}
	answers := make(intake.Answers, len(raw))
	for k, v := range raw {
		answers[k] = fmt.Sprint(v)
	}

	var facts intake.ExternalFacts
	if factsPath != "" {
		data, err := os.ReadFile(factsPath)
		if err != nil {
			return nil, intake.ExternalFacts{}, fmt.Errorf("read facts: %w", err)
		}
		if err := yaml.Unmarshal(data, &facts); err != nil {
			return nil, intake.ExternalFacts{}, fmt.Errorf("parse facts %s: %w", factsPath, err)
		}
	}
	return answers, facts, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.CatalogDir != "" {
		cat, err = catalog.Load(cfg.CatalogDir)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}
