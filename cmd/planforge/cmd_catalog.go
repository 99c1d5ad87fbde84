package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"planforge/internal/config"
)

// catalogCmd groups catalog inspection commands
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the vehicle catalog",
}

// catalogValidateCmd checks the loaded catalog's cross-references
var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog data before deploying it",
	Long: `Loads the catalog (embedded defaults, or catalog_dir overrides) and
checks its cross-references: nine profiles, an overflow vehicle, shared-limit
partners that exist, priority tables naming only known vehicles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("catalog ok: tax year %d, %d vehicles, %d profiles\n",
			cat.TaxYear, len(cat.Vehicles), len(cat.Profiles))
		return nil
	},
}

// catalogShowCmd lists the vehicles and their limits
var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List every vehicle with its annual limit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("tax year %d\n\n", cat.TaxYear)
		for _, v := range cat.Vehicles {
			limit := "unlimited"
			if !v.Unlimited {
				limit = fmt.Sprintf("$%.0f/yr", v.AnnualLimit)
				if v.CatchUpAmount > 0 {
					limit += fmt.Sprintf(" (+$%.0f at %d)", v.CatchUpAmount, v.CatchUpAge)
				}
			}
			fmt.Printf("  %-24s %-10s %s\n", v.Name, string(v.Domain), limit)
			if v.SharesLimitWith != "" {
				fmt.Printf("  %-24s shares limit with %s\n", "", v.SharesLimitWith)
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
