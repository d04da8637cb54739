package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shu85t/PutOuCostCategory/internal/category"
	"github.com/shu85t/PutOuCostCategory/internal/costreport"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <name> <YYYY-MM> [<YYYY-MM>]",
		Short: "Show monthly cost per category value for a published cost category",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from := args[1]
			to := from
			if len(args) == 3 {
				to = args[2]
			}
			return runReport(cmd.Context(), opts, args[0], from, to)
		},
	}
	return cmd
}

func runReport(ctx context.Context, opts *rootOptions, name, fromArg, toArg string) error {
	from, err := category.ParseMonth(fromArg)
	if err != nil {
		return err
	}
	to, err := category.ParseMonth(toArg)
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("end month %s is before start month %s", toArg, fromArg)
	}

	log := newLogger(opts.logLevel)
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	reporter, err := costreport.New(ctx, cfg.CostExplorerRegion, log)
	if err != nil {
		return err
	}

	// The query window is half-open, so include the whole end month.
	report, err := reporter.CategoryCosts(ctx, name, from, to.AddDate(0, 1, 0))
	if err != nil {
		return err
	}

	for _, line := range report.Lines {
		fmt.Printf("%s  %-40s %14s %s\n", line.Month, line.Category, line.Amount.StringFixed(2), line.Unit)
	}
	fmt.Printf("total %s\n", report.Total.StringFixed(2))
	return nil
}
