package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shu85t/PutOuCostCategory/internal/awsorg"
	"github.com/shu85t/PutOuCostCategory/internal/category"
	"github.com/shu85t/PutOuCostCategory/internal/costcat"
	"github.com/shu85t/PutOuCostCategory/internal/runlog"
)

func newPutCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool
	var defaultValue string

	cmd := &cobra.Command{
		Use:   "put <name> <YYYY-MM> <depth>",
		Short: "Create or replace the cost category from the current OU tree",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd.Context(), opts, args[0], args[1], args[2], defaultValue, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate rules without publishing")
	cmd.Flags().StringVar(&defaultValue, "default-value", "", "category value for costs matching no rule")

	return cmd
}

func runPut(ctx context.Context, opts *rootOptions, name, monthArg, depthArg, defaultValue string, dryRun bool) error {
	if name == "" {
		return fmt.Errorf("category name must not be empty")
	}
	month, err := category.ParseMonth(monthArg)
	if err != nil {
		return err
	}
	depth, err := parseDepth(depthArg)
	if err != nil {
		return err
	}

	log := newLogger(opts.logLevel)
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if defaultValue == "" {
		defaultValue = cfg.DefaultValue
	}

	dir, err := awsorg.New(ctx, cfg.OrgRegion, log)
	if err != nil {
		return err
	}
	store, err := costcat.New(ctx, cfg.CostExplorerRegion, log)
	if err != nil {
		return err
	}

	svc := category.NewService(dir, store, log)
	res, err := svc.Run(ctx, category.SyncParams{
		Name:         name,
		Month:        month,
		Depth:        depth,
		DefaultValue: defaultValue,
		DryRun:       dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		printRules(res.Rules)
		return nil
	}

	if cfg.RunLog != "" {
		entry := runlog.Entry{
			Timestamp: time.Now().UTC(),
			Category:  name,
			Action:    string(res.Publish.Action),
			Rules:     len(res.Rules),
			Accounts:  res.Accounts,
			Depth:     depth,
		}
		if err := runlog.Append(cfg.RunLog, entry); err != nil {
			// The publish already happened; a broken audit log must not
			// fail the run.
			log.WithError(err).Warn("could not append to run log")
		}
	}

	fmt.Printf("%s cost category %q: %d rules covering %d accounts\n",
		res.Publish.Action, name, len(res.Rules), res.Accounts)
	return nil
}

// parseDepth parses the depth argument, rejecting anything below 1.
func parseDepth(s string) (int, error) {
	depth, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid depth %q: %w", s, category.ErrInvalidDepth)
	}
	if depth < 1 {
		return 0, fmt.Errorf("invalid depth %d: %w", depth, category.ErrInvalidDepth)
	}
	return depth, nil
}

func printRules(rules []category.Rule) {
	total := 0
	for _, r := range rules {
		fmt.Printf("%s:\n", r.Label)
		for _, id := range r.AccountIDs {
			fmt.Printf("  %s\n", id)
		}
		total += len(r.AccountIDs)
	}
	fmt.Printf("%d rules covering %d accounts\n", len(rules), total)
}
