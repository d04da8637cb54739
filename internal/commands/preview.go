package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shu85t/PutOuCostCategory/internal/awsorg"
	"github.com/shu85t/PutOuCostCategory/internal/category"
)

func newPreviewCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <depth>",
		Short: "Print the rules the current OU tree would produce, without publishing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), opts, args[0])
		},
	}
	return cmd
}

func runPreview(ctx context.Context, opts *rootOptions, depthArg string) error {
	depth, err := parseDepth(depthArg)
	if err != nil {
		return err
	}

	log := newLogger(opts.logLevel)
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	dir, err := awsorg.New(ctx, cfg.OrgRegion, log)
	if err != nil {
		return err
	}

	// Dry runs never touch the store, so no publisher is wired in.
	svc := category.NewService(dir, nil, log)
	now := time.Now().UTC()
	res, err := svc.Run(ctx, category.SyncParams{
		Name:   "preview",
		Month:  time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		Depth:  depth,
		DryRun: true,
	})
	if err != nil {
		return err
	}

	printRules(res.Rules)
	return nil
}
