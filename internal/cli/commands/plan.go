package commands

import (
	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/summary"
	"github.com/pirakansa/appstack/internal/install"
)

func newPlanCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show parameters and the installation steps without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.load(cmd.Context())
			if err != nil {
				return err
			}
			set, err := ctx.resolve(loaded)
			if err != nil {
				return err
			}
			summary.Parameters(ctx.stdout, loaded.Layout(), set, loaded.Repositories())
			summary.Plan(ctx.stdout, install.BuildPlan(set.Descriptors, loaded.Layout(), loaded.Repositories()...))
			return nil
		},
	}
}
