package commands

import (
	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/cli/summary"
	"github.com/pirakansa/appstack/internal/install"
)

func newInstallCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download, extract and configure the configured components",
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
			ok, err := ctx.confirm()
			if err != nil || !ok {
				return err
			}

			installer := &install.Installer{
				Layout:      loaded.Layout(),
				Client:      ctx.client,
				Runner:      ctx.runner,
				Coordinator: ctx.coordinator(),
				Logger:      ctx.logger,
			}
			options, err := installer.Install(cmd.Context(), set, loaded.Repositories())
			if err != nil {
				return newExitCodeError(shared.ExitTaskFailed, err)
			}
			summary.Installed(ctx.stdout, options)
			return nil
		},
	}
}
