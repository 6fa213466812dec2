package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/install"
)

func newExportRealmCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export-realm",
		Short: "Start Keycloak with a realm export and stop it afterwards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.load(cmd.Context())
			if err != nil {
				return err
			}
			id := component.KindKeycloak.ID()
			raw, ok := loaded.Raw(id)
			if !ok {
				return newExitCodeError(shared.ExitConfigError, errors.New("export-realm requires keycloak to be configured"))
			}
			d, err := component.KeycloakExport(raw, ctx.env(loaded))
			if err != nil {
				return newExitCodeError(shared.ExitConfigError, err)
			}

			installer := &install.Installer{
				Layout:      loaded.Layout(),
				Coordinator: ctx.coordinator(),
				Logger:      ctx.logger,
			}
			if err := installer.Run(cmd.Context(), install.Plan{Chains: []install.Chain{install.ChainOf(d)}}); err != nil {
				return newExitCodeError(shared.ExitTaskFailed, err)
			}
			ctx.logger.Info("realm exported", "realm", d.Options.String("realm"), "file", d.Options.String("jsonFile"))
			return nil
		},
	}
}
