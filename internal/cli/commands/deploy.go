package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/manifest"
	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/deploy"
	"github.com/pirakansa/appstack/internal/jboss"
)

func newDeployCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy every war below deploy.dir to the running Wildfly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.load(cmd.Context())
			if err != nil {
				return err
			}
			wars, err := deploy.FindWARs(loaded.Paths.DeployDir)
			if err != nil {
				return newExitCodeError(shared.ExitDeployFailed, err)
			}
			if len(wars) == 0 {
				fmt.Fprintf(ctx.stdout, "No war files found in %s\n", loaded.Paths.DeployDir)
				return nil
			}
			fmt.Fprintln(ctx.stdout, "- War files")
			for _, w := range wars {
				fmt.Fprintf(ctx.stdout, "  %s => %s\n", w.Path, w.RuntimeName)
			}
			cli, err := ctx.managementCLI(loaded)
			if err != nil {
				return err
			}
			ok, err := ctx.confirm()
			if err != nil || !ok {
				return err
			}

			d := &deploy.Deployer{Controller: cli, Out: ctx.stdout, Logger: ctx.logger}
			if err := d.Deploy(cmd.Context(), wars); err != nil {
				return newExitCodeError(shared.ExitDeployFailed, err)
			}
			return nil
		},
	}
}

func newUndeployDisabledCmd(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undeploy-disabled",
		Short: "Undeploy every disabled deployment of the running Wildfly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.load(cmd.Context())
			if err != nil {
				return err
			}
			cli, err := ctx.managementCLI(loaded)
			if err != nil {
				return err
			}
			deployments, err := cli.Deployments(cmd.Context())
			if err != nil {
				return newExitCodeError(shared.ExitDeployFailed, err)
			}
			disabled := deploy.Disabled(deployments)
			if len(disabled) == 0 {
				fmt.Fprintln(ctx.stdout, "No disabled deployments")
				return nil
			}
			fmt.Fprintln(ctx.stdout, "- Disabled deployments")
			for _, d := range disabled {
				fmt.Fprintf(ctx.stdout, "  %s (%s)\n", d.Name, d.RuntimeName)
			}
			ok, err := ctx.confirm()
			if err != nil || !ok {
				return err
			}

			d := &deploy.Deployer{Controller: cli, Out: ctx.stdout, Logger: ctx.logger}
			if err := d.UndeployAll(cmd.Context(), disabled); err != nil {
				return newExitCodeError(shared.ExitDeployFailed, err)
			}
			return nil
		},
	}
}

// managementCLI addresses deploy.host:deploy.port through the jboss-cli.sh of
// deploy.home, or of the configured wildfly component.
func (a *appContext) managementCLI(loaded *manifest.Loaded) (*jboss.CLI, error) {
	cfg := loaded.Config.Deploy
	home := cfg.Home
	switch {
	case home != "" && !filepath.IsAbs(home):
		home = filepath.Join(loaded.Paths.WorkDir, home)
	case home == "":
		raw, ok := loaded.Raw(component.KindWildfly.ID())
		if !ok {
			return nil, newExitCodeError(shared.ExitConfigError, errors.New("deploy.home is required when wildfly is not configured"))
		}
		set, err := component.NewResolver(a.env(loaded)).Resolve([]component.Entry{{ID: component.KindWildfly.ID(), Raw: raw}})
		if err != nil {
			return nil, newExitCodeError(shared.ExitConfigError, err)
		}
		wildfly, _ := set.Get(component.KindWildfly.ID())
		home = filepath.Join(loaded.Paths.WorkDir, wildfly.DirectoryName)
	}
	return &jboss.CLI{
		Home:   home,
		Runner: a.runner,
		Remote: &jboss.Remote{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Logger: a.logger,
	}, nil
}
