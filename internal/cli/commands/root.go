package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/cli/manifest"
	"github.com/pirakansa/appstack/internal/cli/prompt"
	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/coordinator"
	"github.com/pirakansa/appstack/internal/jboss"
	"github.com/pirakansa/appstack/internal/render"
)

type appContext struct {
	configPath string
	assumeYes  bool
	debug      bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger

	client    *http.Client
	runner    execrun.Runner
	servers   component.ServerFactory
	graceTick time.Duration
}

func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, &appContext{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
}

func newRootCmd(version string, ctx *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appstack",
		Short: "Install and wire a Wildfly, Keycloak, PostgreSQL and MongoDB stack",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(ctx.stdin)
	cmd.SetOut(ctx.stdout)
	cmd.SetErr(ctx.stderr)
	cmd.PersistentFlags().StringVar(&ctx.configPath, "config", manifest.DefaultConfigFile, "path or URL of the configuration")
	cmd.PersistentFlags().BoolVarP(&ctx.assumeYes, "yes", "y", false, "skip the confirmation prompt")
	cmd.PersistentFlags().BoolVar(&ctx.debug, "debug", false, "log debug output")

	cmd.AddCommand(newInstallCmd(ctx))
	cmd.AddCommand(newPlanCmd(ctx))
	cmd.AddCommand(newExportRealmCmd(ctx))
	cmd.AddCommand(newDeployCmd(ctx))
	cmd.AddCommand(newUndeployDisabledCmd(ctx))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func Execute(version string) int {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return mapExitCode(err)
	}
	return shared.ExitOK
}

func mapExitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	var taskErr *coordinator.TaskError
	if errors.As(err, &taskErr) {
		return shared.ExitTaskFailed
	}
	if isConfigError(err) {
		return shared.ExitConfigError
	}
	return shared.ExitError
}

func isConfigError(err error) bool {
	var unknown *component.UnknownComponentError
	var invalid *component.ValidationError
	var dependency *component.DependencyError
	return errors.As(err, &unknown) || errors.As(err, &invalid) || errors.As(err, &dependency)
}

func (a *appContext) setup() {
	level := log.InfoLevel
	if a.debug {
		level = log.DebugLevel
	}
	if a.logger == nil {
		a.logger = log.NewWithOptions(a.stderr, log.Options{Prefix: "appstack"})
	}
	a.logger.SetLevel(level)
	if a.runner == nil {
		a.runner = &execrun.ExecRunner{Logger: a.logger}
	}
	if a.servers == nil {
		a.servers = jboss.NewRegistry().Servers(a.runner, a.logger)
	}
}

func (a *appContext) load(ctx context.Context) (*manifest.Loaded, error) {
	loaded, err := manifest.Load(ctx, a.configPath)
	if err != nil {
		return nil, newExitCodeError(shared.ExitConfigError, err)
	}
	a.logger.Debug("config loaded", "path", a.configPath, "cwd", loaded.Paths.WorkDir)
	return loaded, nil
}

func (a *appContext) env(loaded *manifest.Loaded) component.Env {
	env := component.HostEnv(loaded.Paths.WorkDir, loaded.Paths.BinariesDir, a.runner, a.servers)
	env.GraceTick = a.graceTick
	return env
}

func (a *appContext) resolve(loaded *manifest.Loaded) (*component.Set, error) {
	set, err := component.NewResolver(a.env(loaded)).Resolve(loaded.Entries())
	if err != nil {
		return nil, newExitCodeError(shared.ExitConfigError, err)
	}
	return set, nil
}

func (a *appContext) coordinator() *coordinator.Coordinator {
	return coordinator.New(render.New(a.stdout), a.logger)
}

// confirm returns true without asking when --yes was given.
func (a *appContext) confirm() (bool, error) {
	if a.assumeYes {
		return true, nil
	}
	ok, err := prompt.Confirm(a.stdin, a.stdout, prompt.Question)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(a.stdout, "Aborted")
	}
	return ok, nil
}

type exitCodeError struct {
	code int
	err  error
}

func newExitCodeError(code int, err error) *exitCodeError {
	return &exitCodeError{code: code, err: err}
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}
