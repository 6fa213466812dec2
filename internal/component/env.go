package component

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pirakansa/appstack/internal/cli/execrun"
)

// Module is a server module assembled from local jar files.
type Module struct {
	Name         string
	Resources    []string
	Dependencies []string
}

// ServerControl issues management operations against one Wildfly or
// Keycloak installation.
type ServerControl interface {
	AddUser(ctx context.Context, username, password string) error
	AddKeycloakUser(ctx context.Context, username, password string) error
	AddSystemProperty(ctx context.Context, name, value string) error
	AddJDBCDriver(ctx context.Context, name string, props map[string]string) error
	AddDataSource(ctx context.Context, name string, props map[string]string) error
	SecureDeployment(ctx context.Context, name string, props map[string]string) error
	InstallModule(ctx context.Context, m Module) error
	RunFile(ctx context.Context, file string) error
	// Start runs the server in the foreground until it stops.
	Start(ctx context.Context, props map[string]string) error
	Shutdown(ctx context.Context) error
}

// ServerFactory returns the control of the server installed in home.
type ServerFactory func(home string, portOffset int) ServerControl

// Env is what component constructors and their actions need from the host.
type Env struct {
	WorkDir     string
	BinariesDir string
	OS          string
	Arch        string
	Runner      execrun.Runner
	Servers     ServerFactory
	Now         func() time.Time
	// GraceTick is the countdown step of grace periods. Zero means one second.
	GraceTick time.Duration
}

// HostEnv returns an Env for the running platform.
func HostEnv(workDir, binariesDir string, runner execrun.Runner, servers ServerFactory) Env {
	return Env{
		WorkDir:     workDir,
		BinariesDir: binariesDir,
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		Runner:      runner,
		Servers:     servers,
		Now:         time.Now,
	}
}

func (e Env) path(elem ...string) string {
	return filepath.Join(append([]string{e.WorkDir}, elem...)...)
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
