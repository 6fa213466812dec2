// Package deploy pushes web archives to a running Wildfly and cleans up
// disabled deployments.
package deploy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pirakansa/appstack/internal/jboss"
)

// Controller is the deployment side of the management interface.
type Controller interface {
	Deployments(ctx context.Context) ([]jboss.Deployment, error)
	Deploy(ctx context.Context, path, name, runtimeName string) error
	Undeploy(ctx context.Context, name string, keepContent bool) error
}

var _ Controller = (*jboss.CLI)(nil)

// War is a web archive found on disk.
type War struct {
	Path        string
	Name        string
	RuntimeName string
}

// FindWARs returns every *.war below dir ordered by path.
func FindWARs(dir string) ([]War, error) {
	var wars []War
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".war") {
			return nil
		}
		wars = append(wars, War{Path: path, Name: d.Name(), RuntimeName: RuntimeName(d.Name())})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(wars, func(i, j int) bool { return wars[i].Path < wars[j].Path })
	return wars, nil
}

// RuntimeName drops the version suffix after the last dash: app-1.2.war
// becomes app.war.
func RuntimeName(filename string) string {
	i := strings.LastIndex(filename, "-")
	if i < 0 {
		return filename
	}
	name := filename[:i]
	if strings.HasSuffix(filename, ".war") {
		name += ".war"
	}
	return name
}

// Action is what has to happen to an existing deployment before a war is
// deployed.
type Action int

const (
	Keep Action = iota
	Undeploy
	UndeployKeepContent
)

func (a Action) String() string {
	switch a {
	case Undeploy:
		return "undeploy"
	case UndeployKeepContent:
		return "undeploy, keep content"
	default:
		return "keep"
	}
}

// Conflict is the existing deployment a war collides with.
type Conflict struct {
	Action     Action
	Deployment jboss.Deployment
}

// FindConflict decides how war collides with the existing deployments. A
// deployment with the same name is always replaced. One with the same runtime
// name is disabled keeping its content when enabled, and left alone otherwise.
func FindConflict(deployments []jboss.Deployment, war War) (Conflict, bool) {
	for _, d := range deployments {
		if d.Name == war.Name {
			return Conflict{Action: Undeploy, Deployment: d}, true
		}
	}
	for _, d := range deployments {
		if d.RuntimeName == war.RuntimeName {
			if d.Enabled {
				return Conflict{Action: UndeployKeepContent, Deployment: d}, true
			}
			return Conflict{Action: Keep, Deployment: d}, true
		}
	}
	return Conflict{}, false
}

// Deployer deploys wars through a Controller.
type Deployer struct {
	Controller Controller
	Out        io.Writer
	Logger     *log.Logger
}

// Deploy resolves conflicts and deploys each war in order. The first failure
// stops the run.
func (d *Deployer) Deploy(ctx context.Context, wars []War) error {
	existing, err := d.Controller.Deployments(ctx)
	if err != nil {
		return fmt.Errorf("query deployments: %w", err)
	}
	for _, war := range wars {
		fmt.Fprintln(d.Out, "---------")
		fmt.Fprintf(d.Out, "path: %s\nname: %s\nruntime-name: %s\n", war.Path, war.Name, war.RuntimeName)
		if conflict, ok := FindConflict(existing, war); ok {
			d.Logger.Info("existing deployment", "war", war.Name, "deployment", conflict.Deployment.Name, "action", conflict.Action)
			if err := d.resolve(ctx, conflict); err != nil {
				return err
			}
		}
		if err := d.Controller.Deploy(ctx, war.Path, war.Name, war.RuntimeName); err != nil {
			return fmt.Errorf("deploy %s: %w", war.Name, err)
		}
		fmt.Fprint(d.Out, "---------\n\n")
	}
	return nil
}

func (d *Deployer) resolve(ctx context.Context, c Conflict) error {
	switch c.Action {
	case Undeploy:
		if err := d.Controller.Undeploy(ctx, c.Deployment.Name, false); err != nil {
			return fmt.Errorf("undeploy %s: %w", c.Deployment.Name, err)
		}
	case UndeployKeepContent:
		if err := d.Controller.Undeploy(ctx, c.Deployment.Name, true); err != nil {
			return fmt.Errorf("undeploy %s: %w", c.Deployment.Name, err)
		}
	}
	return nil
}

// Disabled returns the deployments that are not enabled.
func Disabled(deployments []jboss.Deployment) []jboss.Deployment {
	var out []jboss.Deployment
	for _, d := range deployments {
		if !d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// UndeployAll removes every given deployment including its content.
func (d *Deployer) UndeployAll(ctx context.Context, deployments []jboss.Deployment) error {
	for _, dep := range deployments {
		d.Logger.Info("undeploy", "deployment", dep.Name)
		if err := d.Controller.Undeploy(ctx, dep.Name, false); err != nil {
			return fmt.Errorf("undeploy %s: %w", dep.Name, err)
		}
	}
	return nil
}
