package jboss

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// Deployment is one row of the deployment-info command.
type Deployment struct {
	Name        string
	RuntimeName string
	Persistent  bool
	Enabled     bool
	Status      string
}

// Deployments queries the deployment status of the running server.
func (c *CLI) Deployments(ctx context.Context) ([]Deployment, error) {
	out, err := c.Command(ctx, "deployment-info")
	if err != nil {
		return nil, err
	}
	return ParseDeploymentInfo(out)
}

// Deploy uploads path under name with the given runtime name.
func (c *CLI) Deploy(ctx context.Context, path, name, runtimeName string) error {
	_, err := c.Command(ctx, fmt.Sprintf("deploy %s --name=%s --runtime-name=%s", path, name, runtimeName))
	return err
}

// Undeploy removes the deployment name. With keepContent the content stays in
// the repository and only the deployment is disabled.
func (c *CLI) Undeploy(ctx context.Context, name string, keepContent bool) error {
	command := "undeploy " + name
	if keepContent {
		command += " --keep-content"
	}
	_, err := c.Command(ctx, command)
	return err
}

// ParseDeploymentInfo parses the table printed by deployment-info:
//
//	NAME          RUNTIME-NAME PERSISTENT ENABLED STATUS
//	app-1.0.war   app.war      true       true    OK
func ParseDeploymentInfo(out string) ([]Deployment, error) {
	var deployments []Deployment
	header := false
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if !header {
			if fields[0] == "NAME" {
				header = true
			}
			continue
		}
		if len(fields) < 5 {
			return nil, fmt.Errorf("unexpected deployment-info row %q", scanner.Text())
		}
		deployments = append(deployments, Deployment{
			Name:        fields[0],
			RuntimeName: fields[1],
			Persistent:  fields[2] == "true",
			Enabled:     fields[3] == "true",
			Status:      fields[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !header && strings.TrimSpace(out) != "" {
		return nil, fmt.Errorf("deployment-info output has no header")
	}
	return deployments, nil
}
