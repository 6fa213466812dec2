// Package jboss drives jboss-cli.sh and the companion scripts of a Wildfly or
// Keycloak installation.
package jboss

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/component"
)

// DefaultManagementPort is the management port before the port offset.
const DefaultManagementPort = 9990

// Remote addresses a running server's management interface.
type Remote struct {
	Host     string
	Port     int
	Username string
	Password string
}

// CLI runs management operations for one server home.
type CLI struct {
	Home       string
	PortOffset int
	Runner     execrun.Runner
	// Remote overrides the local controller address when set.
	Remote   *Remote
	Registry *Registry
	Logger   *log.Logger
}

var _ component.ServerControl = (*CLI)(nil)

func (c *CLI) script(name string) string {
	return filepath.Join(c.Home, "bin", name)
}

func (c *CLI) run(ctx context.Context, script string, args ...string) (string, error) {
	return c.Runner.Run(ctx, execrun.Command{
		Name: "sh",
		Args: append([]string{c.script(script)}, args...),
		Dir:  c.Home,
	})
}

// Embedded runs commands against an embedded, offline server. Offline edits of
// one home are serialized since they rewrite the same configuration file.
func (c *CLI) Embedded(ctx context.Context, commands ...string) error {
	unlock := c.Registry.Lock(c.Home)
	defer unlock()
	if c.Logger != nil {
		c.Logger.Debug("jboss embedded", "home", c.Home, "commands", commands)
	}
	_, err := c.run(ctx, "jboss-cli.sh", "--commands=embed-server,"+strings.Join(commands, ","))
	return err
}

// Command runs one command against the running server's controller.
func (c *CLI) Command(ctx context.Context, command string) (string, error) {
	args := []string{"-c", "--controller=" + c.controller()}
	if c.Remote != nil && c.Remote.Username != "" {
		args = append(args, "--user="+c.Remote.Username, "--password="+c.Remote.Password)
	}
	args = append(args, "--command="+command)
	return c.run(ctx, "jboss-cli.sh", args...)
}

func (c *CLI) controller() string {
	if c.Remote != nil {
		host := c.Remote.Host
		if host == "" {
			host = "localhost"
		}
		port := c.Remote.Port
		if port == 0 {
			port = DefaultManagementPort + c.PortOffset
		}
		return fmt.Sprintf("%s:%d", host, port)
	}
	return fmt.Sprintf("localhost:%d", DefaultManagementPort+c.PortOffset)
}

func (c *CLI) AddUser(ctx context.Context, username, password string) error {
	_, err := c.run(ctx, "add-user.sh", username, password)
	return err
}

func (c *CLI) AddKeycloakUser(ctx context.Context, username, password string) error {
	_, err := c.run(ctx, "add-user-keycloak.sh", "-u", username, "-p", password)
	return err
}

func (c *CLI) AddSystemProperty(ctx context.Context, name, value string) error {
	return c.Embedded(ctx, fmt.Sprintf("/system-property=%s:add(value=%s)", name, value))
}

func (c *CLI) AddJDBCDriver(ctx context.Context, name string, props map[string]string) error {
	return c.Embedded(ctx, fmt.Sprintf("/subsystem=datasources/jdbc-driver=%s:add(%s)", name, Properties(props)))
}

func (c *CLI) AddDataSource(ctx context.Context, name string, props map[string]string) error {
	return c.Embedded(ctx, fmt.Sprintf("/subsystem=datasources/data-source=%s:add(%s)", name, Properties(props)))
}

func (c *CLI) SecureDeployment(ctx context.Context, name string, props map[string]string) error {
	return c.Embedded(ctx, fmt.Sprintf("/subsystem=keycloak/secure-deployment=%s:add(%s)", name, Properties(props)))
}

// RunFile runs a jboss-cli script. The script embeds its own server.
func (c *CLI) RunFile(ctx context.Context, file string) error {
	unlock := c.Registry.Lock(c.Home)
	defer unlock()
	_, err := c.run(ctx, "jboss-cli.sh", "--file="+file)
	return err
}

// Start runs standalone.sh with the port offset and props as system properties.
func (c *CLI) Start(ctx context.Context, props map[string]string) error {
	args := []string{fmt.Sprintf("-Djboss.socket.binding.port-offset=%d", c.PortOffset)}
	for _, k := range sortedKeys(props) {
		args = append(args, fmt.Sprintf("-D%s=%s", k, props[k]))
	}
	_, err := c.run(ctx, "standalone.sh", args...)
	return err
}

func (c *CLI) Shutdown(ctx context.Context) error {
	_, err := c.Command(ctx, ":shutdown")
	return err
}

// Properties renders props as a management operation argument list.
func Properties(props map[string]string) string {
	parts := make([]string, 0, len(props))
	for _, k := range sortedKeys(props) {
		parts = append(parts, fmt.Sprintf("%s=%s", k, props[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry hands out one lock per server home.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: map[string]*sync.Mutex{}}
}

// Lock blocks until home is free. A nil registry does not lock.
func (r *Registry) Lock(home string) (unlock func()) {
	if r == nil {
		return func() {}
	}
	r.mu.Lock()
	l, ok := r.locks[home]
	if !ok {
		l = &sync.Mutex{}
		r.locks[home] = l
	}
	r.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Servers returns a factory of CLIs sharing the registry.
func (r *Registry) Servers(runner execrun.Runner, logger *log.Logger) component.ServerFactory {
	return func(home string, portOffset int) component.ServerControl {
		return &CLI{Home: home, PortOffset: portOffset, Runner: runner, Registry: r, Logger: logger}
	}
}

// InstallModule writes module.xml for m under modules/ and copies its jars
// next to it.
func (c *CLI) InstallModule(ctx context.Context, m component.Module) error {
	unlock := c.Registry.Lock(c.Home)
	defer unlock()

	dir := filepath.Join(append([]string{c.Home, "modules"}, append(strings.Split(m.Name, "."), "main")...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var names []string
	for _, src := range m.Resources {
		name := filepath.Base(src)
		if err := copyFile(src, filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("install module %s: %w", m.Name, err)
		}
		names = append(names, name)
	}
	content, err := moduleXML(m.Name, names, m.Dependencies)
	if err != nil {
		return fmt.Errorf("install module %s: %w", m.Name, err)
	}
	return os.WriteFile(filepath.Join(dir, "module.xml"), content, 0o644)
}

type moduleDescriptor struct {
	XMLName      xml.Name    `xml:"urn:jboss:module:1.3 module"`
	Name         string      `xml:"name,attr"`
	Resources    []moduleRef `xml:"resources>resource-root"`
	Dependencies []moduleRef `xml:"dependencies>module"`
}

type moduleRef struct {
	Path string `xml:"path,attr,omitempty"`
	Name string `xml:"name,attr,omitempty"`
}

func moduleXML(name string, resources, dependencies []string) ([]byte, error) {
	m := moduleDescriptor{Name: name}
	for _, r := range resources {
		m.Resources = append(m.Resources, moduleRef{Path: r})
	}
	for _, d := range dependencies {
		m.Dependencies = append(m.Dependencies, moduleRef{Name: d})
	}
	body, err := xml.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(append([]byte(xml.Header), body...), '\n'), nil
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0o644)
}
