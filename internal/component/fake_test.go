package component

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pirakansa/appstack/internal/cli/execrun"
)

const (
	waitFor   = 2 * time.Second
	pollEvery = time.Millisecond
)

type fakeServer struct {
	mu    sync.Mutex
	calls []string
	// startBlocks makes Start wait for ctx like a foreground server.
	startBlocks bool
	fail        map[string]error
}

func (s *fakeServer) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	for prefix, err := range s.fail {
		if strings.HasPrefix(call, prefix) {
			return err
		}
	}
	return nil
}

func (s *fakeServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func csv(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + props[k]
	}
	return strings.Join(parts, ", ")
}

func (s *fakeServer) AddUser(ctx context.Context, username, password string) error {
	return s.record("add-user " + username + " " + password)
}

func (s *fakeServer) AddKeycloakUser(ctx context.Context, username, password string) error {
	return s.record("add-keycloak-user " + username + " " + password)
}

func (s *fakeServer) AddSystemProperty(ctx context.Context, name, value string) error {
	return s.record("system-property " + name + "=" + value)
}

func (s *fakeServer) AddJDBCDriver(ctx context.Context, name string, props map[string]string) error {
	return s.record("jdbc-driver " + name + "(" + csv(props) + ")")
}

func (s *fakeServer) AddDataSource(ctx context.Context, name string, props map[string]string) error {
	return s.record("data-source " + name + "(" + csv(props) + ")")
}

func (s *fakeServer) SecureDeployment(ctx context.Context, name string, props map[string]string) error {
	return s.record("secure-deployment " + name + "(" + csv(props) + ")")
}

func (s *fakeServer) InstallModule(ctx context.Context, m Module) error {
	return s.record("module " + m.Name + " " + strings.Join(m.Resources, ","))
}

func (s *fakeServer) RunFile(ctx context.Context, file string) error {
	return s.record("file " + file)
}

func (s *fakeServer) Start(ctx context.Context, props map[string]string) error {
	if err := s.record("start(" + csv(props) + ")"); err != nil {
		return err
	}
	if s.startBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	return s.record("shutdown")
}

type fakeServers struct {
	mu      sync.Mutex
	servers map[string]*fakeServer
	offsets map[string]int
	newFn   func() *fakeServer
}

func newFakeServers() *fakeServers {
	return &fakeServers{servers: map[string]*fakeServer{}, offsets: map[string]int{}}
}

func (f *fakeServers) Factory(home string, portOffset int) ServerControl {
	return f.get(home, portOffset)
}

func (f *fakeServers) get(home string, portOffset int) *fakeServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.servers[home]
	if !ok {
		s = &fakeServer{}
		if f.newFn != nil {
			s = f.newFn()
		}
		f.servers[home] = s
	}
	f.offsets[home] = portOffset
	return s
}

type fakeRunner struct {
	mu       sync.Mutex
	commands []execrun.Command
	hook     func(execrun.Command) error
}

func (r *fakeRunner) Run(ctx context.Context, c execrun.Command) (string, error) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		if err := hook(c); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("ran %s", c.Name), nil
}

func (r *fakeRunner) Commands() []execrun.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]execrun.Command(nil), r.commands...)
}
