package deploy

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirakansa/appstack/internal/jboss"
)

type fakeController struct {
	deployments []jboss.Deployment
	calls       []string
	failDeploy  error
}

func (f *fakeController) Deployments(ctx context.Context) ([]jboss.Deployment, error) {
	return f.deployments, nil
}

func (f *fakeController) Deploy(ctx context.Context, path, name, runtimeName string) error {
	f.calls = append(f.calls, "deploy "+name+" as "+runtimeName)
	return f.failDeploy
}

func (f *fakeController) Undeploy(ctx context.Context, name string, keepContent bool) error {
	call := "undeploy " + name
	if keepContent {
		call += " --keep-content"
	}
	f.calls = append(f.calls, call)
	return nil
}

func newDeployer(ctl Controller) (*Deployer, *bytes.Buffer) {
	var out bytes.Buffer
	return &Deployer{Controller: ctl, Out: &out, Logger: log.New(&bytes.Buffer{})}, &out
}

func TestRuntimeName(t *testing.T) {
	tests := map[string]string{
		"app-1.2.war":          "app.war",
		"my-shop-2.0.1.war":    "my-shop.war",
		"plain.war":            "plain.war",
		"service-SNAPSHOT.jar": "service",
	}
	for in, want := range tests {
		assert.Equal(t, want, RuntimeName(in), in)
	}
}

func TestFindWARsRecursive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deeper"), 0o755))
	for _, p := range []string{"shop-1.0.war", "README.md", "nested/admin-2.0.war", "nested/deeper/api-3.war"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, p), []byte("x"), 0o644))
	}

	wars, err := FindWARs(dir)
	require.NoError(t, err)
	var names []string
	for _, w := range wars {
		names = append(names, w.Name+"="+w.RuntimeName)
	}
	assert.Equal(t, []string{"admin-2.0.war=admin.war", "api-3.war=api.war", "shop-1.0.war=shop.war"}, names)
}

func TestFindConflict(t *testing.T) {
	existing := []jboss.Deployment{
		{Name: "shop-1.0.war", RuntimeName: "shop.war", Enabled: true},
		{Name: "admin-1.0.war", RuntimeName: "admin.war", Enabled: false},
	}

	c, ok := FindConflict(existing, War{Name: "shop-1.0.war", RuntimeName: "shop.war"})
	require.True(t, ok)
	assert.Equal(t, Undeploy, c.Action)

	c, ok = FindConflict(existing, War{Name: "shop-1.1.war", RuntimeName: "shop.war"})
	require.True(t, ok)
	assert.Equal(t, UndeployKeepContent, c.Action)
	assert.Equal(t, "shop-1.0.war", c.Deployment.Name)

	c, ok = FindConflict(existing, War{Name: "admin-1.1.war", RuntimeName: "admin.war"})
	require.True(t, ok)
	assert.Equal(t, Keep, c.Action)

	_, ok = FindConflict(existing, War{Name: "api-1.0.war", RuntimeName: "api.war"})
	assert.False(t, ok)
}

func TestDeployResolvesConflictsBeforeDeploying(t *testing.T) {
	ctl := &fakeController{deployments: []jboss.Deployment{
		{Name: "shop-1.0.war", RuntimeName: "shop.war", Enabled: true},
		{Name: "api-1.0.war", RuntimeName: "api.war", Enabled: true},
	}}
	d, out := newDeployer(ctl)
	err := d.Deploy(context.Background(), []War{
		{Path: "/w/shop-1.1.war", Name: "shop-1.1.war", RuntimeName: "shop.war"},
		{Path: "/w/api-1.0.war", Name: "api-1.0.war", RuntimeName: "api.war"},
		{Path: "/w/new-1.0.war", Name: "new-1.0.war", RuntimeName: "new.war"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"undeploy shop-1.0.war --keep-content",
		"deploy shop-1.1.war as shop.war",
		"undeploy api-1.0.war",
		"deploy api-1.0.war as api.war",
		"deploy new-1.0.war as new.war",
	}, ctl.calls)
	assert.Contains(t, out.String(), "runtime-name: shop.war")
}

func TestDeployStopsAtFirstFailure(t *testing.T) {
	ctl := &fakeController{failDeploy: errors.New("WFLYCTL0212: Duplicate resource")}
	d, _ := newDeployer(ctl)
	err := d.Deploy(context.Background(), []War{
		{Name: "a-1.war", RuntimeName: "a.war"},
		{Name: "b-1.war", RuntimeName: "b.war"},
	})
	require.ErrorContains(t, err, "Duplicate resource")
	assert.Len(t, ctl.calls, 1)
}

func TestUndeployDisabled(t *testing.T) {
	ctl := &fakeController{}
	d, _ := newDeployer(ctl)
	disabled := Disabled([]jboss.Deployment{
		{Name: "a.war", Enabled: true},
		{Name: "b.war", Enabled: false},
		{Name: "c.war", Enabled: false},
	})
	require.NoError(t, d.UndeployAll(context.Background(), disabled))
	assert.Equal(t, []string{"undeploy b.war", "undeploy c.war"}, ctl.calls)
}
