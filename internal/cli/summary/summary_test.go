package summary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/install"
)

func resolve(t *testing.T, entries ...component.Entry) *component.Set {
	t.Helper()
	env := component.Env{WorkDir: "/srv/stack", BinariesDir: "/srv/stack/[binaries]", OS: "linux", Arch: "amd64"}
	set, err := component.NewResolver(env).Resolve(entries)
	require.NoError(t, err)
	return set
}

func TestParametersOrderAndSkips(t *testing.T) {
	set := resolve(t,
		component.Entry{ID: "keycloak", Raw: "11.0.2"},
		component.Entry{ID: "wildfly", Raw: map[string]any{
			"version":          "20.0.1.Final",
			"systemProperties": map[string]any{"b.prop": "2", "a.prop": "1"},
		}},
	)
	var out bytes.Buffer
	layout := install.Layout{WorkDir: "/srv/stack", BinariesDir: "/srv/stack/[binaries]"}
	Parameters(&out, layout, set, []install.Repository{{URL: "https://example.com/app.git", Dir: "src"}})
	text := out.String()

	assert.True(t, strings.HasPrefix(text, "- Parameters\n"))
	order := []string{
		"Installation dir: /srv/stack",
		"Binaries dir: /srv/stack/[binaries]",
		"Wildfly",
		"version: 20.0.1.Final",
		"username: admin",
		"Xms: 64m",
		"systemProperties",
		"a.prop: 1",
		"b.prop: 2",
		"Keycloak",
		"portOffset: 1",
		"realm: master",
		"Repositories",
		"https://example.com/app.git (src)",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(text, want)
		require.GreaterOrEqual(t, i, 0, "missing %q in\n%s", want, text)
		assert.Greater(t, i, last, "%q out of order in\n%s", want, text)
		last = i
	}
	assert.NotContains(t, text, "jsonFile", "null values are skipped")
}

func TestParametersSkipsEmptyObjects(t *testing.T) {
	set := resolve(t, component.Entry{ID: "wildfly", Raw: "20.0.1.Final"})
	var out bytes.Buffer
	Parameters(&out, install.Layout{}, set, nil)
	assert.NotContains(t, out.String(), "systemProperties")
	assert.NotContains(t, out.String(), "Repositories")
	assert.Contains(t, out.String(), "debugPort: 8787")
}

func TestPlanListsPhases(t *testing.T) {
	set := resolve(t,
		component.Entry{ID: "wildfly", Raw: "20.0.1.Final"},
		component.Entry{ID: "jdbcPostgresql", Raw: "42.2.16"},
	)
	var out bytes.Buffer
	Plan(&out, install.BuildPlan(set.Descriptors, install.Layout{WorkDir: "/srv/stack", BinariesDir: "/srv/stack/bin"}))
	text := out.String()
	for _, want := range []string{
		"Downloading (2)",
		"JDBC PostgreSQL => https://jdbc.postgresql.org/download/postgresql-42.2.16.jar",
		"Running actions (4)",
		"1. Install module in Wildfly",
		"2. Add JDBC driver: postgresql",
		"Writing startup scripts (1)",
	} {
		assert.Contains(t, text, want)
	}
}

func TestPlanEmpty(t *testing.T) {
	var out bytes.Buffer
	Plan(&out, install.Plan{})
	assert.Contains(t, out.String(), "nothing to install")
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "5432", Format(float64(5432)))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "[a, 1.5]", Format([]any{"a", 1.5}))
}
