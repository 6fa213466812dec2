package component

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pirakansa/appstack/internal/cli/shared"
)

func testEnv(t *testing.T) (Env, *fakeServers, *fakeRunner) {
	t.Helper()
	servers := newFakeServers()
	runner := &fakeRunner{}
	work := t.TempDir()
	env := Env{
		WorkDir:     work,
		BinariesDir: work + "/[binaries]",
		OS:          "linux",
		Arch:        "amd64",
		Runner:      runner,
		Servers:     servers.Factory,
		Now:         func() time.Time { return time.Date(2020, 9, 1, 12, 0, 0, 0, time.UTC) },
		GraceTick:   time.Millisecond,
	}
	return env, servers, runner
}

func resolve(t *testing.T, env Env, entries ...Entry) (*Set, error) {
	t.Helper()
	return NewResolver(env).Resolve(entries)
}

func TestResolveExpandsShorthandAndDefaults(t *testing.T) {
	env, _, _ := testEnv(t)
	set, err := resolve(t, env, Entry{ID: "wildfly", Raw: "20.0.1.Final"})
	require.NoError(t, err)
	require.Len(t, set.Descriptors, 1)

	d := set.Descriptors[0]
	assert.Equal(t, "Wildfly", d.Name)
	assert.Equal(t, KindWildfly, d.Kind)
	assert.True(t, d.Install)
	assert.Equal(t, "wildfly-20.0.1.Final", d.DirectoryName)
	assert.Equal(t, "wildfly-20.0.1.Final.zip", d.ArchiveFilename)
	assert.Equal(t, "https://download.jboss.org/wildfly/20.0.1.Final/wildfly-20.0.1.Final.zip", d.DownloadURL)
	assert.True(t, d.IsArchive)
	assert.Equal(t, "20.0.1.Final", d.Options.String("version"))
	assert.Equal(t, "admin", d.Options.String("username"))
	assert.Equal(t, 8787, d.Options.Int("debugPort"))
	assert.Equal(t, "2048m", d.Options.String("Xmx"))
	require.NotNil(t, d.StartupScript)
	assert.Equal(t, "startWildfly.sh", d.StartupScript.Filename)
	assert.Equal(t, "sh wildfly-20.0.1.Final/bin/standalone.sh -Djboss.socket.binding.port-offset=0 --debug 8787", d.StartupScript.Content)
}

func TestResolveSortsByPriority(t *testing.T) {
	env, _, _ := testEnv(t)
	set, err := resolve(t, env,
		Entry{ID: "jdbcPostgresql", Raw: "42.2.16"},
		Entry{ID: "postgresql", Raw: "12.4-1"},
		Entry{ID: "mongodbDbTools", Raw: "100.1.1"},
		Entry{ID: "mongodb", Raw: "4.4.1"},
		Entry{ID: "keycloakWildflyAdapter", Raw: "11.0.2"},
		Entry{ID: "keycloak", Raw: "11.0.2"},
		Entry{ID: "wildfly", Raw: "20.0.1.Final"},
	)
	require.NoError(t, err)

	var names []string
	for _, d := range set.Descriptors {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"Wildfly", "Keycloak", "Keycloak Wildfly Adapter", "MongoDB",
		"MongoDB DB Tools", "PostgreSQL", "JDBC PostgreSQL",
	}, names)
	assert.Equal(t, []string{
		"jdbcPostgresql", "postgresql", "mongodbDbTools", "mongodb",
		"keycloakWildflyAdapter", "keycloak", "wildfly",
	}, set.IDs)
}

func TestResolveUnknownComponent(t *testing.T) {
	env, _, _ := testEnv(t)
	_, err := resolve(t, env, Entry{ID: "wildfly", Raw: "20"}, Entry{ID: "tomcat", Raw: "9"})
	var unknown *UnknownComponentError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "tomcat", unknown.ID)
}

func TestResolveMissingDependency(t *testing.T) {
	tests := []struct {
		name     string
		entries  []Entry
		id       string
		requires string
	}{
		{
			name:     "adapter without wildfly",
			entries:  []Entry{{ID: "keycloakWildflyAdapter", Raw: "11.0.2"}},
			id:       "keycloakWildflyAdapter",
			requires: "wildfly",
		},
		{
			name:     "driver without wildfly",
			entries:  []Entry{{ID: "jdbcPostgresql", Raw: "42.2.16"}},
			id:       "jdbcPostgresql",
			requires: "wildfly",
		},
		{
			name: "datasource without database",
			entries: []Entry{
				{ID: "wildfly", Raw: "20.0.1.Final"},
				{ID: "jdbcPostgresql", Raw: map[string]any{
					"version":    "42.2.16",
					"dataSource": map[string]any{"name": "MyDS", "jndiName": "java:/MyDS"},
				}},
			},
			id:       "jdbcPostgresql",
			requires: "postgresql",
		},
		{
			name:     "tools without mongodb",
			entries:  []Entry{{ID: "mongodbDbTools", Raw: "100.1.1"}},
			id:       "mongodbDbTools",
			requires: "mongodb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := testEnv(t)
			_, err := resolve(t, env, tt.entries...)
			var depErr *DependencyError
			require.True(t, errors.As(err, &depErr), "got %v", err)
			assert.Equal(t, tt.id, depErr.ID)
			assert.Equal(t, tt.requires, depErr.Requires)
			assert.Contains(t, err.Error(), tt.id)
			assert.Contains(t, err.Error(), tt.requires)
		})
	}
}

func TestResolveDriverWithoutDataSourceNeedsNoDatabase(t *testing.T) {
	env, _, _ := testEnv(t)
	set, err := resolve(t, env,
		Entry{ID: "wildfly", Raw: "20.0.1.Final"},
		Entry{ID: "jdbcPostgresql", Raw: "42.2.16"},
	)
	require.NoError(t, err)
	d, ok := set.Get("jdbcPostgresql")
	require.True(t, ok)
	assert.False(t, d.IsArchive)
	assert.Empty(t, d.DirectoryName)
	require.Len(t, d.Actions, 2)
	assert.Equal(t, "Install module in Wildfly", d.Actions[0].Name)
	assert.Equal(t, "Add JDBC driver: postgresql", d.Actions[1].Name)
}

func TestResolveSchemaViolations(t *testing.T) {
	env, _, _ := testEnv(t)
	_, err := resolve(t, env, Entry{ID: "mongodb", Raw: map[string]any{
		"version":   "4.4.1",
		"port":      "27017",
		"replicaOf": "other",
	}})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr), "got %v", err)
	assert.Equal(t, "mongodb", valErr.ID)
	require.Len(t, valErr.Violations, 2)

	fields := []string{valErr.Violations[0].Field, valErr.Violations[1].Field}
	assert.Contains(t, fields, "mongodb")
	assert.Contains(t, fields, "mongodb.port")
	assert.Contains(t, err.Error(), "replicaOf")
}

func TestResolveMissingVersion(t *testing.T) {
	env, _, _ := testEnv(t)
	_, err := resolve(t, env, Entry{ID: "postgresql", Raw: map[string]any{"port": 5433}})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Len(t, valErr.Violations, 1)
	assert.Contains(t, valErr.Violations[0].Message, "version")
}

func TestResolveRejectsNonStringShorthand(t *testing.T) {
	env, _, _ := testEnv(t)
	_, err := resolve(t, env, Entry{ID: "mongodb", Raw: 4.4})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
}

func TestResolveRejectsUnusableDigest(t *testing.T) {
	env, _, _ := testEnv(t)
	for _, digest := range []string{"sha1:abcd", "sha256:abcdef"} {
		_, err := resolve(t, env, Entry{ID: "wildfly", Raw: map[string]any{"version": "1.0", "digest": digest}})
		var valErr *ValidationError
		require.True(t, errors.As(err, &valErr), "%s: got %v", digest, err)
		require.Len(t, valErr.Violations, 1)
		assert.Equal(t, "wildfly.digest", valErr.Violations[0].Field)
	}

	set, err := resolve(t, env, Entry{ID: "wildfly", Raw: map[string]any{
		"version": "1.0",
		"digest":  "sha256:" + shared.SHA256Hex([]byte("wildfly")),
	}})
	require.NoError(t, err)
	d, _ := set.Get("wildfly")
	assert.Equal(t, "sha256:"+shared.SHA256Hex([]byte("wildfly")), d.Digest)
}

func TestResolveInstallFalseStaysAvailableAsDependency(t *testing.T) {
	env, _, _ := testEnv(t)
	set, err := resolve(t, env,
		Entry{ID: "wildfly", Raw: "20.0.1.Final"},
		Entry{ID: "postgresql", Raw: map[string]any{"version": "12.4-1", "install": false, "port": 5433}},
		Entry{ID: "jdbcPostgresql", Raw: map[string]any{
			"version":    "42.2.16",
			"dataSource": map[string]any{"name": "MyDS", "jndiName": "java:/MyDS"},
		}},
	)
	require.NoError(t, err)

	var installable []string
	for _, d := range set.Installable() {
		installable = append(installable, d.ID)
	}
	assert.Equal(t, []string{"wildfly", "jdbcPostgresql"}, installable)

	opts := set.Options()
	require.Contains(t, opts, "postgresql")
	assert.Equal(t, false, opts["postgresql"]["install"])

	jdbc, _ := set.Get("jdbcPostgresql")
	require.Len(t, jdbc.Actions, 3)
	assert.Equal(t, "Add datasource: MyDS", jdbc.Actions[2].Name)
}

func TestResolveBuildsSharedDependencyOnce(t *testing.T) {
	env, _, _ := testEnv(t)
	r := NewResolver(env)
	set, err := r.Resolve([]Entry{
		{ID: "keycloakWildflyAdapter", Raw: "11.0.2"},
		{ID: "jdbcPostgresql", Raw: "42.2.16"},
		{ID: "wildfly", Raw: "20.0.1.Final"},
	})
	require.NoError(t, err)
	wildfly, ok := set.Get("wildfly")
	require.True(t, ok)
	assert.Same(t, wildfly, r.built["wildfly"])
	assert.Len(t, set.Descriptors, 3)

	adapter, _ := set.Get("keycloakWildflyAdapter")
	assert.Equal(t, wildfly.DirectoryName, adapter.ExtractTarget)
	assert.Empty(t, adapter.DirectoryName)
}

func TestResolveDuplicateID(t *testing.T) {
	env, _, _ := testEnv(t)
	_, err := resolve(t, env, Entry{ID: "wildfly", Raw: "20"}, Entry{ID: "wildfly", Raw: "21"})
	require.Error(t, err)
}

func TestSortedKeysPresentationOrder(t *testing.T) {
	env, _, _ := testEnv(t)
	set, err := resolve(t, env, Entry{ID: "wildfly", Raw: map[string]any{
		"version":          "20.0.1.Final",
		"systemProperties": map[string]any{"a": "b"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"version", "install", "portOffset", "debugPort", "username", "password",
		"Xms", "Xmx", "MetaspaceSize", "MaxMetaspaceSize", "systemProperties",
	}, set.Descriptors[0].SortedKeys())
}

func TestKeycloakExportActions(t *testing.T) {
	env, _, _ := testEnv(t)
	d, err := KeycloakExport(map[string]any{"version": "11.0.2", "realm": "demo"}, env)
	require.NoError(t, err)
	require.Len(t, d.Actions, 2)
	assert.Equal(t, "Start service with json export", d.Actions[0].Name)
	assert.Equal(t, "Stop service", d.Actions[1].Name)
	assert.Equal(t, "realm.json", d.Options.String("jsonFile"))
}
