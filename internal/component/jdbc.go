package component

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pirakansa/appstack/internal/task"
)

const (
	postgresModule     = "org.postgresql"
	postgresDriverName = "postgresql"
	postgresXAClass    = "org.postgresql.xa.PGXADataSource"
)

func newJDBC(id string, opts Options, wildfly, postgres *Descriptor, env Env) *Descriptor {
	version := opts.String("version")
	filename := fmt.Sprintf("postgresql-%s.jar", version)
	home := env.path(wildfly.DirectoryName)
	offset := wildfly.Options.Int("portOffset")

	d := &Descriptor{
		ID:              id,
		Kind:            KindJDBCPostgreSQL,
		Name:            KindJDBCPostgreSQL.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DownloadURL:     fmt.Sprintf("https://jdbc.postgresql.org/download/%s", filename),
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		DeclaredOrder:   declaredOrder(KindJDBCPostgreSQL),
	}

	d.Actions = []Action{
		{
			Name: "Install module in Wildfly",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, env.Servers(home, offset).InstallModule(ctx, Module{
					Name:         postgresModule,
					Resources:    []string{filepath.Join(env.BinariesDir, filename)},
					Dependencies: []string{"javax.api", "javax.transaction.api"},
				})
			},
		},
		{
			Name: "Add JDBC driver: " + postgresDriverName,
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, env.Servers(home, offset).AddJDBCDriver(ctx, postgresDriverName, map[string]string{
					"driver-name":                     postgresDriverName,
					"driver-module-name":              postgresModule,
					"driver-xa-datasource-class-name": postgresXAClass,
				})
			},
		},
	}

	if ds := opts.Object("dataSource"); ds != nil && postgres != nil {
		name := ds.String("name")
		props := dataSourceProperties(ds, postgres.Options)
		d.Actions = append(d.Actions, Action{
			Name: "Add datasource: " + name,
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, env.Servers(home, offset).AddDataSource(ctx, name, props)
			},
		})
	}
	return d
}

// dataSourceProperties points the datasource at the configured PostgreSQL.
// Credentials fall back to the database superuser.
func dataSourceProperties(ds, postgres Options) map[string]string {
	user, password := ds.String("user"), ds.String("password")
	if user == "" {
		user = postgres.String("username")
	}
	if password == "" {
		password = postgres.String("password")
	}
	return map[string]string{
		"jndi-name":      ds.String("jndiName"),
		"driver-name":    postgresDriverName,
		"connection-url": fmt.Sprintf("jdbc:postgresql://localhost:%d/%s", postgres.Int("port"), postgres.String("db")),
		"user-name":      user,
		"password":       password,
	}
}
