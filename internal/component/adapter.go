package component

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pirakansa/appstack/internal/task"
)

func newAdapter(id string, opts Options, wildfly *Descriptor, env Env) *Descriptor {
	version := opts.String("version")
	filename := fmt.Sprintf("keycloak-wildfly-adapter-dist-%s.zip", version)
	home := env.path(wildfly.DirectoryName)
	offset := wildfly.Options.Int("portOffset")

	d := &Descriptor{
		ID:              id,
		Kind:            KindKeycloakWildflyAdapter,
		Name:            KindKeycloakWildflyAdapter.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DownloadURL:     fmt.Sprintf("https://downloads.jboss.org/keycloak/%s/adapters/keycloak-oidc/%s", version, filename),
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		ExtractTarget:   wildfly.DirectoryName,
		DeclaredOrder:   declaredOrder(KindKeycloakWildflyAdapter),
	}

	d.Actions = []Action{{
		Name: "Install in Wildfly",
		Run: func(ctx context.Context, report task.Reporter) (any, error) {
			return nil, env.Servers(home, offset).RunFile(ctx, filepath.Join(home, "bin", "adapter-install-offline.cli"))
		},
	}}

	deployments := opts.Object("secureDeployments")
	for _, name := range deployments.Keys() {
		props := deployments.Map(name)
		d.Actions = append(d.Actions, Action{
			Name: "Secure deployment: " + name,
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, env.Servers(home, offset).SecureDeployment(ctx, name, props)
			},
		})
	}
	return d
}
