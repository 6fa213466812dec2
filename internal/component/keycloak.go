package component

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pirakansa/appstack/internal/task"
)

const (
	startGraceSeconds = 10
	stopGraceSeconds  = 1
)

func newKeycloak(id string, opts Options, env Env, export bool) *Descriptor {
	version := opts.String("version")
	filename := fmt.Sprintf("keycloak-%s.zip", version)
	dir := stripExtension(filename)
	offset := opts.Int("portOffset")
	username, password := opts.String("username"), opts.String("password")
	home := env.path(dir)

	d := &Descriptor{
		ID:              id,
		Kind:            KindKeycloak,
		Name:            KindKeycloak.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DirectoryName:   dir,
		DownloadURL:     fmt.Sprintf("https://downloads.jboss.org/keycloak/%s/%s", version, filename),
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		DeclaredOrder:   declaredOrder(KindKeycloak),
		StartupScript: &Script{
			Filename: "startKeycloak.sh",
			Content:  shellLine("sh", dir+"/bin/standalone.sh", portOffsetFlag(offset)),
		},
	}

	jsonFile := opts.String("jsonFile")
	migrate := func(action string) Action {
		return migrationAction(home, offset, action, jsonFile, opts.String("realm"), env)
	}
	if export {
		d.Actions = []Action{migrate("export"), stopServiceAction(home, offset, env)}
		return d
	}

	d.Actions = []Action{{
		Name: fmt.Sprintf("Add user: %s / %s", username, password),
		Run: func(ctx context.Context, report task.Reporter) (any, error) {
			return nil, env.Servers(home, offset).AddKeycloakUser(ctx, username, password)
		},
	}}
	if jsonFile != "" {
		d.Actions = append(d.Actions, migrate("import"), stopServiceAction(home, offset, env))
	}
	return d
}

// migrationAction starts the server with a single file realm import or export
// and resolves with the file's base name once the start grace period passed.
func migrationAction(home string, offset int, action, jsonFile, realm string, env Env) Action {
	props := map[string]string{
		"keycloak.migration.action":   action,
		"keycloak.migration.provider": "singleFile",
		"keycloak.migration.file":     jsonFile,
	}
	if action == "import" {
		props["keycloak.migration.strategy"] = "OVERWRITE_EXISTING"
	} else {
		props["keycloak.migration.realmName"] = realm
	}
	start := func(ctx context.Context, report task.Reporter) (any, error) {
		return nil, env.Servers(home, offset).Start(ctx, props)
	}
	return Action{
		Name: fmt.Sprintf("Start service with json %s", action),
		Run: task.Grace(start,
			task.Countdown{Seconds: startGraceSeconds, Tick: env.GraceTick},
			filepath.Base(jsonFile)),
	}
}

func stopServiceAction(home string, offset int, env Env) Action {
	shutdown := func(ctx context.Context, report task.Reporter) (any, error) {
		return nil, env.Servers(home, offset).Shutdown(ctx)
	}
	return Action{
		Name: "Stop service",
		Run:  task.Delay(shutdown, task.Countdown{Seconds: stopGraceSeconds, Tick: env.GraceTick}),
	}
}
