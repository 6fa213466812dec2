package component

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/task"
)

const postgresDir = "pgsql"

func newPostgreSQL(id string, opts Options, env Env) *Descriptor {
	filename := postgresFilename(opts.String("version"), env)
	home := env.path(postgresDir)
	dataDir := filepath.Join(home, "data")
	port := fmt.Sprintf("-p %d", opts.Int("port"))
	pgctl := filepath.Join(home, "bin", "pg_ctl")

	d := &Descriptor{
		ID:              id,
		Kind:            KindPostgreSQL,
		Name:            KindPostgreSQL.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DirectoryName:   postgresDir,
		DownloadURL:     "http://get.enterprisedb.com/postgresql/" + filename,
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		DeclaredOrder:   declaredOrder(KindPostgreSQL),
		StartupScript: &Script{
			Filename: "startPostgresql.sh",
			Content: shellLine(postgresDir+"/bin/pg_ctl", "-D", postgresDir+"/data", "-o", port, "start") +
				"\nread -r -d ''",
		},
	}

	start := func(ctx context.Context, report task.Reporter) (any, error) {
		_, err := env.Runner.Run(ctx, execrun.Command{Name: pgctl, Args: []string{"-D", dataDir, "-o", port, "start"}})
		return nil, err
	}

	db := opts.String("db")
	d.Actions = []Action{
		{
			Name: "Initializing database cluster in /data dir",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, initDatabaseCluster(ctx, home, opts, env)
			},
		},
		{
			Name: "Start service",
			Run:  task.Grace(start, task.Countdown{Seconds: 1, Tick: env.GraceTick}, nil),
		},
		{
			Name: "Create database: " + db,
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				conn := fmt.Sprintf("user=%s dbname=postgres password=%s port=%d",
					opts.String("username"), opts.String("password"), opts.Int("port"))
				_, err := env.Runner.Run(ctx, execrun.Command{
					Name: filepath.Join(home, "bin", "psql"),
					Args: []string{"-c", "CREATE DATABASE " + db, conn},
				})
				return nil, err
			},
		},
		{
			Name: "Stop service",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				_, err := env.Runner.Run(ctx, execrun.Command{Name: pgctl, Args: []string{"-D", dataDir, "stop"}})
				return nil, err
			},
		},
	}
	return d
}

func postgresFilename(version string, env Env) string {
	arch := ""
	if env.Arch == "amd64" {
		arch = "-x64"
	}
	switch env.OS {
	case "windows":
		return fmt.Sprintf("postgresql-%s-windows%s-binaries.zip", version, arch)
	case "darwin":
		return fmt.Sprintf("postgresql-%s-osx-binaries.zip", version)
	default:
		return fmt.Sprintf("postgresql-%s-linux%s-binaries.tar.gz", version, arch)
	}
}

// initDatabaseCluster runs initdb with the superuser password passed through
// a temporary file that is removed afterwards.
func initDatabaseCluster(ctx context.Context, home string, opts Options, env Env) (err error) {
	pwFile := filepath.Join(home, "tmpPassFile")
	if err := os.WriteFile(pwFile, []byte(opts.String("password")), 0o600); err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(pwFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}()

	_, err = env.Runner.Run(ctx, execrun.Command{
		Name: filepath.Join(home, "bin", "initdb"),
		Args: []string{
			"-D", filepath.Join(home, "data"),
			"-U", opts.String("username"),
			"-E", "UTF8",
			"-A", "md5",
			"--pwfile=" + pwFile,
		},
	})
	return err
}
