package component

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/pirakansa/appstack/internal/task"
)

func newMongoDB(id string, opts Options, env Env) *Descriptor {
	version := opts.String("version")
	osName, filename, dir := mongoNames(version, opts.String("linuxDist"), env.OS)
	home := env.path(dir)

	return &Descriptor{
		ID:              id,
		Kind:            KindMongoDB,
		Name:            KindMongoDB.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DirectoryName:   dir,
		DownloadURL:     fmt.Sprintf("https://fastdl.mongodb.org/%s/%s", osName, filename),
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		DeclaredOrder:   declaredOrder(KindMongoDB),
		StartupScript: &Script{
			Filename: "startMongodb.sh",
			Content: shellLine(dir+"/bin/mongod",
				"--dbpath="+dir+"/data",
				"--port", strconv.Itoa(opts.Int("port"))),
		},
		Actions: []Action{{
			Name: "Creating database /data directory",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, os.Mkdir(filepath.Join(home, "data"), 0o755)
			},
		}},
	}
}

func mongoNames(version, linuxDist, goos string) (osName, filename, dir string) {
	switch goos {
	case "windows":
		return "windows",
			fmt.Sprintf("mongodb-windows-x86_64-%s.zip", version),
			fmt.Sprintf("mongodb-win32-x86_64-windows-%s", version)
	case "darwin":
		filename = fmt.Sprintf("mongodb-macos-x86_64-%s.tgz", version)
		return "osx", filename, stripExtension(filename)
	default:
		filename = fmt.Sprintf("mongodb-linux-x86_64-%s-%s.tgz", linuxDist, version)
		return "linux", filename, stripExtension(filename)
	}
}

func newMongoDBTools(id string, opts Options, mongo *Descriptor, env Env) *Descriptor {
	filename := mongoToolsFilename(opts.String("version"), opts.String("linuxDist"), env.OS)
	dir := stripExtension(filename)
	home := env.path(dir)
	target := env.path(mongo.DirectoryName, "bin")

	return &Descriptor{
		ID:              id,
		Kind:            KindMongoDBTools,
		Name:            KindMongoDBTools.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DirectoryName:   dir,
		DownloadURL:     "https://fastdl.mongodb.org/tools/db/" + filename,
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		DeclaredOrder:   declaredOrder(KindMongoDBTools),
		Actions: []Action{{
			Name: "Moving content to MongoDB/bin directory",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				if err := moveTree(ctx, filepath.Join(home, "bin"), target); err != nil {
					return nil, err
				}
				return nil, os.RemoveAll(home)
			},
		}},
	}
}

func mongoToolsFilename(version, linuxDist, goos string) string {
	switch goos {
	case "windows":
		return fmt.Sprintf("mongodb-database-tools-windows-x86_64-%s.zip", version)
	case "darwin":
		return fmt.Sprintf("mongodb-database-tools-macos-x86_64-%s.zip", version)
	default:
		return fmt.Sprintf("mongodb-database-tools-%s-x86_64-%s.tgz", linuxDist, version)
	}
}

// moveTree moves source to dest. Directories are merged entry by entry with
// the entries moved concurrently.
func moveTree(ctx context.Context, source, dest string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return os.Rename(source, dest)
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return moveTree(gctx, filepath.Join(source, e.Name()), filepath.Join(dest, e.Name()))
		})
	}
	return g.Wait()
}
