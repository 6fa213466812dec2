package component

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pirakansa/appstack/internal/cli/execrun"
	"github.com/pirakansa/appstack/internal/cli/shared"
	"github.com/pirakansa/appstack/internal/task"
)

func newWildfly(id string, opts Options, env Env) *Descriptor {
	version := opts.String("version")
	filename := fmt.Sprintf("wildfly-%s.zip", version)
	dir := stripExtension(filename)
	offset := opts.Int("portOffset")
	username, password := opts.String("username"), opts.String("password")
	home := env.path(dir)

	d := &Descriptor{
		ID:              id,
		Kind:            KindWildfly,
		Name:            KindWildfly.Name(),
		Options:         opts,
		Install:         opts.Bool("install", true),
		DirectoryName:   dir,
		DownloadURL:     fmt.Sprintf("https://download.jboss.org/wildfly/%s/%s", version, filename),
		ArchiveFilename: filename,
		Digest:          opts.String("digest"),
		IsArchive:       true,
		DeclaredOrder:   declaredOrder(KindWildfly),
		StartupScript: &Script{
			Filename: "startWildfly.sh",
			Content: shellLine("sh", dir+"/bin/standalone.sh",
				portOffsetFlag(offset),
				"--debug", strconv.Itoa(opts.Int("debugPort"))),
		},
	}

	d.Actions = []Action{
		{
			Name: fmt.Sprintf("Add user: %s / %s", username, password),
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, env.Servers(home, offset).AddUser(ctx, username, password)
			},
		},
		{
			Name: "Increase memory in standalone.conf",
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				return nil, increaseMemory(filepath.Join(home, "bin", "standalone.conf"), opts, env)
			},
		},
	}

	props := opts.Map("systemProperties")
	if len(props) > 0 {
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		d.Actions = append(d.Actions, Action{
			Name: "Add system properties: " + strings.Join(names, ", "),
			Run: func(ctx context.Context, report task.Reporter) (any, error) {
				srv := env.Servers(home, offset)
				for _, name := range names {
					if err := srv.AddSystemProperty(ctx, name, props[name]); err != nil {
						return nil, err
					}
				}
				return nil, nil
			},
		})
	}
	return d
}

// increaseMemory rewrites the JVM memory defaults of standalone.conf after
// keeping a timestamped copy of the original.
func increaseMemory(confFile string, opts Options, env Env) error {
	info, err := os.Stat(confFile)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(confFile)
	if err != nil {
		return err
	}
	if err := shared.BackupFile(confFile, content, shared.BackupTimestamp, env.now()); err != nil {
		return fmt.Errorf("backup %s: %w", confFile, err)
	}
	replacer := strings.NewReplacer(
		"-Xms64m", "-Xms"+opts.String("Xms"),
		"-Xmx512m", "-Xmx"+opts.String("Xmx"),
		"-XX:MetaspaceSize=96M", "-XX:MetaspaceSize="+opts.String("MetaspaceSize"),
		"-XX:MaxMetaspaceSize=256m", "-XX:MaxMetaspaceSize="+opts.String("MaxMetaspaceSize"),
	)
	return os.WriteFile(confFile, []byte(replacer.Replace(string(content))), info.Mode().Perm())
}

func portOffsetFlag(offset int) string {
	return fmt.Sprintf("-Djboss.socket.binding.port-offset=%d", offset)
}

// shellLine joins words into one bash command line.
func shellLine(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = execrun.Quote(w)
	}
	return strings.Join(quoted, " ")
}
