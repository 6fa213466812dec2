package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pirakansa/appstack/internal/cli/manifest"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an appstack.yaml template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeIfNotExists(manifest.DefaultConfigFile, configTemplate()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "initialized:", manifest.DefaultConfigFile)
			return nil
		},
	}
}

func writeIfNotExists(path, content string) error {
	_, err := os.Stat(path)
	if err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func configTemplate() string {
	return `cwd: .
binaries_dir: "[binaries]"
scripts_dir: .
binaries:
  wildfly:
    version: 20.0.1.Final
    systemProperties: {}
  keycloak:
    version: 11.0.2
    jsonFile: null
  keycloakWildflyAdapter: 11.0.2
  postgresql:
    version: 12.4-1
    db: myDB
  jdbcPostgresql:
    version: 42.2.16
    dataSource:
      name: MyDS
      jndiName: java:/MyDS
  mongodb: 4.4.1
  mongodbDbTools: 100.2.0
repositories: []
deploy:
  host: localhost
  port: 9990
  username: admin
  password: password
  dir: wars
`
}
