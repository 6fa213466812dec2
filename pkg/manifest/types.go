package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the installation configuration in appstack.yaml.
type Config struct {
	Cwd          string       `yaml:"cwd"`
	BinariesDir  string       `yaml:"binaries_dir"`
	ScriptsDir   string       `yaml:"scripts_dir"`
	Binaries     Binaries     `yaml:"binaries"`
	Repositories []Repository `yaml:"repositories"`
	Deploy       Deploy       `yaml:"deploy"`
}

// Binary is one configured component. Raw is either a version string or an
// options mapping.
type Binary struct {
	ID  string
	Raw any
}

// Binaries keeps the components in file order.
type Binaries []Binary

// UnmarshalYAML decodes the binaries mapping preserving key order. Scalar
// values and version fields stay strings so 4.4 is not read as a float.
func (b *Binaries) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: binaries must be a mapping", node.Line)
	}
	seen := map[string]bool{}
	out := make(Binaries, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: binary %q defined twice", key.Line, key.Value)
		}
		seen[key.Value] = true

		raw, err := decodeBinary(value)
		if err != nil {
			return fmt.Errorf("binaries.%s: %w", key.Value, err)
		}
		out = append(out, Binary{ID: key.Value, Raw: raw})
	}
	*b = out
	return nil
}

func decodeBinary(node *yaml.Node) (any, error) {
	if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
		return node.Value, nil
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	if node.Kind == yaml.MappingNode {
		m, ok := raw.(map[string]any)
		if !ok {
			return raw, nil
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "version" && node.Content[i+1].Kind == yaml.ScalarNode {
				m["version"] = node.Content[i+1].Value
			}
		}
	}
	return raw, nil
}

// Repository is a git repository cloned after installation.
type Repository struct {
	URL string `yaml:"url"`
	Cwd string `yaml:"cwd"`
}

// Deploy addresses the management interface of a running Wildfly.
type Deploy struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Dir      string `yaml:"dir"`
	// Home is the Wildfly installation whose jboss-cli.sh is used. Defaults
	// to the configured wildfly component.
	Home string `yaml:"home"`
}
