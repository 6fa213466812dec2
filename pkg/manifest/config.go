package manifest

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	DefaultConfigFile     = "appstack.yaml"
	DefaultBinariesDir    = "[binaries]"
	DefaultDeployHost     = "localhost"
	DefaultManagementPort = 9990
)

// NormalizeConfig fills defaults.
func NormalizeConfig(cfg *Config) {
	if strings.TrimSpace(cfg.Cwd) == "" {
		cfg.Cwd = "."
	}
	if strings.TrimSpace(cfg.BinariesDir) == "" {
		cfg.BinariesDir = DefaultBinariesDir
	}
	if strings.TrimSpace(cfg.ScriptsDir) == "" {
		cfg.ScriptsDir = "."
	}
	if cfg.Repositories == nil {
		cfg.Repositories = []Repository{}
	}
	if cfg.Deploy.Host == "" {
		cfg.Deploy.Host = DefaultDeployHost
	}
	if cfg.Deploy.Port == 0 {
		cfg.Deploy.Port = DefaultManagementPort
	}
	if cfg.Deploy.Dir == "" {
		cfg.Deploy.Dir = "."
	}
}

func IsRemoteConfigLocation(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// ValidateConfig checks the parts of cfg not covered by component schemas.
func ValidateConfig(cfg *Config) error {
	for i, b := range cfg.Binaries {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("binaries[%d]: id is required", i)
		}
		if b.Raw == nil {
			return fmt.Errorf("binaries.%s: version or options are required", b.ID)
		}
	}
	for i, repo := range cfg.Repositories {
		if strings.TrimSpace(repo.URL) == "" {
			return fmt.Errorf("repositories[%d].url is required", i)
		}
		if filepath.IsAbs(repo.Cwd) || escapes(repo.Cwd) {
			return fmt.Errorf("repositories[%d].cwd must stay inside cwd: %q", i, repo.Cwd)
		}
	}
	if cfg.Deploy.Port < 0 || cfg.Deploy.Port > 65535 {
		return fmt.Errorf("deploy.port out of range: %d", cfg.Deploy.Port)
	}
	return nil
}

func escapes(rel string) bool {
	cleaned := filepath.Clean(rel)
	return cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator))
}

// Paths are the absolute directories derived from a Config.
type Paths struct {
	WorkDir     string
	BinariesDir string
	ScriptsDir  string
	DeployDir   string
}

// ResolvePaths resolves the configured directories. cwd is relative to
// baseDir, the others are relative to cwd.
func ResolvePaths(cfg *Config, baseDir string) Paths {
	work := resolve(baseDir, cfg.Cwd)
	return Paths{
		WorkDir:     work,
		BinariesDir: resolve(work, cfg.BinariesDir),
		ScriptsDir:  resolve(work, cfg.ScriptsDir),
		DeployDir:   resolve(work, cfg.Deploy.Dir),
	}
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
