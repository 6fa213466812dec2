package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	pkgmanifest "github.com/pirakansa/appstack/pkg/manifest"
	"gopkg.in/yaml.v3"

	"github.com/pirakansa/appstack/internal/component"
	"github.com/pirakansa/appstack/internal/install"
)

// Loaded is a parsed configuration together with the directory its relative
// paths resolve against.
type Loaded struct {
	Config  *Config
	BaseDir string
	Paths   Paths
}

// Load reads a local or remote configuration. A remote configuration
// resolves relative paths against the process working directory.
func Load(ctx context.Context, location string) (*Loaded, error) {
	var (
		content []byte
		baseDir string
		err     error
	)
	if IsRemoteConfigLocation(location) {
		content, err = readRemoteConfig(ctx, location)
		if err != nil {
			return nil, err
		}
		if baseDir, err = os.Getwd(); err != nil {
			return nil, err
		}
	} else {
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, err
		}
		if content, err = os.ReadFile(abs); err != nil {
			return nil, err
		}
		baseDir = filepath.Dir(abs)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return &Loaded{Config: cfg, BaseDir: baseDir, Paths: pkgmanifest.ResolvePaths(cfg, baseDir)}, nil
}

// Parse decodes, normalizes and validates content. Unknown keys are errors.
func Parse(content []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	pkgmanifest.NormalizeConfig(&cfg)
	if err := pkgmanifest.ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func IsRemoteConfigLocation(value string) bool {
	return pkgmanifest.IsRemoteConfigLocation(value)
}

// Entries returns the configured components in file order.
func (l *Loaded) Entries() []component.Entry {
	entries := make([]component.Entry, len(l.Config.Binaries))
	for i, b := range l.Config.Binaries {
		entries[i] = component.Entry{ID: b.ID, Raw: b.Raw}
	}
	return entries
}

// Raw returns the configured value of the component id.
func (l *Loaded) Raw(id string) (any, bool) {
	for _, b := range l.Config.Binaries {
		if b.ID == id {
			return b.Raw, true
		}
	}
	return nil, false
}

// Layout returns the installation directories.
func (l *Loaded) Layout() install.Layout {
	return install.Layout{
		WorkDir:     l.Paths.WorkDir,
		BinariesDir: l.Paths.BinariesDir,
		ScriptsDir:  l.Paths.ScriptsDir,
	}
}

// Repositories returns the clone specifications.
func (l *Loaded) Repositories() []install.Repository {
	repos := make([]install.Repository, len(l.Config.Repositories))
	for i, r := range l.Config.Repositories {
		repos[i] = install.Repository{URL: r.URL, Dir: r.Cwd}
	}
	return repos
}

func readRemoteConfig(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("load config failed: %s status=%d", location, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
