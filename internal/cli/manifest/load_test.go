package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `cwd: install
binaries_dir: downloads
binaries:
  wildfly: 20.0.1.Final
  jdbcPostgresql:
    version: 42.2.16
repositories:
  - url: https://example.com/app.git
    cwd: src
deploy:
  port: 10090
`

func TestLoadLocalConfigResolvesAgainstFileDir(t *testing.T) {
	temp := t.TempDir()
	path := filepath.Join(temp, "appstack.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Paths.WorkDir != filepath.Join(temp, "install") {
		t.Fatalf("unexpected work dir: %s", loaded.Paths.WorkDir)
	}
	if loaded.Layout().BinariesDir != filepath.Join(temp, "install", "downloads") {
		t.Fatalf("unexpected binaries dir: %s", loaded.Layout().BinariesDir)
	}
	entries := loaded.Entries()
	if len(entries) != 2 || entries[0].ID != "wildfly" || entries[1].ID != "jdbcPostgresql" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if loaded.Config.Deploy.Port != 10090 || loaded.Config.Deploy.Host != "localhost" {
		t.Fatalf("unexpected deploy: %+v", loaded.Config.Deploy)
	}
	repos := loaded.Repositories()
	if len(repos) != 1 || repos[0].Dir != "src" {
		t.Fatalf("unexpected repositories: %+v", repos)
	}
	if raw, ok := loaded.Raw("wildfly"); !ok || raw != "20.0.1.Final" {
		t.Fatalf("unexpected raw wildfly: %#v", raw)
	}
}

func TestLoadRemoteConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleConfig))
	}))
	defer srv.Close()

	loaded, err := Load(context.Background(), srv.URL+"/appstack.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cwd, _ := os.Getwd()
	if loaded.BaseDir != cwd {
		t.Fatalf("expected base dir %s, got %s", cwd, loaded.BaseDir)
	}
}

func TestLoadRemoteConfigHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Load(context.Background(), srv.URL+"/appstack.yaml"); err == nil || !strings.Contains(err.Error(), "status=404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("binaries: {}\ninstall_dir: x\n")); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Cwd != "." || len(cfg.Binaries) != 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
