package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRouterFile(t *testing.T, dir, name, content string) {
	t.Helper()
	routerDir := filepath.Join(dir, "routers.d")
	if err := os.MkdirAll(routerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(routerDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testLoader(dir string) *Loader {
	return &Loader{Dir: dir, SkipOwnershipCheck: true}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeRouterFile(t, dir, "10-core.yaml", `
router:
  name: core
  host: 192.168.88.1
  username: api-admin
  password: secret
`)
	writeRouterFile(t, dir, "20-branch.yaml", `
router:
  name: branch
  host: 10.0.0.1
  username: api-admin
  password: secret
  port: 18728
  use_ssl: false
`)

	routers, err := testLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if routers.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", routers.Len())
	}

	t.Run("load order follows filenames", func(t *testing.T) {
		names := routers.Names()
		if names[0] != "core" || names[1] != "branch" {
			t.Errorf("Names() = %v", names)
		}
	})

	t.Run("default port", func(t *testing.T) {
		r, err := routers.Get("core")
		if err != nil {
			t.Fatal(err)
		}
		if r.Port != 8728 {
			t.Errorf("Port = %d, want 8728", r.Port)
		}
		if r.APIAddress() != "192.168.88.1:8728" {
			t.Errorf("APIAddress() = %q", r.APIAddress())
		}
		if r.SSHAddress() != "192.168.88.1:22" {
			t.Errorf("SSHAddress() = %q", r.SSHAddress())
		}
	})

	t.Run("explicit port kept", func(t *testing.T) {
		r, err := routers.Get("branch")
		if err != nil {
			t.Fatal(err)
		}
		if r.Port != 18728 {
			t.Errorf("Port = %d, want 18728", r.Port)
		}
	})

	t.Run("empty name returns first router", func(t *testing.T) {
		r, err := routers.Get("")
		if err != nil {
			t.Fatal(err)
		}
		if r.Name != "core" {
			t.Errorf("default router = %q, want core", r.Name)
		}
	})

	t.Run("unknown name lists available", func(t *testing.T) {
		_, err := routers.Get("missing")
		if err == nil {
			t.Fatal("Get(missing) should fail")
		}
		if !strings.Contains(err.Error(), "core") || !strings.Contains(err.Error(), "branch") {
			t.Errorf("error should list available routers: %v", err)
		}
	})
}

func TestLoader_SSLDefaultPort(t *testing.T) {
	dir := t.TempDir()
	writeRouterFile(t, dir, "core.yaml", `
router:
  name: core
  host: 192.168.88.1
  username: api-admin
  password: secret
  use_ssl: true
`)

	routers, err := testLoader(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := routers.Get("core")
	if r.Port != 8729 {
		t.Errorf("Port = %d, want 8729 for use_ssl", r.Port)
	}
}

func TestLoader_MissingDirectory(t *testing.T) {
	_, err := testLoader(t.TempDir()).Load()
	if err == nil {
		t.Fatal("Load() should fail without routers.d")
	}
	if !strings.Contains(err.Error(), "routers.d") {
		t.Errorf("error should name routers.d: %v", err)
	}
}

func TestLoader_SkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeRouterFile(t, dir, "10-bad.yaml", "not: a router\n")
	writeRouterFile(t, dir, "20-broken.yaml", "router: [\n")
	writeRouterFile(t, dir, "30-incomplete.yaml", `
router:
  name: incomplete
`)
	writeRouterFile(t, dir, "40-good.yaml", `
router:
  name: good
  host: 10.0.0.1
  username: api-admin
  password: x
`)

	routers, err := testLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if routers.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", routers.Len())
	}
	if routers.Names()[0] != "good" {
		t.Errorf("Names() = %v", routers.Names())
	}
}

func TestLoader_NoValidRouters(t *testing.T) {
	dir := t.TempDir()
	writeRouterFile(t, dir, "bad.yaml", "unrelated: true\n")

	if _, err := testLoader(dir).Load(); err == nil {
		t.Fatal("Load() should fail when no valid routers exist")
	}
}

func TestLoader_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeRouterFile(t, dir, "10-a.yaml", `
router:
  name: core
  host: 10.0.0.1
  username: first
  password: x
`)
	writeRouterFile(t, dir, "20-b.yaml", `
router:
  name: core
  host: 10.0.0.2
  username: second
  password: x
`)

	routers, err := testLoader(dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := routers.Get("core")
	if r.Username != "first" {
		t.Errorf("duplicate should keep earlier definition, got username %q", r.Username)
	}
}
