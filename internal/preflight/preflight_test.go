package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hookclip/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentialDoesNotEchoValue(t *testing.T) {
	result := CheckCredential("key", "super-secret")
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if strings.Contains(result.Detail, "super-secret") {
		t.Fatalf("credential leaked into detail: %q", result.Detail)
	}
	if CheckCredential("key", "  ").Passed {
		t.Fatal("expected blank credential to fail")
	}
}

func TestCheckAsset_Local(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "logo.png")
	testsupport.WriteMedia(t, good)
	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if r := CheckAsset(context.Background(), "logo", good); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckAsset(context.Background(), "logo", empty); r.Passed {
		t.Fatal("expected empty file to fail")
	}
	if r := CheckAsset(context.Background(), "logo", filepath.Join(dir, "absent.png")); r.Passed {
		t.Fatal("expected missing file to fail")
	}
	if r := CheckAsset(context.Background(), "logo", dir); r.Passed {
		t.Fatal("expected directory to fail")
	}
}

func TestCheckAsset_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if r := CheckAsset(context.Background(), "logo", srv.URL+"/logo.png"); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	r := CheckAsset(context.Background(), "logo", srv.URL+"/missing.png")
	if r.Passed || !strings.Contains(r.Detail, "404") {
		t.Fatalf("expected 404 failure, got %+v", r)
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 9 {
		t.Fatalf("expected 9 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}

func TestRunAllFlagsMissingCredential(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries(), testsupport.WithAPIKeys("", "fpt"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Gemini API key" {
		t.Fatalf("expected only the gemini key to fail, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
