package settings

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	return &Store{
		GlobalDir: filepath.Join(root, "home", GlobalDirName),
		LocalDir:  root,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	global := Props{}
	global.Set("defaults", "contrib", "/srv/contrib")
	global.Set("defaults", "format", "json")
	if err := s.Save(global, true); err != nil {
		t.Fatal(err)
	}

	local := Props{}
	local.Set("defaults", "format", "yaml")
	local.Set("aws", "region", "ap-northeast-1")
	if err := s.Save(local, false); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	want := Props{
		"defaults": {"contrib": "/srv/contrib", "format": "yaml"},
		"aws":      {"region": "ap-northeast-1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong merged settings (-want +got):\n%s", diff)
	}

	scoped, err := s.LoadScope(true)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(global, scoped); diff != "" {
		t.Errorf("wrong global settings (-want +got):\n%s", diff)
	}
}

func TestStoreGet(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get("defaults", "contrib", "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if got != "fallback" {
		t.Errorf("Get with no files = %q; want the default", got)
	}

	s.Env.Contrib = "/from/env"
	got, err = s.Get("defaults", "contrib", "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/from/env" {
		t.Errorf("Get = %q; want the environment override", got)
	}
}

func TestLoadScopeNonStringValues(t *testing.T) {
	s := newTestStore(t)
	src := "[defaults]\nretries = 3\nverbose = true\n"
	if err := ioutil.WriteFile(s.Path(false), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadScope(false)
	if err != nil {
		t.Fatal(err)
	}
	want := Props{"defaults": {"retries": "3", "verbose": "true"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong settings (-want +got):\n%s", diff)
	}
}

func TestLoadScopeInvalid(t *testing.T) {
	s := newTestStore(t)
	if err := ioutil.WriteFile(s.Path(false), []byte("[defaults\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadScope(false); err == nil {
		t.Fatal("no error for an invalid file")
	}
}

func TestLoadScopeNotAFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.Mkdir(s.Path(false), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("defaults", "contrib", "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if got != "fallback" {
		t.Errorf("Get = %q; want the default", got)
	}
}

func TestLoadScopeLegacyINI(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.GlobalDir, 0755); err != nil {
		t.Fatal(err)
	}
	src := "[defaults]\ncontrib = /opt/contrib\n"
	if err := ioutil.WriteFile(s.Path(true), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadScope(true)
	if err != nil {
		t.Fatal(err)
	}
	want := Props{"defaults": {"contrib": "/opt/contrib"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong settings (-want +got):\n%s", diff)
	}

	// Saving rewrites the file as TOML.
	if err := s.Save(got, true); err != nil {
		t.Fatal(err)
	}
	var raw map[string]map[string]string
	if _, err := toml.DecodeFile(s.Path(true), &raw); err != nil {
		t.Fatalf("saved file is not TOML: %s", err)
	}
	if diff := cmp.Diff(map[string]map[string]string(want), raw); diff != "" {
		t.Errorf("wrong saved file (-want +got):\n%s", diff)
	}
}

func TestPropsKeysAndDelete(t *testing.T) {
	p := Props{}
	p.Set("b", "y", "1")
	p.Set("a", "x", "2")
	p.Set("b", "z", "3")

	if diff := cmp.Diff([]string{"a.x", "b.y", "b.z"}, p.Keys()); diff != "" {
		t.Errorf("wrong keys (-want +got):\n%s", diff)
	}

	p.Delete("a", "x")
	if _, ok := p["a"]; ok {
		t.Error("empty section was not removed")
	}
	if _, ok := p.Get("a", "x"); ok {
		t.Error("deleted key is still present")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("AWS_VAPOR_CONTRIB", "/opt/recipes")
	t.Setenv("AWS_VAPOR_LOG_LEVEL", "debug")

	got, err := LoadEnv()
	if err != nil {
		t.Fatal(err)
	}
	want := Env{Contrib: "/opt/recipes", LogLevel: "debug"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong environment (-want +got):\n%s", diff)
	}
}
