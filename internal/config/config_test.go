package config

import "testing"

func TestLoadWithNoArgsReturnsDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := Defaults()
	if cfg != want {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load([]string{"/nonexistent/path/to/config.ini"}); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
