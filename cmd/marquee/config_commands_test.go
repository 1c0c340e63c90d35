package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Overrides loaded: 0")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestConfigValidateRejectsBrokenOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	overrides := filepath.Join(env.baseDir, "overrides.json")
	if err := os.WriteFile(overrides, []byte(`[{"show_id":"x","outlet":"NYT","critic":"A","score":140}]`), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	env.writeConfig(t, "\n[reference]\noverrides_path = \""+overrides+"\"\n")

	if _, _, err := runCLI(t, []string{"config", "validate"}, env.configPath); err == nil {
		t.Fatal("expected validation error for out-of-range override")
	}
}
