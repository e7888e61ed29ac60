package cmd

import (
	"strings"
	"testing"

	"github.com/iksnae/iris-session/testutil"
)

func TestConfigSetAPI(t *testing.T) {
	dir := isolate(t)
	cfgPath := dir + "/custom/config.yaml"

	mustExecute(t, nil, "--config", cfgPath, "config", "set-api", "https://iris.example.org/iris")

	out := mustExecute(t, nil, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, `"apiRoot": "https://iris.example.org/iris"`) {
		t.Errorf("config show = %q", out)
	}
	if !strings.Contains(out, `"backend": "sqlite"`) {
		t.Errorf("config show should list the default backend, got %q", out)
	}
}

func TestConfigSetAPI_DefaultLocation(t *testing.T) {
	isolate(t)

	mustExecute(t, nil, "config", "set-api", "https://iris.example.org/iris")

	out := mustExecute(t, nil, "config", "show")
	if !strings.Contains(out, "https://iris.example.org/iris") {
		t.Errorf("config show = %q", out)
	}
}

func TestConfigSetAPI_Invalid(t *testing.T) {
	dir := isolate(t)
	cfgPath := dir + "/config.yaml"

	if _, err := executeWith(t, nil, "--config", cfgPath, "config", "set-api", "not a url"); err == nil {
		t.Error("a relative api root should be refused")
	}
	if _, err := executeWith(t, nil, "--config", cfgPath, "config", "show"); err == nil {
		t.Error("the config file should not have been written")
	}
}

func TestConfigShow_Overrides(t *testing.T) {
	_, base := setupIRIS(t)
	t.Setenv("IRIS_TIMEOUT", "90s")

	out := mustExecute(t, base, "--api", "https://other.example.org/iris", "config", "show")
	if !strings.Contains(out, `"apiRoot": "https://other.example.org/iris"`) {
		t.Errorf("--api should win over the config file, got %q", out)
	}
	if !strings.Contains(out, `"timeout": "1m30s"`) {
		t.Errorf("IRIS_TIMEOUT should win over the config file, got %q", out)
	}
}

func TestConfigSetAPI_KeepsFileSettings(t *testing.T) {
	dir := isolate(t)
	cfgPath := testutil.WriteConfigFixture(t, dir, "https://old.example.org/iris")
	t.Setenv("IRIS_TIMEOUT", "90s")

	mustExecute(t, nil, "--config", cfgPath, "config", "set-api", "https://new.example.org/iris")

	t.Setenv("IRIS_TIMEOUT", "")
	out := mustExecute(t, nil, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, `"timeout": "5s"`) {
		t.Errorf("environment overrides must not be saved, got %q", out)
	}
	if !strings.Contains(out, "new.example.org") {
		t.Errorf("config show = %q", out)
	}
}
