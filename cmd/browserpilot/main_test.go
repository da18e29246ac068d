package main

import "testing"

func TestBuildRootCmd_RegistersExpectedSubcommands(t *testing.T) {
	root := buildRootCmd()
	want := map[string]bool{"serve": false, "run": false, "trace": false, "doctor": false, "prefs": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestResolveDefaultConfigPath_FallsBackWhenUnset(t *testing.T) {
	t.Setenv("BROWSERPILOT_CONFIG", "")
	if got := resolveDefaultConfigPath(); got != "browserpilot.yaml" {
		t.Errorf("resolveDefaultConfigPath() = %q, want browserpilot.yaml", got)
	}
}

func TestResolveDefaultConfigPath_UsesEnvOverride(t *testing.T) {
	t.Setenv("BROWSERPILOT_CONFIG", "/tmp/custom.yaml")
	if got := resolveDefaultConfigPath(); got != "/tmp/custom.yaml" {
		t.Errorf("resolveDefaultConfigPath() = %q, want /tmp/custom.yaml", got)
	}
}
