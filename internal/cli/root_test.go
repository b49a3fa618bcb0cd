package cli

import (
	"testing"
)

func TestEnvStr(t *testing.T) {
	t.Setenv(envWorkspaceRoot, "/tmp/ws")
	if got := envStr(envWorkspaceRoot, "."); got != "/tmp/ws" {
		t.Errorf("envStr() = %q, want /tmp/ws", got)
	}

	t.Setenv(envWorkspaceRoot, "")
	if got := envStr(envWorkspaceRoot, "."); got != "." {
		t.Errorf("envStr() fallback = %q, want .", got)
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"3", 3},
		{"", 2},
		{"nope", 2},
		{"-1", -1},
	}
	for _, tt := range tests {
		t.Setenv(envMinOccurrences, tt.value)
		if got := envInt(envMinOccurrences, 2); got != tt.want {
			t.Errorf("envInt(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Setenv(envQuiet, tt.value)
		if got := envBool(envQuiet); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize("dependency", "dependencies", 1); got != "dependency" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize("dependency", "dependencies", 3); got != "dependencies" {
		t.Errorf("pluralize(3) = %q", got)
	}
}

func TestRelToRoot(t *testing.T) {
	if got := relToRoot("/ws", "/ws/api/Cargo.toml"); got != "api/Cargo.toml" {
		t.Errorf("relToRoot() = %q, want api/Cargo.toml", got)
	}
}
