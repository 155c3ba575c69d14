package main

import (
	"testing"

	"github.com/ludo-technologies/crev/domain"
)

func TestReviewCmd_FlagsExist(t *testing.T) {
	cmd := reviewCmd()

	expectedFlags := []string{
		"format", "json", "output", "config", "min-severity",
		"category", "ext", "third-party", "providers", "detailed",
		"fail-on", "concurrency",
	}
	for _, flagName := range expectedFlags {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestReviewCmd_ShortFlags(t *testing.T) {
	cmd := reviewCmd()

	shortFlags := map[string]string{
		"f": "format",
		"o": "output",
		"c": "config",
	}

	for short, long := range shortFlags {
		flag := cmd.Flags().ShorthandLookup(short)
		if flag == nil {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestReviewCmd_NoArgsError(t *testing.T) {
	cmd := reviewCmd()
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Error("Expected error when no target specified")
	}
}

func TestParseFailOn(t *testing.T) {
	tests := []struct {
		value   string
		want    domain.IssueSeverity
		wantErr bool
	}{
		{"", "", false},
		{"critical", domain.SeverityCritical, false},
		{"HIGH", domain.SeverityHigh, false},
		{"info", domain.SeverityInfo, false},
		{"sev", "", true},
		{"warning", "", true},
		{"0", "", true},
	}
	for _, tt := range tests {
		got, err := parseFailOn(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseFailOn(%q) should be rejected", tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseFailOn(%q) unexpected error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseFailOn(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestReviewExitError_Error(t *testing.T) {
	err := &ReviewExitError{Code: 1, Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("Error() should return message, got '%s'", err.Error())
	}
}

func TestProvidersCmd_Subcommands(t *testing.T) {
	cmd := providersCmd()

	expected := []string{"list", "set-config", "enable", "disable", "test"}
	for _, name := range expected {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Missing subcommand: %s", name)
		}
	}
}

func TestProvidersSetConfigCmd_FlagsExist(t *testing.T) {
	cmd := providersSetConfigCmd()

	for _, flagName := range []string{"api-key", "endpoint", "timeout", "retries"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	if cmd.Flags().Lookup("full") == nil {
		t.Error("Missing expected flag: --full")
	}
}
