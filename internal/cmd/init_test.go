package cmd

import (
	"strings"
	"testing"
)

func TestInitScripts(t *testing.T) {
	tests := []struct {
		shell    string
		required []string
	}{
		{"bash", []string{"cdm.bash", "cdr()", "cdf()", "cdp()", "goahead()", "PROMPT_COMMAND", "cdm history add"}},
		{"zsh", []string{"cdm.zsh", "cdr()", "goahead()", "add-zsh-hook chpwd", "cdm history add"}},
		{"fish", []string{"cdm.fish", "function cdr", "function goahead", "--on-variable PWD", "cdm history add"}},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out := captureStdout(t, func() {
				if err := runInit(initCmd, []string{tt.shell}); err != nil {
					t.Fatalf("runInit(%s) failed: %v", tt.shell, err)
				}
			})
			for _, req := range tt.required {
				if !strings.Contains(out, req) {
					t.Errorf("%s script missing %q", tt.shell, req)
				}
			}
		})
	}
}

func TestInitUnsupportedShell(t *testing.T) {
	if err := runInit(initCmd, []string{"tcsh"}); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
