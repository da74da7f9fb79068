package cmd

import (
	"testing"
)

func TestApplyColorMode(t *testing.T) {
	withoutColors(t)
	origMode := colorMode
	t.Cleanup(func() { colorMode = origMode })

	colorMode = "always"
	applyColorMode()
	if colorRed == "" {
		t.Error("applyColorMode(\"always\") should enable colors")
	}

	colorMode = "never"
	applyColorMode()
	if colorRed != "" {
		t.Error("applyColorMode(\"never\") should disable colors")
	}
}

func TestApplyColorMode_AutoPipe(t *testing.T) {
	withoutColors(t)
	origMode := colorMode
	t.Cleanup(func() { colorMode = origMode })

	enableColors()
	colorMode = "auto"
	captureStdout(t, applyColorMode)

	if colorRed != "" {
		t.Error("applyColorMode(\"auto\") should disable colors when stdout is not a TTY")
	}
}

func TestShouldDisableColors_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when NO_COLOR is set")
	}
}

func TestShouldDisableColors_TermDumb(t *testing.T) {
	t.Setenv("TERM", "dumb")
	t.Setenv("NO_COLOR", "")
	if !shouldDisableColors() {
		t.Error("shouldDisableColors should return true when TERM=dumb")
	}
}

func withTermWidthIoctl(t *testing.T, w int) {
	t.Helper()
	old := termWidthIoctl
	termWidthIoctl = func() int { return w }
	t.Cleanup(func() { termWidthIoctl = old })
}

func TestTerminalWidth(t *testing.T) {
	tests := []struct {
		name    string
		columns string
		ioctl   int
		want    int
	}{
		{"from env", "120", 0, 120},
		{"env wins over ioctl", "100", 90, 100},
		{"ioctl", "", 132, 132},
		{"invalid env falls through", "notanumber", 0, 80},
		{"fallback", "", 0, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COLUMNS", tt.columns)
			withTermWidthIoctl(t, tt.ioctl)
			if got := terminalWidth(); got != tt.want {
				t.Errorf("terminalWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}
