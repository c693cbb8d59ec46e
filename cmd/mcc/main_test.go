package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunExitCodes(t *testing.T) {
	good := t.TempDir()
	if err := os.WriteFile(filepath.Join(good, "main.mcc"), []byte("/say hi\n"), 0644); err != nil {
		t.Fatal(err)
	}
	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "main.mcc"), []byte("}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, 0},
		{"success", []string{"-o", t.TempDir(), good}, 0},
		{"compile error", []string{"-o", t.TempDir(), bad}, 1},
		{"unknown flag", []string{"--headless"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("exit code = %d, want %d\nstderr: %s", got, tt.want, stderr.String())
			}
			if tt.want != 0 && !strings.Contains(stderr.String(), "Error:") {
				t.Errorf("stderr = %q, want an error message", stderr.String())
			}
		})
	}
}
