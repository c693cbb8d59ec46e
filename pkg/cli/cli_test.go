package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		expected Config
	}{
		{
			name:     "デフォルト設定",
			args:     []string{},
			expected: Config{Paths: []string{"."}, Output: "out", LogLevel: "info"},
		},
		{
			name:     "複数のパス",
			args:     []string{"src", "extra/lib.mcc"},
			expected: Config{Paths: []string{"src", "extra/lib.mcc"}, Output: "out", LogLevel: "info"},
		},
		{
			name:     "出力先指定（短縮形）",
			args:     []string{"-o", "bp/functions", "src"},
			expected: Config{Paths: []string{"src"}, Output: "bp/functions", LogLevel: "info"},
		},
		{
			name:     "フラグが位置引数の後",
			args:     []string{"src", "--output=build", "-l", "debug"},
			expected: Config{Paths: []string{"src"}, Output: "build", LogLevel: "debug"},
		},
		{
			name:     "プロジェクト指定",
			args:     []string{"--project", "conf/mcc.yaml"},
			expected: Config{Paths: []string{"."}, Output: "out", Project: "conf/mcc.yaml", LogLevel: "info"},
		},
		{
			name:     "ヘルプ",
			args:     []string{"-h", "src"},
			expected: Config{Paths: []string{"src"}, Output: "out", LogLevel: "info", ShowHelp: true},
		},
		{
			name: "環境変数",
			env:  map[string]string{"MCC_OUTPUT": "env_out", "MCC_PROJECT": "p.yaml", "LOG_LEVEL": "WARN"},
			expected: Config{
				Paths: []string{"."}, Output: "env_out", Project: "p.yaml", LogLevel: "warn",
			},
		},
		{
			name:     "フラグが環境変数より優先",
			args:     []string{"-o", "flag_out", "--log-level", "info"},
			env:      map[string]string{"MCC_OUTPUT": "env_out", "LOG_LEVEL": "debug"},
			expected: Config{Paths: []string{"."}, Output: "flag_out", LogLevel: "info"},
		},
		{
			name:     "-- 以降は位置引数",
			args:     []string{"--", "-odd.mcc"},
			expected: Config{Paths: []string{"-odd.mcc"}, Output: "out", LogLevel: "info"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.args, env(tt.env))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, *got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"不正なログレベル", []string{"-l", "verbose"}, nil},
		{"環境変数の不正なログレベル", nil, map[string]string{"LOG_LEVEL": "loud"}},
		{"未知のフラグ", []string{"--timeout", "5"}, nil},
		{"空の出力先", []string{"-o", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse(tt.args, env(tt.env)); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)
	for _, want := range []string{"--output", "--project", "MCC_OUTPUT"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help does not mention %s", want)
		}
	}
}
