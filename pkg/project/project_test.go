package project

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/zurustar/mccompiled/pkg/fileutil"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    *Config
		wantErr string
	}{
		{
			name: "full",
			yaml: "name: demo\nnamespace: demo_pack\nentities: bp/entities\nfeatures: [tests, dummies]\nglobal_holder: \"#state\"\n",
			want: &Config{
				Name:         "demo",
				Namespace:    "demo_pack",
				Entities:     "bp/entities",
				Features:     []string{"tests", "dummies"},
				GlobalHolder: "#state",
			},
		},
		{
			name: "defaults",
			yaml: "name: demo\n",
			want: &Config{Name: "demo", Namespace: DefaultNamespace, GlobalHolder: DefaultGlobalHolder},
		},
		{
			name: "empty document",
			yaml: "",
			want: Default(),
		},
		{name: "unknown key", yaml: "nmespace: x\n", wantErr: "field nmespace not found"},
		{name: "bad namespace", yaml: "namespace: My Pack\n", wantErr: "invalid namespace"},
		{name: "holder with space", yaml: "global_holder: a b\n", wantErr: "invalid global_holder"},
		{name: "duplicate feature", yaml: "features: [tests, tests]\n", wantErr: "listed twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := fileutil.NewTreeFS(fstest.MapFS{
		"src/MCC.yaml": {Data: []byte("namespace: found\n")},
	}, "src")
	c, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Namespace != "found" {
		t.Errorf("Namespace = %q, want found", c.Namespace)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(fileutil.NewRealFS(t.TempDir()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("Load (-want +got):\n%s", diff)
	}
}
