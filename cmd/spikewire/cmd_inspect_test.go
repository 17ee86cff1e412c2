package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestMatrix(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ee.wmat")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectCmd_Table(t *testing.T) {
	clearEnv(t)
	path := writeTestMatrix(t, "% ee\n4 4 4\n1 1 0.5\n2 1 0.5\n3 2 0.5\n4 2 0.5\n")

	out, err := runCmd(t, newInspectCmd(), path, "--skip-groups", "3")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"4 synapses", "4 -> 2 neurons", "13..15 (3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCmd_JSON(t *testing.T) {
	clearEnv(t)
	path := writeTestMatrix(t, "4 4 2\n1 1 0.5\n2 3 0.25\n")

	out, err := runCmd(t, newInspectCmd(), path, "--pre-size", "4", "--post-size", "4", "--json")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	var got struct {
		PreSize  int `json:"pre_size"`
		PostSize int `json:"post_size"`
		Stats    struct {
			Synapses   int     `json:"synapses"`
			WeightMean float64 `json:"weight_mean"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.PreSize != 4 || got.PostSize != 4 || got.Stats.Synapses != 2 || got.Stats.WeightMean != 0.375 {
		t.Errorf("inspect = %+v", got)
	}
}

func TestInspectCmd_Errors(t *testing.T) {
	clearEnv(t)
	malformed := writeTestMatrix(t, "4 4 1\n1 1\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{filepath.Join(t.TempDir(), "none.wmat")}, "not found"},
		{"malformed", []string{malformed}, "malformed"},
		{"declared size too small", []string{writeTestMatrix(t, "4 4 1\n4 4 1\n"), "--pre-size", "2"}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, newInspectCmd(), tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
