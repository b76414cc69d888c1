package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"valid", "0.85", 0.85, false},
		{"zero", "0", 0.0, false},
		{"one", "1", 1.0, false},
		{"negative", "-0.2", 0.9, true},
		{"too large", "1.5", 0.9, true},
		{"garbage", "abc", 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThreshold(tt.input, 0.9)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseThreshold(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"valid", "25", 25, false},
		{"zero", "0", 0, false},
		{"negative", "-3", 12, true},
		{"garbage", "xyz", 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount(tt.input, 12)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b", "c")

	if err := EnsureDir(target); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("target is not a directory")
	}

	// Creating an existing directory is a no-op
	if err := EnsureDir(target); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}

	// Blank paths are ignored
	if err := EnsureDir("  "); err != nil {
		t.Errorf("EnsureDir on blank path: %v", err)
	}
}

func TestParseArguments(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"visualgate", "compare", "--ref=./refs/login.png", "--screenshot", "shot.png", "--debug"}

	args := ParseArguments()

	if args["command"] != "compare" {
		t.Errorf("command = %q, want compare", args["command"])
	}
	if args["ref"] != "./refs/login.png" {
		t.Errorf("ref = %q, want ./refs/login.png", args["ref"])
	}
	if args["screenshot"] != "shot.png" {
		t.Errorf("screenshot = %q, want shot.png", args["screenshot"])
	}
	if args["debug"] != "true" {
		t.Errorf("debug = %q, want true", args["debug"])
	}
}
