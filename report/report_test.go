package report

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"visualgate/types"

	"gocv.io/x/gocv"
)

func TestWriteProducesSummaryAndOverlays(t *testing.T) {
	dir := t.TempDir()

	candidate := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer candidate.Close()

	diffMap := image.NewGray(image.Rect(0, 0, 160, 120))
	for i := range diffMap.Pix {
		diffMap.Pix[i] = uint8(i % 256)
	}

	summary := types.Summary{
		PerMethod: []types.ComparisonResult{
			{
				Method:  types.MethodStructuralSimilarity,
				Score:   0.99,
				Passed:  true,
				Details: types.SSIMDetails{DiffMap: diffMap},
			},
			{
				Method: types.MethodTemplateLocalization,
				Score:  0.97,
				Passed: true,
				Details: types.TemplateDetails{
					Box:       image.Rect(10, 10, 60, 60),
					TemplateW: 50,
					TemplateH: 50,
				},
			},
		},
		Best:       types.ComparisonResult{Method: types.MethodStructuralSimilarity, Score: 0.99, Passed: true},
		Thresholds: types.DefaultThresholds(),
	}

	artifacts, err := Write(dir, "refs/login.png", candidate, summary)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if artifacts.SummaryPath == "" {
		t.Fatal("summary path missing")
	}
	data, err := os.ReadFile(artifacts.SummaryPath)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if _, ok := doc["per_method"]; !ok {
		t.Error("summary JSON missing per_method")
	}

	if artifacts.DiffPath == "" {
		t.Error("diff heatmap path missing")
	} else if _, err := os.Stat(artifacts.DiffPath); err != nil {
		t.Errorf("diff heatmap not written: %v", err)
	}

	if artifacts.OverlayPath == "" {
		t.Error("overlay path missing")
	} else if _, err := os.Stat(artifacts.OverlayPath); err != nil {
		t.Errorf("overlay not written: %v", err)
	}
}

func TestWriteSkipsMissingEvidence(t *testing.T) {
	dir := t.TempDir()

	candidate := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer candidate.Close()

	summary := types.Summary{
		PerMethod: []types.ComparisonResult{
			{Method: types.MethodExact, Score: 0.0, Passed: false, Details: types.ExactDetails{MismatchedValues: 3}},
			{Method: types.MethodStructuralSimilarity, Score: 0.0, Passed: false, Details: types.ErrorDetails{Message: "degenerate"}},
		},
		Best:       types.ComparisonResult{Method: types.MethodExact, Score: 0.0, Passed: false},
		Thresholds: types.DefaultThresholds(),
	}

	artifacts, err := Write(dir, "refs/x.png", candidate, summary)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if artifacts.DiffPath != "" {
		t.Error("diff path set without SSIM evidence")
	}
	if artifacts.OverlayPath != "" {
		t.Error("overlay path set without template evidence")
	}
	if _, err := os.Stat(filepath.Join(dir, "summary_x.png.json")); err != nil {
		t.Errorf("summary not written: %v", err)
	}
}
