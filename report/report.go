// Package report renders comparison evidence to disk: the summary JSON, the
// structural-similarity difference heatmap and the template match overlay.
// It consumes Summary data only; the comparison engine never depends on it.
package report

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"visualgate/imageprocessor"
	"visualgate/logging"
	"visualgate/types"
	"visualgate/utils"

	"gocv.io/x/gocv"
)

// Artifacts lists the files a report produced.
type Artifacts struct {
	SummaryPath string                        `json:"summary"`
	DiffPath    string                        `json:"diff,omitempty"`
	OverlayPath string                        `json:"overlay,omitempty"`
	RefMetadata *imageprocessor.ImageMetadata `json:"ref_metadata,omitempty"`
}

// overlayColor is the rectangle drawn around the located template
var overlayColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// Write renders all artifacts for one comparison run into dir. Failures are
// logged and skipped; reporting never alters the verdict.
func Write(dir, refPath string, candidate gocv.Mat, summary types.Summary) (Artifacts, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return Artifacts{}, fmt.Errorf("cannot create report dir %s: %v", dir, err)
	}

	base := filepath.Base(refPath)
	artifacts := Artifacts{}

	for _, result := range summary.PerMethod {
		switch d := result.Details.(type) {
		case types.SSIMDetails:
			if d.DiffMap == nil {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("diff_ssim_%s.png", base))
			if err := writeDiffHeatmap(path, d); err != nil {
				logging.LogWarning("Failed to write diff heatmap: %v", err)
				continue
			}
			artifacts.DiffPath = path
		case types.TemplateDetails:
			path := filepath.Join(dir, fmt.Sprintf("template_%s.png", base))
			if err := writeTemplateOverlay(path, candidate, d); err != nil {
				logging.LogWarning("Failed to write template overlay: %v", err)
				continue
			}
			artifacts.OverlayPath = path
		}
	}

	// Metadata enriches the report; failures here are non-fatal
	if meta, err := imageprocessor.Metadata(refPath); err == nil {
		artifacts.RefMetadata = meta
	}

	summaryPath := filepath.Join(dir, fmt.Sprintf("summary_%s.json", base))
	if err := writeSummaryJSON(summaryPath, summary, artifacts); err != nil {
		return artifacts, err
	}
	artifacts.SummaryPath = summaryPath

	return artifacts, nil
}

// writeDiffHeatmap color-maps the per-pixel difference image (JET) and writes
// it as a PNG.
func writeDiffHeatmap(path string, details types.SSIMDetails) error {
	diff, err := gocv.ImageGrayToMatGray(details.DiffMap)
	if err != nil {
		return fmt.Errorf("diff map conversion: %v", err)
	}
	defer diff.Close()

	heatmap := gocv.NewMat()
	defer heatmap.Close()
	gocv.ApplyColorMap(diff, &heatmap, gocv.ColormapJet)

	if ok := gocv.IMWrite(path, heatmap); !ok {
		return fmt.Errorf("cannot write %s", path)
	}
	return nil
}

// writeTemplateOverlay draws the matched bounding box on a copy of the
// candidate image and writes it as a PNG.
func writeTemplateOverlay(path string, candidate gocv.Mat, details types.TemplateDetails) error {
	vis := candidate.Clone()
	defer vis.Close()

	gocv.Rectangle(&vis, details.Box, overlayColor, 2)

	if ok := gocv.IMWrite(path, vis); !ok {
		return fmt.Errorf("cannot write %s", path)
	}
	return nil
}

type summaryDocument struct {
	types.Summary
	Artifacts Artifacts `json:"artifacts"`
}

func writeSummaryJSON(path string, summary types.Summary, artifacts Artifacts) error {
	doc := summaryDocument{Summary: summary, Artifacts: artifacts}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal summary: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write summary %s: %v", path, err)
	}
	return nil
}
