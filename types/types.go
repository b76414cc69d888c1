package types

import (
	"fmt"
	"image"
)

// Method identifies one of the comparison algorithms. The set is closed:
// every Method produces exactly one result per comparison run.
type Method int

const (
	MethodExact Method = iota
	MethodStructuralSimilarity
	MethodPerceptualHash
	MethodTemplateLocalization
	MethodFeatureGeometric

	// NumMethods is the number of comparison methods. Keep it last.
	NumMethods = int(iota)
)

// String returns the stable name used in reports and the run database.
func (m Method) String() string {
	switch m {
	case MethodExact:
		return "exact"
	case MethodStructuralSimilarity:
		return "structural_similarity"
	case MethodPerceptualHash:
		return "perceptual_hash"
	case MethodTemplateLocalization:
		return "template"
	case MethodFeatureGeometric:
		return "feature_geometric"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// MarshalText lets a Method serialize by name in JSON summaries.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Thresholds holds the pass criteria for each method. It is a value type:
// callers pass it into the aggregator per run, so concurrent comparisons with
// different thresholds cannot interfere.
type Thresholds struct {
	SSIM              float64 `json:"ssim"`
	PHash             float64 `json:"phash"`
	Template          float64 `json:"template"`
	FeatureRatio      float64 `json:"feature_ratio"`
	FeatureMinInliers int     `json:"feature_min_inliers"`
}

// DefaultThresholds returns thresholds tuned for near-pixel-identical UI
// renders that still tolerate anti-aliasing and minor resolution drift.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SSIM:              0.985,
		PHash:             0.90,
		Template:          0.95,
		FeatureRatio:      0.35,
		FeatureMinInliers: 12,
	}
}

// Details carries method-specific evidence for external reporting. The
// aggregator never reads it. One payload shape exists per method, so the
// compiler knows what evidence each method produces.
type Details interface {
	detailsKind() string
}

// ExactDetails reports how many samples differed after size normalization.
type ExactDetails struct {
	MismatchedValues int64 `json:"mismatched_values"`
}

// SSIMDetails holds the per-pixel difference visualization: 1-similarity,
// rescaled to the full 0-255 range using the map's own min and max.
type SSIMDetails struct {
	DiffMap *image.Gray `json:"-"`
}

// PHashDetails holds the raw fingerprints and their Hamming distance.
type PHashDetails struct {
	Distance      int    `json:"distance"`
	RefHash       string `json:"ref_hash"`
	CandidateHash string `json:"candidate_hash"`
}

// TemplateDetails holds the best-aligned position of the reference within the
// candidate, used externally to draw an overlay rectangle.
type TemplateDetails struct {
	Box       image.Rectangle `json:"box"`
	TemplateW int             `json:"template_w"`
	TemplateH int             `json:"template_h"`
}

// FeatureDetails holds keypoint and match counts from geometric verification.
type FeatureDetails struct {
	Inliers            int `json:"inliers"`
	GoodMatches        int `json:"good_matches"`
	RefKeypoints       int `json:"ref_keypoints"`
	CandidateKeypoints int `json:"candidate_keypoints"`
}

// ErrorDetails marks a method that could not evaluate its inputs. The method
// still produces a result (score 0, failed) so the summary stays complete.
type ErrorDetails struct {
	Message string `json:"error"`
}

func (ExactDetails) detailsKind() string    { return "exact" }
func (SSIMDetails) detailsKind() string     { return "ssim" }
func (PHashDetails) detailsKind() string    { return "phash" }
func (TemplateDetails) detailsKind() string { return "template" }
func (FeatureDetails) detailsKind() string  { return "feature" }
func (ErrorDetails) detailsKind() string    { return "error" }

// ComparisonResult is the outcome of one method for one image pair.
// Score is always in [0,1]; 1.0 means a perfect match.
type ComparisonResult struct {
	Method  Method  `json:"method"`
	Score   float64 `json:"score"`
	Passed  bool    `json:"passed"`
	Details Details `json:"details,omitempty"`
}

// Summary is the engine's sole output: one result per method, the selected
// best result, and the thresholds the run was judged against.
type Summary struct {
	PerMethod  []ComparisonResult `json:"per_method"`
	Best       ComparisonResult   `json:"best"`
	Thresholds Thresholds         `json:"thresholds"`
}
