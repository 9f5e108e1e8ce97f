package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/model"
)

// Scenario describes one synthetic post-processing workload.
//
// Each iteration feeds the detector a raw output tensor in which exactly
// Candidates records pass ScoreThreshold. Their boxes are grouped around
// Clusters centers so that NMS has overlapping work to do.
type Scenario struct {
	Name           string            `json:"name"`
	Model          model.Name        `json:"model"`
	InputSize      int               `json:"input_size"`
	NumClasses     int               `json:"num_classes"`
	Resolution     images.Resolution `json:"resolution"`
	Candidates     int               `json:"candidates"`
	Clusters       int               `json:"clusters"`
	ScoreThreshold float32           `json:"score_threshold"`
	IoUThreshold   float32           `json:"iou_threshold"`
	ClassAware     bool              `json:"class_aware"`
	Iterations     int               `json:"iterations"`
	WarmupRuns     int               `json:"warmup_runs"`
	Seed           int64             `json:"seed"`
}

// ScenarioBuilder helps build scenarios with a fluent API.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder holding a 640px yolov8 scenario on a
// 720p frame with 100 candidates in 10 clusters.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	res, _ := images.GetResolutionByType(images.ResolutionTypeHD720p)

	return &ScenarioBuilder{
		scenario: Scenario{
			Name:           name,
			Model:          model.ModelNameYOLOv8,
			InputSize:      640,
			NumClasses:     80,
			Resolution:     res,
			Candidates:     100,
			Clusters:       10,
			ScoreThreshold: 25,
			IoUThreshold:   0.45,
			Iterations:     100,
			WarmupRuns:     10,
			Seed:           1,
		},
	}
}

// WithModel sets the decoder and its input geometry.
func (sb *ScenarioBuilder) WithModel(name model.Name, inputSize, numClasses int) *ScenarioBuilder {
	sb.scenario.Model = name
	sb.scenario.InputSize = inputSize
	sb.scenario.NumClasses = numClasses
	return sb
}

// WithResolution sets the original frame size.
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithDensity sets how many candidates pass the threshold and how many
// clusters they are grouped into.
func (sb *ScenarioBuilder) WithDensity(candidates, clusters int) *ScenarioBuilder {
	sb.scenario.Candidates = candidates
	sb.scenario.Clusters = clusters
	return sb
}

// WithThresholds sets the score (0-100) and IoU (0-1) thresholds.
func (sb *ScenarioBuilder) WithThresholds(score, iou float32) *ScenarioBuilder {
	sb.scenario.ScoreThreshold = score
	sb.scenario.IoUThreshold = iou
	return sb
}

// WithClassAware toggles per-class suppression.
func (sb *ScenarioBuilder) WithClassAware(classAware bool) *ScenarioBuilder {
	sb.scenario.ClassAware = classAware
	return sb
}

// WithIterations sets the number of measured iterations.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of unmeasured iterations.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// WithSeed sets the seed of the synthetic tensor generator.
func (sb *ScenarioBuilder) WithSeed(seed int64) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related scenarios.
type ScenarioSet struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets.
type PredefinedScenarios struct{}

// GetQuickScenarios returns one small and one dense scenario per decoder.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0, 4)

	for _, name := range []model.Name{model.ModelNameYOLOv5, model.ModelNameYOLOv8} {
		for _, candidates := range []int{50, 1000} {
			scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("quick_%s_%d", name, candidates)).
				WithModel(name, 640, 80).
				WithDensity(candidates, 10).
				WithIterations(50).
				WithWarmupRuns(5).
				Build())
		}
	}

	return &ScenarioSet{
		Name:        "Quick Post-Processing Test",
		Description: "Sparse and dense frames for both decoders at 640x640",
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios runs the same workload against every
// camera resolution.
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(name model.Name) *ScenarioSet {
	scenarios := make([]Scenario, 0, len(images.CameraResolutions))

	for _, res := range images.CameraResolutions {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("resolution_%s_%dx%d", name, res.Width, res.Height)).
			WithModel(name, 640, 80).
			WithResolution(res).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Resolution Comparison - %s", name),
		Description: fmt.Sprintf("Maps %s detections back into each camera resolution", name),
		Scenarios:   scenarios,
	}
}

// GetDensityComparisonScenarios grows the candidate count across the
// parallel sort threshold.
func (ps *PredefinedScenarios) GetDensityComparisonScenarios(name model.Name) *ScenarioSet {
	densities := []int{10, 100, 1000, 4000, 8000}
	scenarios := make([]Scenario, 0, len(densities))

	for _, candidates := range densities {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("density_%s_%d", name, candidates)).
			WithModel(name, 640, 80).
			WithDensity(candidates, max(1, candidates/20)).
			WithIterations(20).
			WithWarmupRuns(2).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Density Comparison - %s", name),
		Description: fmt.Sprintf("Scales the number of %s candidates per frame", name),
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file.
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	return &scenarioSet, nil
}
