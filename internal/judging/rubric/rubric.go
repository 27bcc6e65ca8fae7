// Package rubric treats the scoring rubric (criterion list + weights) as a
// versioned configuration value rather than a compiled-in constant. Two
// rubric versions appear in production data; an event references exactly one
// by version string.
package rubric

import (
	"fmt"
	"math"

	id "tekfest/pkg/domain"
	dErrors "tekfest/pkg/domain-errors"
)

// Criterion is one scored dimension of a rubric. Scores are on a 0-100 scale.
type Criterion struct {
	Key    string
	Label  string
	Weight float64
}

// Rubric is a named, versioned set of criteria whose weights sum to 1.0.
type Rubric struct {
	Version  string
	Criteria []Criterion

	// CategorySources maps an award category to the criterion keys whose
	// per-criterion averages are summed to produce that category's suggested
	// score. The overall category always derives from the weighted overall
	// score and needs no entry.
	CategorySources map[id.WinnerCategory][]string
}

const weightTolerance = 1e-9

// Validate enforces the structural invariants: at least one criterion, unique
// non-empty keys, weights in (0,1], weights summing to 1.0.
func (r Rubric) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("rubric version cannot be empty")
	}
	if len(r.Criteria) == 0 {
		return fmt.Errorf("rubric %s has no criteria", r.Version)
	}
	seen := make(map[string]bool, len(r.Criteria))
	sum := 0.0
	for _, c := range r.Criteria {
		if c.Key == "" {
			return fmt.Errorf("rubric %s has a criterion with an empty key", r.Version)
		}
		if seen[c.Key] {
			return fmt.Errorf("rubric %s repeats criterion %q", r.Version, c.Key)
		}
		seen[c.Key] = true
		if c.Weight <= 0 || c.Weight > 1 {
			return fmt.Errorf("rubric %s criterion %q has weight %v outside (0,1]", r.Version, c.Key, c.Weight)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("rubric %s weights sum to %v, want 1.0", r.Version, sum)
	}
	for category, keys := range r.CategorySources {
		for _, key := range keys {
			if !seen[key] {
				return fmt.Errorf("rubric %s category %s references unknown criterion %q", r.Version, category, key)
			}
		}
	}
	return nil
}

// HasCriterion reports whether the rubric scores the given key.
func (r Rubric) HasCriterion(key string) bool {
	for _, c := range r.Criteria {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Registry resolves rubric versions. Immutable after construction, safe for
// concurrent reads.
type Registry struct {
	rubrics map[string]Rubric
}

// NewRegistry validates every rubric before accepting it.
func NewRegistry(rubrics ...Rubric) (*Registry, error) {
	byVersion := make(map[string]Rubric, len(rubrics))
	for _, r := range rubrics {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, ok := byVersion[r.Version]; ok {
			return nil, fmt.Errorf("duplicate rubric version %s", r.Version)
		}
		byVersion[r.Version] = r
	}
	return &Registry{rubrics: byVersion}, nil
}

// Get returns the rubric for a version.
func (reg *Registry) Get(version string) (Rubric, error) {
	r, ok := reg.rubrics[version]
	if !ok {
		return Rubric{}, dErrors.Newf(dErrors.CodeNotFound, "unknown rubric version %q", version)
	}
	return r, nil
}

// Builtin rubric versions observed across festival editions. Whether these are
// two eras of one competition or two sub-competitions is not established; both
// stay available and each event picks one.
const (
	VersionHackfestV1 = "hackfest-v1"
	VersionAIFestV1   = "aifest-v1"
)

// Builtin returns a registry with both shipped rubric versions.
func Builtin() *Registry {
	reg, err := NewRegistry(HackfestV1(), AIFestV1())
	if err != nil {
		// Shipped rubrics are validated by tests; failing here is a programming error.
		panic(err)
	}
	return reg
}

// HackfestV1 is the six-criterion weighted rubric.
func HackfestV1() Rubric {
	return Rubric{
		Version: VersionHackfestV1,
		Criteria: []Criterion{
			{Key: "relevance", Label: "Problem Relevance", Weight: 0.25},
			{Key: "mvp", Label: "MVP Completeness", Weight: 0.25},
			{Key: "technical", Label: "Technical Execution", Weight: 0.20},
			{Key: "creativity", Label: "Creativity", Weight: 0.10},
			{Key: "impact", Label: "Impact", Weight: 0.10},
			{Key: "presentation", Label: "Presentation", Weight: 0.10},
		},
		CategorySources: map[id.WinnerCategory][]string{
			id.WinnerProblemSolving:     {"relevance", "creativity"},
			id.WinnerTechnicalExecution: {"technical"},
			id.WinnerPresentation:       {"presentation"},
		},
	}
}

// AIFestV1 is the five-criterion equal-weight rubric.
func AIFestV1() Rubric {
	return Rubric{
		Version: VersionAIFestV1,
		Criteria: []Criterion{
			{Key: "system_functionality", Label: "System Functionality", Weight: 0.20},
			{Key: "ui_ux", Label: "UI/UX", Weight: 0.20},
			{Key: "backend_logic", Label: "Backend Logic", Weight: 0.20},
			{Key: "ai_performance", Label: "AI Performance", Weight: 0.20},
			{Key: "automation", Label: "Automation", Weight: 0.20},
		},
	}
}
