package engine

import (
	"fmt"
	"time"

	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the roughing result and computed statistics for a
// single scenario. Err is set when the scenario failed.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Result   *Result
	Err      error

	Levels   int
	Contours int
	Length   float64
	Duration time.Duration
}

// CompareScenarios roughs the mesh once per scenario, in scenario order.
// A failing scenario does not stop the others.
func CompareScenarios(scenarios []ComparisonScenario, m *surface.Mesh, boundary *toolpath.Series) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		start := time.Now()
		res, err := New(scenario.Settings).Roughen(m, boundary)
		cr := ComparisonResult{Scenario: scenario, Err: err, Duration: time.Since(start)}
		if err == nil {
			cr.Result = res
			cr.Levels = len(res.Levels)
			cr.Contours = res.TotalContours()
			cr.Length = res.TotalLength()
		}
		results = append(results, cr)
	}
	return results
}

// BuildDefaultScenarios varies the base settings in the directions that
// most change the cutting time: step-down, weave resolution, tool size and
// stock to leave.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{{Name: "Current Settings", Settings: base}}

	half := base
	half.StepDown = base.StepDown / 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Step-down %.2fmm (half)", half.StepDown),
		Settings: half,
	})

	if base.WeaveResolution > 0.2 {
		fine := base
		fine.WeaveResolution = base.WeaveResolution / 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Resolution %.3fmm (fine)", fine.WeaveResolution),
			Settings: fine,
		})
	}

	big := base
	big.CornerRadius = base.CornerRadius * 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Radius %.1fmm (double)", big.CornerRadius),
		Settings: big,
	})

	if base.StockToLeave == 0 {
		stock := base
		stock.StockToLeave = 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Leave 0.5mm stock",
			Settings: stock,
		})
	}
	return scenarios
}
