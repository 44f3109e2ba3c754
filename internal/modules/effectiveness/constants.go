package effectiveness

import "github.com/aristath/chain-sentry/internal/modules/coverage"

// ResponseCount is the fixed number of response methods.
const ResponseCount = 6

// Response method positions. Slot order is fixed system configuration;
// the worker-voice response slot is linked to the worker-voice tool slot
// (see the optimizer's linked-channel configuration).
const (
	ResponseWorkerVoice = iota // grievance follow-up through the voice channel
	ResponseCorrectiveAction
	ResponseRemediation
	ResponseCapabilityBuilding
	ResponseContractEnforcement
	ResponseExit
)

// ResponseNames maps response positions to display names, in vector order.
var ResponseNames = [ResponseCount]string{
	"worker_voice",
	"corrective_action",
	"remediation",
	"capability_building",
	"contract_enforcement",
	"exit",
}

// DetectionCeiling caps combined detection effectiveness: some risk is
// never fully detectable.
const DetectionCeiling = 0.90

// Category groups detection tools that overlap as detection channels.
// Base effectiveness and weight are fixed system configuration, not user
// input.
type Category struct {
	Name              string
	Tools             []int   // member tool slots (coverage vector indices)
	BaseEffectiveness float64 // assumed per-tool detection probability, 0-1
	Weight            float64 // category weight, <= 1
}

// DefaultCategories is the fixed category configuration, in combination
// order. Each detection tool forms its own category in the default setup;
// the grouping still matters because category weights discount the less
// reliable channels before cross-category combination.
func DefaultCategories() []Category {
	return []Category{
		{Name: "continuous", Tools: []int{coverage.ToolWorkerVoice}, BaseEffectiveness: 0.55, Weight: 1.0},
		{Name: "periodic", Tools: []int{coverage.ToolPeriodic}, BaseEffectiveness: 0.45, Weight: 0.9},
		{Name: "unannounced_audit", Tools: []int{coverage.ToolUnannouncedAudit}, BaseEffectiveness: 0.60, Weight: 1.0},
		{Name: "announced_audit", Tools: []int{coverage.ToolAnnouncedAudit}, BaseEffectiveness: 0.35, Weight: 0.8},
		{Name: "self_report", Tools: []int{coverage.ToolSelfReport}, BaseEffectiveness: 0.20, Weight: 0.6},
		{Name: "desk_review", Tools: []int{coverage.ToolDeskReview}, BaseEffectiveness: 0.15, Weight: 0.5},
	}
}
