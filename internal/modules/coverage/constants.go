package coverage

// ToolCount is the fixed number of detection tools in a coverage mix.
const ToolCount = 6

// Tool positions within a coverage vector. Slot order is fixed system
// configuration shared with the effectiveness and cost models.
const (
	ToolWorkerVoice = iota // continuous worker-voice channel
	ToolPeriodic
	ToolUnannouncedAudit
	ToolAnnouncedAudit
	ToolSelfReport
	ToolDeskReview
)

// ToolNames maps tool positions to display names, in vector order.
var ToolNames = [ToolCount]string{
	"worker_voice",
	"periodic",
	"unannounced_audit",
	"announced_audit",
	"self_report",
	"desk_review",
}

const (
	// MaxHighRiskBoost bounds the extra coverage multiplier granted to
	// high-risk units (a 1.30x ceiling).
	MaxHighRiskBoost = 0.30

	// BoostFocusThreshold and BoostRiskThreshold gate the boost: it
	// phases in smoothly once focus exceeds the former and unit risk
	// exceeds the latter, avoiding a discontinuous step.
	BoostFocusThreshold = 0.3
	BoostRiskThreshold  = 60.0

	// ExpansionCap limits how far total per-tool capacity usage may grow
	// above the unredistributed total before conservation scaling kicks
	// in (30%).
	ExpansionCap = 0.30

	// MaxCoveragePct caps any single unit's per-tool coverage.
	MaxCoveragePct = 100.0
)
