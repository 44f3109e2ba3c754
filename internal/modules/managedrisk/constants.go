package managedrisk

const (
	// HighRiskFocusGate and HighRiskScoreThreshold gate the country focus
	// bonus: above both, a unit gets BonusMultiplier on top of the blended
	// focus multiplier.
	HighRiskFocusGate      = 0.6
	HighRiskScoreThreshold = 70.0
	BonusMultiplier        = 1.15

	// ConcentrationGamma is the fixed concentration-sensitivity constant
	// in the focus multiplier blend.
	ConcentrationGamma = 0.7

	// The progressive effectiveness cap: maximum achievable risk
	// reduction shrinks linearly from CapMaxReduction for near-zero-risk
	// units down to CapMinReduction at the top of the risk scale. This is
	// the primary defense against a medium-risk unit ending up below a
	// much higher-risk one.
	CapMaxReduction = 0.70
	CapMinReduction = 0.50

	// FloorRatio: managed risk never drops below this share of baseline.
	// Risk is managed, not eliminated.
	FloorRatio = 0.25

	// RankEpsilon is the forced separation applied by the
	// rank-preservation pass.
	RankEpsilon = 0.5
)
