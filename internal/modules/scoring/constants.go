package scoring

// IndicatorCount is the fixed number of risk indicators per country unit.
const IndicatorCount = 5

// Indicator positions within a unit's indicator vector.
const (
	IndicatorGovernance = iota
	IndicatorLaborRights
	IndicatorCorruption
	IndicatorConflict
	IndicatorTransparency
)

// IndicatorNames maps indicator positions to display names, in vector order.
var IndicatorNames = [IndicatorCount]string{
	"governance",
	"labor_rights",
	"corruption",
	"conflict",
	"transparency",
}

// Weight bounds. Weights are caller-supplied and revalidated on every change.
const (
	MinWeight = 0.0
	MaxWeight = 50.0
)

// DefaultWeights is the stock weight configuration used until the caller
// customizes it.
var DefaultWeights = WeightVector{30, 25, 20, 15, 10}

// Indicator values are normalized risk readings on a 0-100 scale.
// Zero means "unknown / excluded", not "zero risk".
const (
	MinIndicatorValue = 0.0
	MaxIndicatorValue = 100.0
)
