package portfolio

// DefaultVolume is the exposure weight assigned to a selected unit when the
// caller does not specify one.
const DefaultVolume = 10.0

// SelectedUnit is a portfolio member: a unit code with its exposure volume
// and its computed risk score. The score is derived state: always
// recomputed from current indicators and weights, never edited directly.
type SelectedUnit struct {
	Code   string  `json:"code"`
	Volume float64 `json:"volume"`
	Score  float64 `json:"score"`
}

// Summary is the aggregate view of a portfolio selection.
type Summary struct {
	BaselineRisk  float64 `json:"baseline_risk"`  // volume-weighted mean risk, 0-100
	TotalVolume   float64 `json:"total_volume"`   // sum of member volumes
	Concentration float64 `json:"concentration"`  // risk concentration K, always >= 1
}
