package scoring

// Scorer converts raw per-unit indicator values into a single weighted risk
// score on a 0-100 scale.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the weighted risk score for a unit.
//
// Only indicators with a value > 0 participate: zero means the indicator is
// unknown for this country and must not drag the score down. The result is
// the weight-normalized sum over participating indicators. If no indicator
// qualifies the score is 0: degenerate input yields a neutral value, never
// an error.
func (s *Scorer) Score(unit Unit, weights WeightVector) float64 {
	var weightedSum, weightTotal float64
	for i := 0; i < IndicatorCount; i++ {
		value := unit.Indicators[i]
		if value <= 0 {
			continue
		}
		weightedSum += value * weights[i]
		weightTotal += weights[i]
	}
	if weightTotal <= 0 {
		return 0
	}
	return weightedSum / weightTotal
}
