package scoring

import (
	"fmt"
	"strings"
)

// Unit is an assessable country with five risk indicator values.
// Units are immutable once loaded; mutations happen only through explicit
// edits that go back through validation.
type Unit struct {
	Code       string                  `json:"code"` // ISO-style unique code, e.g. "BD"
	Name       string                  `json:"name"`
	Indicators [IndicatorCount]float64 `json:"indicators"`
}

// WeightVector holds one weight per indicator.
type WeightVector [IndicatorCount]float64

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that every weight is within [MinWeight, MaxWeight].
// Callers must validate before scoring; invalid weights never reach the
// scorer.
func (w WeightVector) Validate() error {
	var errs ValidationErrors
	for i, weight := range w {
		if weight < MinWeight || weight > MaxWeight {
			errs = append(errs, ValidationError{
				Field:   IndicatorNames[i],
				Message: fmt.Sprintf("weight %.2f outside [%g, %g]", weight, MinWeight, MaxWeight),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate checks unit fields and indicator ranges.
func (u Unit) Validate() error {
	var errs ValidationErrors
	if u.Code == "" {
		errs = append(errs, ValidationError{Field: "code", Message: "code is required"})
	}
	for i, v := range u.Indicators {
		if v < MinIndicatorValue || v > MaxIndicatorValue {
			errs = append(errs, ValidationError{
				Field:   IndicatorNames[i],
				Message: fmt.Sprintf("value %.2f outside [%g, %g]", v, MinIndicatorValue, MaxIndicatorValue),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
