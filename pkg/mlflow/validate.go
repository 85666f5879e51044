package mlflow

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Server-enforced limits on logged data. Checking them before a request
// turns a guaranteed 400 into a local error.
const (
	maxEntityKeyLength  = 250
	maxParamValueLength = 6000
	maxTagValueLength   = 8000
)

func validateKey(key string) error {
	return validation.Validate(key,
		validation.Required,
		validation.Length(1, maxEntityKeyLength),
	)
}

func validateParamValue(value string) error {
	return validation.Validate(value, validation.Length(0, maxParamValueLength))
}

func validateTagValue(value string) error {
	return validation.Validate(value, validation.Length(0, maxTagValueLength))
}

// checkFinite rejects metric values JSON cannot represent.
func checkFinite(value interface{}) error {
	v, _ := value.(float64)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errNonFiniteMetric
	}
	return nil
}

func validateMetricValue(value float64) error {
	return validation.Validate(value, validation.By(checkFinite))
}
