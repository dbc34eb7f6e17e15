package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"slopecast/internal/types"
)

func TestEstimateCondition(t *testing.T) {
	tests := []struct {
		name    string
		avgTemp float64
		precip  float64
		want    types.ConditionCode
	}{
		{"mild and dry", 15, 0, types.ConditionPartlyCloudy},
		{"hot and dry", 30, 0, types.ConditionClear},
		{"heavy rain above freezing band", 1, 15, types.ConditionThunderstorm},
		{"heavy precipitation below cutoff", -1, 15, types.ConditionSnow},
		{"trace precipitation", 10, 0.5, types.ConditionCloudy},
		{"light rain", 10, 5, types.ConditionRain},
		{"light snow", 0, 5, types.ConditionSnow},
		{"missing precipitation defaults", 30, math.NaN(), types.ConditionPartlyCloudy},
		{"missing temperature with heavy precip", math.NaN(), 15, types.ConditionThunderstorm},
		{"boundary at heavy threshold", 10, 10, types.ConditionRain},
		{"boundary at trace threshold", 10, 0.1, types.ConditionPartlyCloudy},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateCondition(tc.avgTemp, tc.precip))
		})
	}
}
