package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverse_CoincidentPoints(t *testing.T) {
	assert.Zero(t, Inverse(21.3, -157.8, 21.3, -157.8))
}

func TestInverse_KnownDistance(t *testing.T) {
	// Honolulu (21.3069, -157.8583) to Kahului (20.8893, -156.4729).
	// Reference geodesic distance is ~150.3 km; allow 200 m slack.
	d := Inverse(21.3069, -157.8583, 20.8893, -156.4729)
	assert.InDelta(t, 150300, d, 200)
}

func TestInverse_Symmetry(t *testing.T) {
	d1 := Inverse(21.5, -158.0, 20.7, -156.3)
	d2 := Inverse(20.7, -156.3, 21.5, -158.0)
	assert.InDelta(t, d1, d2, 1e-6)
}

func TestConverter_RoundTripDistance(t *testing.T) {
	c := NewConverter(0)

	// Two points ~1 km apart in UTM zone 4N near Oahu. The geodesic
	// distance should be within UTM scale distortion (<0.1%) of planar.
	d, err := c.DistanceFt(620000, 2356000, 621000, 2356000)
	require.NoError(t, err)
	assert.InDelta(t, 1000*MetersToFeet, d, 1000*MetersToFeet*0.001)
}

func TestConverter_ZeroDistance(t *testing.T) {
	c := NewConverter(4)
	d, err := c.DistanceFt(620000, 2356000, 620000, 2356000)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 3.28084, MetersToFeet, 1e-5)
	assert.InDelta(t, 10.7639, SqMetersToSqFeet, 1e-4)
	assert.InDelta(t, 39.3701, MetersToInches, 1e-4)
}
