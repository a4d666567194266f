package markers_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/drivealert/pkg/drivealert/markers"
)

func TestUniqueCameras_ExactTupleDedup(t *testing.T) {
	a := markers.AttributeMap{"FIX_1": {1.0, 2.0, nil, nil, nil, nil, nil, "Main St", "N", "50"}}
	b := markers.AttributeMap{"FIX_1": {1.0, 2.0, nil, nil, nil, nil, nil, "Main St", "N", "50"}}

	got := markers.UniqueCameras(a, b)
	require.Len(t, got, 1)
	assert.Equal(t, markers.CameraTuple{
		Key:                 "FIX_1",
		Lat:                 1.0,
		Lon:                 2.0,
		Name:                "Main St",
		Direction:           "N",
		MaxSpeed:            "50",
		MaxSpeedConditional: "@ Always",
		Description:         "---",
	}, got[0])
}

// A source that writes "---" for an unknown speed limit and one that omits
// the field produce different tuples for the same camera. Both survive tuple
// dedup; only the coordinate check at placement collapses them.
func TestUniqueCameras_PlaceholderVariantsStayDistinct(t *testing.T) {
	short := markers.AttributeMap{"MOBILE_1": {1.0, 2.0}}
	explicit := markers.AttributeMap{"MOBILE_1": {1.0, 2.0, nil, nil, nil, nil, nil, "---", "---", "---", "@ Always", "---"}}

	got := markers.UniqueCameras(short, explicit)
	require.Len(t, got, 2)
	assert.Equal(t, "--- Km/h", got[0].MaxSpeed)
	assert.Equal(t, "---", got[1].MaxSpeed)
}

func TestUniqueCameras_FirstSeenOrderAndInvalidCoords(t *testing.T) {
	got := markers.UniqueCameras(
		markers.AttributeMap{"B": {2.0, 2.0}, "A": {1.0, 1.0}},
		markers.AttributeMap{"C": {"not a number", 3.0}, "D": {4.0}},
	)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Key)
	assert.Equal(t, "B", got[1].Key)
}

func TestUniqueConstructionAreas(t *testing.T) {
	got := markers.UniqueConstructionAreas(markers.AttributeMap{
		"c1": {1.0, 2.0, nil, nil, nil, nil, nil, "minor", "A9"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "minor", got[0].Construction)
	assert.Equal(t, "A9", got[0].Name)
	assert.Equal(t, "---", got[0].Surface)
	assert.Equal(t, "---", got[0].CheckDate)
}

func TestIconFor(t *testing.T) {
	tests := map[string]markers.Icon{
		"FIX_123":        markers.IconFix,
		"TRAFFIC_9":      markers.IconTraffic,
		"DISTANCE_4":     markers.IconDistance,
		"MOBILE_1":       markers.IconMobile,
		"police":         markers.IconMobile,
		"FIXTRAFFIC_odd": markers.IconFix,
	}
	for key, want := range tests {
		assert.Equal(t, want, markers.IconFor(key), key)
	}

	assert.Equal(t, markers.IconHospital, markers.POIIcon("hospital"))
	assert.Equal(t, markers.IconFuel, markers.POIIcon("fuel"))
	assert.Equal(t, markers.IconUndefined, markers.POIIcon("---"))
}

func TestToFloat(t *testing.T) {
	for _, v := range []any{3.0, float32(3), 3, int64(3), json.Number("3"), "3"} {
		f, err := markers.ToFloat(v)
		require.NoError(t, err, "%T", v)
		assert.Equal(t, 3.0, f)
	}
	_, err := markers.ToFloat(struct{}{})
	assert.Error(t, err)
}
