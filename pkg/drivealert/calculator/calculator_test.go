package calculator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/drivealert/pkg/drivealert/calculator"
)

func TestRegistry_RemoveRestoreCamera(t *testing.T) {
	r := calculator.New()
	r.AddCamera(calculator.Entry{Key: "FIX_1", Lat: 48.1, Lon: 11.5})
	r.AddCamera(calculator.Entry{Key: "MOBILE_2", Lat: 48.2, Lon: 11.6})
	require.Equal(t, 2, r.Cameras())

	e, ok := r.RemoveCamera(48.1, 11.5)
	require.True(t, ok)
	assert.Equal(t, "FIX_1", e.Key)
	assert.Equal(t, 1, r.Cameras())

	_, ok = r.RemoveCamera(48.1, 11.5)
	assert.False(t, ok, "second removal finds nothing")

	r.RestoreCamera(e)
	got, ok := r.Camera(48.1, 11.5)
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestRegistry_ConstructionInfoPage(t *testing.T) {
	type call struct {
		mode calculator.InfoMode
		n    int
	}
	var calls []call
	r := calculator.New(calculator.WithInfoPage(func(mode calculator.InfoMode, n int) {
		calls = append(calls, call{mode, n})
	}))

	r.AddConstructionArea(calculator.Entry{Key: "c1", Lat: 1, Lon: 2})
	_, ok := r.RemoveConstructionArea(1, 2)
	require.True(t, ok)
	_, ok = r.RemoveConstructionArea(1, 2)
	require.False(t, ok)

	assert.Equal(t, []call{
		{calculator.InfoIncrease, 1},
		{calculator.InfoDecrease, 0},
	}, calls)
	assert.Zero(t, r.ConstructionAreas())
}

func TestRegistry_OSMDataState(t *testing.T) {
	r := calculator.New()
	assert.True(t, r.OSMDataState())
	r.SetOSMDataState(false)
	assert.False(t, r.OSMDataState())
}
